// utilitário pequeno para formatação rápida/consistente de valores numéricos em headers/logs.
//    Evita puxar fmt (que é mais “pesado” e genérico) só para formatação simples
//    Padroniza a formatação de duração em segundos inteiros nos headers

package admission

import (
	"strconv"
	"time"
)

func formatInt(v int) string { return strconv.Itoa(v) }

func formatSeconds(d time.Duration) string {
	return strconv.Itoa(int(d / time.Second))
}
