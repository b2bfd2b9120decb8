package infra

import (
	"context"

	"chatbot-gateway/middleware/admission/domain"
)

// chanPool é o semáforo que segura as vagas de chamada ao provedor de modelo:
// cada completion em andamento ocupa uma posição do channel até terminar.
type chanPool struct {
	sem chan struct{}
}

// NewChanPool cria um pool com `max` chamadas upstream simultâneas.
func NewChanPool(max int) domain.SlotPool {
	return &chanPool{sem: make(chan struct{}, max)}
}

func (p *chanPool) Acquire(ctx context.Context) (func(), bool) {
	select {
	case p.sem <- struct{}{}:
		return func() { <-p.sem }, true
	case <-ctx.Done():
		return nil, false
	}
}
