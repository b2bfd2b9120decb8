package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"chatbot-gateway/chat"
	"chatbot-gateway/middleware/admission"
	"chatbot-gateway/middleware/admission/application"
	"chatbot-gateway/middleware/admission/domain"
	"chatbot-gateway/middleware/admission/infra"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	upstreamOpts := []chat.ClientOption{chat.WithModel(cfg.model)}
	if cfg.anthropicBaseURL != "" {
		upstreamOpts = append(upstreamOpts, chat.WithBaseURL(cfg.anthropicBaseURL))
	}
	if cfg.upstreamRPS > 0 {
		upstreamOpts = append(upstreamOpts, chat.WithUpstreamLimit(cfg.upstreamRPS, cfg.upstreamBurst))
	}
	upstream := chat.NewAnthropicClient(cfg.anthropicAPIKey, upstreamOpts...)
	handler := chat.NewHandler(chat.DefaultRegistry(), upstream)

	store := infra.NewSlidingWindowStore(cfg.rateLimit, cfg.rateWindow)

	var statsStore domain.StatsStore
	if cfg.statsEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.statsRedisAddr,
			Password: cfg.statsRedisPassword,
			DB:       cfg.statsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			log.Fatalf("redis stats ping error: %v", err)
		}

		statsStore = infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.statsPrefix),
			infra.WithStatsTTL(cfg.statsTTL),
			infra.WithStatsBucket(cfg.statsBucket),
			infra.WithStatsTrackKeys(cfg.statsTrackKeys),
		)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	store.StartJanitor(ctx)

	// rotas protegidas: autenticação + limite de chamadas simultâneas ao modelo
	protect := admission.Auth(admission.AuthOptions{
		Service: application.AuthService{Secret: cfg.apiToken},
		Stats:   statsStore,
		KeyFn:   admission.DefaultKeyFunc(cfg.rateKeyHeader, cfg.trustXFF),
	})
	guard := admission.Concurrency(admission.ConcurrencyOptions{
		Max:            cfg.concurrencyMax,
		RejectStatus:   http.StatusServiceUnavailable,
		AcquireTimeout: cfg.concurrencyTimeout,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", handler.Root)
	mux.HandleFunc("GET /health", handler.Health)
	mux.HandleFunc("GET /clients", handler.ListClients)
	mux.Handle("POST /chat", protect(guard(http.HandlerFunc(handler.Chat))))
	mux.Handle("POST /chat/simple", protect(guard(http.HandlerFunc(handler.SimpleChat))))

	// o rate limit cobre todas as rotas, inclusive as públicas
	h := http.Handler(mux)
	if cfg.rateEnabled {
		h = admission.RateLimit(admission.Options{
			Store:               store,
			Stats:               statsStore,
			KeyHeader:           cfg.rateKeyHeader,
			TrustXForwardedFor:  cfg.trustXFF,
			RejectStatus:        http.StatusTooManyRequests,
			RetryAfter:          cfg.retryAfter,
			AddRateLimitHeaders: cfg.addHeaders,
		})(h)
	}
	h = admission.RequestID(h)
	// CORS fica por fora de tudo: o preflight do navegador não carrega
	// Authorization e precisa responder antes do rate limit e da autenticação
	h = admission.CORS(admission.CORSOptions{AllowedOrigin: cfg.corsAllowedOrigin})(h)

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("chatbot gateway listening on %s (model=%s)", cfg.listenAddr, cfg.model)
	log.Printf("rate: enabled=%v limit=%d window=%s keyHeader=%q trustXFF=%v", cfg.rateEnabled, cfg.rateLimit, cfg.rateWindow, cfg.rateKeyHeader, cfg.trustXFF)
	log.Printf("stats: enabled=%v redisAddr=%q bucket=%q ttl=%s trackKeys=%v", cfg.statsEnabled, cfg.statsRedisAddr, cfg.statsBucket, cfg.statsTTL, cfg.statsTrackKeys)
	log.Printf("concurrency: max=%d acquireTimeout=%s upstreamRPS=%.3f", cfg.concurrencyMax, cfg.concurrencyTimeout, cfg.upstreamRPS)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

type config struct {
	listenAddr string

	apiToken         string
	anthropicAPIKey  string
	anthropicBaseURL string
	model            string

	corsAllowedOrigin string

	rateEnabled   bool
	rateLimit     int
	rateWindow    time.Duration
	rateKeyHeader string
	trustXFF      bool
	retryAfter    time.Duration
	addHeaders    bool

	concurrencyMax     int
	concurrencyTimeout time.Duration
	upstreamRPS        float64
	upstreamBurst      int

	statsEnabled       bool
	statsRedisAddr     string
	statsRedisPassword string
	statsRedisDB       int
	statsPrefix        string
	statsTTL           time.Duration
	statsBucket        string
	statsTrackKeys     bool
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")

	cfg.apiToken = os.Getenv("API_TOKEN")
	cfg.anthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.anthropicBaseURL = os.Getenv("ANTHROPIC_BASE_URL")
	cfg.model = getenvDefault("MODEL", chat.DefaultModel)
	cfg.corsAllowedOrigin = getenvDefault("CORS_ALLOWED_ORIGIN", "*")

	cfg.rateEnabled = getenvBoolDefault("RATE_ENABLED", true)
	cfg.rateLimit = getenvIntDefault("RATE_LIMIT", 30)
	cfg.rateWindow = getenvDurationDefault("RATE_WINDOW", 60*time.Second)
	cfg.rateKeyHeader = os.Getenv("RATE_KEY_HEADER")
	cfg.trustXFF = getenvBoolDefault("TRUST_XFF", false)
	cfg.retryAfter = getenvDurationDefault("RETRY_AFTER", 1*time.Second)
	cfg.addHeaders = getenvBoolDefault("ADD_RATELIMIT_HEADERS", false)

	cfg.concurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 10)
	cfg.concurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)
	cfg.upstreamRPS = getenvFloatDefault("UPSTREAM_RPS", 0)
	cfg.upstreamBurst = getenvIntDefault("UPSTREAM_BURST", 1)

	cfg.statsEnabled = getenvBoolDefault("STATS_ENABLED", false)
	cfg.statsRedisAddr = getenvDefault("STATS_REDIS_ADDR", "")
	cfg.statsRedisPassword = os.Getenv("STATS_REDIS_PASSWORD")
	cfg.statsRedisDB = getenvIntDefault("STATS_REDIS_DB", 0)
	cfg.statsPrefix = getenvDefault("STATS_PREFIX", "admission:stats")
	cfg.statsTTL = getenvDurationDefault("STATS_TTL", 24*time.Hour)
	cfg.statsBucket = getenvDefault("STATS_BUCKET", "minute")
	cfg.statsTrackKeys = getenvBoolDefault("STATS_TRACK_KEYS", false)

	// falhar alto no startup: segredo ausente nunca pode virar bypass silencioso
	if strings.TrimSpace(cfg.apiToken) == "" {
		return config{}, errors.New("API_TOKEN is required")
	}
	if strings.TrimSpace(cfg.anthropicAPIKey) == "" {
		return config{}, errors.New("ANTHROPIC_API_KEY is required")
	}
	// RATE_LIMIT=0 é um "nega tudo" explícito; negativo é erro de configuração
	if cfg.rateLimit < 0 {
		return config{}, errors.New("RATE_LIMIT must be >= 0")
	}
	if cfg.rateWindow <= 0 {
		return config{}, errors.New("RATE_WINDOW must be > 0")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	if cfg.upstreamRPS > 0 && cfg.upstreamBurst <= 0 {
		return config{}, errors.New("UPSTREAM_BURST must be > 0 when UPSTREAM_RPS is set")
	}
	if cfg.statsEnabled && strings.TrimSpace(cfg.statsRedisAddr) == "" {
		return config{}, errors.New("STATS_REDIS_ADDR is required when STATS_ENABLED=true")
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
