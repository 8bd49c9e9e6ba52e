package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/assistant"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/catalog"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/escalation"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/graph"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/memory"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/nlu"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/observers"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/repo"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/response"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/sentiment"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/core"
	logx "github.com/Chative-core-poc-v1/inmaculada-bot/pkg/logger"
	pkgredis "github.com/Chative-core-poc-v1/inmaculada-bot/pkg/redis"
)

// AppConfig defines all configurable parameters of the console host,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Env      core.Environment `envconfig:"APP_ENV" default:"development"`
	LogLevel string           `envconfig:"LOG_LEVEL"`

	// Infrastructure
	Redis       pkgredis.Config
	DatabaseURL string `envconfig:"DATABASE_URL"`
	MetricsAddr string `envconfig:"METRICS_ADDR"`

	// LLM providers
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`
	GeminiBaseURL string `envconfig:"GEMINI_BASE_URL"`
	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`

	// Agent configs
	Escalation   model.EscalationModelConfig
	Conversation model.ConversationConfig
	Business     model.BusinessConfig

	CustomerID string `envconfig:"CONSOLE_CUSTOMER_ID" default:"console"`
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load .env file: %v\n", err)
	}

	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to process environment config: %v\n", err)
		os.Exit(1)
	}
	logx.Init(logx.LoggerOpts{Environment: envCfg.Env, Level: envCfg.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, cleanup, err := build(ctx, envCfg)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build assistant")
	}
	defer cleanup()

	if envCfg.MetricsAddr != "" {
		srv := serveMetrics(envCfg.MetricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	chat(ctx, svc, envCfg.CustomerID)
}

// build wires stores, catalog, escalation and the message graph.
func build(ctx context.Context, cfg AppConfig) (*assistant.Service, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*assistant.Service, func(), error) {
		cleanup()
		return nil, func() {}, err
	}

	// Catalog
	var source model.CatalogSource = catalog.NewSeedSource()
	if cfg.DatabaseURL != "" {
		db, err := repo.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return fail(fmt.Errorf("open catalog database: %w", err))
		}
		closers = append(closers, func() { _ = db.Close() })
		source = repo.NewPostgresCatalogSource(db)
	}
	index := catalog.NewIndex(source)
	if err := index.Ensure(ctx); err != nil {
		logx.Warn().Err(err).Msg("Catalog not loaded yet; product search will retry on demand")
	}

	// Memory and history
	var (
		store   model.MemoryStore
		history model.ConversationRepository
	)
	if cfg.Redis.Enabled() {
		rdb, err := cfg.Redis.New(ctx)
		if err != nil {
			return fail(fmt.Errorf("connect redis: %w", err))
		}
		closers = append(closers, func() { _ = rdb.Close() })
		store = repo.NewRedisMemoryStore(rdb, cfg.Conversation.MemoryTTL)
		history = repo.NewRedisConversationRepository(rdb, cfg.Conversation.HistoryTTL, cfg.Conversation.HistoryMaxTurns)
		logx.Info().Msg("Connected to Redis successfully")
	} else {
		mem := memory.NewInMemoryStore(cfg.Conversation.MemoryTTL, cfg.Conversation.MemoryMaxSize)
		closers = append(closers, func() { _ = mem.Close() })
		store = mem
		history = repo.NewInMemoryConversationRepository(cfg.Conversation.HistoryMaxTurns, cfg.Conversation.MemoryMaxSize, cfg.Conversation.HistoryTTL)
	}

	engine := nlu.NewDefaultEngine()
	graphCfg := graph.Config{
		Memory:       store,
		History:      history,
		Sentiment:    sentiment.NewAnalyzer(),
		Classifier:   nlu.NewClassifier(engine, index),
		Responder:    response.NewGenerator(index, cfg.Business),
		HistoryLimit: cfg.Conversation.HistoryLimit,
	}

	esc, err := newEscalator(ctx, cfg, index)
	if err != nil {
		return fail(err)
	}
	if esc != nil {
		graphCfg.Escalator = esc
	}

	runner, err := graph.Build(ctx, graphCfg)
	if err != nil {
		return fail(fmt.Errorf("build graph: %w", err))
	}

	svc, err := assistant.New(assistant.Config{Runner: runner, Memory: store, Learner: nlu.NewLearner(engine)})
	if err != nil {
		return fail(err)
	}
	return svc, cleanup, nil
}

// newEscalator returns nil when escalation is disabled.
func newEscalator(ctx context.Context, cfg AppConfig, index *catalog.Index) (*escalation.Escalator, error) {
	cmCfg := escalation.ChatModelConfig{
		Provider: cfg.Escalation.Provider,
		APIKey:   cfg.GeminiAPIKey,
		BaseURL:  cfg.GeminiBaseURL,
		Model:    cfg.Escalation,
	}
	if strings.EqualFold(cfg.Escalation.Provider, escalation.ProviderOpenAI) {
		cmCfg.APIKey, cmCfg.BaseURL = cfg.OpenAIAPIKey, cfg.OpenAIBaseURL
	}
	if cmCfg.APIKey == "" && !strings.EqualFold(cfg.Escalation.Provider, escalation.ProviderNone) {
		logx.Warn().Str("provider", cfg.Escalation.Provider).Msg("No API key for escalation provider; answering locally only")
		return nil, nil
	}

	cm, err := escalation.NewChatModel(ctx, cmCfg)
	if err != nil {
		return nil, fmt.Errorf("create escalation model: %w", err)
	}
	if cm == nil {
		return nil, nil
	}
	return escalation.New(ctx, cm, escalation.Config{
		ModelName: cfg.Escalation.Model,
		Timeout:   cfg.Escalation.Timeout,
		Business:  cfg.Business,
		Index:     index,
		Callbacks: []callbacks.Handler{observers.NewAllCallbacks()},
	})
}

func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Error().Err(err).Str("addr", addr).Msg("Metrics server stopped")
		}
	}()
	logx.Info().Str("addr", addr).Msg("Serving metrics")
	return srv
}

// chat reads customer messages from stdin until EOF or "/salir".
// "/stats" prints learning statistics; "/corregir <intent>" corrects the
// previous message's intent.
func chat(ctx context.Context, svc *assistant.Service, customerID string) {
	fmt.Println("Escribe un mensaje (/stats, /corregir <intención>, /salir)")
	scanner := bufio.NewScanner(os.Stdin)
	var last string
	for {
		fmt.Print("> ")
		if !scanner.Scan() || ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/salir":
			return
		case line == "/stats":
			b, _ := json.MarshalIndent(svc.Stats(), "", "  ")
			fmt.Println(string(b))
			continue
		case strings.HasPrefix(line, "/corregir "):
			intent := model.IntentName(strings.TrimSpace(strings.TrimPrefix(line, "/corregir ")))
			if err := svc.Feedback(ctx, customerID, last, intent); err != nil {
				fmt.Printf("No se pudo registrar la corrección: %v\n", err)
				continue
			}
			fmt.Println("Corrección registrada.")
			continue
		}

		reply := svc.ProcessMessage(ctx, customerID, line)
		last = line
		fmt.Printf("%s\n  [%s %d%% %s]\n", reply.ReplyText, reply.IntentName, reply.ConfidencePercent, reply.Sentiment.Emotion)
	}
}
