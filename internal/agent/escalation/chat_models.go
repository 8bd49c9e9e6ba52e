package escalation

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/inmaculada-bot/pkg/logger"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

// ChatModelConfig selects and configures the escalation model.
type ChatModelConfig struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    model.EscalationModelConfig
}

// NewChatModel builds the configured provider's chat model. It returns nil
// without error for ProviderNone.
func NewChatModel(ctx context.Context, cfg ChatModelConfig) (einomodel.BaseChatModel, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderGemini, "":
		cm, err := NewGeminiChatModel(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return cm, nil
	case ProviderOpenAI:
		return NewOpenAIChatModel(cfg), nil
	case ProviderNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown escalation provider %q", cfg.Provider)
	}
}

// NewGeminiChatModel creates a Gemini chat model. Thinking is disabled: a
// classification has to come back within the escalation timeout.
func NewGeminiChatModel(ctx context.Context, cfg ChatModelConfig) (*gemini.ChatModel, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	temperature := cfg.Model.Temperature
	maxTokens := cfg.Model.MaxTokens
	cm, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(int32(0)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating escalation model")
		return nil, fmt.Errorf("error creating escalation model: %w", err)
	}
	return cm, nil
}
