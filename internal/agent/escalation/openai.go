package escalation

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIChatModel adapts the OpenAI chat completions API to eino's chat
// model interface so it can sit in the same chains as Gemini.
type OpenAIChatModel struct {
	client      openai.Client
	model       string
	maxTokens   int
	temperature float32
}

func NewOpenAIChatModel(cfg ChatModelConfig) *OpenAIChatModel {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// one attempt per escalation
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	name := cfg.Model.Model
	if name == "" {
		name = defaultOpenAIModel
	}
	return &OpenAIChatModel{
		client:      openai.NewClient(opts...),
		model:       name,
		maxTokens:   cfg.Model.MaxTokens,
		temperature: cfg.Model.Temperature,
	}
}

func (m *OpenAIChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	o := einomodel.GetCommonOptions(&einomodel.Options{
		Model:       &m.model,
		MaxTokens:   &m.maxTokens,
		Temperature: &m.temperature,
	}, opts...)

	params := openai.ChatCompletionNewParams{
		Model:    *o.Model,
		Messages: convertMessages(input),
	}
	if o.MaxTokens != nil && *o.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(*o.MaxTokens))
	}
	if o.Temperature != nil {
		params.Temperature = openai.Float(float64(*o.Temperature))
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	choice := resp.Choices[0]
	return &schema.Message{
		Role:    schema.Assistant,
		Content: choice.Message.Content,
		ResponseMeta: &schema.ResponseMeta{
			FinishReason: string(choice.FinishReason),
			Usage: &schema.TokenUsage{
				PromptTokens:     int(resp.Usage.PromptTokens),
				CompletionTokens: int(resp.Usage.CompletionTokens),
				TotalTokens:      int(resp.Usage.TotalTokens),
			},
		},
	}, nil
}

// Stream answers in a single chunk.
func (m *OpenAIChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	out, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{out}), nil
}

func (m *OpenAIChatModel) GetType() string {
	return "OpenAI"
}

func convertMessages(msgs []*schema.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		if msg == nil {
			continue
		}
		switch msg.Role {
		case schema.System:
			out = append(out, openai.SystemMessage(msg.Content))
		case schema.User:
			out = append(out, openai.UserMessage(msg.Content))
		case schema.Assistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		}
	}
	return out
}

var _ einomodel.BaseChatModel = (*OpenAIChatModel)(nil)
