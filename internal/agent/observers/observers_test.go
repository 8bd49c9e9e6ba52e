package observers

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/core"
	logx "github.com/Chative-core-poc-v1/inmaculada-bot/pkg/logger"
)

type echoModel struct{}

func (echoModel) Generate(_ context.Context, in []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	return &schema.Message{
		Role:         schema.Assistant,
		Content:      "eco: " + in[len(in)-1].Content,
		ResponseMeta: &schema.ResponseMeta{Usage: &schema.TokenUsage{PromptTokens: 5, CompletionTokens: 2, TotalTokens: 7}},
	}, nil
}

func (m echoModel) Stream(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	out, err := m.Generate(ctx, in, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{out}), nil
}

func TestCallbacksLogPromptAndModel(t *testing.T) {
	var buf bytes.Buffer
	logx.Init(logx.LoggerOpts{Environment: core.Production, Output: &buf, Level: "debug"})
	t.Cleanup(func() { logx.Init() })

	chain, err := compose.NewChain[map[string]any, *schema.Message]().
		AppendChatTemplate(prompt.FromMessages(schema.GoTemplate,
			schema.SystemMessage("Eres {{.Name}}"),
			schema.UserMessage("{{.Message}}"),
		)).
		AppendChatModel(echoModel{}).
		Compile(context.Background())
	require.NoError(t, err)

	out, err := chain.Invoke(context.Background(),
		map[string]any{"Name": "Inma", "Message": "hola"},
		compose.WithCallbacks(NewAllCallbacks()),
	)
	require.NoError(t, err)
	assert.Equal(t, "eco: hola", out.Content)

	logs := buf.String()
	assert.Contains(t, logs, "prompt rendered")
	assert.Contains(t, logs, "model call start")
	assert.Contains(t, logs, `"user":"hola"`)
	assert.Contains(t, logs, `"assistant":"eco: hola"`)
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "hola", snippet("  hola "))
	long := strings.Repeat("ñ", maxLoggedContent+10)
	assert.Equal(t, maxLoggedContent+1, len([]rune(snippet(long))))
	assert.Equal(t, "", lastUserContent([]*schema.Message{nil, schema.SystemMessage("x")}))
}
