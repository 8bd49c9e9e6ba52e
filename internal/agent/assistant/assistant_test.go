package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/catalog"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/escalation"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/graph"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/memory"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/metrics"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/nlu"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/repo"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/response"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/sentiment"
	errx "github.com/Chative-core-poc-v1/inmaculada-bot/internal/core/error"
)

// downModel fails every call like an unreachable provider.
type downModel struct{}

func (downModel) Generate(context.Context, []*schema.Message, ...einomodel.Option) (*schema.Message, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func (downModel) Stream(context.Context, []*schema.Message, ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("dial tcp: connection refused")
}

type panicRunner struct{}

func (panicRunner) Run(context.Context, model.Inbound) (*model.Analysis, error) {
	panic("nil map write")
}

type errRunner struct{}

func (errRunner) Run(context.Context, model.Inbound) (*model.Analysis, error) {
	return nil, errors.New("max run steps exceeded")
}

type fixture struct {
	svc    *Service
	store  *memory.InMemoryStore
	engine *nlu.Engine
}

func newFixture(t *testing.T, withEscalation bool) fixture {
	t.Helper()
	ctx := context.Background()
	ix := catalog.NewIndex(catalog.NewSeedSource())
	engine := nlu.NewDefaultEngine()
	store := memory.NewInMemoryStore(time.Hour, 1000)
	t.Cleanup(func() { _ = store.Close() })

	cfg := graph.Config{
		Memory:       store,
		History:      repo.NewInMemoryConversationRepository(50, 100, time.Hour),
		Sentiment:    sentiment.NewAnalyzer(),
		Classifier:   nlu.NewClassifier(engine, ix),
		Responder:    response.NewGenerator(ix, model.DefaultBusinessConfig()),
		HistoryLimit: 5,
	}
	if withEscalation {
		esc, err := escalation.New(ctx, downModel{}, escalation.Config{Timeout: time.Second, Index: ix})
		require.NoError(t, err)
		cfg.Escalator = esc
	}
	runner, err := graph.Build(ctx, cfg)
	require.NoError(t, err)

	svc, err := New(Config{Runner: runner, Memory: store, Learner: nlu.NewLearner(engine)})
	require.NoError(t, err)
	return fixture{svc: svc, store: store, engine: engine}
}

func TestProcessMessage(t *testing.T) {
	f := newFixture(t, false)

	got := f.svc.ProcessMessage(context.Background(), "51911111111", "  Hola  ")

	assert.Equal(t, model.IntentGreeting, got.IntentName)
	assert.Equal(t, 92, got.ConfidencePercent)
	assert.NotEmpty(t, got.ReplyText)
}

func TestVisitCountIncrementsPerMessage(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	id := "51911111112"

	msgs := []string{"hola", "¿tienen arroz?", "qwerty zxcv", "gracias", "chau"}
	for i, msg := range msgs {
		f.svc.ProcessMessage(ctx, id, msg)
		mem, err := f.store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, i+1, mem.VisitCount, msg)
	}
}

func TestEscalationFailureStillReplies(t *testing.T) {
	f := newFixture(t, true)
	before := testutil.ToFloat64(metrics.Escalations.WithLabelValues(string(model.EscalationUnavailable)))

	got := f.svc.ProcessMessage(context.Background(), "51911111113", "qwerty zxcv")

	assert.Equal(t, model.IntentUnknown, got.IntentName)
	assert.NotEmpty(t, got.ReplyText)
	assert.NotEqual(t, response.FallbackReply, got.ReplyText)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.Escalations.WithLabelValues(string(model.EscalationUnavailable))))
}

func TestPanicBecomesSafeReply(t *testing.T) {
	store := memory.NewInMemoryStore(time.Hour, 10)
	t.Cleanup(func() { _ = store.Close() })
	svc, err := New(Config{Runner: panicRunner{}, Memory: store, Learner: nlu.NewLearner(nil)})
	require.NoError(t, err)
	before := testutil.ToFloat64(metrics.Panics)

	got := svc.ProcessMessage(context.Background(), "51911111114", "hola")

	assert.Equal(t, model.Reply{
		IntentName:        model.IntentError,
		ConfidencePercent: 0,
		ReplyText:         response.FallbackReply,
		Sentiment:         model.NeutralSentiment(),
	}, got)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.Panics))

	mem, err := store.Get(context.Background(), "51911111114")
	require.NoError(t, err)
	assert.Equal(t, 1, mem.VisitCount)
	assert.Empty(t, mem.LastIntent)

	// The stripe lock was released.
	got = svc.ProcessMessage(context.Background(), "51911111114", "hola")
	assert.Equal(t, model.IntentError, got.IntentName)
}

func TestRunnerErrorBecomesSafeReply(t *testing.T) {
	store := memory.NewInMemoryStore(time.Hour, 10)
	t.Cleanup(func() { _ = store.Close() })
	svc, err := New(Config{Runner: errRunner{}, Memory: store, Learner: nlu.NewLearner(nil)})
	require.NoError(t, err)

	got := svc.ProcessMessage(context.Background(), "51911111115", "hola")
	assert.Equal(t, model.IntentError, got.IntentName)
	assert.Equal(t, response.FallbackReply, got.ReplyText)
}

func TestConcurrentMessagesFromOneCustomer(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	const n = 25

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f.svc.ProcessMessage(ctx, "51911111116", fmt.Sprintf("hola %d", i))
		}(i)
	}
	wg.Wait()

	mem, err := f.store.Get(ctx, "51911111116")
	require.NoError(t, err)
	assert.Equal(t, n, mem.VisitCount)
}

func TestFeedbackAdjustsPriority(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	id := "51911111117"
	before := f.engine.Priority(model.IntentDelivery)

	for i := 0; i < 3; i++ {
		f.svc.ProcessMessage(ctx, id, "qwerty zxcv")
		require.NoError(t, f.svc.Feedback(ctx, id, "qwerty zxcv", model.IntentDelivery))
	}

	assert.Greater(t, f.engine.Priority(model.IntentDelivery), before)
	stats := f.svc.Stats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 3, stats.Corrections)
	assert.Equal(t, 3, stats.Failed)
}

func TestFeedbackRejectsUnknownIntent(t *testing.T) {
	f := newFixture(t, false)
	err := f.svc.Feedback(context.Background(), "51911111118", "hola", "consulta_precio")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, errx.StatusOf(err))
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
