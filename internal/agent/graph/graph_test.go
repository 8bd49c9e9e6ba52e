package graph

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/catalog"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/memory"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/nlu"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/repo"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/response"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/sentiment"
)

type fakeEscalator struct {
	mu      sync.Mutex
	calls   int
	history []model.Turn
	outcome model.EscalationOutcome
	cand    *model.Candidate
}

func (f *fakeEscalator) Escalate(ctx context.Context, text string, history []model.Turn, local model.Candidate) (model.Candidate, *model.EscalationOutcome) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.history = history
	out := f.outcome
	if f.cand != nil {
		return *f.cand, &out
	}
	return local, &out
}

type failingStore struct{}

func (failingStore) Get(ctx context.Context, id string) (*model.Memory, error) {
	return nil, errors.New("redis: connection refused")
}

func (failingStore) Save(ctx context.Context, m *model.Memory) error {
	return errors.New("redis: connection refused")
}

type fixture struct {
	runner  Runner
	store   *memory.InMemoryStore
	history *repo.InMemoryConversationRepository
}

func newFixture(t *testing.T, esc *fakeEscalator) fixture {
	t.Helper()
	ix := catalog.NewIndex(catalog.NewSeedSource())
	store := memory.NewInMemoryStore(time.Hour, 100)
	t.Cleanup(func() { _ = store.Close() })
	history := repo.NewInMemoryConversationRepository(50, 100, time.Hour)

	cfg := Config{
		Memory:       store,
		History:      history,
		Sentiment:    sentiment.NewAnalyzer(),
		Classifier:   nlu.NewClassifier(nlu.NewDefaultEngine(), ix),
		Responder:    response.NewGenerator(ix, model.DefaultBusinessConfig()),
		HistoryLimit: 5,
	}
	if esc != nil {
		cfg.Escalator = esc
	}
	runner, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	return fixture{runner: runner, store: store, history: history}
}

func TestRunAnswersLocally(t *testing.T) {
	esc := &fakeEscalator{}
	f := newFixture(t, esc)
	ctx := context.Background()

	a, err := f.runner.Run(ctx, model.Inbound{CustomerID: "51900000001", Text: "hola, buenos días"})
	require.NoError(t, err)

	assert.Equal(t, model.IntentGreeting, a.Candidate.Intent)
	assert.NotEmpty(t, a.Reply)
	assert.Nil(t, a.Escalation)
	assert.Zero(t, esc.calls)

	mem, err := f.store.Get(ctx, "51900000001")
	require.NoError(t, err)
	assert.Equal(t, 1, mem.VisitCount)
	assert.Equal(t, model.IntentGreeting, mem.LastIntent)

	turns, err := f.history.Recent(ctx, "51900000001", 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, model.SenderCustomer, turns[0].Sender)
	assert.Equal(t, a.Reply, turns[1].Content)
}

func TestRunKeepsConversationState(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	id := "51900000002"

	_, err := f.runner.Run(ctx, model.Inbound{CustomerID: id, Text: "¿tienen leche gloria?"})
	require.NoError(t, err)
	a, err := f.runner.Run(ctx, model.Inbound{CustomerID: id, Text: "2"})
	require.NoError(t, err)

	assert.Equal(t, model.IntentSpecifyQuantity, a.Candidate.Intent)
	require.Len(t, a.Memory.CurrentOrder, 1)
	assert.Equal(t, "prod-004", a.Memory.CurrentOrder[0].Product.ID)
	assert.Contains(t, a.Reply, "S/ 9.00")

	mem, err := f.store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, mem.VisitCount)
	assert.Len(t, mem.CurrentOrder, 1)
}

func TestRunDeclinedProductIsNotOrdered(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	id := "51900000012"

	a, err := f.runner.Run(ctx, model.Inbound{CustomerID: id, Text: "¿tienen leche?"})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(a.Memory.LastProducts), 2)
	declined := a.Memory.LastProducts[0]

	a, err = f.runner.Run(ctx, model.Inbound{CustomerID: id, Text: "no"})
	require.NoError(t, err)
	assert.Equal(t, model.IntentChangeProduct, a.Candidate.Intent)
	assert.NotContains(t, a.Memory.LastProducts, declined)

	a, err = f.runner.Run(ctx, model.Inbound{CustomerID: id, Text: "1"})
	require.NoError(t, err)
	assert.Equal(t, model.IntentNumericSelection, a.Candidate.Intent)
	assert.Empty(t, a.Memory.CurrentOrder)
	require.NotNil(t, a.Memory.SelectedProduct)
	assert.NotEqual(t, declined.ID, a.Memory.SelectedProduct.ID)
}

func TestRunAcceptsStockOffer(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	id := "51900000013"

	_, err := f.runner.Run(ctx, model.Inbound{CustomerID: id, Text: "¿tienen leche gloria?"})
	require.NoError(t, err)
	a, err := f.runner.Run(ctx, model.Inbound{CustomerID: id, Text: "100"})
	require.NoError(t, err)
	assert.Contains(t, a.Reply, "¿Quieres llevar las 80?")
	assert.Empty(t, a.Memory.CurrentOrder)

	a, err = f.runner.Run(ctx, model.Inbound{CustomerID: id, Text: "sí"})
	require.NoError(t, err)
	assert.Equal(t, model.IntentSpecifyQuantity, a.Candidate.Intent)
	require.Len(t, a.Memory.CurrentOrder, 1)
	assert.Equal(t, "prod-004", a.Memory.CurrentOrder[0].Product.ID)
	assert.Equal(t, 80.0, a.Memory.CurrentOrder[0].Quantity)
	assert.Nil(t, a.Memory.PendingOffer)

	a, err = f.runner.Run(ctx, model.Inbound{CustomerID: id, Text: "sí"})
	require.NoError(t, err)
	assert.Len(t, a.Memory.CurrentOrder, 1, "an offer is accepted once")
}

func TestRunConfirmedOrderStartsNewHistory(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	id := "51900000014"

	for _, text := range []string{"¿tienen leche gloria?", "2"} {
		_, err := f.runner.Run(ctx, model.Inbound{CustomerID: id, Text: text})
		require.NoError(t, err)
	}
	turns, err := f.history.Recent(ctx, id, 10)
	require.NoError(t, err)
	require.Len(t, turns, 4)

	a, err := f.runner.Run(ctx, model.Inbound{CustomerID: id, Text: "confirmar pedido"})
	require.NoError(t, err)
	assert.Equal(t, model.IntentConfirmOrder, a.Candidate.Intent)
	assert.Empty(t, a.Memory.CurrentOrder)

	turns, err = f.history.Recent(ctx, id, 10)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "confirmar pedido", turns[0].Content)
	assert.Equal(t, a.Reply, turns[1].Content)
}

func TestRunEscalatesWeakReadings(t *testing.T) {
	esc := &fakeEscalator{outcome: model.EscalationOutcome{
		Status:        model.EscalationClarified,
		Clarification: "¿Me cuentas qué necesitas?",
	}}
	f := newFixture(t, esc)
	ctx := context.Background()
	id := "51900000003"

	_, err := f.runner.Run(ctx, model.Inbound{CustomerID: id, Text: "hola"})
	require.NoError(t, err)
	a, err := f.runner.Run(ctx, model.Inbound{CustomerID: id, Text: "qwerty zxcv"})
	require.NoError(t, err)

	assert.Equal(t, 1, esc.calls)
	assert.Len(t, esc.history, 2, "recent turns are handed to the escalator")
	require.NotNil(t, a.Escalation)
	assert.Equal(t, "¿Me cuentas qué necesitas?", a.Reply)
}

func TestRunUsesAcceptedEscalation(t *testing.T) {
	esc := &fakeEscalator{
		outcome: model.EscalationOutcome{Status: model.EscalationAccepted},
		cand:    &model.Candidate{Intent: model.IntentDelivery, Confidence: 0.9, Source: model.SourceEscalation},
	}
	f := newFixture(t, esc)

	a, err := f.runner.Run(context.Background(), model.Inbound{CustomerID: "51900000004", Text: "qwerty zxcv"})
	require.NoError(t, err)
	assert.Equal(t, model.IntentDelivery, a.Candidate.Intent)
	assert.Equal(t, model.IntentDelivery, a.Memory.LastIntent)
	assert.Contains(t, a.Reply, "Delivery")
}

func TestRunWithoutEscalator(t *testing.T) {
	f := newFixture(t, nil)
	a, err := f.runner.Run(context.Background(), model.Inbound{CustomerID: "51900000005", Text: "qwerty zxcv"})
	require.NoError(t, err)
	assert.Equal(t, model.IntentUnknown, a.Candidate.Intent)
	assert.NotEmpty(t, a.Reply)
}

func TestRunSurvivesStoreFailures(t *testing.T) {
	ix := catalog.NewIndex(catalog.NewSeedSource())
	runner, err := Build(context.Background(), Config{
		Memory:     failingStore{},
		Sentiment:  sentiment.NewAnalyzer(),
		Classifier: nlu.NewClassifier(nlu.NewDefaultEngine(), ix),
		Responder:  response.NewGenerator(ix, model.DefaultBusinessConfig()),
	})
	require.NoError(t, err)

	a, err := runner.Run(context.Background(), model.Inbound{CustomerID: "51900000006", Text: "hola"})
	require.NoError(t, err)
	assert.Equal(t, 1, a.Memory.VisitCount)
	assert.NotEmpty(t, a.Reply)
}

func TestBuildValidatesConfig(t *testing.T) {
	_, err := Build(context.Background(), Config{})
	assert.Error(t, err)
}
