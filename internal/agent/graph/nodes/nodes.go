package nodes

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/memory"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/nlu"
	logx "github.com/Chative-core-poc-v1/inmaculada-bot/pkg/logger"
)

const (
	NodeLoad     = "load"
	NodeAnalyze  = "analyze"
	NodeEscalate = "escalate"
	NodeRemember = "remember"
	NodeRespond  = "respond"
	NodeRecord   = "record"
)

type SentimentAnalyzer interface {
	Analyze(text string) model.SentimentResult
}

type Classifier interface {
	Classify(ctx context.Context, text string, mem *model.Memory) model.Candidate
}

type Escalator interface {
	Escalate(ctx context.Context, text string, history []model.Turn, local model.Candidate) (model.Candidate, *model.EscalationOutcome)
}

type Responder interface {
	Generate(ctx context.Context, a *model.Analysis) string
}

// TurnState is the graph-local state of one message.
type TurnState struct {
	CustomerID string
	StartedAt  time.Time
	Escalated  bool
}

// NewLoadPreHandler seeds the turn state.
func NewLoadPreHandler(now func() time.Time) func(context.Context, model.Inbound, *TurnState) (model.Inbound, error) {
	return func(ctx context.Context, in model.Inbound, s *TurnState) (model.Inbound, error) {
		s.CustomerID = in.CustomerID
		s.StartedAt = now()
		s.Escalated = false
		return in, nil
	}
}

// NewLoadNode fetches the customer's memory and recent turns. Store failures
// degrade to a fresh record and an empty history.
func NewLoadNode(store model.MemoryStore, history model.ConversationRepository, historyLimit int, now func() time.Time) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.Inbound) (*model.Analysis, error) {
		a := &model.Analysis{CustomerID: in.CustomerID, Text: in.Text}

		mem, err := store.Get(ctx, in.CustomerID)
		if err != nil || mem == nil {
			logx.Error().Err(err).Str("customer_id", in.CustomerID).Msg("Error loading customer memory; starting fresh")
			mem = model.NewMemory(in.CustomerID, now())
		}
		a.Memory = mem

		if history != nil && historyLimit > 0 {
			turns, err := history.Recent(ctx, in.CustomerID, historyLimit)
			if err != nil {
				logx.Warn().Err(err).Str("customer_id", in.CustomerID).Msg("Error loading conversation history")
			}
			a.History = turns
		}
		return a, nil
	})
}

// NewAnalyzeNode runs sentiment and intent classification. Both read the
// memory as it was before this message.
func NewAnalyzeNode(sentiment SentimentAnalyzer, classifier Classifier) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, a *model.Analysis) (*model.Analysis, error) {
		a.Sentiment = sentiment.Analyze(a.Text)
		a.Candidate = classifier.Classify(ctx, a.Text, a.Memory)
		return a, nil
	})
}

// NewEscalationCondition routes weak readings to the external model.
func NewEscalationCondition() func(context.Context, *model.Analysis) (string, error) {
	return func(ctx context.Context, a *model.Analysis) (string, error) {
		if nlu.NeedsEscalation(a.Candidate) {
			logx.Debug().
				Str("customer_id", a.CustomerID).
				Str("intent", a.Candidate.Intent.String()).
				Float64("confidence", a.Candidate.Confidence).
				Msg("Routing to escalation - local confidence too low")
			return NodeEscalate, nil
		}
		return NodeRemember, nil
	}
}

func NewEscalateNode(esc Escalator) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, a *model.Analysis) (*model.Analysis, error) {
		a.Candidate, a.Escalation = esc.Escalate(ctx, a.Text, a.History, a.Candidate)
		return a, nil
	})
}

// NewEscalatePostHandler marks the turn as escalated.
func NewEscalatePostHandler() func(context.Context, *model.Analysis, *TurnState) (*model.Analysis, error) {
	return func(ctx context.Context, out *model.Analysis, s *TurnState) (*model.Analysis, error) {
		s.Escalated = true
		if out.Escalation != nil {
			logx.Debug().
				Str("customer_id", s.CustomerID).
				Str("outcome", string(out.Escalation.Status)).
				Str("intent", out.Candidate.Intent.String()).
				Msg("Escalation finished")
		}
		return out, nil
	}
}

// NewRememberNode folds the resolved turn into the customer's memory before
// the reply is written, so the reply sees this visit.
func NewRememberNode(now func() time.Time) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, a *model.Analysis) (*model.Analysis, error) {
		memory.Apply(a.Memory, a.Candidate, a.Sentiment, now())
		return a, nil
	})
}

func NewRespondNode(resp Responder) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, a *model.Analysis) (*model.Analysis, error) {
		if reply := resp.Generate(ctx, a); reply == "" {
			return nil, fmt.Errorf("empty reply for intent %s", a.Candidate.Intent)
		}
		return a, nil
	})
}

// NewRecordNode persists the memory and appends both sides of the exchange
// to the history. Confirming or cancelling an order starts a new history.
// Persistence failures are logged; the reply still goes out.
func NewRecordNode(store model.MemoryStore, history model.ConversationRepository, now func() time.Time) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, a *model.Analysis) (*model.Analysis, error) {
		if err := store.Save(ctx, a.Memory); err != nil {
			logx.Error().Err(err).Str("customer_id", a.CustomerID).Msg("Error saving customer memory")
		}

		if history != nil {
			switch a.Candidate.Intent {
			case model.IntentConfirmOrder, model.IntentCancelOrder:
				if err := history.Clear(ctx, a.CustomerID); err != nil {
					logx.Error().Err(err).Str("customer_id", a.CustomerID).Msg("Error clearing conversation history")
				}
			}
			at := now()
			turns := []model.Turn{
				{Sender: model.SenderCustomer, Content: a.Text, Intent: a.Candidate.Intent, Timestamp: at},
				{Sender: model.SenderBot, Content: a.Reply, Intent: a.Candidate.Intent, Timestamp: at},
			}
			for _, t := range turns {
				if err := history.AddTurn(ctx, a.CustomerID, t); err != nil {
					logx.Error().Err(err).Str("customer_id", a.CustomerID).Msg("Error saving conversation turn")
					break
				}
			}
		}

		var (
			started   time.Time
			escalated bool
		)
		_ = compose.ProcessState(ctx, func(_ context.Context, s *TurnState) error {
			started, escalated = s.StartedAt, s.Escalated
			return nil
		})
		logx.Debug().
			Str("customer_id", a.CustomerID).
			Str("intent", a.Candidate.Intent.String()).
			Int("visit_count", a.Memory.VisitCount).
			Bool("escalated", escalated).
			Dur("elapsed", now().Sub(started)).
			Msg("Turn recorded")
		return a, nil
	})
}
