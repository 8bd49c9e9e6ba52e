// Package response writes the Spanish reply for a resolved turn.
package response

import (
	"context"
	"time"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/catalog"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
)

// turn is what a handler sees. Handlers may mutate mem: show products,
// select one, add order lines.
type turn struct {
	cand      model.Candidate
	sentiment model.SentimentResult
	mem       *model.Memory
}

type handler func(ctx context.Context, t *turn) string

// Generator dispatches on the intent name. Intents that only make sense
// with memory fall back to a clarifying question without it.
type Generator struct {
	index    *catalog.Index
	business model.BusinessConfig
	now      func() time.Time
	handlers map[model.IntentName]handler
}

// NewGenerator wires the dispatch table. index may be nil, in which case
// product searches find nothing.
func NewGenerator(index *catalog.Index, business model.BusinessConfig) *Generator {
	g := &Generator{index: index, business: business, now: time.Now}
	g.handlers = map[model.IntentName]handler{
		model.IntentGreeting:         g.greeting,
		model.IntentProductInquiry:   g.productInquiry,
		model.IntentComparison:       g.comparison,
		model.IntentHours:            g.hours,
		model.IntentLocation:         g.location,
		model.IntentDelivery:         g.delivery,
		model.IntentPurchaseOrder:    g.purchaseOrder,
		model.IntentConfirmOrder:     g.confirmOrder,
		model.IntentCancelOrder:      g.cancelOrder,
		model.IntentComplaint:        g.complaint,
		model.IntentFarewell:         g.farewell,
		model.IntentProductConfirmed: g.productConfirmed,
		model.IntentChangeProduct:    g.changeProduct,
		model.IntentProductSelection: g.productSelection,
		model.IntentNumericSelection: g.numericSelection,
		model.IntentSpecifyQuantity:  g.specifyQuantity,
		model.IntentConfirmation:     g.confirmation,
		model.IntentNegation:         g.negation,
		model.IntentThanks:           g.thanks,
		model.IntentApology:          g.apology,
		model.IntentUnknown:          g.unknown,
	}
	return g
}

// Generate writes a.Reply and applies the reply's side effects to a.Memory.
func (g *Generator) Generate(ctx context.Context, a *model.Analysis) string {
	if a.Memory == nil {
		a.Memory = model.NewMemory(a.CustomerID, g.now())
	}
	t := &turn{cand: a.Candidate, sentiment: a.Sentiment, mem: a.Memory}

	switch {
	case a.Escalation != nil && a.Escalation.Status == model.EscalationClarified && t.cand.Source != model.SourceEscalation:
		a.Reply = a.Escalation.Clarification
	case t.cand.MultiIntent && len(t.cand.Alternatives) > 0:
		a.Reply = g.multiIntent(t)
	default:
		h, ok := g.handlers[t.cand.Intent]
		if !ok {
			h = g.unknown
		}
		a.Reply = h(ctx, t)
	}
	return a.Reply
}

func (g *Generator) search(ctx context.Context, term string) []model.Product {
	if g.index == nil || term == "" {
		return nil
	}
	return g.index.Search(ctx, term)
}

// localNow is the current time on the store's clock.
func (g *Generator) localNow() time.Time {
	return g.now().In(g.business.Location())
}
