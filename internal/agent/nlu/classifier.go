package nlu

import (
	"context"
	"sort"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/catalog"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/lexicon"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/inmaculada-bot/pkg/logger"
)

// EscalationThreshold is the confidence below which a reading should be
// confirmed by an external model.
const EscalationThreshold = 0.6

// Classifier turns a message and the customer's memory into one resolved
// candidate.
type Classifier struct {
	engine    *Engine
	index     *catalog.Index
	extractor *Extractor
}

func NewClassifier(engine *Engine, index *catalog.Index) *Classifier {
	return &Classifier{engine: engine, index: index, extractor: NewExtractor(index)}
}

// Engine exposes the pattern engine, mainly for the learner.
func (c *Classifier) Engine() *Engine {
	return c.engine
}

// Classify never fails: an unrecognized message yields IntentUnknown.
// mem is read, never modified.
func (c *Classifier) Classify(ctx context.Context, text string, mem *model.Memory) model.Candidate {
	if mem == nil {
		mem = &model.Memory{}
	}
	if c.index != nil {
		// Without a catalog extraction finds no products; the next message
		// retries the load.
		_ = c.index.Ensure(ctx)
	}

	t := lexicon.NewText(text)
	base := c.extractor.Extract(t, "")

	matches := dropShadowed(c.engine.Match(text))
	candidates := make([]model.Candidate, 0, len(matches)+2)
	productPhrase := false
	for _, m := range matches {
		ents := base
		if m.Capture != "" {
			ents = c.extractor.Extract(t, m.Capture)
			productPhrase = true
		}
		candidates = append(candidates, model.Candidate{
			Intent:      m.Intent,
			Confidence:  m.Confidence,
			Pattern:     m.Pattern,
			Entities:    ents,
			ContextTags: m.ContextTags,
			Source:      model.SourcePattern,
		})
	}

	if imp, ok := implicitIntent(t); ok {
		imp.Entities = base
		candidates = append(candidates, imp)
	}

	var (
		ctxCand model.Candidate
		ok      bool
	)
	if len(matches) == 0 {
		ctxCand, ok = resolveContext(t, mem)
	} else {
		ctxCand, ok = continueFlow(t, mem, productPhrase)
	}
	if ok {
		ctxCand.Entities = base
		candidates = append(candidates, ctxCand)
	}

	if len(candidates) == 0 {
		return model.Candidate{
			Intent:      model.IntentUnknown,
			Confidence:  UnknownConfidence,
			Entities:    base,
			ContextTags: []string{"general"},
			Source:      model.SourceFallback,
		}
	}

	// On equal confidence the conversation's own reading goes first, so a
	// "no" after a product list changes the product instead of being a
	// generic negation.
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return a.Source == model.SourceContext && b.Source != model.SourceContext
	})

	winner := candidates[0]
	if winner.Source != model.SourceContext {
		winner = Disambiguate(candidates)
	}
	logx.Debug().
		Str("intent", winner.Intent.String()).
		Float64("confidence", winner.Confidence).
		Str("source", string(winner.Source)).
		Int("candidates", len(candidates)).
		Msg("message classified")
	return winner
}

// NeedsEscalation reports whether a local reading is too weak to answer.
func NeedsEscalation(c model.Candidate) bool {
	return c.Intent == model.IntentUnknown || c.Confidence < EscalationThreshold
}

// dropShadowed removes product-phrase matches whose captured phrase is
// really a service topic, as in "hay delivery?" or "quiero saber el horario".
func dropShadowed(matches []Match) []Match {
	out := matches[:0:0]
	for _, m := range matches {
		if m.Captures && shadowed(m, matches) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func shadowed(m Match, all []Match) bool {
	if m.CaptureSpan[0] < 0 {
		return false
	}
	for _, o := range all {
		if !serviceTopics[o.Intent] {
			continue
		}
		for _, sp := range o.Spans {
			if sp[0] < m.CaptureSpan[1] && sp[1] > m.CaptureSpan[0] {
				return true
			}
		}
	}
	return false
}
