// Package escalation asks an external chat model to read messages the local
// engine could not classify with confidence.
package escalation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/callbacks"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/catalog"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/metrics"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/inmaculada-bot/internal/core/error"
	logx "github.com/Chative-core-poc-v1/inmaculada-bot/pkg/logger"
)

// AcceptConfidence is the confidence an answer must exceed to replace the
// local reading.
const AcceptConfidence = 0.7

const (
	stepClassify = "classify"
	stepClarify  = "clarify"

	defaultTimeout = 8 * time.Second
	defaultUnit    = "unidad"
)

type Config struct {
	// ModelName keys the cost table.
	ModelName string
	Timeout   time.Duration
	Business  model.BusinessConfig
	// Index resolves product names the model mentions. Optional.
	Index *catalog.Index
	// Callbacks are attached to every chain run.
	Callbacks []callbacks.Handler
}

// Escalator runs two chains over one chat model: classify returns a
// structured reading, clarify writes a free-form clarifying question.
type Escalator struct {
	classify compose.Runnable[map[string]any, *model.EscalationResult]
	clarify  compose.Runnable[map[string]any, string]

	index     *catalog.Index
	business  model.BusinessConfig
	modelName string
	timeout   time.Duration
	handlers  []callbacks.Handler
}

func New(ctx context.Context, cm einomodel.BaseChatModel, cfg Config) (*Escalator, error) {
	if cm == nil {
		return nil, fmt.Errorf("chat model is nil")
	}
	e := &Escalator{
		index:     cfg.Index,
		business:  cfg.Business,
		modelName: cfg.ModelName,
		timeout:   cfg.Timeout,
		handlers:  cfg.Callbacks,
	}
	if e.timeout <= 0 {
		e.timeout = defaultTimeout
	}

	classify, err := compose.NewChain[map[string]any, *model.EscalationResult]().
		AppendChatTemplate(newClassifyTemplate(), compose.WithNodeName("classify_prompt")).
		AppendChatModel(cm, compose.WithNodeName("classify_model")).
		AppendLambda(compose.InvokableLambda(e.usageRecorder(stepClassify)), compose.WithNodeName("classify_usage")).
		AppendLambda(compose.InvokableLambda(parseAnswer), compose.WithNodeName("classify_parser")).
		Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile classify chain: %w", err)
	}

	clarify, err := compose.NewChain[map[string]any, string]().
		AppendChatTemplate(newClarifyTemplate(), compose.WithNodeName("clarify_prompt")).
		AppendChatModel(cm, compose.WithNodeName("clarify_model")).
		AppendLambda(compose.InvokableLambda(e.usageRecorder(stepClarify)), compose.WithNodeName("clarify_usage")).
		AppendLambda(compose.InvokableLambda(replyText), compose.WithNodeName("clarify_text")).
		Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile clarify chain: %w", err)
	}

	e.classify = classify
	e.clarify = clarify
	return e, nil
}

// Escalate consults the model once. It never fails: when the model is
// unreachable the local candidate is returned with an unavailable outcome.
// An accepted answer replaces the local candidate.
func (e *Escalator) Escalate(ctx context.Context, text string, history []model.Turn, local model.Candidate) (model.Candidate, *model.EscalationOutcome) {
	res, err := e.runClassify(ctx, e.vars(text, history, ""))
	if err != nil {
		logx.Warn().Err(err).Str("step", stepClassify).Msg("escalation unavailable")
		return local, e.outcome(&model.EscalationOutcome{Status: model.EscalationUnavailable})
	}

	if accepted(res) {
		return e.fold(ctx, local, res), e.outcome(&model.EscalationOutcome{Status: model.EscalationAccepted, Result: res})
	}

	var need string
	if res != nil {
		need = res.CustomerNeed
	}
	reply, err := e.runClarify(ctx, e.vars(text, history, need))
	if err != nil {
		logx.Warn().Err(err).Str("step", stepClarify).Msg("escalation unavailable")
		return local, e.outcome(&model.EscalationOutcome{Status: model.EscalationUnavailable, Result: res})
	}
	return local, e.outcome(&model.EscalationOutcome{Status: model.EscalationClarified, Result: res, Clarification: reply})
}

// accepted reports whether an answer may replace the local reading. An
// explicit "unknown" is never a reading.
func accepted(res *model.EscalationResult) bool {
	if res == nil || res.Confidence <= AcceptConfidence {
		return false
	}
	intent := model.IntentName(res.Intention)
	return intent.Known() && intent != model.IntentUnknown
}

func (e *Escalator) runClassify(ctx context.Context, vars map[string]any) (*model.EscalationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	res, err := e.classify.Invoke(ctx, vars, compose.WithCallbacks(e.handlers...))
	return res, errx.WrapEscalation(err)
}

func (e *Escalator) runClarify(ctx context.Context, vars map[string]any) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	reply, err := e.clarify.Invoke(ctx, vars, compose.WithCallbacks(e.handlers...))
	return reply, errx.WrapEscalation(err)
}

func (e *Escalator) vars(text string, history []model.Turn, need string) map[string]any {
	return map[string]any{
		varBusinessName: e.business.Name,
		varAddress:      e.business.Address,
		varPhone:        e.business.Phone,
		varWhatsApp:     e.business.WhatsApp,
		varIntents:      intentNames(),
		varNeed:         need,
		varMessage:      text,
		varHistory:      historyMessages(history),
	}
}

func (e *Escalator) outcome(o *model.EscalationOutcome) *model.EscalationOutcome {
	metrics.Escalations.WithLabelValues(string(o.Status)).Inc()
	return o
}

// fold turns an accepted answer into a candidate, keeping what the local
// extractor already found.
func (e *Escalator) fold(ctx context.Context, local model.Candidate, res *model.EscalationResult) model.Candidate {
	c := model.Candidate{
		Intent:      model.IntentName(res.Intention),
		Confidence:  res.Confidence,
		Entities:    local.Entities,
		ContextTags: []string{"escalation"},
		Source:      model.SourceEscalation,
		Payload: model.EscalationNote{
			Need:           res.CustomerNeed,
			SuggestedReply: res.SuggestedReply,
			FollowUp:       res.FollowUp,
			ProductName:    res.Product,
		},
	}
	if res.Product != "" {
		c.Entities.SearchTerm = catalog.CleanTerm(res.Product)
		if e.index != nil {
			if ps := e.index.Search(ctx, res.Product); len(ps) > 0 {
				p := ps[0]
				c.Entities.Product = &p
				c.Entities.Category = p.Category
			}
		}
	}
	if res.Quantity != nil {
		q := *res.Quantity
		c.Entities.Quantity = &q
		if c.Entities.Unit == "" {
			c.Entities.Unit = defaultUnit
		}
	}
	return c
}

// usageRecorder logs token usage and estimated cost of one model answer.
func (e *Escalator) usageRecorder(step string) func(context.Context, *schema.Message) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message) (*schema.Message, error) {
		if out == nil || out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
			return out, nil
		}
		usage := out.ResponseMeta.Usage
		inC, outC, totalC := model.ComputeCost(usage, model.ResolvePricing(e.modelName))

		metrics.LLMTokens.WithLabelValues(e.modelName, "prompt").Add(float64(usage.PromptTokens))
		metrics.LLMTokens.WithLabelValues(e.modelName, "completion").Add(float64(usage.CompletionTokens))
		metrics.LLMCostUSD.WithLabelValues(e.modelName).Add(totalC)

		logx.Debug().
			Str("step", step).
			Str("model", e.modelName).
			Int("prompt_tokens", usage.PromptTokens).
			Int("completion_tokens", usage.CompletionTokens).
			Int("total_tokens", usage.TotalTokens).
			Float64("input_cost_usd", inC).
			Float64("output_cost_usd", outC).
			Float64("total_cost_usd", totalC).
			Msg("LLM usage")
		return out, nil
	}
}

// parseAnswer yields nil for an answer that cannot be trusted; the caller
// then asks for a clarification instead.
func parseAnswer(ctx context.Context, msg *schema.Message) (*model.EscalationResult, error) {
	if msg == nil {
		return nil, nil
	}
	res, err := ParseResult(msg.Content)
	if err != nil {
		logx.Warn().Err(err).Msg("Error parsing escalation answer")
		return nil, nil
	}
	return res, nil
}

func replyText(ctx context.Context, msg *schema.Message) (string, error) {
	if msg == nil {
		return "", fmt.Errorf("empty clarification")
	}
	text := clip(strings.TrimSpace(msg.Content))
	if text == "" {
		return "", fmt.Errorf("empty clarification")
	}
	return text, nil
}
