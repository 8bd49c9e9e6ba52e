package escalation

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/inmaculada-bot/internal/core/error"
	logx "github.com/Chative-core-poc-v1/inmaculada-bot/pkg/logger"
)

// basic safety limits to avoid pathological model output
const (
	maxContentLen = 16 * 1024
	maxFieldLen   = 600 // runes kept per free-text field
	maxQuantity   = 1000
	maxErrSnippet = 200
)

type rawResult struct {
	Intention      string          `json:"intention"`
	Confidence     json.RawMessage `json:"confidence"`
	Product        string          `json:"product"`
	Quantity       json.RawMessage `json:"quantity"`
	CustomerNeed   string          `json:"customer_need"`
	SuggestedReply string          `json:"suggested_reply"`
	FollowUp       string          `json:"follow_up_question"`
}

// ParseResult reads the first JSON object in a model answer. Code fences and
// surrounding prose are ignored. The intent must be one the assistant knows
// and the confidence must lie in [0, 1].
func ParseResult(content string) (res *model.EscalationResult, err error) {
	// panic safety
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "escalation_parser").Msgf("panic recovered: %v", r)
			err = errx.New(fmt.Errorf("escalation parser panic"), http.StatusInternalServerError, errx.SystemErrorMessage)
			res = nil
		}
	}()

	if len(content) > maxContentLen {
		logx.Warn().
			Str("component", "escalation_parser").
			Int("max_len", maxContentLen).
			Int("orig_len", len(content)).
			Msg("content truncated due to size limit")
		content = content[:maxContentLen]
	}
	if !utf8.ValidString(content) {
		content = strings.ToValidUTF8(content, "")
	}

	start := strings.IndexByte(content, '{')
	if start < 0 {
		return nil, errx.WrapParse(fmt.Errorf("no json object in %q", safeSnippet(content)))
	}
	var raw rawResult
	if err := json.NewDecoder(strings.NewReader(content[start:])).Decode(&raw); err != nil {
		return nil, errx.WrapParse(fmt.Errorf("decode %q: %w", safeSnippet(content[start:]), err))
	}

	intent := model.IntentName(strings.ToLower(strings.TrimSpace(raw.Intention)))
	if !intent.Known() {
		return nil, errx.WrapParse(fmt.Errorf("unknown intent %q", safeSnippet(raw.Intention)))
	}
	conf, err := parseNumberInRange(raw.Confidence, "confidence", 0, 1)
	if err != nil {
		return nil, errx.WrapParse(err)
	}

	res = &model.EscalationResult{
		Intention:      string(intent),
		Confidence:     conf,
		Product:        clip(raw.Product),
		CustomerNeed:   clip(raw.CustomerNeed),
		SuggestedReply: clip(raw.SuggestedReply),
		FollowUp:       clip(raw.FollowUp),
	}
	// A quantity the model got wrong is dropped, the rest of the answer stays.
	if len(raw.Quantity) > 0 && string(raw.Quantity) != "null" {
		if q, qerr := parseNumberInRange(raw.Quantity, "quantity", 0, maxQuantity); qerr == nil && q > 0 {
			res.Quantity = &q
		}
	}
	return res, nil
}

// parseNumberInRange accepts a JSON number or a numeric string.
func parseNumberInRange(raw json.RawMessage, name string, min, max float64) (float64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, fmt.Errorf("%s missing", name)
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse: %w", name, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s invalid number", name)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%s out of range", name)
	}
	return v, nil
}

func clip(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= maxFieldLen {
		return s
	}
	return string([]rune(s)[:maxFieldLen])
}

func safeSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrSnippet {
		return s
	}
	return s[:maxErrSnippet]
}
