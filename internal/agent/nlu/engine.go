package nlu

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/lexicon"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
)

const (
	pointsPerPriority = 25
	wholeMessageBonus = 20
	partialMatchBonus = 10
	perPatternBonus   = 10
	temporalBonus     = 8
	urgencyWordBonus  = 5
	importanceBonus   = 3
	urgencyCap        = 15
	lengthBandBonus   = 5
	questionBonus     = 8
	exampleFloor      = 92

	// MaxPatternConfidence leaves headroom above local matches.
	MaxPatternConfidence = 0.98
	// maxLearnedBoost bounds how far corrections can raise a priority.
	maxLearnedBoost = 2.0
)

var (
	urgencyWords    = []string{"urgente", "rápido", "inmediato", "ya", "ahora mismo", "pronto"}
	importanceWords = []string{"importante", "necesario", "imprescindible", "essential"}
	questionWords   = []string{"qué", "cuál", "cuándo", "dónde", "cómo", "por qué", "para qué", "quién"}
)

// Match is one intent recognized by its patterns.
type Match struct {
	Intent      model.IntentName
	Confidence  float64
	Pattern     string
	ContextTags []string
	// Span is the byte range of the first matching pattern in the
	// lower-cased message; Spans holds every occurrence of every matching
	// pattern.
	Span  [2]int
	Spans [][2]int
	// Capture is the product phrase for capturing intents; CaptureSpan is
	// its byte range, or {-1,-1}.
	Capture     string
	CaptureSpan [2]int
	Captures    bool
}

type compiledIntent struct {
	def      Definition
	patterns []*regexp.Regexp
	examples map[string]bool
}

// Engine scores a message against every intent definition. Priorities can
// be raised at runtime by the learner; everything else is immutable.
type Engine struct {
	intents []compiledIntent

	mu    sync.RWMutex
	boost map[model.IntentName]float64
}

// NewEngine compiles the definitions. Patterns are matched case-insensitively.
func NewEngine(defs []Definition) (*Engine, error) {
	e := &Engine{boost: map[model.IntentName]float64{}}
	for _, d := range defs {
		ci := compiledIntent{def: d, examples: map[string]bool{}}
		for _, p := range d.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("intent %s: %w", d.Name, err)
			}
			ci.patterns = append(ci.patterns, re)
		}
		for _, ex := range d.Examples {
			ci.examples[normalizeExample(ex)] = true
		}
		e.intents = append(e.intents, ci)
	}
	return e, nil
}

// NewDefaultEngine builds the engine for DefaultDefinitions.
func NewDefaultEngine() *Engine {
	e, err := NewEngine(DefaultDefinitions())
	if err != nil {
		panic(err)
	}
	return e
}

// Match returns one scored match per intent that recognizes text, in
// definition order. It never selects a winner.
func (e *Engine) Match(text string) []Match {
	lower := lexicon.Lower(strings.TrimSpace(text))
	t := lexicon.NewText(lower)
	bare := normalizeExample(lower)

	e.mu.RLock()
	defer e.mu.RUnlock()

	var out []Match
	for _, ci := range e.intents {
		m, ok := e.score(ci, lower, bare, t)
		if ok {
			out = append(out, m)
		}
	}
	return out
}

func (e *Engine) score(ci compiledIntent, lower, bare string, t lexicon.Text) (Match, bool) {
	m := Match{
		Intent:      ci.def.Name,
		ContextTags: ci.def.ContextTags,
		Captures:    ci.def.Captures,
		Span:        [2]int{-1, -1},
		CaptureSpan: [2]int{-1, -1},
	}

	var score float64
	matched := 0
	for i, re := range ci.patterns {
		loc := re.FindStringSubmatchIndex(lower)
		if loc == nil {
			continue
		}
		matched++
		for _, l := range re.FindAllStringIndex(lower, -1) {
			m.Spans = append(m.Spans, [2]int{l[0], l[1]})
		}
		if matched > 1 {
			continue
		}
		m.Pattern = ci.def.Patterns[i]
		m.Span = [2]int{loc[0], loc[1]}
		if ci.def.Captures && len(loc) >= 6 && loc[4] >= 0 {
			m.CaptureSpan = [2]int{loc[4], loc[5]}
			m.Capture = strings.TrimSpace(lower[loc[4]:loc[5]])
		}

		score += (ci.def.Priority + e.boost[ci.def.Name]) * pointsPerPriority
		switch {
		case loc[0] == 0 && loc[1] == len(lower):
			score += wholeMessageBonus
		case utf8.RuneCountInString(lower[loc[0]:loc[1]]) > 3:
			score += partialMatchBonus
		}
	}

	if matched > 0 {
		if matched > 1 {
			score += float64(matched * perPatternBonus)
		}
		score += temporalScore(t, ci.def.Temporal)
		score += urgencyScore(t)
		if n := utf8.RuneCountInString(lower); n > 10 && n < 100 {
			score += lengthBandBonus
		}
		if isQuestion(lower) {
			score += questionBonus
		}
	}

	if ci.examples[bare] {
		score = math.Max(score, exampleFloor)
	} else if matched == 0 {
		return Match{}, false
	}

	m.Confidence = math.Min(score/100, MaxPatternConfidence)
	return m, true
}

// AdjustPriority raises (or lowers) an intent's learned priority boost.
func (e *Engine) AdjustPriority(name model.IntentName, delta float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b := e.boost[name] + delta
	e.boost[name] = math.Max(-maxLearnedBoost, math.Min(b, maxLearnedBoost))
}

// Priority returns the effective priority of an intent, or 0 when it has
// no patterns.
func (e *Engine) Priority(name model.IntentName) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, ci := range e.intents {
		if ci.def.Name == name {
			return ci.def.Priority + e.boost[name]
		}
	}
	return 0
}

// Definitions returns the definitions the engine was built from.
func (e *Engine) Definitions() []Definition {
	out := make([]Definition, len(e.intents))
	for i, ci := range e.intents {
		out[i] = ci.def
	}
	return out
}

func temporalScore(t lexicon.Text, words []string) float64 {
	for _, w := range words {
		if t.Has(w) {
			return temporalBonus
		}
	}
	return 0
}

func urgencyScore(t lexicon.Text) float64 {
	s := urgencyWordBonus*t.Count(urgencyWords) + importanceBonus*t.Count(importanceWords)
	return math.Min(float64(s), urgencyCap)
}

func isQuestion(lower string) bool {
	if strings.ContainsAny(lower, "?¿") {
		return true
	}
	for _, w := range questionWords {
		if strings.HasPrefix(lower, w) {
			return true
		}
	}
	return false
}

// normalizeExample drops punctuation and extra spaces so "¡Hola!" equals
// "hola".
func normalizeExample(s string) string {
	return strings.Join(lexicon.Tokens(s), " ")
}
