package nlu

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/lexicon"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/inmaculada-bot/pkg/logger"
)

const (
	learnThreshold      = 0.8
	frequentPattern     = 5
	patternStep         = 0.05
	maxPatternConf      = 0.95
	maxLearnedPatterns  = 1000
	correctionsToAdjust = 3
	correctionBoost     = 0.5
)

var stopPhrases = map[string]bool{
	"de la": true, "en el": true, "por la": true, "para el": true, "con el": true,
}

// Stats summarizes what the assistant has seen so far.
type Stats struct {
	Total                 int                          `json:"total"`
	Successful            int                          `json:"successful"`
	Failed                int                          `json:"failed"`
	AverageConfidence     float64                      `json:"average_confidence"`
	SentimentDistribution map[model.SentimentClass]int `json:"sentiment_distribution"`
	IntentCounts          map[model.IntentName]int     `json:"intent_counts"`
	LearnedPatterns       int                          `json:"learned_patterns"`
	Corrections           int                          `json:"corrections"`
}

// LearnedPattern is a key-phrase combination seen with a confident intent.
type LearnedPattern struct {
	Key        string           `json:"key"`
	Intent     model.IntentName `json:"intent"`
	Frequency  int              `json:"frequency"`
	Confidence float64          `json:"confidence"`
	LastSeen   time.Time        `json:"last_seen"`
}

type correction struct {
	from, to model.IntentName
}

// Learner records interaction statistics and customer corrections. Three
// identical corrections raise the corrected intent's priority.
type Learner struct {
	engine *Engine
	now    func() time.Time

	mu          sync.Mutex
	stats       Stats
	confSum     float64
	patterns    *simplelru.LRU[string, *LearnedPattern] // least recently seen dropped first
	corrections map[correction]int
}

func NewLearner(engine *Engine) *Learner {
	patterns, err := simplelru.NewLRU[string, *LearnedPattern](maxLearnedPatterns, nil)
	if err != nil {
		panic(err)
	}
	return &Learner{
		engine: engine,
		now:    time.Now,
		stats: Stats{
			SentimentDistribution: map[model.SentimentClass]int{},
			IntentCounts:          map[model.IntentName]int{},
		},
		patterns:    patterns,
		corrections: map[correction]int{},
	}
}

// Observe records one processed message.
func (l *Learner) Observe(text string, c model.Candidate, s model.SentimentResult) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stats.Total++
	l.stats.Successful++
	l.confSum += c.Confidence
	l.stats.AverageConfidence = l.confSum / float64(l.stats.Total)
	l.stats.SentimentDistribution[s.Sentiment]++
	l.stats.IntentCounts[c.Intent]++

	if c.Confidence > learnThreshold {
		l.learn(text, c)
	}
}

func (l *Learner) learn(text string, c model.Candidate) {
	phrases := KeyPhrases(text)
	if len(phrases) == 0 {
		return
	}
	key := strings.Join(phrases, "|")
	p, ok := l.patterns.Get(key)
	if !ok {
		p = &LearnedPattern{Key: key}
		l.patterns.Add(key, p)
	}
	p.Frequency++
	p.Intent = c.Intent
	p.Confidence = math.Max(p.Confidence, c.Confidence)
	p.LastSeen = l.now()
	if p.Frequency >= frequentPattern {
		p.Confidence = math.Min(p.Confidence+patternStep, maxPatternConf)
	}
	l.stats.LearnedPatterns = l.patterns.Len()
}

// Correct records that a message resolved as from should have been to.
func (l *Learner) Correct(text string, from, to model.IntentName) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stats.Successful > 0 {
		l.stats.Successful--
	}
	l.stats.Failed++
	l.stats.Corrections++

	k := correction{from: from, to: to}
	l.corrections[k]++
	n := l.corrections[k]
	if n >= correctionsToAdjust && l.engine != nil {
		l.engine.AdjustPriority(to, correctionBoost)
		logx.Info().
			Str("from", from.String()).
			Str("to", to.String()).
			Int("corrections", n).
			Float64("priority", l.engine.Priority(to)).
			Msg("intent priority adjusted from corrections")
	}
}

// Stats returns a copy of the current statistics.
func (l *Learner) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.stats
	s.SentimentDistribution = make(map[model.SentimentClass]int, len(l.stats.SentimentDistribution))
	for k, v := range l.stats.SentimentDistribution {
		s.SentimentDistribution[k] = v
	}
	s.IntentCounts = make(map[model.IntentName]int, len(l.stats.IntentCounts))
	for k, v := range l.stats.IntentCounts {
		s.IntentCounts[k] = v
	}
	return s
}

// Patterns returns up to limit learned patterns, most frequent first.
func (l *Learner) Patterns(limit int) []LearnedPattern {
	l.mu.Lock()
	all := make([]LearnedPattern, 0, l.patterns.Len())
	for _, p := range l.patterns.Values() {
		all = append(all, *p)
	}
	l.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Frequency != all[j].Frequency {
			return all[i].Frequency > all[j].Frequency
		}
		return all[i].Key < all[j].Key
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

// KeyPhrases returns the message's word bigrams and trigrams, skipping
// bigrams made only of function words.
func KeyPhrases(text string) []string {
	words := lexicon.Tokens(text)
	var out []string
	for i := 0; i+1 < len(words); i++ {
		bi := words[i] + " " + words[i+1]
		if !stopPhrases[bi] {
			out = append(out, bi)
		}
		if i+2 < len(words) {
			out = append(out, bi+" "+words[i+2])
		}
	}
	return out
}
