// Package memory keeps per-customer conversational state between turns.
package memory

import (
	"time"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
)

// Apply records a resolved turn: one more visit, the intent, the sentiment
// and the category interest it showed.
func Apply(m *model.Memory, c model.Candidate, s model.SentimentResult, now time.Time) {
	m.VisitCount++
	m.PendingOffer = nil
	if c.Intent.Known() {
		m.LastIntent = c.Intent
	}
	if cat := c.Entities.Category; cat != "" {
		if m.Preferences == nil {
			m.Preferences = map[string]int{}
		}
		m.Preferences[cat]++
	}

	m.SentimentHistory = append(m.SentimentHistory, model.SentimentRecord{
		Sentiment: s.Sentiment,
		Emotion:   s.Emotion,
		At:        now,
	})
	if n := len(m.SentimentHistory); n > model.MaxSentimentHistory {
		m.SentimentHistory = append([]model.SentimentRecord(nil), m.SentimentHistory[n-model.MaxSentimentHistory:]...)
	}
	if len(m.LastProducts) > model.MaxLastProducts {
		m.LastProducts = m.LastProducts[:model.MaxLastProducts]
	}
	m.UpdatedAt = now
}
