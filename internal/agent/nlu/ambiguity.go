package nlu

import (
	"math"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
)

const (
	ambiguousTop    = 0.6
	ambiguousSecond = 0.5
	ambiguousCap    = 0.85
	// confidentWinner suppresses alternatives for a winner that is already
	// clear on its own.
	confidentWinner = 0.7
)

// Disambiguate picks the winner among candidates sorted by confidence. When
// the two best are comparably strong the most specific business intent
// wins, its confidence capped to reflect the doubt.
func Disambiguate(candidates []model.Candidate) model.Candidate {
	if len(candidates) == 0 {
		return model.Candidate{Intent: model.IntentUnknown, Confidence: UnknownConfidence, Source: model.SourceFallback}
	}
	top := candidates[0]
	if len(candidates) < 2 || top.Confidence < ambiguousTop || candidates[1].Confidence < ambiguousSecond {
		return top
	}

	pair := candidates[:2]
	for _, name := range specificity {
		for i, c := range pair {
			if c.Intent != name {
				continue
			}
			winner := c
			winner.Confidence = math.Min(winner.Confidence, ambiguousCap)
			if winner.Confidence <= confidentWinner {
				winner.MultiIntent = true
				winner.Alternatives = []model.Candidate{pair[1-i]}
			}
			return winner
		}
	}
	return top
}
