package sentiment

import (
	"math"
	"strings"
	"unicode"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/lexicon"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
)

const (
	exclamationPositiveBoost = 0.5
	exclamationNegativeBoost = 0.3
	shoutingRatio            = 0.3
	complaintCapsRatio       = 0.2
	shoutingNegativeBoost    = 0.5
)

// Analyzer scores emotional valence from a fixed Spanish lexicon. It keeps no
// state and is safe for concurrent use.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze classifies text. Word hits are whole-word matches; exclamation
// marks and shouting adjust the scores before the rules run.
func (a *Analyzer) Analyze(text string) model.SentimentResult {
	t := lexicon.NewText(text)

	positiveHits := t.Count(positiveWords)
	sig := model.SentimentSignals{
		Positive:     float64(positiveHits),
		Negative:     float64(t.Count(negativeWords)),
		Neutral:      float64(t.Count(neutralWords)),
		Urgency:      t.Count(urgencyWords),
		Exclamations: strings.Count(text, "!"),
		CapsRatio:    capsRatio(text),
	}
	distress := t.Count(distressWords)

	if sig.Exclamations > 1 {
		sig.Positive += exclamationPositiveBoost
		sig.Negative += exclamationNegativeBoost
	}
	if sig.CapsRatio > shoutingRatio {
		sig.Urgency++
		sig.Negative += shoutingNegativeBoost
	}

	res := model.SentimentResult{
		Sentiment:  model.SentimentNeutral,
		Emotion:    model.EmotionNeutral,
		Confidence: 0.5,
		Signals:    sig,
	}

	switch {
	case sig.Urgency > 0 && sig.CapsRatio > shoutingRatio && positiveHits == 0:
		res.Sentiment = model.SentimentNegative
		res.Emotion = model.EmotionNegativeUrgent
		res.Confidence = math.Min(0.6+float64(sig.Urgency)*0.2, 0.9)

	case sig.Negative > 0 && sig.CapsRatio > complaintCapsRatio && sig.Exclamations > 1:
		res.Sentiment = model.SentimentNegative
		res.Emotion = model.EmotionVeryNegative
		res.Confidence = math.Min(0.7+sig.Negative*0.15, 0.95)

	case sig.Positive > sig.Negative && sig.Positive > sig.Neutral:
		res.Sentiment = model.SentimentPositive
		res.Confidence = math.Min(sig.Positive/3, 0.95)
		switch {
		case sig.Urgency > 0:
			res.Emotion = model.EmotionPositiveUrgent
		case sig.Positive > 2:
			res.Emotion = model.EmotionVeryPositive
		default:
			res.Emotion = model.EmotionPositive
		}

	case sig.Negative > sig.Positive && sig.Negative > sig.Neutral:
		res.Sentiment = model.SentimentNegative
		res.Confidence = math.Min(sig.Negative/3, 0.95)
		switch {
		case sig.Urgency > 0 || distress > 1:
			res.Emotion = model.EmotionNegativeUrgent
		case sig.Negative > 2:
			res.Emotion = model.EmotionVeryNegative
		default:
			res.Emotion = model.EmotionNegative
		}

	case sig.Neutral > 0:
		res.Confidence = math.Min(sig.Neutral/2, 0.8)
	}

	if sig.Urgency > 0 && res.Sentiment == model.SentimentNeutral {
		res.Emotion = model.EmotionUrgentNeutral
		res.Confidence = math.Max(res.Confidence, 0.6)
	}

	return res
}

// capsRatio is upper-case letters over all letters.
func capsRatio(s string) float64 {
	var letters, upper int
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(upper) / float64(letters)
}
