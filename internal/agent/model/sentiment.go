package model

type SentimentClass string

const (
	SentimentPositive SentimentClass = "positive"
	SentimentNegative SentimentClass = "negative"
	SentimentNeutral  SentimentClass = "neutral"
)

type Emotion string

const (
	EmotionVeryPositive   Emotion = "very_positive"
	EmotionPositive       Emotion = "positive"
	EmotionPositiveUrgent Emotion = "positive_urgent"
	EmotionNegative       Emotion = "negative"
	EmotionVeryNegative   Emotion = "very_negative"
	EmotionNegativeUrgent Emotion = "negative_urgent"
	EmotionNeutral        Emotion = "neutral"
	EmotionUrgentNeutral  Emotion = "urgent_neutral"
)

// SentimentSignals are the raw counts behind a classification.
type SentimentSignals struct {
	Positive     float64 `json:"positive"`
	Negative     float64 `json:"negative"`
	Neutral      float64 `json:"neutral"`
	Urgency      int     `json:"urgency"`
	Exclamations int     `json:"exclamations"`
	CapsRatio    float64 `json:"caps_ratio"`
}

type SentimentResult struct {
	Sentiment  SentimentClass   `json:"sentiment"`
	Emotion    Emotion          `json:"emotion"`
	Confidence float64          `json:"confidence"`
	Signals    SentimentSignals `json:"signals"`
}

// NeutralSentiment is the result for messages with no signal at all.
func NeutralSentiment() SentimentResult {
	return SentimentResult{Sentiment: SentimentNeutral, Emotion: EmotionNeutral, Confidence: 0.5}
}
