package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		sentiment  model.SentimentClass
		emotion    model.Emotion
		confidence float64
	}{
		{"shouted urgency", "URGENTE necesito ayuda!!!", model.SentimentNegative, model.EmotionNegativeUrgent, 0.9},
		{"praise", "Excelente servicio, me encanta, gracias", model.SentimentPositive, model.EmotionVeryPositive, 0.95},
		{"plain complaint", "El producto llegó roto, muy malo", model.SentimentNegative, model.EmotionNegative, 2.0 / 3},
		{"hesitation", "tal vez mañana", model.SentimentNeutral, model.EmotionNeutral, 0.5},
		{"urgent request", "necesito arroz ahora", model.SentimentNeutral, model.EmotionUrgentNeutral, 0.6},
		{"no signal", "hola", model.SentimentNeutral, model.EmotionNeutral, 0.5},
	}

	a := NewAnalyzer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Analyze(tt.text)
			assert.Equal(t, tt.sentiment, got.Sentiment)
			assert.Equal(t, tt.emotion, got.Emotion)
			assert.InDelta(t, tt.confidence, got.Confidence, 1e-9)
		})
	}
}

func TestAnalyzeShoutedComplaint(t *testing.T) {
	got := NewAnalyzer().Analyze("Muy MALO el servicio!! Estoy molesto")

	assert.Equal(t, model.SentimentNegative, got.Sentiment)
	assert.Equal(t, model.EmotionVeryNegative, got.Emotion)
	assert.Equal(t, 2, got.Signals.Exclamations)
}

func TestWholeWordMatching(t *testing.T) {
	// "yape" must not count as the urgency word "ya".
	got := NewAnalyzer().Analyze("pago con yape")
	assert.Zero(t, got.Signals.Urgency)
	assert.Equal(t, model.EmotionNeutral, got.Emotion)
}

func TestCapsRatioIgnoresNonLetters(t *testing.T) {
	assert.InDelta(t, 1.0, capsRatio("OK!!! 123"), 1e-9)
	assert.Zero(t, capsRatio("123 !!"))
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	a := NewAnalyzer()
	assert.Equal(t, a.Analyze("no me gustó, quizás otro"), a.Analyze("no me gustó, quizás otro"))
}
