package model

import "time"

// ================ Config ================
type ConversationConfig struct {
	MemoryTTL       time.Duration `envconfig:"MEMORY_TTL" default:"30m"`
	MemoryMaxSize   int           `envconfig:"MEMORY_MAX_CUSTOMERS" default:"10000"`
	HistoryLimit    int           `envconfig:"HISTORY_LIMIT" default:"5"`
	HistoryMaxTurns int           `envconfig:"HISTORY_MAX_TURNS" default:"50"`
	HistoryTTL      time.Duration `envconfig:"HISTORY_TTL" default:"24h"`
}

type EscalationModelConfig struct {
	Provider    string        `envconfig:"ESCALATION_PROVIDER" default:"gemini"`
	Model       string        `envconfig:"ESCALATION_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int           `envconfig:"ESCALATION_MAX_TOKENS" default:"512"`
	Temperature float32       `envconfig:"ESCALATION_TEMPERATURE" default:"0.2"`
	Timeout     time.Duration `envconfig:"ESCALATION_TIMEOUT" default:"8s"`
}

// BusinessConfig holds the store facts quoted in replies.
type BusinessConfig struct {
	Name          string `envconfig:"BUSINESS_NAME" default:"Supermercado La Inmaculada"`
	Address       string `envconfig:"BUSINESS_ADDRESS" default:"Jr. San Martín 245, Tarapoto"`
	Phone         string `envconfig:"BUSINESS_PHONE" default:"(042) 52-1234"`
	WhatsApp      string `envconfig:"BUSINESS_WHATSAPP" default:"+51 942 123 456"`
	Email         string `envconfig:"BUSINESS_EMAIL" default:"info@lainmaculada.com"`
	TZOffsetHours int    `envconfig:"BUSINESS_TIMEZONE_OFFSET_HOURS" default:"-5"`
}

// DefaultBusinessConfig mirrors the envconfig defaults for tests and tools.
func DefaultBusinessConfig() BusinessConfig {
	return BusinessConfig{
		Name:          "Supermercado La Inmaculada",
		Address:       "Jr. San Martín 245, Tarapoto",
		Phone:         "(042) 52-1234",
		WhatsApp:      "+51 942 123 456",
		Email:         "info@lainmaculada.com",
		TZOffsetHours: -5,
	}
}

// Location returns the fixed zone the store's timetable is expressed in.
func (b BusinessConfig) Location() *time.Location {
	return time.FixedZone("store", b.TZOffsetHours*3600)
}
