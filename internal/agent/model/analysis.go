package model

// Inbound is one customer message as the host received it.
type Inbound struct {
	CustomerID string
	Text       string
}

// Analysis travels through the per-message pipeline. Each stage fills its
// part and hands the same pointer on.
type Analysis struct {
	CustomerID string
	Text       string

	Memory    *Memory
	History   []Turn
	Sentiment SentimentResult
	Candidate Candidate

	// Escalation is set when the external model was consulted.
	Escalation *EscalationOutcome

	Reply string
}

type EscalationStatus string

const (
	EscalationAccepted    EscalationStatus = "accepted"
	EscalationClarified   EscalationStatus = "clarified"
	EscalationUnavailable EscalationStatus = "unavailable"
)

type EscalationOutcome struct {
	Status EscalationStatus
	Result *EscalationResult
	// Clarification is the free-form reply produced when the structured
	// answer was not trusted.
	Clarification string
}

// EscalationResult is the structured answer of the external model.
type EscalationResult struct {
	Intention      string   `json:"intention"`
	Confidence     float64  `json:"confidence"`
	Product        string   `json:"product,omitempty"`
	Quantity       *float64 `json:"quantity,omitempty"`
	CustomerNeed   string   `json:"customer_need,omitempty"`
	SuggestedReply string   `json:"suggested_reply,omitempty"`
	FollowUp       string   `json:"follow_up_question,omitempty"`
}

// Reply is everything the host needs to answer a customer.
type Reply struct {
	IntentName        IntentName      `json:"intent_name"`
	ConfidencePercent int             `json:"confidence_percent"`
	ReplyText         string          `json:"reply_text"`
	Sentiment         SentimentResult `json:"sentiment"`
}
