package model

import (
	"context"
	"time"
)

type Sender string

const (
	SenderCustomer Sender = "customer"
	SenderBot      Sender = "bot"
)

// Turn is one message of the conversation log.
type Turn struct {
	ID        string     `json:"id"`
	Sender    Sender     `json:"sender"`
	Content   string     `json:"content"`
	Intent    IntentName `json:"intent,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

type ConversationRepository interface {
	// AddTurn appends a turn to the customer's history.
	AddTurn(ctx context.Context, customerID string, turn Turn) error

	// Recent returns up to limit latest turns, oldest first.
	Recent(ctx context.Context, customerID string, limit int) ([]Turn, error)

	// Clear removes the customer's history.
	Clear(ctx context.Context, customerID string) error
}
