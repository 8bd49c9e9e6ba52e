package model

import (
	"context"
	"time"
)

const (
	MaxLastProducts     = 8
	MaxSentimentHistory = 10
	MaxOrderLines       = 30
)

// SentimentRecord is one entry of a customer's sentiment history.
type SentimentRecord struct {
	Sentiment SentimentClass `json:"sentiment"`
	Emotion   Emotion        `json:"emotion"`
	At        time.Time      `json:"at"`
}

// OrderLine is one product in the order being assembled.
type OrderLine struct {
	Product  Product `json:"product"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Subtotal float64 `json:"subtotal"`
}

// Memory is the per-customer conversational state. PendingOffer is the line
// offered in place of a request above stock; it only answers the next
// message.
type Memory struct {
	CustomerID       string            `json:"customer_id"`
	VisitCount       int               `json:"visit_count"`
	LastIntent       IntentName        `json:"last_intent,omitempty"`
	LastProducts     []Product         `json:"last_products,omitempty"`
	SelectedProduct  *Product          `json:"selected_product,omitempty"`
	Preferences      map[string]int    `json:"preferences,omitempty"`
	SentimentHistory []SentimentRecord `json:"sentiment_history,omitempty"`
	CurrentOrder     []OrderLine       `json:"current_order,omitempty"`
	PendingOffer     *OrderLine        `json:"pending_offer,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// NewMemory returns an empty record for a first-time customer.
func NewMemory(customerID string, now time.Time) *Memory {
	return &Memory{
		CustomerID:  customerID,
		Preferences: map[string]int{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Clone returns a deep copy so callers never share slices with a store.
func (m *Memory) Clone() *Memory {
	if m == nil {
		return nil
	}
	c := *m
	c.LastProducts = append([]Product(nil), m.LastProducts...)
	c.SentimentHistory = append([]SentimentRecord(nil), m.SentimentHistory...)
	c.CurrentOrder = append([]OrderLine(nil), m.CurrentOrder...)
	if m.SelectedProduct != nil {
		p := *m.SelectedProduct
		c.SelectedProduct = &p
	}
	if m.PendingOffer != nil {
		o := *m.PendingOffer
		c.PendingOffer = &o
	}
	c.Preferences = make(map[string]int, len(m.Preferences))
	for k, v := range m.Preferences {
		c.Preferences[k] = v
	}
	return &c
}

// FocusProduct is the product a bare quantity refers to.
func (m *Memory) FocusProduct() (Product, bool) {
	if m.SelectedProduct != nil {
		return *m.SelectedProduct, true
	}
	if len(m.LastProducts) > 0 {
		return m.LastProducts[0], true
	}
	return Product{}, false
}

// OrderTotal sums the subtotals of the current order.
func (m *Memory) OrderTotal() float64 {
	var total float64
	for _, line := range m.CurrentOrder {
		total += line.Subtotal
	}
	return total
}

// ShowProducts replaces the last shown list, keeping at most
// MaxLastProducts entries, and clears the selection.
func (m *Memory) ShowProducts(ps []Product) {
	if len(ps) > MaxLastProducts {
		ps = ps[:MaxLastProducts]
	}
	m.LastProducts = append([]Product(nil), ps...)
	m.SelectedProduct = nil
}

// Select puts p in focus.
func (m *Memory) Select(p Product) {
	m.SelectedProduct = &p
}

// AddOrderLine appends a line to the current order. It reports false when
// the order is full.
func (m *Memory) AddOrderLine(line OrderLine) bool {
	if len(m.CurrentOrder) >= MaxOrderLines {
		return false
	}
	m.CurrentOrder = append(m.CurrentOrder, line)
	return true
}

// ClearOrder drops the current order.
func (m *Memory) ClearOrder() {
	m.CurrentOrder = nil
}

// LastSentiment returns the most recent sentiment record.
func (m *Memory) LastSentiment() (SentimentRecord, bool) {
	if len(m.SentimentHistory) == 0 {
		return SentimentRecord{}, false
	}
	return m.SentimentHistory[len(m.SentimentHistory)-1], true
}

// MemoryStore owns per-customer records. Get never returns a nil record
// without an error: unknown customers get a fresh one.
type MemoryStore interface {
	Get(ctx context.Context, customerID string) (*Memory, error)
	Save(ctx context.Context, m *Memory) error
}
