package model

// PriceKind is the shape of a price constraint.
type PriceKind string

const (
	PriceBelow   PriceKind = "below"
	PriceAbove   PriceKind = "above"
	PriceBetween PriceKind = "between"
)

// PriceBound is a price constraint in soles. Min holds the single bound of
// PriceBelow and PriceAbove; Max is only set for PriceBetween.
type PriceBound struct {
	Kind PriceKind
	Min  float64
	Max  float64
}

// Entities is what could be extracted from one message. Zero values mean
// "not mentioned".
type Entities struct {
	Product    *Product
	Category   string
	Quantity   *float64
	Unit       string
	Price      *PriceBound
	Urgent     bool
	Brand      string
	SearchTerm string
}

// HasQuantity reports whether a quantity was mentioned.
func (e Entities) HasQuantity() bool {
	return e.Quantity != nil
}

// Payload carries intent-specific data. Response handlers type-switch on it.
type Payload interface {
	payload()
}

// NumericSelection picks an entry of the last shown list, 1-based.
type NumericSelection struct {
	Index int
}

// QuantitySpec states how much of the product in focus the customer wants.
type QuantitySpec struct {
	Quantity float64
	Unit     string
}

// MatchStrength describes how a product selection was recognized.
type MatchStrength string

const (
	MatchFullName      MatchStrength = "full_name"
	MatchPartialWord   MatchStrength = "partial_word"
	MatchDemonstrative MatchStrength = "demonstrative"
)

// ProductSelection points at one of the last shown products.
type ProductSelection struct {
	Product  Product
	Strength MatchStrength
}

// FlowHint marks a topic chained from the previous turn's intent.
type FlowHint struct {
	From IntentName
}

// EscalationNote keeps the extra fields an external model returned.
type EscalationNote struct {
	Need           string
	SuggestedReply string
	FollowUp       string
	ProductName    string
}

func (NumericSelection) payload() {}
func (QuantitySpec) payload()     {}
func (ProductSelection) payload() {}
func (FlowHint) payload()         {}
func (EscalationNote) payload()   {}
