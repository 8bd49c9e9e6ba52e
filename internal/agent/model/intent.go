package model

// IntentName identifies a customer goal the assistant can recognize.
type IntentName string

const (
	IntentGreeting         IntentName = "saludo"
	IntentProductInquiry   IntentName = "consulta_producto"
	IntentComparison       IntentName = "comparacion_productos"
	IntentHours            IntentName = "horarios_servicio"
	IntentLocation         IntentName = "ubicacion_tienda"
	IntentDelivery         IntentName = "delivery_servicio"
	IntentPurchaseOrder    IntentName = "pedido_compra"
	IntentConfirmOrder     IntentName = "confirmar_pedido"
	IntentCancelOrder      IntentName = "cancelar_pedido"
	IntentComplaint        IntentName = "quejas_sugerencias"
	IntentFarewell         IntentName = "despedida"
	IntentProductConfirmed IntentName = "confirmacion_producto"
	IntentChangeProduct    IntentName = "cambio_producto"
	IntentProductSelection IntentName = "seleccion_producto"
	IntentNumericSelection IntentName = "seleccion_numerica"
	IntentSpecifyQuantity  IntentName = "especificar_cantidad"
	IntentConfirmation     IntentName = "confirmacion_implicita"
	IntentNegation         IntentName = "negacion_implicita"
	IntentThanks           IntentName = "agradecimiento"
	IntentApology          IntentName = "disculpa"
	IntentUnknown          IntentName = "desconocido"
	// IntentError marks a turn that failed unexpectedly.
	IntentError IntentName = "error"
)

func (n IntentName) String() string {
	return string(n)
}

// CandidateSource records how a candidate was produced.
type CandidateSource string

const (
	SourcePattern    CandidateSource = "pattern"
	SourceImplicit   CandidateSource = "implicit"
	SourceContext    CandidateSource = "context"
	SourceEscalation CandidateSource = "escalation"
	SourceFallback   CandidateSource = "fallback"
)

// Candidate is one possible reading of a message.
type Candidate struct {
	Intent      IntentName
	Confidence  float64
	Pattern     string
	Entities    Entities
	ContextTags []string
	Source      CandidateSource
	Payload     Payload

	// MultiIntent is set when the winner was picked among comparably strong
	// readings; Alternatives then holds the losers.
	MultiIntent  bool
	Alternatives []Candidate
}

// Implicit reports whether the candidate came from conversational flow
// rather than a direct pattern match.
func (c Candidate) Implicit() bool {
	return c.Source == SourceImplicit || c.Source == SourceContext
}

// ConfidencePercent rounds the confidence to a whole percentage.
func (c Candidate) ConfidencePercent() int {
	return int(c.Confidence*100 + 0.5)
}

var knownIntents = map[IntentName]bool{
	IntentGreeting: true, IntentProductInquiry: true, IntentComparison: true,
	IntentHours: true, IntentLocation: true, IntentDelivery: true,
	IntentPurchaseOrder: true, IntentConfirmOrder: true, IntentCancelOrder: true,
	IntentComplaint: true, IntentFarewell: true, IntentProductConfirmed: true,
	IntentChangeProduct: true, IntentProductSelection: true, IntentNumericSelection: true,
	IntentSpecifyQuantity: true, IntentConfirmation: true, IntentNegation: true,
	IntentThanks: true, IntentApology: true, IntentUnknown: true,
}

// Known reports whether n is an intent the assistant can answer. The error
// marker is not one of them.
func (n IntentName) Known() bool {
	return knownIntents[n]
}
