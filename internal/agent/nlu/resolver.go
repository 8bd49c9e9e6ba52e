package nlu

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/lexicon"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
)

// UnknownConfidence is what an unrecognized message scores.
const UnknownConfidence = 0.25

const unitWords = `kg|kilos?|gramos?|g|litros?|l|unidad(?:es)?|docenas?`

var (
	bareInteger  = regexp.MustCompile(`^\d+$`)
	quantityForm = regexp.MustCompile(`^(\d+(?:[.,]\d+)?)\s*(` + unitWords + `)$`)
	askForm      = regexp.MustCompile(`^(?:quiero|dame|ponme)\s+(\d+(?:[.,]\d+)?)(?:\s*(` + unitWords + `))?$`)
)

var (
	genericYes = []string{"sí", "si", "me interesa", "perfecto", "excelente", "bueno", "ok", "vale", "claro"}
	genericNo  = []string{"no", "no gracias", "nada"}

	affirmative = []string{"sí", "si", "me interesa", "perfecto", "excelente", "bueno", "ok", "vale", "claro", "efectivamente"}
	negative    = []string{"no", "otro", "otra", "diferente", "más opciones", "no me gusta", "cambiar"}

	demonstratives = []string{"este", "ese", "aquel", "esta", "esa",
		"primero", "primera", "segundo", "segunda", "tercero", "tercera"}

	ordinals = map[string]int{"primero": 0, "primera": 0, "segundo": 1, "segunda": 1, "tercero": 2, "tercera": 2}

	toHours    = []string{"hora", "horario", "cuándo", "abren"}
	toDelivery = []string{"delivery", "domicilio", "envío", "mandan"}

	thanksPhrases   = []string{"muchas gracias", "muy amable", "te agradezco"}
	farewellPhrases = []string{"hasta luego", "nos vemos", "adiós", "chau", "bye"}
	closingPhrases  = []string{"listo", "perfecto", "ok", "bien", "de acuerdo", "aceptado"}
)

// flowIntents keep a product or order conversation open.
var flowIntents = map[model.IntentName]bool{
	model.IntentProductInquiry:   true,
	model.IntentChangeProduct:    true,
	model.IntentPurchaseOrder:    true,
	model.IntentProductConfirmed: true,
	model.IntentProductSelection: true,
	model.IntentNumericSelection: true,
}

// quantityIntents are followed by a quantity answer.
var quantityIntents = map[model.IntentName]bool{
	model.IntentPurchaseOrder:    true,
	model.IntentProductConfirmed: true,
	model.IntentProductSelection: true,
	model.IntentNumericSelection: true,
	model.IntentSpecifyQuantity:  true,
}

type resolveRule func(t lexicon.Text, mem *model.Memory) (model.Candidate, bool)

// resolveContext runs the full contextual chain for a message no pattern
// recognized. The first applicable rule wins.
func resolveContext(t lexicon.Text, mem *model.Memory) (model.Candidate, bool) {
	rules := []resolveRule{
		acceptOffer,
		genericAnswer,
		func(t lexicon.Text, mem *model.Memory) (model.Candidate, bool) { return inquiryFollowUp(t, mem, true) },
		quantityFollowUp,
		productMention,
		topicChain,
		courtesy,
	}
	for _, r := range rules {
		if c, ok := r(t, mem); ok {
			c.Source = model.SourceContext
			return c, true
		}
	}
	return model.Candidate{}, false
}

// continueFlow offers a flow-continuation reading next to pattern matches.
// Yes/no cues are ignored when a pattern already captured a product phrase.
func continueFlow(t lexicon.Text, mem *model.Memory, productPhrase bool) (model.Candidate, bool) {
	if !productPhrase {
		if c, ok := acceptOffer(t, mem); ok {
			c.Source = model.SourceContext
			return c, true
		}
	}
	if c, ok := inquiryFollowUp(t, mem, !productPhrase); ok {
		c.Source = model.SourceContext
		return c, true
	}
	if c, ok := quantityFollowUp(t, mem); ok {
		c.Source = model.SourceContext
		return c, true
	}
	return model.Candidate{}, false
}

// acceptOffer turns a yes after an over-stock offer into the offered
// quantity.
func acceptOffer(t lexicon.Text, mem *model.Memory) (model.Candidate, bool) {
	if mem.PendingOffer == nil || !t.HasAny(affirmative...) || t.Has("no") {
		return model.Candidate{}, false
	}
	return model.Candidate{
		Intent: model.IntentSpecifyQuantity, Confidence: 0.95,
		ContextTags: []string{"pedido", "oferta_stock"},
		Payload:     model.QuantitySpec{Quantity: mem.PendingOffer.Quantity, Unit: mem.PendingOffer.Unit},
	}, true
}

func genericAnswer(t lexicon.Text, mem *model.Memory) (model.Candidate, bool) {
	if flowIntents[mem.LastIntent] {
		return model.Candidate{}, false
	}
	switch {
	case t.Is(genericNo...):
		return model.Candidate{
			Intent: model.IntentNegation, Confidence: 0.75,
			ContextTags: []string{"negacion", "generico"},
		}, true
	case t.Is(genericYes...):
		return model.Candidate{
			Intent: model.IntentConfirmation, Confidence: 0.75,
			ContextTags: []string{"afirmacion", "generico"},
		}, true
	}
	return model.Candidate{}, false
}

func inquiryFollowUp(t lexicon.Text, mem *model.Memory, cues bool) (model.Candidate, bool) {
	if mem.LastIntent != model.IntentProductInquiry && mem.LastIntent != model.IntentChangeProduct {
		return model.Candidate{}, false
	}
	// With a single product card on screen a bare number is how many of it.
	// After a change the remaining options are a numbered list.
	card := mem.LastIntent == model.IntentProductInquiry && len(mem.LastProducts) == 1
	if n, ok := bareNumber(t); ok && !card {
		return model.Candidate{
			Intent: model.IntentNumericSelection, Confidence: 0.98,
			ContextTags: []string{"seleccion", "numerico"},
			Payload:     model.NumericSelection{Index: n},
		}, true
	}
	if !cues {
		return model.Candidate{}, false
	}
	if t.HasAny(negative...) {
		return model.Candidate{
			Intent: model.IntentChangeProduct, Confidence: 0.90,
			ContextTags: []string{"nueva_busqueda", "negacion"},
		}, true
	}
	if t.HasAny(affirmative...) {
		return model.Candidate{
			Intent: model.IntentProductConfirmed, Confidence: 0.95,
			ContextTags: []string{"continuacion_busqueda", "afirmacion"},
		}, true
	}
	return model.Candidate{}, false
}

func quantityFollowUp(t lexicon.Text, mem *model.Memory) (model.Candidate, bool) {
	_, focused := mem.FocusProduct()
	if !quantityIntents[mem.LastIntent] && !focused {
		return model.Candidate{}, false
	}
	q, unit, conf, ok := quantityAnswer(t)
	if !ok {
		return model.Candidate{}, false
	}
	return model.Candidate{
		Intent: model.IntentSpecifyQuantity, Confidence: conf,
		ContextTags: []string{"pedido", "cantidad"},
		Payload:     model.QuantitySpec{Quantity: q, Unit: unit},
	}, true
}

func productMention(t lexicon.Text, mem *model.Memory) (model.Candidate, bool) {
	if len(mem.LastProducts) == 0 {
		return model.Candidate{}, false
	}
	folded := lexicon.NewText(lexicon.Fold(t.Raw))
	selection := func(p model.Product, s model.MatchStrength, conf float64) (model.Candidate, bool) {
		return model.Candidate{
			Intent: model.IntentProductSelection, Confidence: conf,
			ContextTags: []string{"seleccion_desde_lista"},
			Payload:     model.ProductSelection{Product: p, Strength: s},
		}, true
	}

	for _, p := range mem.LastProducts {
		name := lexicon.Fold(p.Name)
		if folded.Has(name) {
			return selection(p, model.MatchFullName, 0.95)
		}
		for _, w := range lexicon.Tokens(name) {
			if utf8.RuneCountInString(w) > 3 && folded.Has(w) {
				return selection(p, model.MatchPartialWord, 0.85)
			}
		}
	}

	if !t.HasAny(demonstratives...) {
		return model.Candidate{}, false
	}
	idx := 0
	for _, w := range t.Words() {
		if i, ok := ordinals[w]; ok {
			idx = i
			break
		}
	}
	if idx >= len(mem.LastProducts) {
		return model.Candidate{
			Intent: model.IntentNumericSelection, Confidence: 0.90,
			ContextTags: []string{"seleccion", "demostrativo"},
			Payload:     model.NumericSelection{Index: idx + 1},
		}, true
	}
	return selection(mem.LastProducts[idx], model.MatchDemonstrative, 0.90)
}

func topicChain(t lexicon.Text, mem *model.Memory) (model.Candidate, bool) {
	switch {
	case mem.LastIntent == model.IntentLocation && t.HasAny(toHours...):
		return model.Candidate{
			Intent: model.IntentHours, Confidence: 0.90,
			ContextTags: []string{"secuencial", "horarios_post_ubicacion"},
			Payload:     model.FlowHint{From: model.IntentLocation},
		}, true
	case mem.LastIntent == model.IntentHours && t.HasAny(toDelivery...):
		return model.Candidate{
			Intent: model.IntentDelivery, Confidence: 0.90,
			ContextTags: []string{"secuencial", "delivery_post_horarios"},
			Payload:     model.FlowHint{From: model.IntentHours},
		}, true
	}
	return model.Candidate{}, false
}

func courtesy(t lexicon.Text, _ *model.Memory) (model.Candidate, bool) {
	switch {
	case t.HasAny(thanksPhrases...):
		return model.Candidate{Intent: model.IntentThanks, Confidence: 0.98, ContextTags: []string{"cortesia"}}, true
	case t.HasAny(farewellPhrases...):
		return model.Candidate{Intent: model.IntentFarewell, Confidence: 0.98, ContextTags: []string{"cierre"}}, true
	case t.Is(closingPhrases...):
		return model.Candidate{Intent: model.IntentConfirmation, Confidence: 0.95, ContextTags: []string{"confirmacion"}}, true
	}
	return model.Candidate{}, false
}

// bareNumber reports whether the message is only a whole number.
func bareNumber(t lexicon.Text) (int, bool) {
	s := trimAnswer(t.Lower)
	if !bareInteger.MatchString(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// quantityAnswer recognizes "3", "2 kilos" and "dame 4".
func quantityAnswer(t lexicon.Text) (float64, string, float64, bool) {
	if n, ok := bareNumber(t); ok {
		return float64(n), defaultUnit, 0.98, true
	}
	s := trimAnswer(t.Lower)
	var m []string
	if m = quantityForm.FindStringSubmatch(s); m == nil {
		m = askForm.FindStringSubmatch(s)
	}
	if m == nil {
		return 0, "", 0, false
	}
	q, err := parseNumber(m[1])
	if err != nil {
		return 0, "", 0, false
	}
	return q, normalizeUnit(m[2]), 0.95, true
}

func trimAnswer(s string) string {
	return strings.Trim(strings.TrimSpace(s), " .!¡?¿,")
}
