package nlu

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/catalog"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/lexicon"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
)

func newClassifier(t *testing.T) *Classifier {
	t.Helper()
	ix := catalog.NewIndex(catalog.NewSeedSource())
	require.NoError(t, ix.Ensure(context.Background()))
	return NewClassifier(NewDefaultEngine(), ix)
}

func matchFor(ms []Match, name model.IntentName) (Match, bool) {
	for _, m := range ms {
		if m.Intent == name {
			return m, true
		}
	}
	return Match{}, false
}

func seedProduct(t *testing.T, id string) model.Product {
	t.Helper()
	for _, p := range catalog.SeedProducts {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("no seed product %s", id)
	return model.Product{}
}

func TestCanonicalExamplesScoreHigh(t *testing.T) {
	e := NewDefaultEngine()
	for _, d := range e.Definitions() {
		for _, ex := range d.Examples {
			m, ok := matchFor(e.Match(ex), d.Name)
			if assert.True(t, ok, "%s should match %q", d.Name, ex) {
				assert.GreaterOrEqual(t, m.Confidence, 0.9, "%s %q", d.Name, ex)
			}
		}
	}
}

func TestConfidenceBounds(t *testing.T) {
	e := NewDefaultEngine()
	msgs := []string{
		"hola",
		"URGENTE quiero pedir arroz ya ahora mismo, es importante y necesario!!!",
		"¿a qué hora abren hoy? necesito comprar pan rápido",
		"estoy muy molesto, el producto está malo, tengo una queja urgente",
		"",
		"xyzzy",
	}
	for _, msg := range msgs {
		for _, m := range e.Match(msg) {
			assert.GreaterOrEqual(t, m.Confidence, 0.0, msg)
			assert.LessOrEqual(t, m.Confidence, MaxPatternConfidence, msg)
		}
	}
}

func TestEngineScoring(t *testing.T) {
	e := NewDefaultEngine()

	m, ok := matchFor(e.Match("hay delivery?"), model.IntentDelivery)
	require.True(t, ok)
	// 2x25 base, +10 partial, +5 length band, +8 question
	assert.InDelta(t, 0.73, m.Confidence, 1e-9)

	m, ok = matchFor(e.Match("quiero leche"), model.IntentProductInquiry)
	require.True(t, ok)
	assert.Equal(t, "leche", m.Capture)
	// 2x25 base, +20 whole message, +5 length band
	assert.InDelta(t, 0.75, m.Confidence, 1e-9)

	m, ok = matchFor(e.Match("urgente necesito ayuda"), model.IntentComplaint)
	require.True(t, ok)
	assert.Equal(t, [2]int{0, 7}, m.Span)
	assert.Equal(t, [][2]int{{0, 7}, {17, 22}}, m.Spans)
}

func TestAdjustPriority(t *testing.T) {
	e := NewDefaultEngine()
	before, _ := matchFor(e.Match("hay delivery?"), model.IntentDelivery)

	e.AdjustPriority(model.IntentDelivery, 0.5)
	assert.InDelta(t, 2.5, e.Priority(model.IntentDelivery), 1e-9)

	after, _ := matchFor(e.Match("hay delivery?"), model.IntentDelivery)
	assert.InDelta(t, before.Confidence+0.125, after.Confidence, 1e-9)

	for i := 0; i < 10; i++ {
		e.AdjustPriority(model.IntentDelivery, 0.5)
	}
	assert.InDelta(t, 2+maxLearnedBoost, e.Priority(model.IntentDelivery), 1e-9)
	assert.Zero(t, e.Priority(model.IntentThanks))
}

func TestClassifyUnknown(t *testing.T) {
	c := newClassifier(t)
	got := c.Classify(context.Background(), "xyzzy plugh", model.NewMemory("51999", fixedNow))
	assert.Equal(t, model.IntentUnknown, got.Intent)
	assert.InDelta(t, UnknownConfidence, got.Confidence, 1e-9)
	assert.True(t, NeedsEscalation(got))
}

func TestClassify(t *testing.T) {
	gloria := seedProduct(t, "prod-004")
	entera := seedProduct(t, "prod-003")
	shown := []model.Product{gloria, entera}

	tests := []struct {
		name       string
		text       string
		mem        model.Memory
		intent     model.IntentName
		confidence float64
		payload    model.Payload
	}{
		{
			name: "greeting example", text: "Hola",
			intent: model.IntentGreeting, confidence: 0.92,
		},
		{
			name: "yes after inquiry", text: "sí",
			mem:    model.Memory{LastIntent: model.IntentProductInquiry},
			intent: model.IntentProductConfirmed, confidence: 0.95,
		},
		{
			name: "yes without context", text: "sí",
			intent: model.IntentConfirmation, confidence: 0.90,
		},
		{
			name: "no thanks", text: "no gracias",
			intent: model.IntentThanks, confidence: 0.85,
		},
		{
			name: "dislike is a negation", text: "no me gusta",
			intent: model.IntentNegation, confidence: 0.90,
		},
		{
			name: "other product after inquiry", text: "otro",
			mem:    model.Memory{LastIntent: model.IntentProductInquiry},
			intent: model.IntentChangeProduct, confidence: 0.90,
		},
		{
			name: "number after inquiry", text: "2",
			mem:    model.Memory{LastIntent: model.IntentProductInquiry, LastProducts: shown},
			intent: model.IntentNumericSelection, confidence: 0.98,
			payload: model.NumericSelection{Index: 2},
		},
		{
			name: "no after inquiry changes product", text: "no",
			mem:    model.Memory{LastIntent: model.IntentProductInquiry, LastProducts: shown},
			intent: model.IntentChangeProduct, confidence: 0.90,
		},
		{
			name: "cambiar after inquiry", text: "cambiar",
			mem:    model.Memory{LastIntent: model.IntentProductInquiry, LastProducts: shown},
			intent: model.IntentChangeProduct, confidence: 0.90,
		},
		{
			name: "diferente after inquiry", text: "diferente",
			mem:    model.Memory{LastIntent: model.IntentProductInquiry, LastProducts: shown},
			intent: model.IntentChangeProduct, confidence: 0.90,
		},
		{
			name: "number after change picks from list", text: "1",
			mem:    model.Memory{LastIntent: model.IntentChangeProduct, LastProducts: shown[1:]},
			intent: model.IntentNumericSelection, confidence: 0.98,
			payload: model.NumericSelection{Index: 1},
		},
		{
			name: "number with one product shown", text: "2",
			mem:    model.Memory{LastIntent: model.IntentProductInquiry, LastProducts: shown[:1]},
			intent: model.IntentSpecifyQuantity, confidence: 0.98,
			payload: model.QuantitySpec{Quantity: 2, Unit: defaultUnit},
		},
		{
			name: "number after order", text: "3",
			mem:    model.Memory{LastIntent: model.IntentPurchaseOrder},
			intent: model.IntentSpecifyQuantity, confidence: 0.98,
			payload: model.QuantitySpec{Quantity: 3, Unit: "unidad"},
		},
		{
			name: "yes to stock offer", text: "sí",
			mem: model.Memory{
				LastIntent:   model.IntentSpecifyQuantity,
				PendingOffer: &model.OrderLine{Product: gloria, Quantity: 80, Unit: "unidad"},
			},
			intent: model.IntentSpecifyQuantity, confidence: 0.95,
			payload: model.QuantitySpec{Quantity: 80, Unit: "unidad"},
		},
		{
			name: "asked quantity", text: "dame 3",
			mem:    model.Memory{LastIntent: model.IntentProductConfirmed},
			intent: model.IntentSpecifyQuantity, confidence: 0.95,
			payload: model.QuantitySpec{Quantity: 3, Unit: "unidad"},
		},
		{
			name: "quantity with unit", text: "2 kilos",
			mem:    model.Memory{LastIntent: model.IntentProductSelection},
			intent: model.IntentSpecifyQuantity, confidence: 0.95,
			payload: model.QuantitySpec{Quantity: 2, Unit: "kg"},
		},
		{
			name: "product word from list", text: "la gloria",
			mem:    model.Memory{LastIntent: model.IntentHours, LastProducts: shown},
			intent: model.IntentProductSelection, confidence: 0.85,
			payload: model.ProductSelection{Product: gloria, Strength: model.MatchPartialWord},
		},
		{
			name: "full product name from list", text: "leche gloria 1L",
			mem:    model.Memory{LastIntent: model.IntentHours, LastProducts: shown},
			intent: model.IntentProductSelection, confidence: 0.95,
			payload: model.ProductSelection{Product: gloria, Strength: model.MatchFullName},
		},
		{
			name: "ordinal", text: "el segundo",
			mem:    model.Memory{LastIntent: model.IntentHours, LastProducts: shown},
			intent: model.IntentProductSelection, confidence: 0.90,
			payload: model.ProductSelection{Product: entera, Strength: model.MatchDemonstrative},
		},
		{
			name: "feminine ordinal", text: "la segunda",
			mem:    model.Memory{LastIntent: model.IntentHours, LastProducts: shown},
			intent: model.IntentProductSelection, confidence: 0.90,
			payload: model.ProductSelection{Product: entera, Strength: model.MatchDemonstrative},
		},
		{
			name: "ordinal out of range", text: "el tercero",
			mem:    model.Memory{LastIntent: model.IntentHours, LastProducts: shown},
			intent: model.IntentNumericSelection, confidence: 0.90,
			payload: model.NumericSelection{Index: 3},
		},
		{
			name: "hours after location", text: "¿cuándo?",
			mem:    model.Memory{LastIntent: model.IntentLocation},
			intent: model.IntentHours, confidence: 0.90,
			payload: model.FlowHint{From: model.IntentLocation},
		},
		{
			name: "service word inside product phrase", text: "hay delivery?",
			intent: model.IntentDelivery, confidence: 0.73,
		},
		{
			name: "hours inside product phrase", text: "quiero saber el horario",
			intent: model.IntentHours, confidence: 0.40,
		},
	}

	c := newClassifier(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := tt.mem
			got := c.Classify(context.Background(), tt.text, &mem)
			assert.Equal(t, tt.intent, got.Intent)
			assert.InDelta(t, tt.confidence, got.Confidence, 1e-9)
			if tt.payload != nil {
				assert.Equal(t, tt.payload, got.Payload)
			}
		})
	}
}

func TestClassifyAmbiguousGreetingAndInquiry(t *testing.T) {
	c := newClassifier(t)
	got := c.Classify(context.Background(), "hola quiero leche", model.NewMemory("51999", fixedNow))

	assert.Equal(t, model.IntentProductInquiry, got.Intent)
	assert.InDelta(t, 0.65, got.Confidence, 1e-9)
	assert.True(t, got.MultiIntent)
	require.Len(t, got.Alternatives, 1)
	assert.Equal(t, model.IntentGreeting, got.Alternatives[0].Intent)
	assert.Equal(t, "leche", got.Entities.SearchTerm)
}

func TestClassifyPriceBoundLeavesSearchTerm(t *testing.T) {
	c := newClassifier(t)
	got := c.Classify(context.Background(), "busco aceite por menos de 10 soles", model.NewMemory("51999", fixedNow))

	assert.Equal(t, model.IntentProductInquiry, got.Intent)
	assert.Equal(t, "aceite", got.Entities.SearchTerm)
	require.NotNil(t, got.Entities.Price)
	assert.Equal(t, model.PriceBelow, got.Entities.Price.Kind)
}

func TestClassifyServiceWordLaterInMessage(t *testing.T) {
	c := newClassifier(t)
	got := c.Classify(context.Background(), "URGENTE necesito ayuda!!!", model.NewMemory("51999", fixedNow))

	assert.Equal(t, model.IntentComplaint, got.Intent)
	assert.False(t, got.MultiIntent)
	assert.Empty(t, got.Alternatives)
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := newClassifier(t)
	for _, text := range []string{"hola quiero leche gloria", "sí", "cuánto cuesta el arroz?", "xyz"} {
		a := c.Classify(context.Background(), text, model.NewMemory("1", fixedNow))
		b := c.Classify(context.Background(), text, model.NewMemory("1", fixedNow))
		assert.Equal(t, a.Intent, b.Intent, text)
		assert.Equal(t, a.Confidence, b.Confidence, text)
	}
}

func TestDisambiguate(t *testing.T) {
	hours := model.Candidate{Intent: model.IntentHours, Confidence: 0.65}
	order := model.Candidate{Intent: model.IntentPurchaseOrder, Confidence: 0.55}

	got := Disambiguate([]model.Candidate{hours, order})
	assert.Equal(t, model.IntentPurchaseOrder, got.Intent)
	assert.InDelta(t, 0.55, got.Confidence, 1e-9)
	assert.True(t, got.MultiIntent)
	assert.Equal(t, []model.Candidate{hours}, got.Alternatives)

	strong := Disambiguate([]model.Candidate{
		{Intent: model.IntentPurchaseOrder, Confidence: 0.95},
		{Intent: model.IntentGreeting, Confidence: 0.9},
	})
	assert.Equal(t, model.IntentPurchaseOrder, strong.Intent)
	assert.InDelta(t, 0.85, strong.Confidence, 1e-9)
	assert.False(t, strong.MultiIntent)
	assert.Empty(t, strong.Alternatives)

	weak := Disambiguate([]model.Candidate{hours, {Intent: model.IntentDelivery, Confidence: 0.45}})
	assert.Equal(t, model.IntentHours, weak.Intent)

	unranked := Disambiguate([]model.Candidate{
		{Intent: model.IntentThanks, Confidence: 0.85},
		{Intent: model.IntentFarewell, Confidence: 0.5},
	})
	assert.Equal(t, model.IntentThanks, unranked.Intent)
	assert.InDelta(t, 0.85, unranked.Confidence, 1e-9)

	assert.Equal(t, model.IntentUnknown, Disambiguate(nil).Intent)
}

func TestExtract(t *testing.T) {
	ix := catalog.NewIndex(catalog.NewSeedSource())
	require.NoError(t, ix.Ensure(context.Background()))
	x := NewExtractor(ix)

	e := x.Extract(lexicon.NewText("Quiero 2 kilos de arroz costeño urgente"), "2 kilos de arroz costeño urgente")
	require.NotNil(t, e.Product)
	assert.Equal(t, "prod-014", e.Product.ID)
	assert.Equal(t, e.Product.Category, e.Category)
	require.True(t, e.HasQuantity())
	assert.Equal(t, 2.0, *e.Quantity)
	assert.Equal(t, "kg", e.Unit)
	assert.True(t, e.Urgent)
	assert.Equal(t, "costeño", e.Brand)
	assert.Nil(t, e.Price)

	e = x.Extract(lexicon.NewText("busco leche entre 10 y 5 soles"), "")
	require.NotNil(t, e.Price)
	assert.Equal(t, model.PriceBound{Kind: model.PriceBetween, Min: 5, Max: 10}, *e.Price)
	assert.False(t, e.HasQuantity(), "price figures are not quantities")

	e = x.Extract(lexicon.NewText("algo de menos de s/ 8.50 y 3 panes"), "")
	require.NotNil(t, e.Price)
	assert.Equal(t, model.PriceBound{Kind: model.PriceBelow, Min: 8.5}, *e.Price)
	require.True(t, e.HasQuantity())
	assert.Equal(t, 3.0, *e.Quantity)
	assert.Equal(t, "unidad", e.Unit)

	e = x.Extract(lexicon.NewText("busco aceite por menos de 10 soles"), "aceite por menos de 10 soles")
	require.NotNil(t, e.Price)
	assert.Equal(t, model.PriceBound{Kind: model.PriceBelow, Min: 10}, *e.Price)
	assert.Equal(t, "aceite", e.SearchTerm)

	e = x.Extract(lexicon.NewText("necesito 1,5 litros"), "")
	require.True(t, e.HasQuantity())
	assert.Equal(t, 1.5, *e.Quantity)
	assert.Equal(t, "l", e.Unit)
	assert.False(t, e.Urgent)
}

func TestExtractWithoutCatalog(t *testing.T) {
	x := NewExtractor(nil)
	e := x.Extract(lexicon.NewText("leche gloria"), "leche gloria")
	assert.Nil(t, e.Product)
	assert.Equal(t, "gloria", e.Brand)
	assert.Equal(t, "leche gloria", e.SearchTerm)
}
