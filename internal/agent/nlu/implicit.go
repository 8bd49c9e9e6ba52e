package nlu

import (
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/lexicon"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
)

type implicitRule struct {
	intent     model.IntentName
	confidence float64
	tags       []string
	match      func(t lexicon.Text) bool
}

// Negations run before confirmations: "no me gusta" contains "me gusta".
var implicitRules = []implicitRule{
	{
		intent: model.IntentThanks, confidence: 0.85, tags: []string{"positivo", "cierre"},
		match: func(t lexicon.Text) bool { return t.HasAny("gracias", "thank", "thanks", "agradezco") },
	},
	{
		intent: model.IntentApology, confidence: 0.90, tags: []string{"negativo", "correccion"},
		match: func(t lexicon.Text) bool {
			return t.HasAny("perdón", "perdon", "disculpa", "disculpe", "sorry", "lo siento")
		},
	},
	{
		intent: model.IntentNegation, confidence: 0.90, tags: []string{"negacion", "correccion"},
		match: func(t lexicon.Text) bool {
			return t.Is("no") || t.HasAny("incorrecto", "error", "equivocado", "no me interesa",
				"no me gusta", "prefiero otro", "cambiar", "otra opción", "diferente")
		},
	},
	{
		intent: model.IntentConfirmation, confidence: 0.90, tags: []string{"afirmacion", "continuacion"},
		match: func(t lexicon.Text) bool {
			return t.Is("sí", "si") || t.HasAny("correcto", "exacto", "cierto", "me interesa",
				"me gusta", "prefiero", "claro", "efectivamente", "vale", "ok")
		},
	},
	{
		intent: model.IntentFarewell, confidence: 0.95, tags: []string{"cierre", "despedida"},
		match: func(t lexicon.Text) bool { return t.HasAny("hasta luego", "nos vemos", "adiós", "chau") },
	},
	{
		intent: model.IntentGreeting, confidence: 0.95, tags: []string{"saludo", "cortesia"},
		match: func(t lexicon.Text) bool {
			return t.HasAny("buenos días", "buenas tardes", "buenas noches")
		},
	},
}

// implicitIntent returns the first courtesy or confirmation reading that
// applies to any message regardless of conversational state.
func implicitIntent(t lexicon.Text) (model.Candidate, bool) {
	for _, r := range implicitRules {
		if r.match(t) {
			return model.Candidate{
				Intent:      r.intent,
				Confidence:  r.confidence,
				ContextTags: r.tags,
				Source:      model.SourceImplicit,
			}, true
		}
	}
	return model.Candidate{}, false
}
