package nlu

import "github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"

// Definition declares one pattern-matched intent. Patterns run against the
// lower-cased message; for product intents the second capture group is the
// search phrase.
type Definition struct {
	Name        model.IntentName
	Patterns    []string
	Priority    float64
	ContextTags []string
	// Examples are canonical phrasings; a message equal to one of them is
	// always recognized with high confidence.
	Examples []string
	// Temporal words add a bonus when they appear next to this intent.
	Temporal []string
	// Captures marks intents whose patterns capture a product phrase.
	Captures bool
}

// DefaultDefinitions is the store's intent table, version 3.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			Name: model.IntentGreeting,
			Patterns: []string{
				`\b(hola|buenos|buenas|días|tardes|noches|hey|saludos|qué tal|cómo estás)\b`,
				`^hola`,
				`^buen`,
				`^buenas`,
			},
			Priority:    1,
			ContextTags: []string{"inicio_conversacion", "retorno_cliente"},
			Examples:    []string{"hola", "buenos días", "buenas tardes", "buenas noches", "hola, qué tal"},
		},
		{
			Name: model.IntentProductInquiry,
			Patterns: []string{
				`\b(tienen|hay|venden|tienes|disponible|stock)\s+(.*)`,
				`\b(quiero|necesito|busco|deseo)\s+(.*)`,
				`\b(cuánto|cuesta|precio|valor)\s+(.*)`,
				`\b(dónde está|dónde encuentro|encuentro)\s+(.*)`,
			},
			Priority:    2,
			ContextTags: []string{"busqueda_producto", "consulta_precio", "disponibilidad"},
			Examples:    []string{"tienen leche", "cuánto cuesta el arroz", "busco aceite", "precio del pollo"},
			Captures:    true,
		},
		{
			Name: model.IntentComparison,
			Patterns: []string{
				`\b(cuál es mejor|diferencia entre|comparar|versus|vs)\s+(.*)`,
				`\b(qué me recomiendas|mejor opción|recomendación)\s+(.*)`,
			},
			Priority:    2,
			ContextTags: []string{"comparacion", "recomendacion"},
			Examples:    []string{"cuál es mejor leche", "comparar arroz", "qué me recomiendas para el desayuno"},
			Captures:    true,
		},
		{
			Name: model.IntentHours,
			Patterns: []string{
				`\b(horario|hora|abren|cierran|atención|cuándo abren|está abierto)\b`,
				`\b(a qué hora|hasta qué hora|está abierto)\b`,
			},
			Priority:    1,
			ContextTags: []string{"informacion_tienda", "horarios"},
			Examples:    []string{"horario", "a qué hora abren", "hasta qué hora atienden", "está abierto"},
			Temporal:    []string{"ahora", "actualmente", "en este momento", "hoy", "mañana"},
		},
		{
			Name: model.IntentLocation,
			Patterns: []string{
				`\b(dónde están|ubicación|dirección|cómo llego|dónde queda)\b`,
				`\b(están en|sucursal|local|tienda)\b`,
			},
			Priority:    1,
			ContextTags: []string{"informacion_tienda", "ubicacion"},
			Examples:    []string{"dónde están", "dirección", "cómo llego a la tienda", "dónde queda"},
		},
		{
			Name: model.IntentDelivery,
			Patterns: []string{
				`\b(delivery|domicilio|envío|mandan a casa|entregan)\b`,
				`\b(cuánto cuesta el delivery|zona de delivery)\b`,
			},
			Priority:    2,
			ContextTags: []string{"servicio", "delivery"},
			Examples:    []string{"delivery", "hacen delivery", "cuánto cuesta el delivery", "entregan a domicilio"},
			Temporal:    []string{"hoy", "ahora", "cuanto tiempo", "cuánto tiempo", "cuándo llega"},
		},
		{
			Name: model.IntentPurchaseOrder,
			Patterns: []string{
				`\b(quiero pedir|hacer pedido|hacer un pedido|ordenar|comprar)\s+(.*)`,
				`\b(me manda|envíame|tráeme|trae me)\s+(.*)`,
			},
			Priority:    3,
			ContextTags: []string{"pedido", "compra"},
			Examples:    []string{"quiero pedir arroz", "comprar leche", "hacer un pedido de pollo"},
			Temporal:    []string{"ya", "inmediato", "ahora mismo", "urgente"},
			Captures:    true,
		},
		{
			Name: model.IntentConfirmOrder,
			Patterns: []string{
				`\b(confirmo|confirmar|cerrar|finalizar|terminar)\s+(el\s+|mi\s+)?(pedido|compra|orden)\b`,
				`\b(eso es todo|sería todo|nada más)\b`,
			},
			Priority:    3,
			ContextTags: []string{"pedido", "cierre"},
			Examples:    []string{"confirmo mi pedido", "eso es todo", "finalizar compra"},
		},
		{
			Name: model.IntentCancelOrder,
			Patterns: []string{
				`\b(cancelar|cancela|anular|anula|borrar|borra)\s+(el\s+|mi\s+)?(pedido|compra|orden)\b`,
				`\b(ya no quiero (el|mi) pedido)\b`,
			},
			Priority:    3,
			ContextTags: []string{"pedido", "cancelacion"},
			Examples:    []string{"cancelar pedido", "anula mi pedido", "ya no quiero el pedido"},
		},
		{
			Name: model.IntentComplaint,
			Patterns: []string{
				`\b(está malo|mala calidad|queja|reclamo|problema|ayuda|urgente|decepcionado|molesto|enojado|frustrado)\b`,
				`\b(no me gustó|no es bueno|defectuoso|malo servicio|mala atención)\b`,
				`\b(estoy|estoy muy|muy)\s+(decepcionado|molesto|enojado|frustrado|insatisfecho)\b`,
				`\b(servicio|atención|producto)\s+(malo|mala|pésimo|terrible)\b`,
			},
			Priority:    4,
			ContextTags: []string{"atencion_cliente", "reclamo"},
			Examples:    []string{"tengo una queja", "quiero hacer un reclamo", "mala atención", "el producto está malo"},
		},
		{
			Name: model.IntentFarewell,
			Patterns: []string{
				`\b(adiós|hasta luego|chau|bye|nos vemos|gracias|muchas gracias)\b`,
				`\b(está bien|ok|perfecto|listo)\b.*\b(adiós|hasta luego)\b`,
			},
			Priority:    1,
			ContextTags: []string{"cierre_conversacion"},
			Examples:    []string{"adiós", "hasta luego", "chau", "nos vemos"},
		},
	}
}

// specificity ranks intents when several readings are comparably strong;
// the most specific business action comes first.
var specificity = []model.IntentName{
	model.IntentPurchaseOrder,
	model.IntentProductInquiry,
	model.IntentComparison,
	model.IntentDelivery,
	model.IntentHours,
}

// serviceTopics are intents whose keywords, when they fall inside a captured
// product phrase, show the phrase is not about a product.
var serviceTopics = map[model.IntentName]bool{
	model.IntentHours:     true,
	model.IntentLocation:  true,
	model.IntentDelivery:  true,
	model.IntentComplaint: true,
}
