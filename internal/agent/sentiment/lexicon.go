package sentiment

var positiveWords = []string{
	"excelente", "perfecto", "genial", "maravilloso", "fantástico", "increíble",
	"bueno", "buena", "buenísimo", "me encanta", "me gusta", "me encantó", "me gustó",
	"estupendo", "fenomenal", "espectacular", "súper", "super", "chévere", "chevere",
	"bacán", "bakan", "padre", "gracias", "thank", "agradecido", "agradecida",
	"feliz", "contento", "contenta", "satisfecho", "satisfecha", "recomiendo", "recomendado",
}

var negativeWords = []string{
	"malo", "mala", "pésimo", "pesimo", "horrible", "terrible", "espantoso", "espantosa",
	"detestable", "asco", "no me gusta", "no me gustó", "no me encanta", "odio", "odia",
	"detesto", "detesta", "insatisfecho", "insatisfecha", "decepcionado", "decepcionada",
	"frustrado", "frustrada", "enojado", "enojada", "molesto", "molesta", "irritado",
	"irritada", "problema", "problemas", "queja", "reclamo", "defectuoso", "defectuosa",
	"estropeado", "estropeada", "dañado", "dañada", "roto", "rota", "malo servicio", "mala atención",
}

var neutralWords = []string{
	"regular", "normal", "más o menos", "mas o menos", "ni fu ni fa", "tal vez", "talvez",
	"quizás", "quizas", "posiblemente", "probablemente", "no sé", "no se", "creo",
	"supongo", "me parece", "parece",
}

var urgencyWords = []string{
	"urgente", "rápido", "rapido", "inmediato", "ya", "ahora", "pronto", "importante",
	"necesario", "imprescindible", "essential", "crítico", "critico", "crítica", "critica",
	"emergencia",
}

// distressWords signal a customer asking for help; they only feed the
// signal counts.
var distressWords = []string{
	"ayuda", "ayuden", "auxilio", "socorro", "emergencia", "problema", "problemas",
	"urgente", "necesito", "necesita", "requiero", "requiere",
}
