package response

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
)

// openingHours is the daily timetable in store-local minutes since midnight.
type openingHours struct {
	open, close int
}

func (h openingHours) contains(minute int) bool {
	return minute >= h.open && minute < h.close
}

var (
	weekdayHours = openingHours{open: 7 * 60, close: 21 * 60}
	sundayHours  = openingHours{open: 8 * 60, close: 14 * 60}
)

func hoursFor(day time.Weekday) openingHours {
	if day == time.Sunday {
		return sundayHours
	}
	return weekdayHours
}

// IsOpen reports whether the store is open at t, read on the store's clock.
func (g *Generator) IsOpen(t time.Time) bool {
	local := t.In(g.business.Location())
	return hoursFor(local.Weekday()).contains(local.Hour()*60 + local.Minute())
}

func greetingByHour(hour int) string {
	switch {
	case hour < 12:
		return "¡Buenos días"
	case hour < 18:
		return "¡Buenas tardes"
	default:
		return "¡Buenas noches"
	}
}

// favoriteCategory is the most asked-about category, ties broken by name.
func favoriteCategory(prefs map[string]int) string {
	names := make([]string, 0, len(prefs))
	for k := range prefs {
		names = append(names, k)
	}
	sort.Strings(names)
	best, n := "", 0
	for _, k := range names {
		if prefs[k] > n {
			best, n = k, prefs[k]
		}
	}
	return best
}

func (g *Generator) greeting(_ context.Context, t *turn) string {
	now := g.localNow()
	var b strings.Builder
	b.WriteString(greetingByHour(now.Hour()))
	if t.mem.VisitCount > 1 {
		b.WriteString(", qué gusto verte de nuevo! 😊")
	} else {
		fmt.Fprintf(&b, "! Bienvenido a *%s* 🛒", g.business.Name)
	}

	switch t.sentiment.Sentiment {
	case model.SentimentNegative:
		b.WriteString("\nVeo que algo no anda bien, cuéntame y lo resolvemos juntos.")
	case model.SentimentPositive:
		b.WriteString("\n¡Me encanta tu energía!")
	}

	if fav := favoriteCategory(t.mem.Preferences); fav != "" && t.mem.VisitCount > 1 {
		fmt.Fprintf(&b, "\n¿Buscas algo de %s como la última vez?", fav)
	} else {
		b.WriteString("\n¿En qué puedo ayudarte hoy? Puedo mostrarte productos, precios, horarios o tomar tu pedido.")
	}
	return b.String()
}

func (g *Generator) hours(_ context.Context, t *turn) string {
	status := "🔴 Ahora estamos *cerrados*."
	if g.IsOpen(g.now()) {
		status = "🟢 Ahora estamos *abiertos*."
	}
	return "🕐 *Horarios de atención:*\n" +
		"Lunes a Sábado: 7:00 AM - 9:00 PM\n" +
		"Domingo: 8:00 AM - 2:00 PM\n" +
		"Feriados: 8:00 AM - 1:00 PM\n\n" + status
}

func (g *Generator) location(_ context.Context, _ *turn) string {
	return fmt.Sprintf("📍 *%s*\n%s\nFrente a la Plaza de Armas.\n📞 %s\n📱 WhatsApp: %s",
		g.business.Name, g.business.Address, g.business.Phone, g.business.WhatsApp)
}

func (g *Generator) delivery(_ context.Context, t *turn) string {
	var b strings.Builder
	b.WriteString("🚚 *Delivery disponible:*\n")
	b.WriteString("• Centro de Tarapoto: S/ 5.00\n")
	b.WriteString("• Banda de Shilcayo y Morales: S/ 8.00\n")
	b.WriteString("⏱️ Entrega en 30 a 60 minutos.\n")
	b.WriteString("💳 Pagos: Efectivo, Tarjeta, Yape o Plin.")
	if len(t.mem.CurrentOrder) > 0 {
		fmt.Fprintf(&b, "\n\nTu pedido actual suma %s. Escribe \"confirmar pedido\" para que lo enviemos.", money(t.mem.OrderTotal()))
	}
	return b.String()
}

func (g *Generator) complaint(_ context.Context, t *turn) string {
	var opening string
	switch t.sentiment.Emotion {
	case model.EmotionVeryNegative:
		opening = "😔 Lamento muchísimo lo ocurrido. Tu experiencia es muy importante para nosotros y vamos a resolverlo."
	case model.EmotionNegativeUrgent:
		opening = "⚡ Entiendo la urgencia. Vamos a atender tu caso de inmediato."
	default:
		opening = "🙏 Gracias por contarnos. Tus comentarios nos ayudan a mejorar."
	}
	return fmt.Sprintf("%s\n\nPuedes comunicarte directamente con nosotros:\n📱 WhatsApp: %s\n📞 %s\n✉️ %s",
		opening, g.business.WhatsApp, g.business.Phone, g.business.Email)
}

func (g *Generator) farewell(_ context.Context, t *turn) string {
	if t.mem.VisitCount > 3 {
		return "👋 ¡Gracias por tu preferencia! Es un gusto tenerte como cliente frecuente. ¡Hasta pronto!"
	}
	return fmt.Sprintf("👋 ¡Gracias por escribir a %s! Vuelve cuando quieras.", g.business.Name)
}

var (
	confirmationVariants = []string{
		"👍 ¡Perfecto! ¿En qué más te ayudo?",
		"✅ ¡Listo! ¿Necesitas algo más?",
		"😊 ¡Genial! Dime qué más necesitas.",
		"👌 ¡Entendido! ¿Seguimos con tu compra?",
	}
	negationVariants = []string{
		"👌 Entendido. ¿Hay algo más que te interese?",
		"🙂 No hay problema. ¿Te muestro otra cosa?",
		"👍 De acuerdo. Si cambias de opinión, aquí estoy.",
		"😊 Está bien. ¿Buscas algún otro producto?",
	}
	thanksVariants = []string{
		"😊 ¡De nada! Siempre es un gusto ayudarte.",
		"🙌 ¡Con mucho gusto! ¿Algo más?",
		"💚 ¡A ti por preferirnos!",
		"😄 ¡Para eso estamos! Aquí estoy si necesitas algo más.",
	}
)

func (g *Generator) confirmation(_ context.Context, t *turn) string {
	if len(t.mem.CurrentOrder) > 0 {
		return fmt.Sprintf("👍 ¡Perfecto! Llevas %d producto(s) por %s. Escribe \"confirmar pedido\" para finalizar o dime qué más agrego.",
			len(t.mem.CurrentOrder), money(t.mem.OrderTotal()))
	}
	return rotate(confirmationVariants, t.mem.VisitCount)
}

func (g *Generator) negation(_ context.Context, t *turn) string {
	return rotate(negationVariants, t.mem.VisitCount)
}

func (g *Generator) thanks(_ context.Context, t *turn) string {
	return rotate(thanksVariants, t.mem.VisitCount)
}

func (g *Generator) apology(_ context.Context, _ *turn) string {
	return "😊 ¡No te preocupes! Sigamos. ¿En qué te puedo ayudar?"
}

func (g *Generator) unknown(_ context.Context, t *turn) string {
	if note, ok := t.cand.Payload.(model.EscalationNote); ok && note.SuggestedReply != "" {
		return note.SuggestedReply
	}
	return "🤔 No estoy seguro de haber entendido. Puedo ayudarte con:\n" +
		"• Consultar productos y precios\n" +
		"• Hacer un pedido\n" +
		"• Horarios y ubicación\n" +
		"• Delivery\n" +
		"¿Podrías decirlo de otra forma?"
}

func (g *Generator) multiIntent(t *turn) string {
	labels := []string{"*" + intentLabel(t.cand.Intent) + "*"}
	for _, alt := range t.cand.Alternatives {
		labels = append(labels, "*"+intentLabel(alt.Intent)+"*")
	}
	return fmt.Sprintf("🤔 Detecté múltiples intenciones en tu mensaje: %s. ¿Con cuál empezamos?",
		strings.Join(labels, " y "))
}

// FallbackReply is the safe answer for a turn that failed unexpectedly.
const FallbackReply = "Lo siento, estoy teniendo dificultades para procesar tu mensaje. ¿Podrías intentar de nuevo? 🙏"
