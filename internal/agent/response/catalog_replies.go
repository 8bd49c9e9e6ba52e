package response

import (
	"context"
	"fmt"
	"strings"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
)

func empathy(s model.SentimentResult) string {
	switch {
	case s.Emotion == model.EmotionUrgentNeutral || s.Emotion == model.EmotionNegativeUrgent || s.Emotion == model.EmotionPositiveUrgent:
		return "⚡ Entiendo que lo necesitas rápido. "
	case s.Sentiment == model.SentimentPositive:
		return "😊 ¡Me alegra que estés interesado! "
	case s.Sentiment == model.SentimentNegative:
		return "😔 Entiendo tu preocupación, déjame ayudarte. "
	default:
		return ""
	}
}

func (g *Generator) productInquiry(ctx context.Context, t *turn) string {
	prefix := empathy(t.sentiment)
	e := t.cand.Entities

	if e.Product != nil {
		t.mem.ShowProducts([]model.Product{*e.Product})
		return prefix + productCard(*e.Product) + "\n\n¿Cuántas unidades necesitas?"
	}

	term := e.SearchTerm
	if term == "" {
		term = e.Category
	}
	if term == "" {
		return prefix + "🛒 ¿Qué producto estás buscando? Puedo ayudarte con precios y disponibilidad."
	}

	found := g.search(ctx, term)
	if len(found) == 0 {
		return prefix + fmt.Sprintf("🔍 No encontré productos para \"%s\". ¿Podrías darme otro nombre o marca?", term)
	}
	if e.Price != nil {
		found = filterByPrice(found, e.Price)
		if len(found) == 0 {
			return prefix + fmt.Sprintf("🔍 No tengo %s %s. ¿Te muestro otras opciones?", term, describeBound(e.Price))
		}
	}

	t.mem.ShowProducts(found)
	if len(found) == 1 {
		return prefix + productCard(found[0]) + "\n\n¿Cuántas unidades necesitas?"
	}
	return prefix + fmt.Sprintf("🛒 Encontré estas opciones para \"%s\":\n%s\n\nEscribe el número de la opción que prefieras.",
		term, productList(t.mem.LastProducts))
}

func (g *Generator) comparison(ctx context.Context, t *turn) string {
	term := t.cand.Entities.SearchTerm
	if term == "" && t.cand.Entities.Product != nil {
		term = t.cand.Entities.Product.Name
	}
	if term == "" {
		return "⚖️ ¿Qué productos quieres comparar? Por ejemplo: \"compara arroz costeño y arroz paisana\"."
	}

	found := g.search(ctx, term)
	switch len(found) {
	case 0:
		return fmt.Sprintf("🔍 No encontré productos para comparar con \"%s\".", term)
	case 1:
		t.mem.ShowProducts(found)
		return "Solo tengo una opción:\n" + productCard(found[0])
	}

	a, b := found[0], found[1]
	t.mem.ShowProducts([]model.Product{a, b})
	var sb strings.Builder
	sb.WriteString("⚖️ Comparación:\n")
	fmt.Fprintf(&sb, "1. *%s* - %s (stock %d)\n", a.Name, money(a.Price), a.Stock)
	fmt.Fprintf(&sb, "2. *%s* - %s (stock %d)\n", b.Name, money(b.Price), b.Stock)
	switch {
	case a.Price < b.Price:
		fmt.Fprintf(&sb, "💡 %s es más económico por %s.", a.Name, money(b.Price-a.Price))
	case b.Price < a.Price:
		fmt.Fprintf(&sb, "💡 %s es más económico por %s.", b.Name, money(a.Price-b.Price))
	default:
		sb.WriteString("💡 Ambos tienen el mismo precio.")
	}
	sb.WriteString("\n¿Cuál prefieres? Responde 1 o 2.")
	return sb.String()
}

func (g *Generator) purchaseOrder(ctx context.Context, t *turn) string {
	e := t.cand.Entities
	if e.Product != nil {
		q := 1.0
		if e.Quantity != nil {
			q = *e.Quantity
		}
		t.mem.ShowProducts([]model.Product{*e.Product})
		t.mem.Select(*e.Product)
		return g.addToOrder(t, *e.Product, q, e.Unit)
	}

	if e.SearchTerm != "" {
		if found := g.search(ctx, e.SearchTerm); len(found) > 0 {
			t.mem.ShowProducts(found)
			return fmt.Sprintf("🛒 Tengo estas opciones de \"%s\":\n%s\n\n¿Cuál deseas y cuántas unidades?",
				e.SearchTerm, productList(t.mem.LastProducts))
		}
	}
	return "🛒 ¡Con gusto tomo tu pedido! ¿Qué productos y cuántas unidades necesitas?"
}

// addToOrder appends a line when stock allows it. Above stock it offers the
// maximum, remembered until the next message, and adds nothing.
func (g *Generator) addToOrder(t *turn, p model.Product, q float64, unit string) string {
	if unit == "" {
		unit = defaultUnit
	}
	if !p.InStock() {
		return fmt.Sprintf("😔 Lo siento, *%s* está agotado por ahora. ¿Te muestro otra opción?", p.Name)
	}
	if q > float64(p.Stock) {
		avail := float64(p.Stock)
		t.mem.Select(p)
		t.mem.PendingOffer = &model.OrderLine{Product: p, Quantity: avail, Unit: unit, Subtotal: roundCents(p.Price * avail)}
		return fmt.Sprintf("⚠️ Solo tenemos %d unidades de *%s* disponibles. ¿Quieres llevar las %d?",
			p.Stock, p.Name, p.Stock)
	}

	subtotal := roundCents(p.Price * q)
	if !t.mem.AddOrderLine(model.OrderLine{Product: p, Quantity: q, Unit: unit, Subtotal: subtotal}) {
		return "📋 Tu pedido ya tiene demasiados productos. Escribe \"confirmar pedido\" para cerrarlo o \"cancelar pedido\" para empezar de nuevo."
	}
	return fmt.Sprintf("✅ Agregué %s de *%s* a tu pedido.\n💰 Subtotal: %s\n🧾 Total del pedido: %s\n\nEscribe \"confirmar pedido\" para finalizar o \"cancelar pedido\" si cambiaste de opinión.",
		withUnit(q, unit), p.Name, money(subtotal), money(t.mem.OrderTotal()))
}

func (g *Generator) productConfirmed(_ context.Context, t *turn) string {
	p, ok := t.mem.FocusProduct()
	if !ok {
		return "👍 ¡Perfecto! ¿Qué producto te gustaría?"
	}
	t.mem.Select(p)
	return "👍 ¡Excelente elección!\n" + productCard(p) + "\n\n¿Cuántas unidades necesitas?"
}

func (g *Generator) changeProduct(_ context.Context, t *turn) string {
	if len(t.mem.LastProducts) < 2 {
		return "🔄 ¡Claro! ¿Qué otro producto te gustaría ver?"
	}
	rest := t.mem.LastProducts[1:]
	t.mem.ShowProducts(rest)
	return "🔄 Estas son otras opciones:\n" + productList(t.mem.LastProducts) + "\n\nEscribe el número de la que prefieras."
}

func (g *Generator) productSelection(_ context.Context, t *turn) string {
	sel, ok := t.cand.Payload.(model.ProductSelection)
	if !ok {
		return "🤔 ¿Cuál de los productos te interesa? Puedes decirme el nombre o el número."
	}
	t.mem.Select(sel.Product)
	return "👌 Elegiste:\n" + productCard(sel.Product) + "\n\n¿Cuántas unidades necesitas?"
}

func (g *Generator) numericSelection(_ context.Context, t *turn) string {
	sel, ok := t.cand.Payload.(model.NumericSelection)
	if !ok {
		return "🔢 ¿Qué opción eliges? Escribe el número de la lista."
	}
	if sel.Index < 1 || sel.Index > len(t.mem.LastProducts) {
		return fmt.Sprintf("🔢 Seleccionaste #%d, pero no tengo esa opción disponible. ¿Podrías repetir tu elección?", sel.Index)
	}
	p := t.mem.LastProducts[sel.Index-1]
	t.mem.Select(p)
	return fmt.Sprintf("👌 Opción %d:\n%s\n\n¿Cuántas unidades necesitas?", sel.Index, productCard(p))
}

func (g *Generator) specifyQuantity(_ context.Context, t *turn) string {
	q, unit := 0.0, ""
	switch spec := t.cand.Payload.(type) {
	case model.QuantitySpec:
		q, unit = spec.Quantity, spec.Unit
	default:
		if t.cand.Entities.Quantity != nil {
			q, unit = *t.cand.Entities.Quantity, t.cand.Entities.Unit
		}
	}
	if q <= 0 {
		return "📦 ¿Cuántas unidades necesitas?"
	}

	p, ok := t.mem.FocusProduct()
	if !ok {
		return fmt.Sprintf("📦 Confirmaste %s. ¿De qué producto?", withUnit(q, unit))
	}
	return g.addToOrder(t, p, q, unit)
}

func (g *Generator) confirmOrder(_ context.Context, t *turn) string {
	if len(t.mem.CurrentOrder) == 0 {
		return "📋 Aún no tienes productos en tu pedido. ¿Qué te gustaría pedir?"
	}
	var b strings.Builder
	b.WriteString("🧾 *Resumen de tu pedido:*\n")
	for i, line := range t.mem.CurrentOrder {
		fmt.Fprintf(&b, "%d. %s x %s = %s\n", i+1, line.Product.Name, withUnit(line.Quantity, line.Unit), money(line.Subtotal))
	}
	fmt.Fprintf(&b, "💰 *Total: %s*\n\n", money(t.mem.OrderTotal()))
	b.WriteString("✅ ¡Pedido confirmado! Te contactaremos para coordinar la entrega. ¡Gracias por tu compra!")
	t.mem.ClearOrder()
	t.mem.SelectedProduct = nil
	return b.String()
}

func (g *Generator) cancelOrder(_ context.Context, t *turn) string {
	if len(t.mem.CurrentOrder) == 0 {
		return "📋 No tienes un pedido en curso. ¿Te ayudo con algo más?"
	}
	t.mem.ClearOrder()
	t.mem.SelectedProduct = nil
	return "🗑️ Listo, cancelé tu pedido. Cuando quieras empezamos uno nuevo."
}
