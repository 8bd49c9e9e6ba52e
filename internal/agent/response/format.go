package response

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
)

const defaultUnit = "unidad"

// money formats soles with two decimals.
func money(v float64) string {
	return fmt.Sprintf("S/ %.2f", roundCents(v))
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// withUnit renders "2 unidades", "1 docena", "0.5 kg".
func withUnit(q float64, unit string) string {
	if unit == "" {
		unit = defaultUnit
	}
	return formatQuantity(q) + " " + pluralUnit(unit, q)
}

func pluralUnit(unit string, q float64) string {
	if q == 1 || len([]rune(unit)) <= 2 {
		return unit
	}
	switch unit[len(unit)-1] {
	case 'a', 'e', 'i', 'o', 'u':
		return unit + "s"
	default:
		return unit + "es"
	}
}

func stockBadge(stock int) string {
	switch {
	case stock > 20:
		return "✅ Disponible"
	case stock > 5:
		return "⚠️ Pocas unidades"
	case stock > 0:
		return "🔥 ¡Últimas unidades!"
	default:
		return "❌ Agotado"
	}
}

// productCard is the detailed view of a single product.
func productCard(p model.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📦 *%s*\n", p.Name)
	if p.Description != "" {
		b.WriteString(p.Description + "\n")
	}
	fmt.Fprintf(&b, "💰 Precio: %s\n", money(p.Price))
	fmt.Fprintf(&b, "📊 Stock: %d unidades (%s)", p.Stock, stockBadge(p.Stock))
	if p.Category != "" {
		fmt.Fprintf(&b, "\n🏷️ Categoría: %s", p.Category)
	}
	return b.String()
}

// productList numbers products from 1 so a follow-up digit can pick one.
func productList(ps []model.Product) string {
	var b strings.Builder
	for i, p := range ps {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. *%s* - %s", i+1, p.Name, money(p.Price))
		if !p.InStock() {
			b.WriteString(" (agotado)")
		}
	}
	return b.String()
}

func filterByPrice(ps []model.Product, bound *model.PriceBound) []model.Product {
	if bound == nil {
		return ps
	}
	out := make([]model.Product, 0, len(ps))
	for _, p := range ps {
		switch bound.Kind {
		case model.PriceBelow:
			if p.Price > bound.Min {
				continue
			}
		case model.PriceAbove:
			if p.Price < bound.Min {
				continue
			}
		case model.PriceBetween:
			if p.Price < bound.Min || p.Price > bound.Max {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

func describeBound(bound *model.PriceBound) string {
	switch bound.Kind {
	case model.PriceBelow:
		return "por menos de " + money(bound.Min)
	case model.PriceAbove:
		return "por más de " + money(bound.Min)
	default:
		return fmt.Sprintf("entre %s y %s", money(bound.Min), money(bound.Max))
	}
}

// rotate picks a variant deterministically from the visit count.
func rotate(variants []string, visits int) string {
	if visits < 0 {
		visits = -visits
	}
	return variants[visits%len(variants)]
}

var intentLabels = map[model.IntentName]string{
	model.IntentGreeting:         "saludo",
	model.IntentProductInquiry:   "consulta de productos",
	model.IntentComparison:       "comparación de productos",
	model.IntentHours:            "horarios",
	model.IntentLocation:         "ubicación de la tienda",
	model.IntentDelivery:         "delivery",
	model.IntentPurchaseOrder:    "hacer un pedido",
	model.IntentConfirmOrder:     "confirmar tu pedido",
	model.IntentCancelOrder:      "cancelar tu pedido",
	model.IntentComplaint:        "quejas o sugerencias",
	model.IntentFarewell:         "despedida",
	model.IntentProductConfirmed: "confirmar un producto",
	model.IntentChangeProduct:    "ver otras opciones",
	model.IntentProductSelection: "elegir un producto",
	model.IntentNumericSelection: "elegir una opción",
	model.IntentSpecifyQuantity:  "indicar una cantidad",
}

func intentLabel(n model.IntentName) string {
	if l, ok := intentLabels[n]; ok {
		return l
	}
	return strings.ReplaceAll(string(n), "_", " ")
}
