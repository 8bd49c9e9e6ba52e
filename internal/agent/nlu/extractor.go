package nlu

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/catalog"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/lexicon"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
)

const defaultUnit = "unidad"

var (
	quantityPattern = regexp.MustCompile(`\b(\d+(?:[.,]\d+)?)\s*(` + unitWords + `)?\b`)
	pricePattern    = regexp.MustCompile(
		`(menos de|por debajo de|hasta|más de|mas de|mayor a|entre)\s*(?:s/\.?\s*)?(\d+(?:[.,]\d+)?)(?:\s*(?:y|a)\s*(?:s/\.?\s*)?(\d+(?:[.,]\d+)?))?`)
	urgentWords = []string{"urgente", "rápido", "rapido", "ahora"}

	pricePrefix = regexp.MustCompile(`\bpor\s*$`)
	priceSuffix = regexp.MustCompile(`^\s*(?:soles?\b|s/\.?)`)
)

// Extractor pulls entities out of a message using the product index.
type Extractor struct {
	index  *catalog.Index
	brands []string
}

func NewExtractor(index *catalog.Index) *Extractor {
	return &Extractor{index: index, brands: catalog.Brands()}
}

// Extract returns the entity bag for t. capture is the product phrase a
// pattern captured, if any. The first catalog product mentioned wins.
func (x *Extractor) Extract(t lexicon.Text, capture string) model.Entities {
	var e model.Entities

	if x.index != nil {
		if p, ok := x.index.FindInText(t.Raw); ok {
			e.Product = &p
			e.Category = p.Category
		}
	}

	priceSpan := [2]int{-1, -1}
	if loc := pricePattern.FindStringSubmatchIndex(t.Lower); loc != nil {
		if pb, ok := priceBound(t.Lower, loc); ok {
			e.Price = &pb
			priceSpan = [2]int{loc[0], loc[5]}
			if pb.Kind == model.PriceBetween {
				priceSpan[1] = loc[1]
			}
			priceSpan = widenPriceSpan(t.Lower, priceSpan)
		}
	}

	for _, loc := range quantityPattern.FindAllStringSubmatchIndex(t.Lower, -1) {
		if loc[0] < priceSpan[1] && loc[1] > priceSpan[0] {
			continue
		}
		q, err := parseNumber(t.Lower[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		e.Quantity = &q
		e.Unit = defaultUnit
		if loc[4] >= 0 {
			e.Unit = normalizeUnit(t.Lower[loc[4]:loc[5]])
		}
		break
	}

	e.Urgent = t.HasAny(urgentWords...)
	for _, b := range x.brands {
		if t.Has(b) {
			e.Brand = b
			break
		}
	}
	if capture != "" {
		if priceSpan[0] >= 0 {
			capture = strings.Replace(capture, t.Lower[priceSpan[0]:priceSpan[1]], " ", 1)
		}
		e.SearchTerm = catalog.CleanTerm(capture)
	}
	return e
}

func priceBound(s string, loc []int) (model.PriceBound, bool) {
	lo, err := parseNumber(s[loc[4]:loc[5]])
	if err != nil {
		return model.PriceBound{}, false
	}
	switch s[loc[2]:loc[3]] {
	case "menos de", "por debajo de", "hasta":
		return model.PriceBound{Kind: model.PriceBelow, Min: lo}, true
	case "entre":
		if loc[6] < 0 {
			return model.PriceBound{}, false
		}
		hi, err := parseNumber(s[loc[6]:loc[7]])
		if err != nil {
			return model.PriceBound{}, false
		}
		if hi < lo {
			lo, hi = hi, lo
		}
		return model.PriceBound{Kind: model.PriceBetween, Min: lo, Max: hi}, true
	default:
		return model.PriceBound{Kind: model.PriceAbove, Min: lo}, true
	}
}

// widenPriceSpan takes in the "por" before a bound and the currency after
// it, as in "por menos de 10 soles".
func widenPriceSpan(s string, span [2]int) [2]int {
	if loc := pricePrefix.FindStringIndex(s[:span[0]]); loc != nil {
		span[0] = loc[0]
	}
	if loc := priceSuffix.FindStringIndex(s[span[1]:]); loc != nil {
		span[1] += loc[1]
	}
	return span
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}

func normalizeUnit(u string) string {
	switch {
	case u == "":
		return defaultUnit
	case u == "kg" || strings.HasPrefix(u, "kilo"):
		return "kg"
	case u == "g" || strings.HasPrefix(u, "gramo"):
		return "g"
	case u == "l" || strings.HasPrefix(u, "litro"):
		return "l"
	case strings.HasPrefix(u, "docena"):
		return "docena"
	default:
		return defaultUnit
	}
}
