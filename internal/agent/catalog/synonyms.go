package catalog

import (
	"regexp"
	"strconv"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/lexicon"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
)

// keywordSynonyms maps a word found in a product name to terms customers use
// for it.
var keywordSynonyms = []struct {
	key      string
	variants []string
}{
	{"leche", []string{"lácteo", "lácteos", "lacteo", "lacteos", "bebida láctea", "vaca", "vacuno"}},
	{"yogurt", []string{"yogur", "yoghurt", "lácteo", "fermentado", "probiótico"}},
	{"queso", []string{"queso fresco", "lácteo", "derivado", "cuajada"}},
	{"pollo", []string{"ave", "pollo fresco", "carne de pollo", "pollo entero", "gallina"}},
	{"res", []string{"vaca", "ternera", "carne roja", "bovino", "vacuno"}},
	{"pescado", []string{"pescado fresco", "marisco", "producto del mar", "pez"}},
	{"arroz", []string{"grano", "cereal", "arroz blanco", "arroz integral", "grano de arroz"}},
	{"azúcar", []string{"endulzante", "dulce", "carbohidrato", "sacarosa"}},
	{"sal", []string{"condimento", "sazonador", "cloruro de sodio"}},
	{"plátano", []string{"banana", "guineo", "fruta", "banano"}},
	{"yuca", []string{"mandioca", "casaba", "tubérculo", "raíz"}},
	{"camu camu", []string{"fruta amazónica", "vitamina c", "fruta silvestre"}},
	{"aceite", []string{"grasa", "aceite vegetal", "aceite de cocina"}},
	{"pan", []string{"pan fresco", "pan de mesa", "harina"}},
	{"huevo", []string{"huevo fresco", "huevo gallina", "proteína", "clara y yema"}},
}

// brandSynonyms maps a brand to the phrases customers use for it.
var brandSynonyms = []struct {
	brand    string
	variants []string
}{
	{"gloria", []string{"gloria", "leche gloria", "marca gloria"}},
	{"costeño", []string{"costeño", "arroz costeño", "marca costeño"}},
	{"primor", []string{"primor", "aceite primor", "marca primor"}},
	{"laive", []string{"laive", "lácteo laive", "marca laive"}},
	{"pura vida", []string{"pura vida", "leche pura vida", "marca pura vida"}},
	{"san fernando", []string{"san fernando", "pollo san fernando", "marca san fernando"}},
}

var sizePattern = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s?(kg|g|l|ml)\b`)

// Synonyms is the generated alias set for one product.
type Synonyms struct {
	// Mentions are the aliases safe to look for inside free text.
	Mentions []string
	// Sizes are unit spellings such as "1l" or "1000 ml"; they only help
	// explicit searches because many products share a size.
	Sizes []string
}

// All returns mentions followed by sizes.
func (s Synonyms) All() []string {
	out := make([]string, 0, len(s.Mentions)+len(s.Sizes))
	out = append(out, s.Mentions...)
	return append(out, s.Sizes...)
}

// GenerateSynonyms derives aliases from the product name: the name itself,
// keyword aliases, brand aliases and size spellings with unit conversions.
func GenerateSynonyms(p model.Product) Synonyms {
	name := lexicon.Lower(p.Name)
	words := lexicon.NewText(name)

	var s Synonyms
	s.Mentions = append(s.Mentions, name)
	for _, ks := range keywordSynonyms {
		if hasWordOrPlural(words, ks.key) {
			s.Mentions = append(s.Mentions, ks.variants...)
		}
	}
	for _, bs := range brandSynonyms {
		if hasWordOrPlural(words, bs.brand) {
			s.Mentions = append(s.Mentions, bs.variants...)
		}
	}

	if m := sizePattern.FindStringSubmatch(name); m != nil {
		n, _ := strconv.ParseFloat(m[1], 64)
		unit := m[2]
		s.Sizes = append(s.Sizes, m[1]+unit, m[1]+" "+unit, m[1]+" de "+unit)
		switch {
		case unit == "kg":
			s.Sizes = append(s.Sizes, sizeSpellings(n*1000, "g")...)
		case unit == "g" && n >= 1000:
			s.Sizes = append(s.Sizes, sizeSpellings(n/1000, "kg")...)
		case unit == "l":
			s.Sizes = append(s.Sizes, sizeSpellings(n*1000, "ml")...)
		case unit == "ml" && n >= 1000:
			s.Sizes = append(s.Sizes, sizeSpellings(n/1000, "l")...)
		}
	}

	s.Mentions = dedupe(s.Mentions)
	s.Sizes = dedupe(s.Sizes)
	return s
}

func sizeSpellings(n float64, unit string) []string {
	v := strconv.FormatFloat(n, 'f', -1, 64)
	return []string{v + unit, v + " " + unit}
}

func hasWordOrPlural(t lexicon.Text, word string) bool {
	return t.HasAny(word, word+"s", word+"es")
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Brands lists the brand names recognized in customer messages.
func Brands() []string {
	out := make([]string, len(brandSynonyms))
	for i, bs := range brandSynonyms {
		out[i] = bs.brand
	}
	return out
}
