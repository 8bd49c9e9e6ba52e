package catalog

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/lexicon"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
)

const (
	MaxResults = model.MaxLastProducts

	scoreName        = 1.0
	scoreSynonym     = 0.8
	scoreCategory    = 0.6
	scoreDescription = 0.5
	scorePopular     = 0.1
	scoreInStock     = 0.1
	scoreMax         = 1.5
	scoreThreshold   = 0.2

	popularAbove = 50

	broadCategoryScore = 0.4
	broadCategoryLimit = 3
	broadRelatedScore  = 0.3
	broadRelatedLimit  = 2
)

// relatedWords widens a search term that matched nothing.
var relatedWords = []struct {
	key   string
	words []string
}{
	{"comida", []string{"alimento", "producto", "alimenticio"}},
	{"bebida", []string{"líquido", "refresco", "agua"}},
	{"fruta", []string{"fruta fresca", "producto fresco"}},
	{"verdura", []string{"verdura fresca", "vegetal", "hortaliza"}},
	{"carne", []string{"proteína", "animal", "carnico"}},
	{"pescado", []string{"marisco", "producto del mar"}},
	{"lácteo", []string{"leche", "queso", "yogurt"}},
	{"grano", []string{"cereal", "semilla", "arroz", "trigo"}},
	{"condimento", []string{"especia", "saborizante", "sal"}},
	{"limpieza", []string{"aseo", "higiene", "jabón", "detergente"}},
}

var fillerWords = map[string]bool{
	"el": true, "la": true, "los": true, "las": true, "un": true, "una": true,
	"unos": true, "unas": true, "de": true, "del": true, "algo": true, "alguna": true,
	"algún": true, "favor": true, "por": true, "porfa": true, "porfavor": true,
	"hoy": true, "ahora": true, "ya": true,
}

// Match is a scored search hit.
type Match struct {
	Product model.Product
	Score   float64
}

// CleanTerm trims fillers and punctuation from a captured search phrase.
func CleanTerm(term string) string {
	words := lexicon.Tokens(term)
	for len(words) > 0 && fillerWords[words[0]] {
		words = words[1:]
	}
	for len(words) > 0 && fillerWords[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// Search returns up to MaxResults products related to term, best first.
// When the whole term matches nothing each longer word is tried on its own,
// then a broad search through categories and related words.
func (ix *Index) Search(ctx context.Context, term string) []model.Product {
	if err := ix.Ensure(ctx); err != nil {
		return nil
	}
	term = lexicon.Fold(CleanTerm(term))
	if term == "" {
		return nil
	}

	matches := ix.score(term)
	if len(matches) == 0 {
		for _, w := range strings.Fields(term) {
			if len([]rune(w)) <= 3 {
				continue
			}
			if matches = ix.score(w); len(matches) > 0 {
				break
			}
		}
	}
	if len(matches) == 0 {
		matches = ix.broad(term)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Product.Popularity > matches[j].Product.Popularity
	})
	if len(matches) > MaxResults {
		matches = matches[:MaxResults]
	}

	out := make([]model.Product, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Product)
	}
	return out
}

func (ix *Index) score(term string) []Match {
	entries, _ := ix.snapshot()
	var out []Match
	for _, e := range entries {
		if s := matchScore(e, term); s > scoreThreshold {
			out = append(out, Match{Product: e.Product, Score: s})
		}
	}
	return out
}

func matchScore(e Entry, term string) float64 {
	var s float64
	if strings.Contains(e.foldedName, term) {
		s += scoreName
	}
	for _, syn := range e.foldedAll {
		if strings.Contains(syn, term) {
			s += scoreSynonym
			break
		}
	}
	if strings.Contains(e.foldedCategory, term) {
		s += scoreCategory
	}
	if e.foldedDesc != "" && strings.Contains(e.foldedDesc, term) {
		s += scoreDescription
	}
	if e.Product.Popularity > popularAbove {
		s += scorePopular
	}
	if e.Product.InStock() {
		s += scoreInStock
	}
	return math.Min(s, scoreMax)
}

func (ix *Index) broad(term string) []Match {
	entries, categories := ix.snapshot()
	var out []Match
	seen := map[string]bool{}
	add := func(p model.Product, score float64) {
		if seen[p.ID] {
			return
		}
		seen[p.ID] = true
		out = append(out, Match{Product: p, Score: score})
	}

	for _, c := range categories {
		if !strings.Contains(lexicon.Fold(c.Name), term) && !strings.Contains(lexicon.Fold(c.Description), term) {
			continue
		}
		n := 0
		for _, e := range entries {
			if n == broadCategoryLimit {
				break
			}
			if strings.EqualFold(e.Product.Category, c.Name) {
				add(e.Product, broadCategoryScore)
				n++
			}
		}
		break
	}

	for _, rw := range relatedWords {
		if !strings.Contains(term, lexicon.Fold(rw.key)) {
			continue
		}
		for _, w := range rw.words {
			w = lexicon.Fold(w)
			n := 0
			for _, e := range entries {
				if n == broadRelatedLimit {
					break
				}
				if strings.Contains(e.foldedName, w) || containsAny(e.foldedAll, w) {
					add(e.Product, broadRelatedScore)
					n++
				}
			}
		}
	}
	return out
}

func containsAny(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.Contains(h, needle) {
			return true
		}
	}
	return false
}
