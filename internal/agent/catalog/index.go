package catalog

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/lexicon"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/metrics"
	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/inmaculada-bot/internal/core/error"
	logx "github.com/Chative-core-poc-v1/inmaculada-bot/pkg/logger"
)

// Entry is one product with its derived search data.
type Entry struct {
	Product  model.Product
	Synonyms Synonyms

	foldedName     string
	foldedCategory string
	foldedDesc     string
	foldedAll      []string
	mentionKeys    []string
}

func newEntry(p model.Product) Entry {
	syn := GenerateSynonyms(p)
	e := Entry{
		Product:        p,
		Synonyms:       syn,
		foldedName:     lexicon.Fold(p.Name),
		foldedCategory: lexicon.Fold(p.Category),
		foldedDesc:     lexicon.Fold(p.Description),
	}
	for _, s := range syn.All() {
		e.foldedAll = append(e.foldedAll, lexicon.Fold(s))
	}
	for _, s := range syn.Mentions {
		e.mentionKeys = append(e.mentionKeys, lexicon.Fold(s))
	}
	return e
}

// Index is the lazily built product synonym index. The first caller that
// needs it triggers the load; concurrent callers wait on the same load. A
// failed load leaves the index empty and the next call tries again. Once
// loaded the index is never refreshed.
type Index struct {
	source model.CatalogSource

	group singleflight.Group

	mu         sync.RWMutex
	loaded     bool
	entries    []Entry
	categories []model.Category
}

func NewIndex(source model.CatalogSource) *Index {
	return &Index{source: source}
}

// Ensure loads the catalog if it is not loaded yet.
func (ix *Index) Ensure(ctx context.Context) error {
	if ix.Loaded() {
		return nil
	}
	_, err, _ := ix.group.Do("catalog", func() (any, error) {
		if ix.Loaded() {
			return nil, nil
		}
		return nil, ix.load(ctx)
	})
	return err
}

// Loaded reports whether a load has succeeded.
func (ix *Index) Loaded() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.loaded
}

func (ix *Index) load(ctx context.Context) error {
	start := time.Now()
	products, err := ix.source.ListProducts(ctx)
	if err != nil {
		metrics.CatalogLoads.WithLabelValues("failed").Inc()
		logx.Error().Err(err).Msg("failed to load product catalog")
		return errx.WrapCatalog(err)
	}

	categories, err := ix.source.ListCategories(ctx)
	if err != nil {
		logx.Warn().Err(err).Msg("failed to load categories, deriving them from products")
		categories = categoriesFrom(products)
	}

	entries := make([]Entry, 0, len(products))
	for _, p := range products {
		entries = append(entries, newEntry(p))
	}

	ix.mu.Lock()
	ix.entries = entries
	ix.categories = categories
	ix.loaded = true
	ix.mu.Unlock()

	metrics.CatalogLoads.WithLabelValues("ok").Inc()
	logx.Info().
		Int("products", len(entries)).
		Int("categories", len(categories)).
		Dur("took", time.Since(start)).
		Msg("product catalog loaded")
	return nil
}

func (ix *Index) snapshot() ([]Entry, []model.Category) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.entries, ix.categories
}

// Products returns the indexed products in source order.
func (ix *Index) Products() []model.Product {
	entries, _ := ix.snapshot()
	out := make([]model.Product, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Product)
	}
	return out
}

// Entries returns the index entries in source order.
func (ix *Index) Entries() []Entry {
	entries, _ := ix.snapshot()
	return append([]Entry(nil), entries...)
}

// Categories returns the known categories.
func (ix *Index) Categories() []model.Category {
	_, cats := ix.snapshot()
	return append([]model.Category(nil), cats...)
}

// FindInText returns the first product, in catalog order, whose name or
// alias occurs in text. Size spellings are not considered.
func (ix *Index) FindInText(text string) (model.Product, bool) {
	entries, _ := ix.snapshot()
	t := lexicon.NewText(lexicon.Fold(text))
	for _, e := range entries {
		for _, key := range e.mentionKeys {
			if t.Has(key) {
				return e.Product, true
			}
		}
	}
	return model.Product{}, false
}

// FindByName returns the product with the given name, ignoring case and
// accents.
func (ix *Index) FindByName(name string) (model.Product, bool) {
	want := lexicon.Fold(name)
	entries, _ := ix.snapshot()
	for _, e := range entries {
		if e.foldedName == want {
			return e.Product, true
		}
	}
	return model.Product{}, false
}

func categoriesFrom(products []model.Product) []model.Category {
	seen := map[string]bool{}
	var out []model.Category
	for _, p := range products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, model.Category{Name: p.Category})
	}
	return out
}
