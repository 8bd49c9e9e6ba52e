package repo

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/inmaculada-bot/internal/core/error"
	logx "github.com/Chative-core-poc-v1/inmaculada-bot/pkg/logger"
)

// Table and column names follow the store's existing Prisma schema.
const (
	queryListProducts = `
SELECT p."id", p."sku", p."name", p."description", p."price", p."stock",
       c."name" AS category,
       COALESCE(SUM(oi."quantity") FILTER (WHERE o."status" = 'COMPLETED'), 0) AS popularity
FROM "Product" p
JOIN "Category" c ON c."id" = p."categoryId"
LEFT JOIN "OrderItem" oi ON oi."productId" = p."id"
LEFT JOIN "Order" o ON o."id" = oi."orderId"
GROUP BY p."id", c."name"
ORDER BY p."name"`

	queryListCategories = `
SELECT c."id", c."name", c."description"
FROM "Category" c
ORDER BY c."name"`
)

type productRow struct {
	ID          string          `db:"id"`
	SKU         sql.NullString  `db:"sku"`
	Name        string          `db:"name"`
	Description sql.NullString  `db:"description"`
	Price       float64         `db:"price"`
	Stock       int             `db:"stock"`
	Category    string          `db:"category"`
	Popularity  sql.NullFloat64 `db:"popularity"`
}

type categoryRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
}

// PostgresCatalogSource reads the product catalog from the store database.
type PostgresCatalogSource struct {
	db *sqlx.DB
}

func NewPostgresCatalogSource(db *sqlx.DB) *PostgresCatalogSource {
	return &PostgresCatalogSource{db: db}
}

// OpenPostgres connects with the lib/pq driver.
func OpenPostgres(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, errx.WrapCatalog(err)
	}
	return db, nil
}

func (s *PostgresCatalogSource) ListProducts(ctx context.Context) ([]model.Product, error) {
	var rows []productRow
	if err := s.db.SelectContext(ctx, &rows, queryListProducts); err != nil {
		logx.Error().Err(err).Msg("failed to query products")
		return nil, errx.WrapCatalog(err)
	}
	out := make([]model.Product, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Product{
			ID:          r.ID,
			SKU:         r.SKU.String,
			Name:        r.Name,
			Description: r.Description.String,
			Category:    r.Category,
			Price:       r.Price,
			Stock:       r.Stock,
			Popularity:  r.Popularity.Float64,
		})
	}
	return out, nil
}

func (s *PostgresCatalogSource) ListCategories(ctx context.Context) ([]model.Category, error) {
	var rows []categoryRow
	if err := s.db.SelectContext(ctx, &rows, queryListCategories); err != nil {
		logx.Error().Err(err).Msg("failed to query categories")
		return nil, errx.WrapCatalog(err)
	}
	out := make([]model.Category, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Category{ID: r.ID, Name: r.Name, Description: r.Description.String})
	}
	return out, nil
}

var _ model.CatalogSource = (*PostgresCatalogSource)(nil)
