package catalog

import (
	"context"

	"github.com/Chative-core-poc-v1/inmaculada-bot/internal/agent/model"
)

// StaticSource serves a fixed catalog. It backs local runs without a
// database and the tests.
type StaticSource struct {
	Products   []model.Product
	Categories []model.Category
}

// NewSeedSource returns the store's default catalog.
func NewSeedSource() *StaticSource {
	return &StaticSource{Products: SeedProducts, Categories: SeedCategories}
}

func (s *StaticSource) ListProducts(ctx context.Context) ([]model.Product, error) {
	return append([]model.Product(nil), s.Products...), nil
}

func (s *StaticSource) ListCategories(ctx context.Context) ([]model.Category, error) {
	return append([]model.Category(nil), s.Categories...), nil
}

var _ model.CatalogSource = (*StaticSource)(nil)

var SeedCategories = []model.Category{
	{ID: "cat-001", Name: "Bebidas", Description: "Refrescos, aguas y jugos"},
	{ID: "cat-002", Name: "Lácteos y Huevos", Description: "Productos frescos diariamente"},
	{ID: "cat-003", Name: "Panadería", Description: "Pan fresco y productos horneados"},
	{ID: "cat-004", Name: "Limpieza del Hogar", Description: "Detergentes y artículos de aseo"},
	{ID: "cat-005", Name: "Carnes y Pescados", Description: "Carnes frescas y pescados de la región"},
	{ID: "cat-006", Name: "Verduras y Frutas", Description: "Productos frescos de la selva peruana"},
	{ID: "cat-007", Name: "Abarrotes", Description: "Productos esenciales para tu hogar"},
}

var SeedProducts = []model.Product{
	{ID: "prod-001", SKU: "BEB-001", Name: "Coca-Cola 2.5L", Description: "Gaseosa sabor original", Category: "Bebidas", Price: 12.50, Stock: 150, Popularity: 64},
	{ID: "prod-002", SKU: "BEB-002", Name: "Agua Mineral 1.5L", Description: "Agua mineral sin gas", Category: "Bebidas", Price: 5.00, Stock: 200, Popularity: 40},
	{ID: "prod-003", SKU: "LAC-001", Name: "Leche Entera 1L", Description: "Leche entera pasteurizada", Category: "Lácteos y Huevos", Price: 8.50, Stock: 100, Popularity: 58},
	{ID: "prod-004", SKU: "LAC-002", Name: "Leche Gloria 1L", Description: "Leche evaporada en promoción", Category: "Lácteos y Huevos", Price: 4.50, Stock: 80, Popularity: 91},
	{ID: "prod-005", SKU: "LAC-003", Name: "Queso Cremoso 1kg", Description: "Queso cremoso para sandwich", Category: "Lácteos y Huevos", Price: 45.00, Stock: 50, Popularity: 12},
	{ID: "prod-006", SKU: "LAC-004", Name: "Yogurt Laive Fresa 1L", Description: "Yogurt bebible sabor fresa", Category: "Lácteos y Huevos", Price: 7.20, Stock: 35, Popularity: 22},
	{ID: "prod-007", SKU: "LAC-005", Name: "Huevos AA x 15", Description: "Huevos de granja frescos", Category: "Lácteos y Huevos", Price: 9.90, Stock: 0, Popularity: 47},
	{ID: "prod-008", SKU: "PAN-001", Name: "Pan de Molde Blanco", Description: "Pan de molde tajado", Category: "Panadería", Price: 15.00, Stock: 80, Popularity: 30},
	{ID: "prod-009", SKU: "LIM-001", Name: "Detergente Líquido 500ml", Description: "Detergente para ropa", Category: "Limpieza del Hogar", Price: 9.75, Stock: 120, Popularity: 18},
	{ID: "prod-010", SKU: "CAR-001", Name: "Pollo Entero San Fernando", Description: "Pollo fresco por kilo", Category: "Carnes y Pescados", Price: 12.00, Stock: 40, Popularity: 73},
	{ID: "prod-011", SKU: "CAR-002", Name: "Pescado Doncella", Description: "Pescado del Amazonas por kilo", Category: "Carnes y Pescados", Price: 22.00, Stock: 15, Popularity: 9},
	{ID: "prod-012", SKU: "VER-001", Name: "Plátano de Seda", Description: "Racimo de la selva", Category: "Verduras y Frutas", Price: 3.50, Stock: 60, Popularity: 33},
	{ID: "prod-013", SKU: "VER-002", Name: "Camu Camu 500g", Description: "Fruta amazónica con vitamina C", Category: "Verduras y Frutas", Price: 6.00, Stock: 25, Popularity: 8},
	{ID: "prod-014", SKU: "ABA-001", Name: "Arroz Costeño 5kg", Description: "Arroz extra graneado", Category: "Abarrotes", Price: 18.00, Stock: 70, Popularity: 88},
	{ID: "prod-015", SKU: "ABA-002", Name: "Aceite Primor 1L", Description: "Aceite vegetal de cocina", Category: "Abarrotes", Price: 10.90, Stock: 45, Popularity: 51},
	{ID: "prod-016", SKU: "ABA-003", Name: "Azúcar Rubia 1kg", Description: "Azúcar rubia de caña", Category: "Abarrotes", Price: 4.20, Stock: 90, Popularity: 44},
}
