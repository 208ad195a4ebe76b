package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marketplace/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sortColumns maps public sort keys to columns. Anything else is rejected by
// the caller before reaching the repository.
var sortColumns = map[string]string{
	"price":     "price",
	"createdAt": "created_at",
	"rating":    "rating",
	"title":     "title",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// withSellerSummary preloads the seller without credential columns.
func withSellerSummary(db *gorm.DB) *gorm.DB {
	return db.Preload("Seller", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "name", "email")
	})
}

// tagMatch returns a condition that is true when any single element of the
// JSON tags column matches the bound LIKE pattern. Elements are decoded by
// the database so escaped characters compare as written.
func tagMatch(dialect string) string {
	if dialect == "postgres" {
		return `EXISTS (SELECT 1 FROM json_array_elements_text(
			CASE WHEN json_typeof(products.tags::json) = 'array' THEN products.tags::json ELSE '[]'::json END
		) AS tag(value) WHERE LOWER(tag.value) LIKE ? ESCAPE '\')`
	}
	return `EXISTS (SELECT 1 FROM json_each(
		CASE WHEN json_valid(products.tags) THEN products.tags ELSE '[]' END
	) AS tag WHERE LOWER(tag.value) LIKE ? ESCAPE '\')`
}

// activeMatching restricts a query to active products matching q's filters.
func activeMatching(q models.ProductQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("products.is_active = ?", true)
		if q.Search != "" {
			pattern := "%" + likeEscaper.Replace(strings.ToLower(q.Search)) + "%"
			db = db.Where(
				`(LOWER(products.title) LIKE ? ESCAPE '\' OR LOWER(products.description) LIKE ? ESCAPE '\' OR `+tagMatch(db.Dialector.Name())+`)`,
				pattern, pattern, pattern,
			)
		}
		if q.Category != "" {
			db = db.Where("products.category = ?", q.Category)
		}
		if q.MinPrice != nil {
			db = db.Where("products.price >= ?", *q.MinPrice)
		}
		if q.MaxPrice != nil {
			db = db.Where("products.price <= ?", *q.MaxPrice)
		}
		return db
	}
}

// sorted orders by the requested column with id as a stable tie-breaker.
func sorted(q models.ProductQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		column, ok := sortColumns[q.SortBy]
		if !ok {
			column = sortColumns["createdAt"]
		}
		return db.
			Order(clause.OrderByColumn{
				Column: clause.Column{Table: "products", Name: column},
				Desc:   q.SortOrder != "asc",
			}).
			Order(clause.OrderByColumn{Column: clause.Column{Table: "products", Name: "id"}})
	}
}

// Query returns one page of active products matching q and the total number
// of matches across all pages.
func (r *GORMProductRepository) Query(ctx context.Context, q models.ProductQuery) ([]models.Product, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Scopes(activeMatching(q)).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	products := make([]models.Product, 0, q.Limit)
	if total == 0 {
		return products, 0, nil
	}
	if err := r.db.WithContext(ctx).
		Scopes(activeMatching(q), sorted(q), withSellerSummary).
		Offset(q.Offset()).
		Limit(q.Limit).
		Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	return products, total, nil
}

// GetByID retrieves a single product by its ID with its seller summary.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Scopes(withSellerSummary).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update writes the named fields of product. Zero values are written too.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product, fields []string) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).
		Model(product).
		Select(fields).
		Omit(clause.Associations).
		Updates(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrNotFound)
	}
	return nil
}

// SetActive flips the soft-delete flag without touching other columns.
func (r *GORMProductRepository) SetActive(ctx context.Context, id string, active bool) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return fmt.Errorf("failed to set product %s active=%t: %w", id, active, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
