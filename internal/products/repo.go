package products

import (
	"context"
	"strings"

	"github.com/autocare/autocare-backend/pkg/db/models"
	"github.com/autocare/autocare-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sort orders supported by the browse endpoint.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
)

// ListFilters describe the filter knobs for the browse endpoint.
type ListFilters struct {
	Query    string
	Category string
	Brand    string
	MinPrice *int
	MaxPrice *int
	InStock  bool
	CarBrand string
	CarModel string
	Year     *int
}

// ListInput captures filtering, ordering, and pagination for one page.
type ListInput struct {
	Filters    ListFilters
	Sort       string
	Pagination pagination.Params
}

// Repository wires together product persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads the product by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindBySlug loads the product by its route slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDForUpdate loads and row-locks the product inside a transaction.
// SQLite has no SELECT ... FOR UPDATE; its whole-db write lock covers it.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var product models.Product
	if err := query.First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Create inserts a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update saves an existing product row.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes a product row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

// DecrementStock subtracts quantity from the product's stock. The caller is
// responsible for holding a row lock when this matters.
func (r *Repository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity)).Error
}

// List returns one filtered page. The newest sort paginates by keyset cursor;
// the explicit sort orders are capped at one page and carry no cursor.
func (r *Repository) List(ctx context.Context, input ListInput) ([]models.Product, string, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})
	query = applyFilters(query, r.db, input.Filters)

	sort := input.Sort
	if sort == "" {
		sort = SortNewest
	}

	switch sort {
	case SortPriceAsc:
		query = query.Order("price ASC, id ASC")
	case SortPriceDesc:
		query = query.Order("price DESC, id ASC")
	case SortName:
		query = query.Order("name ASC, id ASC")
	default:
		query = query.Order("created_at DESC, id DESC")
		cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
		if err != nil {
			return nil, "", err
		}
		if cursor != nil {
			query = query.Where(
				"(created_at < ?) OR (created_at = ? AND id < ?)",
				cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
			)
		}
	}

	limit := pagination.NormalizeLimit(input.Pagination.Limit)
	var rows []models.Product
	if err := query.Limit(pagination.LimitWithBuffer(input.Pagination.Limit)).Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		if sort == SortNewest {
			last := rows[len(rows)-1]
			nextCursor = pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
		}
	}
	return rows, nextCursor, nil
}

func applyFilters(query *gorm.DB, db *gorm.DB, filters ListFilters) *gorm.DB {
	if q := strings.TrimSpace(filters.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(sku) LIKE ?", pattern, pattern, pattern)
	}
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.Brand != "" {
		query = query.Where("brand = ?", filters.Brand)
	}
	if filters.MinPrice != nil {
		query = query.Where("price >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		query = query.Where("price <= ?", *filters.MaxPrice)
	}
	if filters.InStock {
		query = query.Where("stock > 0")
	}
	return applyCompatibilityFilter(query, db, filters)
}

// applyCompatibilityFilter matches products whose compatibility tags cover the
// requested vehicle. The JSON functions differ per dialect.
func applyCompatibilityFilter(query *gorm.DB, db *gorm.DB, filters ListFilters) *gorm.DB {
	if filters.CarBrand == "" && filters.CarModel == "" && filters.Year == nil {
		return query
	}

	var conds []string
	var args []any
	sqlite := db.Dialector.Name() == "sqlite"

	field := func(name string) string {
		if sqlite {
			return "json_extract(tag.value, '$." + name + "')"
		}
		return "tag->>'" + name + "'"
	}
	intField := func(name string) string {
		if sqlite {
			return "CAST(json_extract(tag.value, '$." + name + "') AS INTEGER)"
		}
		return "(tag->>'" + name + "')::int"
	}

	if filters.CarBrand != "" {
		conds = append(conds, "LOWER("+field("carBrand")+") = ?")
		args = append(args, strings.ToLower(filters.CarBrand))
	}
	if filters.CarModel != "" {
		conds = append(conds, "LOWER("+field("carModel")+") = ?")
		args = append(args, strings.ToLower(filters.CarModel))
	}
	if filters.Year != nil {
		conds = append(conds, intField("yearFrom")+" <= ? AND "+intField("yearTo")+" >= ?")
		args = append(args, *filters.Year, *filters.Year)
	}

	inner := strings.Join(conds, " AND ")
	if sqlite {
		return query.Where("EXISTS (SELECT 1 FROM json_each(compatibility) AS tag WHERE "+inner+")", args...)
	}
	return query.Where("EXISTS (SELECT 1 FROM jsonb_array_elements(compatibility) AS tag WHERE "+inner+")", args...)
}
