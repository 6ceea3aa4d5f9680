package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	perrors "github.com/pkazakov/product-catalog/internal/product/errors"
	"github.com/pkazakov/product-catalog/internal/product/model"
)

// Price is selected and bound as numeric text so the decimal value
// round-trips without precision loss.
const productColumns = `id, name, description, price::text, available, category, created_at`

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// Create inserts the product and returns it with the database-assigned ID.
func (s *PgStore) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO products (name, description, price, available, category)
		 VALUES ($1, $2, $3::numeric, $4, $5)
		 RETURNING `+productColumns,
		p.Name, p.Description, p.Price.String(), p.Available, int16(p.Category))
	created, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return created, nil
}

// Update persists the product's state to its existing row.
// Returns ErrProductNotFound if the ID is unset or no such product exists.
func (s *PgStore) Update(ctx context.Context, p *model.Product) (*model.Product, error) {
	if p.ID == uuid.Nil {
		return nil, perrors.ErrProductNotFound
	}
	row := s.db.QueryRow(ctx,
		`UPDATE products
		 SET name = $2, description = $3, price = $4::numeric, available = $5, category = $6
		 WHERE id = $1
		 RETURNING `+productColumns,
		p.ID, p.Name, p.Description, p.Price.String(), p.Available, int16(p.Category))
	updated, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return updated, nil
}

// DeleteByID removes a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *PgStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// FindAll retrieves every persisted product ordered by creation time.
func (s *PgStore) FindAll(ctx context.Context) ([]model.Product, error) {
	return s.query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at, id`)
}

// FindByName retrieves all products whose name equals the given name.
func (s *PgStore) FindByName(ctx context.Context, name string) ([]model.Product, error) {
	return s.query(ctx, `SELECT `+productColumns+` FROM products WHERE name = $1`, name)
}

// FindByPrice retrieves all products whose price equals the given price.
func (s *PgStore) FindByPrice(ctx context.Context, price decimal.Decimal) ([]model.Product, error) {
	return s.query(ctx, `SELECT `+productColumns+` FROM products WHERE price = $1::numeric`, price.String())
}

// FindByAvailability retrieves all products with the given availability flag.
func (s *PgStore) FindByAvailability(ctx context.Context, available bool) ([]model.Product, error) {
	return s.query(ctx, `SELECT `+productColumns+` FROM products WHERE available = $1`, available)
}

// FindByCategory retrieves all products in the given category.
func (s *PgStore) FindByCategory(ctx context.Context, category model.Category) ([]model.Product, error) {
	return s.query(ctx, `SELECT `+productColumns+` FROM products WHERE category = $1`, int16(category))
}

func (s *PgStore) query(ctx context.Context, sql string, args ...any) ([]model.Product, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]model.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read product rows: %w", err)
	}
	return products, nil
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var (
		p         model.Product
		priceText string
		category  int16
		createdAt time.Time
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &priceText, &p.Available, &category, &createdAt); err != nil {
		return nil, err
	}
	price, err := decimal.NewFromString(priceText)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q in storage: %w", priceText, err)
	}
	p.Price = price
	p.Category = model.Category(category)
	p.CreatedAt = createdAt
	return &p, nil
}
