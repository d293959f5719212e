package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"factorylink/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	ListByFactory(ctx context.Context, factoryID int64) ([]*domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, factoryID, productID int64, name string, price float64) (*domain.Product, error)
	Delete(ctx context.Context, factoryID, productID int64) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `p.id, p.name, p.price, p.factory_id, f.id, f.name`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	product := &domain.Product{}
	factory := &domain.FactoryRef{}

	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.FactoryID,
		&factory.ID,
		&factory.Name,
	)
	if err != nil {
		return nil, err
	}

	product.Factory = factory
	return product, nil
}

// ListByFactory retrieves all products owned by a factory
func (r *productRepository) ListByFactory(ctx context.Context, factoryID int64) ([]*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN factories f ON f.id = p.factory_id
		WHERE p.factory_id = $1
		ORDER BY p.id ASC
	`, productColumns)

	rows, err := r.db.QueryContext(ctx, query, factoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list factory products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN factories f ON f.id = p.factory_id
		WHERE p.id = $1
	`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// Create inserts a new product and fills in the generated id
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (name, price, factory_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query, product.Name, product.Price, product.FactoryID).Scan(&product.ID)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update modifies a product scoped to its owning factory
func (r *productRepository) Update(ctx context.Context, factoryID, productID int64, name string, price float64) (*domain.Product, error) {
	query := `
		UPDATE products
		SET name = $3, price = $4
		WHERE id = $1 AND factory_id = $2
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, productID, factoryID, name, price).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return r.FindByID(ctx, id)
}

// Delete removes a product scoped to its owning factory
func (r *productRepository) Delete(ctx context.Context, factoryID, productID int64) error {
	query := `DELETE FROM products WHERE id = $1 AND factory_id = $2`

	result, err := r.db.ExecContext(ctx, query, productID, factoryID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}
