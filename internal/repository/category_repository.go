package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"factorylink/internal/domain"
)

var ErrCategoryNotFound = errors.New("category not found")

// CategoryWithFactories is a category together with the factories that
// reference it, returned by the single-category lookup.
type CategoryWithFactories struct {
	domain.Category
	Factories []*domain.Factory `json:"factories"`
}

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	List(ctx context.Context) ([]*domain.CategoryRef, error)
	FindByID(ctx context.Context, id int64) (*domain.Category, error)
	FindWithFactories(ctx context.Context, id int64) (*CategoryWithFactories, error)
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, id int64, name string) (*domain.Category, error)
	Delete(ctx context.Context, id int64) error
	CountFactories(ctx context.Context, id int64) (int, error)
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// List retrieves all categories as id+name pairs
func (r *categoryRepository) List(ctx context.Context) ([]*domain.CategoryRef, error) {
	query := `SELECT id, name FROM categories ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.CategoryRef{}
	for rows.Next() {
		category := &domain.CategoryRef{}
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// FindByID retrieves a category by ID using parameterized queries
func (r *categoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	query := `SELECT id, name, created_at FROM categories WHERE id = $1`

	category := &domain.Category{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&category.ID,
		&category.Name,
		&category.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}

	return category, nil
}

// FindWithFactories retrieves a category together with the factories that
// reference it
func (r *categoryRepository) FindWithFactories(ctx context.Context, id int64) (*CategoryWithFactories, error) {
	category, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &CategoryWithFactories{
		Category:  *category,
		Factories: []*domain.Factory{},
	}

	query := `
		SELECT id, name, location, address, phone, email, certification,
		       production_capacity, description, recommended_reason, video_link,
		       main_image, status, category_id, created_at, updated_at
		FROM factories
		WHERE category_id = $1
		ORDER BY id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load category factories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		factory := &domain.Factory{}
		err := rows.Scan(
			&factory.ID,
			&factory.Name,
			&factory.Location,
			&factory.Address,
			&factory.Phone,
			&factory.Email,
			&factory.Certification,
			&factory.ProductionCapacity,
			&factory.Description,
			&factory.RecommendedReason,
			&factory.VideoLink,
			&factory.MainImage,
			&factory.Status,
			&factory.CategoryID,
			&factory.CreatedAt,
			&factory.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan factory: %w", err)
		}
		result.Factories = append(result.Factories, factory)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category factories: %w", err)
	}

	return result, nil
}

// Create inserts a new category and fills in the generated id. Names are not
// unique: creating the same name twice yields two distinct rows.
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (name, created_at)
		VALUES ($1, $2)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query, category.Name, category.CreatedAt).Scan(&category.ID)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// Update renames a category, returning the updated row
func (r *categoryRepository) Update(ctx context.Context, id int64, name string) (*domain.Category, error) {
	query := `
		UPDATE categories
		SET name = $2
		WHERE id = $1
		RETURNING id, name, created_at
	`

	category := &domain.Category{}
	err := r.db.QueryRowContext(ctx, query, id, name).Scan(
		&category.ID,
		&category.Name,
		&category.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return category, nil
}

// Delete removes a category
func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM categories WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// CountFactories returns how many factories reference the category
func (r *categoryRepository) CountFactories(ctx context.Context, id int64) (int, error) {
	query := `SELECT COUNT(*) FROM factories WHERE category_id = $1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count factories for category: %w", err)
	}

	return count, nil
}
