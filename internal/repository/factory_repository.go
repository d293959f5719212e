package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"factorylink/internal/domain"
)

var ErrFactoryNotFound = errors.New("factory not found")

// FactoryFilter narrows the factory listing. Zero values mean "no filter".
type FactoryFilter struct {
	CategoryID *int64
	Search     string // case-insensitive name substring
	Status     string // exact match on status
	Location   string // case-insensitive location substring
}

// FactoryRepository defines the interface for factory data access
type FactoryRepository interface {
	List(ctx context.Context, filter FactoryFilter, page, pageSize int) ([]*domain.Factory, int, error)
	FindByID(ctx context.Context, id int64) (*domain.Factory, error)
	FindDetail(ctx context.Context, id int64) (*domain.FactoryDetail, error)
	Create(ctx context.Context, factory *domain.Factory) error
	Update(ctx context.Context, factory *domain.Factory) error
	DeleteCascade(ctx context.Context, id int64) error
}

type factoryRepository struct {
	db *sql.DB
}

// NewFactoryRepository creates a new instance of FactoryRepository
func NewFactoryRepository(db *sql.DB) FactoryRepository {
	return &factoryRepository{db: db}
}

const factoryColumns = `
	f.id, f.name, f.location, f.address, f.phone, f.email, f.certification,
	f.production_capacity, f.description, f.recommended_reason, f.video_link,
	f.main_image, f.status, f.category_id, f.created_at, f.updated_at,
	c.id, c.name
`

func scanFactory(row interface{ Scan(...any) error }) (*domain.Factory, error) {
	factory := &domain.Factory{}
	category := &domain.CategoryRef{}

	err := row.Scan(
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
		&category.ID,
		&category.Name,
	)
	if err != nil {
		return nil, err
	}

	factory.Category = category
	return factory, nil
}

// List retrieves factories with filtering and pagination, newest first
func (r *factoryRepository) List(ctx context.Context, filter FactoryFilter, page, pageSize int) ([]*domain.Factory, int, error) {
	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.CategoryID != nil {
		whereClause += fmt.Sprintf(" AND f.category_id = $%d", argIndex)
		args = append(args, *filter.CategoryID)
		argIndex++
	}
	if filter.Search != "" {
		whereClause += fmt.Sprintf(" AND f.name ILIKE $%d", argIndex)
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}
	if filter.Status != "" {
		whereClause += fmt.Sprintf(" AND f.status = $%d", argIndex)
		args = append(args, filter.Status)
		argIndex++
	}
	if filter.Location != "" {
		whereClause += fmt.Sprintf(" AND f.location ILIKE $%d", argIndex)
		args = append(args, "%"+filter.Location+"%")
		argIndex++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM factories f %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count factories: %w", err)
	}

	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`
		SELECT %s
		FROM factories f
		JOIN categories c ON c.id = f.category_id
		%s
		ORDER BY f.id DESC
		LIMIT $%d OFFSET $%d
	`, factoryColumns, whereClause, argIndex, argIndex+1)

	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list factories: %w", err)
	}
	defer rows.Close()

	factories := []*domain.Factory{}
	for rows.Next() {
		factory, err := scanFactory(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan factory: %w", err)
		}
		factories = append(factories, factory)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating factories: %w", err)
	}

	return factories, total, nil
}

// FindByID retrieves a factory (with its category) by ID
func (r *factoryRepository) FindByID(ctx context.Context, id int64) (*domain.Factory, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM factories f
		JOIN categories c ON c.id = f.category_id
		WHERE f.id = $1
	`, factoryColumns)

	factory, err := scanFactory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrFactoryNotFound
		}
		return nil, fmt.Errorf("failed to find factory by ID: %w", err)
	}

	return factory, nil
}

// FindDetail retrieves a factory along with its products and pictures
func (r *factoryRepository) FindDetail(ctx context.Context, id int64) (*domain.FactoryDetail, error) {
	factory, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &domain.FactoryDetail{
		Factory:  *factory,
		Products: []*domain.Product{},
		Pictures: []*domain.Picture{},
	}

	productRows, err := r.db.QueryContext(ctx,
		`SELECT id, name, price, factory_id FROM products WHERE factory_id = $1 ORDER BY id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load factory products: %w", err)
	}
	defer productRows.Close()

	for productRows.Next() {
		product := &domain.Product{}
		if err := productRows.Scan(&product.ID, &product.Name, &product.Price, &product.FactoryID); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		detail.Products = append(detail.Products, product)
	}
	if err = productRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	pictureRows, err := r.db.QueryContext(ctx,
		`SELECT id, url, factory_id FROM pictures WHERE factory_id = $1 ORDER BY id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load factory pictures: %w", err)
	}
	defer pictureRows.Close()

	for pictureRows.Next() {
		picture := &domain.Picture{}
		if err := pictureRows.Scan(&picture.ID, &picture.URL, &picture.FactoryID); err != nil {
			return nil, fmt.Errorf("failed to scan picture: %w", err)
		}
		detail.Pictures = append(detail.Pictures, picture)
	}
	if err = pictureRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pictures: %w", err)
	}

	return detail, nil
}

// Create inserts a new factory and fills in the generated id
func (r *factoryRepository) Create(ctx context.Context, factory *domain.Factory) error {
	query := `
		INSERT INTO factories (
			name, location, address, phone, email, certification,
			production_capacity, description, recommended_reason, video_link,
			main_image, status, category_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		factory.Name,
		factory.Location,
		factory.Address,
		factory.Phone,
		factory.Email,
		factory.Certification,
		factory.ProductionCapacity,
		factory.Description,
		factory.RecommendedReason,
		factory.VideoLink,
		factory.MainImage,
		factory.Status,
		factory.CategoryID,
		factory.CreatedAt,
		factory.UpdatedAt,
	).Scan(&factory.ID)

	if err != nil {
		return fmt.Errorf("failed to create factory: %w", err)
	}

	return nil
}

// Update replaces all mutable columns of an existing factory
func (r *factoryRepository) Update(ctx context.Context, factory *domain.Factory) error {
	query := `
		UPDATE factories
		SET name = $2, location = $3, address = $4, phone = $5, email = $6,
		    certification = $7, production_capacity = $8, description = $9,
		    recommended_reason = $10, video_link = $11, main_image = $12,
		    status = $13, category_id = $14, updated_at = $15
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		factory.ID,
		factory.Name,
		factory.Location,
		factory.Address,
		factory.Phone,
		factory.Email,
		factory.Certification,
		factory.ProductionCapacity,
		factory.Description,
		factory.RecommendedReason,
		factory.VideoLink,
		factory.MainImage,
		factory.Status,
		factory.CategoryID,
		factory.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update factory: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrFactoryNotFound
	}

	return nil
}

// DeleteCascade removes a factory and its products and pictures in a single
// transaction, so a failure partway through leaves no orphaned rows.
func (r *factoryRepository) DeleteCascade(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM pictures WHERE factory_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete factory pictures: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE factory_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete factory products: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM factories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete factory: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrFactoryNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit factory delete: %w", err)
	}

	return nil
}
