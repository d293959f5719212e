package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"factorylink/internal/domain"
)

var ErrPictureNotFound = errors.New("picture not found")

// PictureRepository defines the interface for picture data access
type PictureRepository interface {
	ListByFactory(ctx context.Context, factoryID int64) ([]*domain.Picture, error)
	FindByID(ctx context.Context, id int64) (*domain.Picture, error)
	FindByFactoryAndID(ctx context.Context, factoryID, pictureID int64) (*domain.Picture, error)
	Create(ctx context.Context, picture *domain.Picture) error
	Delete(ctx context.Context, id int64) error
}

type pictureRepository struct {
	db *sql.DB
}

// NewPictureRepository creates a new instance of PictureRepository
func NewPictureRepository(db *sql.DB) PictureRepository {
	return &pictureRepository{db: db}
}

const pictureColumns = `p.id, p.url, p.factory_id, f.id, f.name`

func scanPicture(row interface{ Scan(...any) error }) (*domain.Picture, error) {
	picture := &domain.Picture{}
	factory := &domain.FactoryRef{}

	err := row.Scan(
		&picture.ID,
		&picture.URL,
		&picture.FactoryID,
		&factory.ID,
		&factory.Name,
	)
	if err != nil {
		return nil, err
	}

	picture.Factory = factory
	return picture, nil
}

// ListByFactory retrieves all pictures owned by a factory
func (r *pictureRepository) ListByFactory(ctx context.Context, factoryID int64) ([]*domain.Picture, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM pictures p
		JOIN factories f ON f.id = p.factory_id
		WHERE p.factory_id = $1
		ORDER BY p.id ASC
	`, pictureColumns)

	rows, err := r.db.QueryContext(ctx, query, factoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list factory pictures: %w", err)
	}
	defer rows.Close()

	pictures := []*domain.Picture{}
	for rows.Next() {
		picture, err := scanPicture(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan picture: %w", err)
		}
		pictures = append(pictures, picture)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pictures: %w", err)
	}

	return pictures, nil
}

// FindByID retrieves a picture by ID
func (r *pictureRepository) FindByID(ctx context.Context, id int64) (*domain.Picture, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM pictures p
		JOIN factories f ON f.id = p.factory_id
		WHERE p.id = $1
	`, pictureColumns)

	picture, err := scanPicture(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPictureNotFound
		}
		return nil, fmt.Errorf("failed to find picture by ID: %w", err)
	}

	return picture, nil
}

// FindByFactoryAndID retrieves a picture only if it belongs to the factory
func (r *pictureRepository) FindByFactoryAndID(ctx context.Context, factoryID, pictureID int64) (*domain.Picture, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM pictures p
		JOIN factories f ON f.id = p.factory_id
		WHERE p.id = $1 AND p.factory_id = $2
	`, pictureColumns)

	picture, err := scanPicture(r.db.QueryRowContext(ctx, query, pictureID, factoryID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPictureNotFound
		}
		return nil, fmt.Errorf("failed to find factory picture: %w", err)
	}

	return picture, nil
}

// Create inserts a new picture and fills in the generated id
func (r *pictureRepository) Create(ctx context.Context, picture *domain.Picture) error {
	query := `
		INSERT INTO pictures (url, factory_id)
		VALUES ($1, $2)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query, picture.URL, picture.FactoryID).Scan(&picture.ID)
	if err != nil {
		return fmt.Errorf("failed to create picture: %w", err)
	}

	return nil
}

// Delete removes a picture
func (r *pictureRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM pictures WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete picture: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPictureNotFound
	}

	return nil
}
