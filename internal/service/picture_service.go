package service

import (
	"context"
	"fmt"

	"factorylink/internal/domain"
	"factorylink/internal/repository"
	"factorylink/internal/storage"
)

// pictureFolder is the storage prefix for factory gallery pictures.
const pictureFolder = "factory-pictures"

// PictureService defines the interface for picture business logic
type PictureService interface {
	ListByFactory(ctx context.Context, factoryID int64) ([]*domain.Picture, error)
	Get(ctx context.Context, id int64) (*domain.Picture, error)
	AddToFactory(ctx context.Context, factoryID int64, files []*storage.File) ([]*domain.Picture, error)
	DeleteFromFactory(ctx context.Context, factoryID, pictureID int64) error
	Delete(ctx context.Context, id int64) error
}

type pictureService struct {
	pictureRepo repository.PictureRepository
	factoryRepo repository.FactoryRepository
	objects     storage.ObjectStore
}

// NewPictureService creates a new instance of PictureService
func NewPictureService(
	pictureRepo repository.PictureRepository,
	factoryRepo repository.FactoryRepository,
	objects storage.ObjectStore,
) PictureService {
	return &pictureService{
		pictureRepo: pictureRepo,
		factoryRepo: factoryRepo,
		objects:     objects,
	}
}

func (s *pictureService) ListByFactory(ctx context.Context, factoryID int64) ([]*domain.Picture, error) {
	return s.pictureRepo.ListByFactory(ctx, factoryID)
}

func (s *pictureService) Get(ctx context.Context, id int64) (*domain.Picture, error) {
	return s.pictureRepo.FindByID(ctx, id)
}

// AddToFactory uploads each file and records a picture row per upload. An
// upload or insert failure aborts the batch; pictures already stored stay
// stored.
func (s *pictureService) AddToFactory(ctx context.Context, factoryID int64, files []*storage.File) ([]*domain.Picture, error) {
	if _, err := s.factoryRepo.FindByID(ctx, factoryID); err != nil {
		return nil, err
	}

	pictures := make([]*domain.Picture, 0, len(files))
	for _, file := range files {
		key := storage.BuildKey(pictureFolder, file.Name)
		url, err := s.objects.Upload(ctx, key, file.Data, file.ContentType)
		if err != nil {
			return nil, fmt.Errorf("failed to upload picture: %w", err)
		}

		picture := &domain.Picture{
			URL:       url,
			FactoryID: factoryID,
		}
		if err := s.pictureRepo.Create(ctx, picture); err != nil {
			return nil, err
		}

		full, err := s.pictureRepo.FindByID(ctx, picture.ID)
		if err != nil {
			return nil, err
		}
		pictures = append(pictures, full)
	}

	return pictures, nil
}

// DeleteFromFactory removes a picture only if it belongs to the factory.
func (s *pictureService) DeleteFromFactory(ctx context.Context, factoryID, pictureID int64) error {
	picture, err := s.pictureRepo.FindByFactoryAndID(ctx, factoryID, pictureID)
	if err != nil {
		return err
	}
	return s.pictureRepo.Delete(ctx, picture.ID)
}

func (s *pictureService) Delete(ctx context.Context, id int64) error {
	if _, err := s.pictureRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.pictureRepo.Delete(ctx, id)
}
