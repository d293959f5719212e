package service

import (
	"context"
	"fmt"
	"time"

	"factorylink/internal/domain"
	"factorylink/internal/repository"
	"factorylink/internal/storage"
)

// mainImageFolder is the storage prefix for factory main images.
const mainImageFolder = "factories"

// CreateFactoryInput carries the fields accepted when creating a factory.
type CreateFactoryInput struct {
	Name               string
	Location           string
	Address            string
	Phone              string
	Email              string
	Certification      string
	ProductionCapacity string
	Description        string
	RecommendedReason  string
	VideoLink          string
	Status             string
	CategoryID         int64
}

// UpdateFactoryInput is a partial patch: nil fields preserve stored values.
type UpdateFactoryInput struct {
	Name               *string
	Location           *string
	Address            *string
	Phone              *string
	Email              *string
	Certification      *string
	ProductionCapacity *string
	Description        *string
	RecommendedReason  *string
	VideoLink          *string
	Status             *string
	CategoryID         *int64
}

// FactoryService defines the interface for factory business logic, including
// the product sub-resource.
type FactoryService interface {
	List(ctx context.Context, filter repository.FactoryFilter, page, pageSize int) ([]*domain.Factory, int, error)
	Get(ctx context.Context, id int64) (*domain.FactoryDetail, error)
	Create(ctx context.Context, input CreateFactoryInput, mainImage *storage.File) (*domain.Factory, error)
	Update(ctx context.Context, id int64, input UpdateFactoryInput, mainImage *storage.File) (*domain.Factory, error)
	Delete(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]*domain.CategoryRef, error)

	ListProducts(ctx context.Context, factoryID int64) ([]*domain.Product, error)
	AddProduct(ctx context.Context, factoryID int64, name string, price float64) (*domain.Product, error)
	UpdateProduct(ctx context.Context, factoryID, productID int64, name string, price float64) (*domain.Product, error)
	DeleteProduct(ctx context.Context, factoryID, productID int64) error
}

type factoryService struct {
	factoryRepo  repository.FactoryRepository
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	objects      storage.ObjectStore
}

// NewFactoryService creates a new instance of FactoryService
func NewFactoryService(
	factoryRepo repository.FactoryRepository,
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	objects storage.ObjectStore,
) FactoryService {
	return &factoryService{
		factoryRepo:  factoryRepo,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		objects:      objects,
	}
}

func (s *factoryService) List(ctx context.Context, filter repository.FactoryFilter, page, pageSize int) ([]*domain.Factory, int, error) {
	return s.factoryRepo.List(ctx, filter, page, pageSize)
}

func (s *factoryService) Get(ctx context.Context, id int64) (*domain.FactoryDetail, error) {
	return s.factoryRepo.FindDetail(ctx, id)
}

// Create uploads the main image, then persists the factory.
func (s *factoryService) Create(ctx context.Context, input CreateFactoryInput, mainImage *storage.File) (*domain.Factory, error) {
	key := storage.BuildKey(mainImageFolder, mainImage.Name)
	imageURL, err := s.objects.Upload(ctx, key, mainImage.Data, mainImage.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload main image: %w", err)
	}

	status := input.Status
	if status == "" {
		status = domain.FactoryStatusActive
	}

	now := time.Now()
	factory := &domain.Factory{
		Name:               input.Name,
		Location:           input.Location,
		Address:            input.Address,
		Phone:              input.Phone,
		Email:              input.Email,
		Certification:      input.Certification,
		ProductionCapacity: input.ProductionCapacity,
		Description:        input.Description,
		RecommendedReason:  input.RecommendedReason,
		VideoLink:          input.VideoLink,
		MainImage:          imageURL,
		Status:             status,
		CategoryID:         input.CategoryID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.factoryRepo.Create(ctx, factory); err != nil {
		return nil, err
	}

	return s.factoryRepo.FindByID(ctx, factory.ID)
}

// Update applies a partial patch: fields absent from the input keep their
// stored values, and the main image is only replaced when a file was sent.
func (s *factoryService) Update(ctx context.Context, id int64, input UpdateFactoryInput, mainImage *storage.File) (*domain.Factory, error) {
	factory, err := s.factoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}

	applyString(&factory.Name, input.Name)
	applyString(&factory.Location, input.Location)
	applyString(&factory.Address, input.Address)
	applyString(&factory.Phone, input.Phone)
	applyString(&factory.Email, input.Email)
	applyString(&factory.Certification, input.Certification)
	applyString(&factory.ProductionCapacity, input.ProductionCapacity)
	applyString(&factory.Description, input.Description)
	applyString(&factory.RecommendedReason, input.RecommendedReason)
	applyString(&factory.VideoLink, input.VideoLink)
	applyString(&factory.Status, input.Status)

	if input.CategoryID != nil {
		factory.CategoryID = *input.CategoryID
	}

	if mainImage != nil {
		key := storage.BuildKey(mainImageFolder, mainImage.Name)
		imageURL, err := s.objects.Upload(ctx, key, mainImage.Data, mainImage.ContentType)
		if err != nil {
			return nil, fmt.Errorf("failed to upload main image: %w", err)
		}
		factory.MainImage = imageURL
	}

	factory.UpdatedAt = time.Now()

	if err := s.factoryRepo.Update(ctx, factory); err != nil {
		return nil, err
	}

	return s.factoryRepo.FindByID(ctx, id)
}

// Delete removes the factory and all its products and pictures in one
// transaction.
func (s *factoryService) Delete(ctx context.Context, id int64) error {
	return s.factoryRepo.DeleteCascade(ctx, id)
}

// ListCategories returns the id and name of every category, for use as
// factory filter options.
func (s *factoryService) ListCategories(ctx context.Context) ([]*domain.CategoryRef, error) {
	return s.categoryRepo.List(ctx)
}

func (s *factoryService) ListProducts(ctx context.Context, factoryID int64) ([]*domain.Product, error) {
	if _, err := s.factoryRepo.FindByID(ctx, factoryID); err != nil {
		return nil, err
	}
	return s.productRepo.ListByFactory(ctx, factoryID)
}

func (s *factoryService) AddProduct(ctx context.Context, factoryID int64, name string, price float64) (*domain.Product, error) {
	if _, err := s.factoryRepo.FindByID(ctx, factoryID); err != nil {
		return nil, err
	}

	product := &domain.Product{
		Name:      name,
		Price:     price,
		FactoryID: factoryID,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return s.productRepo.FindByID(ctx, product.ID)
}

func (s *factoryService) UpdateProduct(ctx context.Context, factoryID, productID int64, name string, price float64) (*domain.Product, error) {
	return s.productRepo.Update(ctx, factoryID, productID, name, price)
}

func (s *factoryService) DeleteProduct(ctx context.Context, factoryID, productID int64) error {
	return s.productRepo.Delete(ctx, factoryID, productID)
}
