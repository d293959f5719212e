package transport

import (
	"net/http"
	"strconv"

	"factorylink/internal/domain"
	"factorylink/internal/middleware"
	"factorylink/internal/repository"
	"factorylink/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	defaultPage     = 1
	defaultPageSize = 12
)

// ProductRequest is the payload for the factory product sub-resource
type ProductRequest struct {
	Name  string  `json:"name" validate:"required"`
	Price float64 `json:"price" validate:"required,gte=0"`
}

// FactoryHandler handles HTTP requests for factory operations, including
// the product and picture sub-resources under /api/factory.
type FactoryHandler struct {
	factoryService service.FactoryService
	pictureService service.PictureService
	logger         *zap.Logger
}

// NewFactoryHandler creates a new FactoryHandler
func NewFactoryHandler(factoryService service.FactoryService, pictureService service.PictureService, logger *zap.Logger) *FactoryHandler {
	return &FactoryHandler{
		factoryService: factoryService,
		pictureService: pictureService,
		logger:         logger,
	}
}

// RegisterRoutes registers all factory routes. Reads are public; every
// mutation requires a token.
func (h *FactoryHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	uploadMainImage := middleware.UploadSingle("mainImage", h.logger)

	r.Route("/api/factory", func(r chi.Router) {
		// Public routes
		r.Get("/", h.List)
		r.Get("/categories", h.Categories)
		r.Get("/{id}", h.Get)
		r.Get("/{id}/products", h.ListProducts)
		r.Get("/{id}/pictures", h.ListPictures)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.With(uploadMainImage).Post("/", h.Create)
			r.With(uploadMainImage).Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)

			r.Post("/{id}/products", h.AddProduct)
			r.Put("/{factoryID}/products/{productID}", h.UpdateProduct)
			r.Delete("/{factoryID}/products/{productID}", h.DeleteProduct)
		})
	})
}

// List returns factories with pagination and optional filters: category id
// (filter), name substring (search), status, and location substring.
func (h *FactoryHandler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", defaultPage)
	pageSize := queryInt(r, "pageSize", defaultPageSize)

	filter := repository.FactoryFilter{
		Search:   r.URL.Query().Get("search"),
		Status:   r.URL.Query().Get("status"),
		Location: r.URL.Query().Get("location"),
	}

	if raw := r.URL.Query().Get("filter"); raw != "" {
		categoryID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category filter")
			return
		}
		filter.CategoryID = &categoryID
	}

	factories, total, err := h.factoryService.List(r.Context(), filter, page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list factories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to retrieve factories")
		return
	}

	middleware.RespondWithPage(w, http.StatusOK, "factories retrieved successfully",
		factories, middleware.NewPagination(page, pageSize, total))
}

// Categories returns all categories as id+name pairs for factory filtering
func (h *FactoryHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.factoryService.ListCategories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list factory categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to retrieve factory categories")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, "factory categories retrieved successfully", categories)
}

// Get returns a factory with its category, products, and pictures
func (h *FactoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid factory id")
		return
	}

	factory, err := h.factoryService.Get(r.Context(), id)
	if err != nil {
		if err == repository.ErrFactoryNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "factory not found")
			return
		}

		h.logger.Error("Failed to get factory", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to retrieve factory")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, "factory retrieved successfully", factory)
}

// Create adds a new factory from multipart form data. The main image is
// uploaded to object storage before the row is written.
func (h *FactoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	mainImage, ok := middleware.GetUploadedFile(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest,
			"name, location, address, categoryId, and main image are required fields")
		return
	}

	input := service.CreateFactoryInput{
		Name:               r.FormValue("name"),
		Location:           r.FormValue("location"),
		Address:            r.FormValue("address"),
		Phone:              r.FormValue("phone"),
		Email:              r.FormValue("email"),
		Certification:      r.FormValue("certification"),
		ProductionCapacity: r.FormValue("productionCapacity"),
		Description:        r.FormValue("description"),
		RecommendedReason:  r.FormValue("recommendedReason"),
		VideoLink:          r.FormValue("videoLink"),
		Status:             r.FormValue("status"),
	}

	categoryID, err := strconv.ParseInt(r.FormValue("categoryId"), 10, 64)
	if err != nil || input.Name == "" || input.Location == "" || input.Address == "" {
		middleware.RespondWithError(w, http.StatusBadRequest,
			"name, location, address, categoryId, and main image are required fields")
		return
	}
	input.CategoryID = categoryID

	if input.Status != "" && input.Status != domain.FactoryStatusActive && input.Status != domain.FactoryStatusInactive {
		middleware.RespondWithError(w, http.StatusBadRequest, "status must be active or inactive")
		return
	}

	factory, err := h.factoryService.Create(r.Context(), input, mainImage)
	if err != nil {
		h.logger.Error("Failed to create factory", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create factory")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusCreated, "factory created successfully", factory)
}

// Update applies a partial patch: absent form fields preserve stored values,
// and the main image is replaced only when a new file was sent.
func (h *FactoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid factory id")
		return
	}

	input := service.UpdateFactoryInput{
		Name:               formString(r, "name"),
		Location:           formString(r, "location"),
		Address:            formString(r, "address"),
		Phone:              formString(r, "phone"),
		Email:              formString(r, "email"),
		Certification:      formString(r, "certification"),
		ProductionCapacity: formString(r, "productionCapacity"),
		Description:        formString(r, "description"),
		RecommendedReason:  formString(r, "recommendedReason"),
		VideoLink:          formString(r, "videoLink"),
		Status:             formString(r, "status"),
	}

	if raw := formString(r, "categoryId"); raw != nil {
		categoryID, err := strconv.ParseInt(*raw, 10, 64)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid categoryId")
			return
		}
		input.CategoryID = &categoryID
	}

	if input.Status != nil && *input.Status != domain.FactoryStatusActive && *input.Status != domain.FactoryStatusInactive {
		middleware.RespondWithError(w, http.StatusBadRequest, "status must be active or inactive")
		return
	}

	mainImage, _ := middleware.GetUploadedFile(r.Context())

	factory, err := h.factoryService.Update(r.Context(), id, input, mainImage)
	if err != nil {
		if err == repository.ErrFactoryNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "factory not found")
			return
		}

		h.logger.Error("Failed to update factory", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update factory")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, "factory updated successfully", factory)
}

// Delete removes a factory together with its products and pictures
func (h *FactoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid factory id")
		return
	}

	if err := h.factoryService.Delete(r.Context(), id); err != nil {
		if err == repository.ErrFactoryNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "factory not found")
			return
		}

		h.logger.Error("Failed to delete factory", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete factory")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, "factory deleted successfully", nil)
}

// ListProducts returns all products of a factory
func (h *FactoryHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid factory id")
		return
	}

	products, err := h.factoryService.ListProducts(r.Context(), id)
	if err != nil {
		if err == repository.ErrFactoryNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "factory not found")
			return
		}

		h.logger.Error("Failed to list factory products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to retrieve factory products")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, "factory products retrieved successfully", products)
}

// ListPictures returns all pictures of a factory
func (h *FactoryHandler) ListPictures(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid factory id")
		return
	}

	pictures, err := h.pictureService.ListByFactory(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to list factory pictures", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to retrieve factory pictures")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, "factory pictures retrieved successfully", pictures)
}

// AddProduct creates a product under a factory
func (h *FactoryHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid factory id")
		return
	}

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.factoryService.AddProduct(r.Context(), id, req.Name, req.Price)
	if err != nil {
		if err == repository.ErrFactoryNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "factory not found")
			return
		}

		h.logger.Error("Failed to add factory product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add factory product")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusCreated, "product added successfully", product)
}

// UpdateProduct modifies a product scoped to its owning factory
func (h *FactoryHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	factoryID, err := urlID(r, "factoryID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid factory id")
		return
	}

	productID, err := urlID(r, "productID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.factoryService.UpdateProduct(r.Context(), factoryID, productID, req.Name, req.Price)
	if err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to update factory product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update factory product")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, "product updated successfully", product)
}

// DeleteProduct removes a product scoped to its owning factory
func (h *FactoryHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	factoryID, err := urlID(r, "factoryID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid factory id")
		return
	}

	productID, err := urlID(r, "productID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.factoryService.DeleteProduct(r.Context(), factoryID, productID); err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}

		h.logger.Error("Failed to delete factory product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete factory product")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, "product deleted successfully", nil)
}

// formString returns a pointer to the form value, or nil when the field was
// not sent at all (patch semantics).
func formString(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}
