package transport

import (
	"net/http"

	"factorylink/internal/middleware"
	"factorylink/internal/repository"
	"factorylink/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PictureHandler handles HTTP requests for factory picture operations
type PictureHandler struct {
	pictureService service.PictureService
	logger         *zap.Logger
}

// NewPictureHandler creates a new PictureHandler
func NewPictureHandler(pictureService service.PictureService, logger *zap.Logger) *PictureHandler {
	return &PictureHandler{
		pictureService: pictureService,
		logger:         logger,
	}
}

// RegisterRoutes registers all picture routes. Reads are public; every
// mutation requires a token.
func (h *PictureHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	uploadPictures := middleware.UploadMultiple("pictures", middleware.MaxFilesPerRequest, h.logger)

	r.Route("/api/picture", func(r chi.Router) {
		// Public routes
		r.Get("/factory/{factoryID}", h.ListByFactory)
		r.Get("/{id}", h.Get)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.With(uploadPictures).Post("/factory/{factoryID}", h.AddToFactory)
			r.Delete("/factory/{factoryID}/{pictureID}", h.DeleteFromFactory)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// ListByFactory returns all pictures belonging to a factory
func (h *PictureHandler) ListByFactory(w http.ResponseWriter, r *http.Request) {
	factoryID, err := urlID(r, "factoryID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid factory id")
		return
	}

	pictures, err := h.pictureService.ListByFactory(r.Context(), factoryID)
	if err != nil {
		h.logger.Error("Failed to list pictures", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to retrieve pictures")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, "pictures retrieved successfully", pictures)
}

// Get returns a single picture by id
func (h *PictureHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid picture id")
		return
	}

	picture, err := h.pictureService.Get(r.Context(), id)
	if err != nil {
		if err == repository.ErrPictureNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "picture not found")
			return
		}

		h.logger.Error("Failed to get picture", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to retrieve picture")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, "picture retrieved successfully", picture)
}

// AddToFactory uploads one or more pictures and attaches them to a factory
func (h *PictureHandler) AddToFactory(w http.ResponseWriter, r *http.Request) {
	factoryID, err := urlID(r, "factoryID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid factory id")
		return
	}

	files, ok := middleware.GetUploadedFiles(r.Context())
	if !ok || len(files) == 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "at least one picture file is required")
		return
	}

	pictures, err := h.pictureService.AddToFactory(r.Context(), factoryID, files)
	if err != nil {
		if err == repository.ErrFactoryNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "factory not found")
			return
		}

		h.logger.Error("Failed to add pictures", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add pictures")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusCreated, "pictures added successfully", pictures)
}

// DeleteFromFactory removes a picture only if it belongs to the factory
func (h *PictureHandler) DeleteFromFactory(w http.ResponseWriter, r *http.Request) {
	factoryID, err := urlID(r, "factoryID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid factory id")
		return
	}

	pictureID, err := urlID(r, "pictureID")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid picture id")
		return
	}

	if err := h.pictureService.DeleteFromFactory(r.Context(), factoryID, pictureID); err != nil {
		if err == repository.ErrPictureNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "picture not found")
			return
		}

		h.logger.Error("Failed to delete picture", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete picture")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, "picture deleted successfully", nil)
}

// Delete removes a picture by id
func (h *PictureHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid picture id")
		return
	}

	if err := h.pictureService.Delete(r.Context(), id); err != nil {
		if err == repository.ErrPictureNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "picture not found")
			return
		}

		h.logger.Error("Failed to delete picture", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete picture")
		return
	}

	middleware.RespondWithSuccess(w, http.StatusOK, "picture deleted successfully", nil)
}
