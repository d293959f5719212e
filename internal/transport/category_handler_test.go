package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"factorylink/internal/domain"
	"factorylink/internal/middleware"
	"factorylink/internal/repository"
	"factorylink/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// passthroughAuth stands in for AuthMiddleware on protected routes
func passthroughAuth(next http.Handler) http.Handler {
	return next
}

// mockCategoryService backs the handler tests with an in-memory catalog
type mockCategoryService struct {
	categories map[int64]*domain.Category
	inUse      map[int64]int
	nextID     int64
}

func newMockCategoryService() *mockCategoryService {
	return &mockCategoryService{
		categories: make(map[int64]*domain.Category),
		inUse:      make(map[int64]int),
	}
}

func (m *mockCategoryService) List(ctx context.Context) ([]*domain.CategoryRef, error) {
	refs := make([]*domain.CategoryRef, 0, len(m.categories))
	for _, c := range m.categories {
		refs = append(refs, &domain.CategoryRef{ID: c.ID, Name: c.Name})
	}
	return refs, nil
}

func (m *mockCategoryService) Get(ctx context.Context, id int64) (*repository.CategoryWithFactories, error) {
	category, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	return &repository.CategoryWithFactories{
		Category:  *category,
		Factories: []*domain.Factory{},
	}, nil
}

func (m *mockCategoryService) Create(ctx context.Context, name string) (*domain.Category, error) {
	m.nextID++
	category := &domain.Category{ID: m.nextID, Name: name, CreatedAt: time.Now()}
	m.categories[category.ID] = category
	return category, nil
}

func (m *mockCategoryService) Update(ctx context.Context, id int64, name string) (*domain.Category, error) {
	category, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	category.Name = name
	return category, nil
}

func (m *mockCategoryService) Delete(ctx context.Context, id int64) error {
	if _, ok := m.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	if count := m.inUse[id]; count > 0 {
		return &service.CategoryInUseError{Count: count}
	}
	delete(m.categories, id)
	return nil
}

func newCategoryTestRouter(svc service.CategoryService) chi.Router {
	logger, _ := zap.NewDevelopment()
	handler := NewCategoryHandler(svc, logger)
	router := chi.NewRouter()
	handler.RegisterRoutes(router, passthroughAuth)
	return router
}

func TestCategoryHandler_CreateReturnsEnvelope(t *testing.T) {
	svc := newMockCategoryService()
	router := newCategoryTestRouter(svc)

	body, _ := json.Marshal(CategoryRequest{Name: "Textiles"})
	req := httptest.NewRequest("POST", "/api/category", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var response middleware.Response
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}

	if !response.Success {
		t.Fatal("expected success=true")
	}

	data, ok := response.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("expected object data, got %T", response.Data)
	}
	if data["name"] != "Textiles" {
		t.Fatalf("expected created name in payload, got %v", data["name"])
	}
}

func TestCategoryHandler_DuplicateNamesCreateSeparateRows(t *testing.T) {
	svc := newMockCategoryService()
	router := newCategoryTestRouter(svc)

	for i := 0; i < 2; i++ {
		body, _ := json.Marshal(CategoryRequest{Name: "Toys"})
		req := httptest.NewRequest("POST", "/api/category", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201 on attempt %d, got %d", i+1, w.Code)
		}
	}

	if len(svc.categories) != 2 {
		t.Fatalf("expected 2 rows for duplicate names, got %d", len(svc.categories))
	}
}

func TestCategoryHandler_CreateRejectsMissingName(t *testing.T) {
	router := newCategoryTestRouter(newMockCategoryService())

	req := httptest.NewRequest("POST", "/api/category", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing name, got %d", w.Code)
	}
}

func TestCategoryHandler_GetUnknownReturns404(t *testing.T) {
	router := newCategoryTestRouter(newMockCategoryService())

	req := httptest.NewRequest("GET", "/api/category/99", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	var response middleware.Response
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if response.Success {
		t.Fatal("expected success=false")
	}
}

func TestCategoryHandler_DeleteRefusedWhileInUse(t *testing.T) {
	svc := newMockCategoryService()
	category, _ := svc.Create(context.Background(), "Electronics")
	svc.inUse[category.ID] = 3
	router := newCategoryTestRouter(svc)

	req := httptest.NewRequest("DELETE", "/api/category/1", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for category in use, got %d", w.Code)
	}

	if _, ok := svc.categories[category.ID]; !ok {
		t.Fatal("category must survive a refused delete")
	}
}
