package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

func TestProperty_ErrorResponsesHaveConsistentEnvelope(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("all error responses carry success=false and the message", prop.ForAll(
		func(message string) bool {
			standardCodes := []int{
				http.StatusBadRequest,
				http.StatusUnauthorized,
				http.StatusNotFound,
				http.StatusConflict,
				http.StatusTooManyRequests,
				http.StatusInternalServerError,
			}

			statusCode := standardCodes[len(message)%len(standardCodes)]

			w := httptest.NewRecorder()
			RespondWithError(w, statusCode, message)

			if w.Code != statusCode {
				return false
			}

			if w.Header().Get("Content-Type") != "application/json" {
				return false
			}

			var response Response
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				return false
			}

			if response.Success {
				return false
			}
			if response.Message != message {
				return false
			}
			// Error envelopes never carry data or pagination
			if response.Data != nil || response.Pagination != nil {
				return false
			}

			return true
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_SuccessResponsesHaveConsistentEnvelope(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("success responses carry success=true, the message, and the data", prop.ForAll(
		func(message string, value string) bool {
			w := httptest.NewRecorder()
			RespondWithSuccess(w, http.StatusOK, message, map[string]string{"value": value})

			if w.Code != http.StatusOK {
				return false
			}

			var response Response
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				return false
			}

			if !response.Success || response.Message != message {
				return false
			}

			data, ok := response.Data.(map[string]interface{})
			if !ok {
				return false
			}

			return data["value"] == value
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }),
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_PaginationMathIsConsistent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("pagination totals and navigation flags agree with the counts", prop.ForAll(
		func(page int, pageSize int, totalCount int) bool {
			p := NewPagination(page, pageSize, totalCount)

			expectedPages := (totalCount + pageSize - 1) / pageSize
			if p.TotalPages != expectedPages {
				return false
			}

			if p.HasNext != (page < expectedPages) {
				return false
			}
			if p.HasPrevious != (page > 1) {
				return false
			}

			return p.Page == page && p.PageSize == pageSize && p.TotalCount == totalCount
		},
		gen.IntRange(1, 100),
		gen.IntRange(1, 50),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRespondWithValidationErrors(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithValidationErrors(w, []ValidationError{
		{Field: "email", Message: "email must be a valid email address"},
		{Field: "password", Message: "password must be at least 8 characters"},
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var response Response
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}

	if response.Success {
		t.Fatal("expected success=false")
	}
	if response.Error == "" {
		t.Fatal("expected joined validation messages in error field")
	}
}

func TestErrorHandlingMiddleware_RecoversPanics(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	handler := ErrorHandlingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", w.Code)
	}

	var response Response
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if response.Success {
		t.Fatal("expected success=false after panic")
	}
}
