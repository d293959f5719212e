package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Response is the uniform envelope every endpoint returns.
type Response struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Pagination carries listing metadata computed from the count query and the
// requested page/size.
type Pagination struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"pageSize"`
	TotalCount  int  `json:"totalCount"`
	TotalPages  int  `json:"totalPages"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

// NewPagination computes pagination metadata. TotalPages is ceiling division.
func NewPagination(page, pageSize, totalCount int) *Pagination {
	totalPages := (totalCount + pageSize - 1) / pageSize
	return &Pagination{
		Page:        page,
		PageSize:    pageSize,
		TotalCount:  totalCount,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// RespondWithError sends an enveloped failure response
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, Response{
		Success: false,
		Message: message,
	})
}

// RespondWithSuccess sends an enveloped success response
func RespondWithSuccess(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	writeJSON(w, statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondWithPage sends an enveloped success response with pagination
// metadata
func RespondWithPage(w http.ResponseWriter, statusCode int, message string, data interface{}, pagination *Pagination) {
	writeJSON(w, statusCode, Response{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: pagination,
	})
}

// RespondWithValidationErrors sends a 400 with the failing fields
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	fields := make([]string, 0, len(errors))
	for _, e := range errors {
		fields = append(fields, e.Field+": "+e.Message)
	}

	writeJSON(w, http.StatusBadRequest, Response{
		Success: false,
		Message: "validation failed",
		Error:   strings.Join(fields, "; "),
	})
}

// ErrorHandlingMiddleware catches panics and converts them to enveloped 500s
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
