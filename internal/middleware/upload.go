package middleware

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"factorylink/internal/storage"

	"go.uber.org/zap"
)

const (
	// MaxFileSize is the per-file ceiling for uploads.
	MaxFileSize = 10 << 20 // 10 MB

	// MaxFilesPerRequest caps multi-file uploads.
	MaxFilesPerRequest = 10
)

const (
	singleFileKey contextKey = "uploaded_file"
	multiFileKey  contextKey = "uploaded_files"
)

// Images only: validated by both extension and declared content type.
var (
	allowedExtensions = map[string]bool{
		".jpeg": true,
		".jpg":  true,
		".png":  true,
		".webp": true,
	}

	allowedContentTypes = map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/webp": true,
	}
)

// UploadSingle validates and buffers an optional single file upload from the
// named multipart field before any handler logic runs. A request without the
// field passes through; handlers decide whether the file was required.
func UploadSingle(field string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, (MaxFilesPerRequest+1)*MaxFileSize)

			if err := r.ParseMultipartForm(MaxFileSize); err != nil {
				logger.Debug("Failed to parse multipart form", zap.Error(err))
				RespondWithError(w, http.StatusBadRequest, "invalid multipart form data")
				return
			}

			headers := formFiles(r, field)
			if len(headers) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			file, err := readValidated(headers[0])
			if err != nil {
				logger.Debug("Rejected upload", zap.String("field", field), zap.Error(err))
				RespondWithError(w, http.StatusBadRequest, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), singleFileKey, file)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UploadMultiple validates and buffers an array of files (capped at max)
// from the named multipart field.
func UploadMultiple(field string, max int, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, (MaxFilesPerRequest+1)*MaxFileSize)

			if err := r.ParseMultipartForm(MaxFileSize); err != nil {
				logger.Debug("Failed to parse multipart form", zap.Error(err))
				RespondWithError(w, http.StatusBadRequest, "invalid multipart form data")
				return
			}

			headers := formFiles(r, field)
			if len(headers) > max {
				RespondWithError(w, http.StatusBadRequest,
					fmt.Sprintf("too many files: at most %d allowed", max))
				return
			}

			files := make([]*storage.File, 0, len(headers))
			for _, header := range headers {
				file, err := readValidated(header)
				if err != nil {
					logger.Debug("Rejected upload", zap.String("field", field), zap.Error(err))
					RespondWithError(w, http.StatusBadRequest, err.Error())
					return
				}
				files = append(files, file)
			}

			ctx := context.WithValue(r.Context(), multiFileKey, files)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func formFiles(r *http.Request, field string) []*multipart.FileHeader {
	if r.MultipartForm == nil || r.MultipartForm.File == nil {
		return nil
	}
	return r.MultipartForm.File[field]
}

// readValidated enforces the allow-list and size ceiling, then buffers the
// file into memory.
func readValidated(header *multipart.FileHeader) (*storage.File, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return nil, fmt.Errorf("images only: extension %q is not allowed", ext)
	}

	contentType := header.Header.Get("Content-Type")
	if !allowedContentTypes[contentType] {
		return nil, fmt.Errorf("images only: content type %q is not allowed", contentType)
	}

	if header.Size > MaxFileSize {
		return nil, fmt.Errorf("file %q exceeds the %d MB limit", header.Filename, MaxFileSize>>20)
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("file %q exceeds the %d MB limit", header.Filename, MaxFileSize>>20)
	}

	return &storage.File{
		Name:        header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// GetUploadedFile extracts the buffered single upload from the context
func GetUploadedFile(ctx context.Context) (*storage.File, bool) {
	file, ok := ctx.Value(singleFileKey).(*storage.File)
	return file, ok
}

// GetUploadedFiles extracts the buffered multi-file upload from the context
func GetUploadedFiles(ctx context.Context) ([]*storage.File, bool) {
	files, ok := ctx.Value(multiFileKey).([]*storage.File)
	return files, ok
}
