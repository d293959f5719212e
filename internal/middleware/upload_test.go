package middleware

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"go.uber.org/zap"
)

// multipartBody builds a multipart request body with the given files under
// one field name.
func multipartBody(t *testing.T, field string, files []struct {
	name, contentType string
	data              []byte
}) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, f := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, field, f.name))
		header.Set("Content-Type", f.contentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("failed to create part: %v", err)
		}
		if _, err := part.Write(f.data); err != nil {
			t.Fatalf("failed to write part: %v", err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	return body, writer.FormDataContentType()
}

func singleFile(name, contentType string, data []byte) []struct {
	name, contentType string
	data              []byte
} {
	return []struct {
		name, contentType string
		data              []byte
	}{{name, contentType, data}}
}

func TestUploadSingle_AcceptsValidImage(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	var gotName, gotType string
	var gotLen int
	handler := UploadSingle("mainImage", logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, ok := GetUploadedFile(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		gotName = file.Name
		gotType = file.ContentType
		gotLen = len(file.Data)
		w.WriteHeader(http.StatusOK)
	}))

	data := []byte("fake png bytes")
	body, contentType := multipartBody(t, "mainImage", singleFile("factory.png", "image/png", data))

	req := httptest.NewRequest("POST", "/test", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if gotName != "factory.png" || gotType != "image/png" || gotLen != len(data) {
		t.Fatalf("buffered file mismatch: name=%q type=%q len=%d", gotName, gotType, gotLen)
	}
}

func TestUploadSingle_MissingFilePassesThrough(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	handler := UploadSingle("mainImage", logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUploadedFile(r.Context()); ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.WriteField("name", "No Image Works")
	writer.Close()

	req := httptest.NewRequest("POST", "/test", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected pass-through 200, got %d", w.Code)
	}
}

func TestUploadSingle_RejectsDisallowedExtension(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	handler := UploadSingle("mainImage", logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	body, contentType := multipartBody(t, "mainImage", singleFile("clip.gif", "image/gif", []byte("gif")))

	req := httptest.NewRequest("POST", "/test", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for .gif upload, got %d", w.Code)
	}
}

func TestUploadSingle_RejectsMismatchedContentType(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	handler := UploadSingle("mainImage", logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Allowed extension but a non-image declared content type
	body, contentType := multipartBody(t, "mainImage", singleFile("payload.png", "application/octet-stream", []byte("x")))

	req := httptest.NewRequest("POST", "/test", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for content type mismatch, got %d", w.Code)
	}
}

func TestUploadSingle_RejectsOversizeFile(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	handler := UploadSingle("mainImage", logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	body, contentType := multipartBody(t, "mainImage",
		singleFile("huge.png", "image/png", bytes.Repeat([]byte("a"), MaxFileSize+1)))

	req := httptest.NewRequest("POST", "/test", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversize file, got %d", w.Code)
	}
}

func TestUploadMultiple_AcceptsBatch(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	var gotCount int
	handler := UploadMultiple("pictures", MaxFilesPerRequest, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		files, ok := GetUploadedFiles(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		gotCount = len(files)
		w.WriteHeader(http.StatusOK)
	}))

	files := []struct {
		name, contentType string
		data              []byte
	}{
		{"one.jpg", "image/jpeg", []byte("one")},
		{"two.webp", "image/webp", []byte("two")},
		{"three.png", "image/png", []byte("three")},
	}
	body, contentType := multipartBody(t, "pictures", files)

	req := httptest.NewRequest("POST", "/test", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if gotCount != 3 {
		t.Fatalf("expected 3 buffered files, got %d", gotCount)
	}
}

func TestUploadMultiple_RejectsTooManyFiles(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	handler := UploadMultiple("pictures", MaxFilesPerRequest, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var files []struct {
		name, contentType string
		data              []byte
	}
	for i := 0; i < MaxFilesPerRequest+1; i++ {
		files = append(files, struct {
			name, contentType string
			data              []byte
		}{fmt.Sprintf("pic%d.png", i), "image/png", []byte("x")})
	}
	body, contentType := multipartBody(t, "pictures", files)

	req := httptest.NewRequest("POST", "/test", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for too many files, got %d", w.Code)
	}
}

func TestUploadMultiple_OneBadFileRejectsBatch(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	handler := UploadMultiple("pictures", MaxFilesPerRequest, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	files := []struct {
		name, contentType string
		data              []byte
	}{
		{"good.png", "image/png", []byte("good")},
		{"bad.svg", "image/svg+xml", []byte("<svg/>")},
	}
	body, contentType := multipartBody(t, "pictures", files)

	req := httptest.NewRequest("POST", "/test", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 when one file is invalid, got %d", w.Code)
	}
}
