package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/filemanager/filestore"
	"github.com/rise-and-shine/filemanager/filestore/memstore"
	"github.com/rise-and-shine/filemanager/keynamer"
	"github.com/rise-and-shine/filemanager/http/handler"
	"github.com/rise-and-shine/filemanager/http/server"
	"github.com/rise-and-shine/filemanager/http/server/middleware"
	"github.com/rise-and-shine/filemanager/observability/logger"
	"github.com/rise-and-shine/filemanager/observability/metrics"
	"github.com/rise-and-shine/filemanager/registry"
)

type testEnv struct {
	app   *fiber.App
	store *memstore.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newWrappedTestEnv(t, nil)
}

// newWrappedTestEnv serves the registry over wrap(store) when wrap is set.
func newWrappedTestEnv(t *testing.T, wrap func(*memstore.Store) filestore.Store) *testEnv {
	t.Helper()

	log := logger.NewNop()
	store := memstore.New(memstore.Config{BaseURL: "http://files.test"})
	var backend filestore.Store = store
	if wrap != nil {
		backend = wrap(store)
	}
	m := metrics.New()
	var tick atomic.Int64
	namer := &keynamer.Namer{Now: func() time.Time {
		return time.UnixMilli(1_700_000_000_000 + tick.Add(1))
	}}
	reg := registry.New(backend,
		registry.WithLogger(log),
		registry.WithMetrics(m),
		registry.WithNamer(namer),
	)

	srv := server.NewHTTPServer(server.Config{Host: "127.0.0.1", Port: 8080, BodyLimit: 1 << 20}, []server.Middleware{
		middleware.NewRecoveryMW(log),
		middleware.NewTracingMW(),
		middleware.NewTimeoutMW(5 * time.Second),
		middleware.NewMetaInjectMW(),
		middleware.NewMetricsMW(m),
		middleware.NewLoggerMW(log),
		middleware.NewErrorHandlerMW(false),
	})
	srv.RegisterRouter(handler.New(reg, m).Register)

	return &testEnv{app: srv.App(), store: store}
}

func (e *testEnv) do(t *testing.T, req *http.Request) (int, []byte, http.Header) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body, resp.Header
}

func multipartRequest(t *testing.T, path, filename, content string, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if filename != "" || content != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(fiber.MethodPost, path, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

type uploadBody struct {
	Conflict         bool              `json:"conflict"`
	Message          string            `json:"message"`
	Key              string            `json:"key"`
	DownloadURL      string            `json:"downloadUrl"`
	Action           string            `json:"action"`
	Cancelled        bool              `json:"cancelled"`
	OriginalFilename string            `json:"originalFilename"`
	ExistingKey      string            `json:"existingKey"`
	Options          map[string]string `json:"options"`
}

type errorBody struct {
	TraceID string `json:"trace_id"`
	Error   struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
}

func (e *testEnv) upload(t *testing.T, name, content string) uploadBody {
	t.Helper()
	status, body, _ := e.do(t, multipartRequest(t, "/api/files/upload", name, content, nil))
	require.Equal(t, fiber.StatusOK, status, string(body))
	return decode[uploadBody](t, body)
}

func TestUploadListDownloadDelete(t *testing.T) {
	env := newTestEnv(t)

	up := env.upload(t, "report.pdf", "pdf-content")
	assert.Equal(t, "File uploaded successfully", up.Message)
	assert.True(t, strings.HasPrefix(up.Key, "report_"))
	assert.NotEmpty(t, up.DownloadURL)

	status, body, _ := env.do(t, httptest.NewRequest(fiber.MethodGet, "/api/files", nil))
	require.Equal(t, fiber.StatusOK, status)
	files := decode[[]registry.FileInfo](t, body)
	require.Len(t, files, 1)
	assert.Equal(t, up.Key, files[0].Key)
	assert.Equal(t, "report.pdf", files[0].OriginalName)

	status, body, hdr := env.do(t, httptest.NewRequest(fiber.MethodGet, "/api/files/download/"+up.Key, nil))
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "pdf-content", string(body))
	assert.Equal(t, `attachment; filename="`+up.Key+`"`, hdr.Get(fiber.HeaderContentDisposition))
	assert.NotEmpty(t, hdr.Get(middleware.HeaderTraceID))

	status, body, _ = env.do(t, httptest.NewRequest(fiber.MethodDelete, "/api/files/"+up.Key, nil))
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"message":"File deleted successfully"}`, string(body))

	status, body, _ = env.do(t, httptest.NewRequest(fiber.MethodGet, "/api/files/download/"+up.Key, nil))
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "FILE_NOT_FOUND", decode[errorBody](t, body).Error.Code)
}

func TestUploadConflictFlow(t *testing.T) {
	env := newTestEnv(t)
	first := env.upload(t, "a.txt", "one")

	status, body, _ := env.do(t, multipartRequest(t, "/api/files/upload", "a.txt", "two", nil))
	require.Equal(t, fiber.StatusConflict, status)
	conflict := decode[uploadBody](t, body)
	assert.True(t, conflict.Conflict)
	assert.Equal(t, "A file with the same name already exists", conflict.Message)
	assert.Equal(t, "a.txt", conflict.OriginalFilename)
	assert.Equal(t, first.Key, conflict.ExistingKey)
	assert.Equal(t, map[string]string{
		"cancel":   "Cancel the upload",
		"replace":  "Replace the existing file",
		"keepBoth": "Keep both files (new file will have a unique name)",
	}, conflict.Options)

	status, body, _ = env.do(t, multipartRequest(t, "/api/files/upload/resolve-conflict", "a.txt", "two",
		map[string]string{"action": "replace", "existingKey": first.Key}))
	require.Equal(t, fiber.StatusOK, status, string(body))
	replaced := decode[uploadBody](t, body)
	assert.Equal(t, first.Key, replaced.Key)
	assert.Equal(t, "replace", replaced.Action)
	assert.Equal(t, "File replaced successfully", replaced.Message)

	_, body, _ = env.do(t, httptest.NewRequest(fiber.MethodGet, "/api/files/download/"+first.Key, nil))
	assert.Equal(t, "two", string(body))

	status, body, _ = env.do(t, multipartRequest(t, "/api/files/upload/resolve-conflict", "a.txt", "three",
		map[string]string{"action": "keepBoth"}))
	require.Equal(t, fiber.StatusOK, status, string(body))
	kept := decode[uploadBody](t, body)
	assert.NotEqual(t, first.Key, kept.Key)
	assert.Equal(t, "keepBoth", kept.Action)
	assert.Equal(t, 2, env.store.Len())

	status, body, _ = env.do(t, multipartRequest(t, "/api/files/upload/resolve-conflict", "a.txt", "four",
		map[string]string{"action": "cancel"}))
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"message":"Upload cancelled by user","cancelled":true}`, string(body))
	assert.Equal(t, 2, env.store.Len())
}

func TestResolveConflictErrors(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		fields     map[string]string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "bad action",
			content:    "x",
			fields:     map[string]string{"action": "merge"},
			wantStatus: fiber.StatusBadRequest,
			wantCode:   "INVALID_CONFLICT_ACTION",
		},
		{
			name:       "missing action",
			content:    "x",
			wantStatus: fiber.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "replace without key",
			content:    "x",
			fields:     map[string]string{"action": "replace"},
			wantStatus: fiber.StatusBadRequest,
			wantCode:   "EXISTING_KEY_REQUIRED",
		},
		{
			name:       "replace of missing key",
			content:    "x",
			fields:     map[string]string{"action": "replace", "existingKey": "gone_1.txt"},
			wantStatus: fiber.StatusNotFound,
			wantCode:   "FILE_NOT_FOUND",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)

			status, body, _ := env.do(t, multipartRequest(t, "/api/files/upload/resolve-conflict", "a.txt", tc.content, tc.fields))
			assert.Equal(t, tc.wantStatus, status, string(body))
			assert.Equal(t, tc.wantCode, decode[errorBody](t, body).Error.Code)
		})
	}
}

func TestUploadValidation(t *testing.T) {
	env := newTestEnv(t)

	t.Run("empty file", func(t *testing.T) {
		status, body, _ := env.do(t, multipartRequest(t, "/api/files/upload", "a.txt", "", nil))
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, "EMPTY_FILE", decode[errorBody](t, body).Error.Code)
	})

	t.Run("missing file part", func(t *testing.T) {
		status, body, _ := env.do(t, multipartRequest(t, "/api/files/upload", "", "", map[string]string{"x": "y"}))
		assert.Equal(t, fiber.StatusBadRequest, status)
		e := decode[errorBody](t, body)
		assert.Equal(t, "VALIDATION_FAILED", e.Error.Code)
		assert.Contains(t, e.Error.Fields, "file")
	})

	t.Run("json body", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodPost, "/api/files/upload", strings.NewReader(`{}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		status, _, _ := env.do(t, req)
		assert.Equal(t, fiber.StatusBadRequest, status)
	})
}

func TestUploadStatus(t *testing.T) {
	env := newTestEnv(t)
	up := env.upload(t, "a.txt", "x")

	for _, want := range []bool{true, false} {
		status, body, _ := env.do(t, httptest.NewRequest(fiber.MethodGet, "/api/files/status/"+up.Key, nil))
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, want, decode[map[string]bool](t, body)["completed"])
	}
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t)
	env.upload(t, "Invoice-2024.pdf", "a")
	env.upload(t, "notes.txt", "b")

	status, body, _ := env.do(t, httptest.NewRequest(fiber.MethodGet, "/api/files/search?q=invoice", nil))
	require.Equal(t, fiber.StatusOK, status)
	files := decode[[]registry.FileInfo](t, body)
	require.Len(t, files, 1)
	assert.Equal(t, "Invoice-2024.pdf", files[0].OriginalName)

	status, body, _ = env.do(t, httptest.NewRequest(fiber.MethodGet, "/api/files/search?q=", nil))
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]registry.FileInfo](t, body), 2)

	status, _, _ = env.do(t, httptest.NewRequest(fiber.MethodGet, "/api/files/search", nil))
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestEscapedKeys(t *testing.T) {
	env := newTestEnv(t)
	up := env.upload(t, "my résumé.pdf", "cv")

	status, body, _ := env.do(t, httptest.NewRequest(fiber.MethodGet, "/api/files/download/"+url.PathEscape(up.Key), nil))
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "cv", string(body))
}

func TestListStoreFailure(t *testing.T) {
	env := newTestEnv(t)
	env.store.FailList = true

	status, body, _ := env.do(t, httptest.NewRequest(fiber.MethodGet, "/api/files", nil))
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "STORE_ERROR", decode[errorBody](t, body).Error.Code)
}

// staleListStore lists a key that was deleted after the listing was taken.
type staleListStore struct {
	*memstore.Store
}

func (s staleListStore) List(ctx context.Context) ([]filestore.ObjectInfo, error) {
	objects, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	return append(objects, filestore.ObjectInfo{Key: "gone_1.txt", Size: 1, LastModified: time.Now()}), nil
}

func TestListSkipsVanishedFiles(t *testing.T) {
	env := newWrappedTestEnv(t, func(s *memstore.Store) filestore.Store { return staleListStore{Store: s} })
	up := env.upload(t, "notes.txt", "a")

	for _, path := range []string{"/api/files", "/api/files/search?q=", "/api/files/search?q=gone"} {
		t.Run(path, func(t *testing.T) {
			status, body, _ := env.do(t, httptest.NewRequest(fiber.MethodGet, path, nil))
			require.Equal(t, fiber.StatusOK, status, string(body))
			for _, f := range decode[[]registry.FileInfo](t, body) {
				assert.Equal(t, up.Key, f.Key)
			}
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	status, body, _ := env.do(t, httptest.NewRequest(fiber.MethodGet, "/healthz", nil))
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	env.upload(t, "a.txt", "x")
	status, body, _ = env.do(t, httptest.NewRequest(fiber.MethodGet, "/metrics", nil))
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), `filemanager_uploads_total{outcome="created"} 1`)
	assert.Contains(t, string(body), `route="/api/files/upload"`)
}

func TestListSorted(t *testing.T) {
	env := newTestEnv(t)
	env.upload(t, "b.txt", "bb")
	env.upload(t, "a.txt", "a")
	env.upload(t, "c.txt", "ccc")

	tests := []struct {
		query string
		want  []string
	}{
		{"?sort=originalName:asc", []string{"a.txt", "b.txt", "c.txt"}},
		{"?sort=size:desc", []string{"c.txt", "b.txt", "a.txt"}},
		{"?sort=owner:asc", nil},
	}

	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			status, body, _ := env.do(t, httptest.NewRequest(fiber.MethodGet, "/api/files"+tc.query, nil))
			require.Equal(t, fiber.StatusOK, status)

			files := decode[[]registry.FileInfo](t, body)
			require.Len(t, files, 3)
			if tc.want == nil {
				return
			}
			names := make([]string, 0, len(files))
			for _, f := range files {
				names = append(names, f.OriginalName)
			}
			assert.Equal(t, tc.want, names)
		})
	}
}
