package forward_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/filemanager/http/server"
	"github.com/rise-and-shine/filemanager/http/server/forward"
	"github.com/rise-and-shine/filemanager/meta"
)

type echoRequest struct {
	Key   string        `json:"key" params:"key" validate:"required"`
	Limit int           `json:"limit" query:"limit" validate:"omitempty,gte=1"`
	Note  string        `json:"note" form:"note"`
	File  *forward.File `json:"file" file:"file" form:"-"`
}

type echoResponse struct {
	Key         string `json:"key"`
	Limit       int    `json:"limit"`
	Note        string `json:"note"`
	Filename    string `json:"filename,omitempty"`
	Content     string `json:"content,omitempty"`
	OperationID string `json:"operation_id"`
	created     bool
}

func (r *echoResponse) StatusCode() int {
	if r.created {
		return fiber.StatusCreated
	}
	return fiber.StatusOK
}

type echo struct{}

func (echo) OperationID() string { return "echo" }

func (echo) Execute(ctx context.Context, in *echoRequest) (*echoResponse, error) {
	opID, _ := meta.ShouldGetMeta(ctx, meta.OperationID)
	resp := &echoResponse{
		Key:         in.Key,
		Limit:       in.Limit,
		Note:        in.Note,
		OperationID: opID,
		created:     in.File != nil,
	}
	if in.File != nil {
		resp.Filename = in.File.Filename
		resp.Content = string(in.File.Body)
	}
	return resp, nil
}

type notPointer struct{}

func (notPointer) OperationID() string { return "bad" }

func (notPointer) Execute(context.Context, echoRequest) (string, error) { return "", nil }

func newApp() *fiber.App {
	srv := server.NewHTTPServer(server.Config{Port: 8080}, nil)
	srv.RegisterRouter(func(r fiber.Router) {
		r.All("/echo/:key", forward.ToUserAction[*echoRequest, *echoResponse](echo{}))
		r.Get("/bad", forward.ToUserAction[echoRequest, string](notPointer{}))
	})
	return srv.App()
}

func do(t *testing.T, req *http.Request) (int, map[string]any) {
	t.Helper()

	resp, err := newApp().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	return resp.StatusCode, body
}

func errorCode(body map[string]any) any {
	e, _ := body["error"].(map[string]any)
	return e["code"]
}

func TestToUserActionDecoding(t *testing.T) {
	t.Run("path and query", func(t *testing.T) {
		status, body := do(t, httptest.NewRequest(fiber.MethodGet, "/echo/my%20file.txt?limit=5", nil))
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "my file.txt", body["key"])
		assert.InDelta(t, 5, body["limit"], 0)
		assert.Equal(t, "echo", body["operation_id"])
	})

	t.Run("json body", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodPost, "/echo/a", strings.NewReader(`{"note":"hello"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		status, body := do(t, req)
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "hello", body["note"])
	})

	t.Run("multipart with file", func(t *testing.T) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		part, err := w.CreateFormFile("file", "a.txt")
		require.NoError(t, err)
		_, err = part.Write([]byte("data"))
		require.NoError(t, err)
		require.NoError(t, w.WriteField("note", "n"))
		require.NoError(t, w.Close())

		req := httptest.NewRequest(fiber.MethodPost, "/echo/a", &buf)
		req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())

		status, body := do(t, req)
		assert.Equal(t, fiber.StatusCreated, status)
		assert.Equal(t, "a.txt", body["filename"])
		assert.Equal(t, "data", body["content"])
		assert.Equal(t, "n", body["note"])
	})
}

func TestToUserActionErrors(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		path        string
		contentType string
		body        string
		wantStatus  int
		wantCode    string
	}{
		{
			name:       "validation",
			method:     fiber.MethodGet,
			path:       "/echo/a?limit=-1",
			wantStatus: fiber.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "bad query type",
			method:     fiber.MethodGet,
			path:       "/echo/a?limit=abc",
			wantStatus: fiber.StatusBadRequest,
			wantCode:   "INVALID_QUERY_PARAMS",
		},
		{
			name:        "unsupported content type",
			method:      fiber.MethodPost,
			path:        "/echo/a",
			contentType: fiber.MIMETextPlain,
			body:        "hello",
			wantStatus:  fiber.StatusBadRequest,
			wantCode:    "INVALID_CONTENT_TYPE",
		},
		{
			name:        "malformed json",
			method:      fiber.MethodPost,
			path:        "/echo/a",
			contentType: fiber.MIMEApplicationJSON,
			body:        "{",
			wantStatus:  fiber.StatusBadRequest,
			wantCode:    "INVALID_JSON_BODY",
		},
		{
			name:       "input not a struct pointer",
			method:     fiber.MethodGet,
			path:       "/bad",
			wantStatus: fiber.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			if tc.contentType != "" {
				req.Header.Set(fiber.HeaderContentType, tc.contentType)
			}

			status, body := do(t, req)
			assert.Equal(t, tc.wantStatus, status)
			if tc.wantCode != "" {
				assert.Equal(t, tc.wantCode, errorCode(body))
			}
		})
	}
}
