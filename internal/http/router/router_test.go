package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aanand-mishra/studentdb-api/internal/storage/memory"
	"github.com/aanand-mishra/studentdb-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unreachable struct {
	*memory.Memory
}

func (unreachable) Ping(context.Context) error { return errors.New("no reachable servers") }

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	h, err := New(memory.New(), Options{
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		CORSOrigins: []string{"*"},
	})
	require.NoError(t, err)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

type envelope struct {
	Data *types.Student `json:"data"`
}

func TestStudentLifecycle(t *testing.T) {
	srv := newServer(t)

	resp, body := call(t, srv, http.MethodPost, "/studentDetails",
		`{"name":"Vivek Ranjan","gender":"Male","age":"24"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created envelope
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotNil(t, created.Data)
	require.NotEmpty(t, created.Data.ID)
	assert.Equal(t, "Vivek Ranjan", created.Data.Name)
	id := created.Data.ID

	resp, body = call(t, srv, http.MethodGet, "/studentDetails/"+id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got envelope
	require.NoError(t, json.Unmarshal(body, &got))
	require.NotNil(t, got.Data)
	assert.Equal(t, "Vivek Ranjan", got.Data.Name)
	assert.Equal(t, "Male", got.Data.Gender)
	assert.Equal(t, "24", got.Data.Age)

	resp, body = call(t, srv, http.MethodPatch, "/studentDetails/"+id, `{"age":"25"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var patched envelope
	require.NoError(t, json.Unmarshal(body, &patched))
	require.NotNil(t, patched.Data)
	assert.Equal(t, "25", patched.Data.Age)
	assert.Equal(t, "Vivek Ranjan", patched.Data.Name)
	assert.True(t, patched.Data.CreatedAt.Equal(created.Data.CreatedAt))
	assert.True(t, patched.Data.UpdatedAt.After(created.Data.UpdatedAt))

	resp, body = call(t, srv, http.MethodGet, "/studentDetails", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Data []types.Student `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, id, list.Data[0].ID)

	resp, body = call(t, srv, http.MethodDelete, "/studentDetails/"+id, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, body)

	resp, body = call(t, srv, http.MethodGet, "/studentDetails/"+id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"data":null}`, string(body))

	resp, _ = call(t, srv, http.MethodDelete, "/studentDetails/"+id, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestTrailingSlashCollection(t *testing.T) {
	srv := newServer(t)

	resp, _ := call(t, srv, http.MethodPost, "/studentDetails/", `{"name":"a","gender":"b","age":"1"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := call(t, srv, http.MethodGet, "/studentDetails/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"name":"a"`)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newServer(t)

	resp, _ := call(t, srv, http.MethodPut, "/studentDetails/abc", `{"name":"a"}`)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestDocsRoutes(t *testing.T) {
	srv := newServer(t)

	for _, path := range []string{"/api-docs", "/api-docs/", "/api-docs/openapi.json", "/api-docs/openapi.yaml"} {
		resp, _ := call(t, srv, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestHealth(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		srv := newServer(t)

		resp, body := call(t, srv, http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"status":"ok"}`, string(body))
	})

	t.Run("StoreDown", func(t *testing.T) {
		h, err := New(unreachable{memory.New()}, Options{
			Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		})
		require.NoError(t, err)
		srv := httptest.NewServer(h)
		defer srv.Close()

		resp, _ := call(t, srv, http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}
