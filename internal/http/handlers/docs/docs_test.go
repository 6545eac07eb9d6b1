package docs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoad(t *testing.T) {
	spec, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3.0.0", spec.doc["openapi"])

	paths, ok := spec.doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/studentDetails")
	assert.Contains(t, paths, "/studentDetails/{id}")

	item := paths["/studentDetails/{id}"].(map[string]any)
	for _, method := range []string{"get", "patch", "delete"} {
		assert.Contains(t, item, method)
	}
}

func TestJSON(t *testing.T) {
	spec, err := Load()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "http://localhost:5008/api-docs/openapi.json", nil)
	rec := httptest.NewRecorder()
	spec.JSON()(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var doc struct {
		OpenAPI string `json:"openapi"`
		Info    struct {
			Title string `json:"title"`
		} `json:"info"`
		Servers []struct {
			URL string `json:"url"`
		} `json:"servers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))

	assert.Equal(t, "3.0.0", doc.OpenAPI)
	assert.Equal(t, "StudentDB API", doc.Info.Title)
	require.Len(t, doc.Servers, 1)
	assert.Equal(t, "http://localhost:5008", doc.Servers[0].URL)

	// the shared document is not mutated by a request
	assert.NotContains(t, spec.doc, "servers")
}

func TestYAML(t *testing.T) {
	spec, err := Load()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "http://example.test/api-docs/openapi.yaml", nil)
	rec := httptest.NewRecorder()
	spec.YAML()(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "3.0.0", doc["openapi"])
	assert.Contains(t, rec.Body.String(), "url: http://example.test")
}

func TestUI(t *testing.T) {
	spec, err := Load()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	spec.UI()(rec, httptest.NewRequest(http.MethodGet, "/api-docs", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "/api-docs/openapi.json")
}
