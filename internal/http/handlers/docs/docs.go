// Package docs serves the OpenAPI 3.0 description of the API and a
// Swagger UI page that renders it.
//
//	GET /api-docs               → Swagger UI
//	GET /api-docs/openapi.json  → document as JSON
//	GET /api-docs/openapi.yaml  → document as YAML
//
// The document's servers list is filled in per request from the Host the
// client used, so "Try it out" works behind any address or port.
package docs

import (
	_ "embed"
	"fmt"
	"log/slog"
	"maps"
	"net/http"

	"github.com/aanand-mishra/studentdb-api/internal/utils/response"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openapiYAML []byte

const uiPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>StudentDB API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
  <script>
    window.onload = () => {
      window.ui = SwaggerUIBundle({ url: "/api-docs/openapi.json", dom_id: "#swagger-ui" });
    };
  </script>
</body>
</html>
`

// Spec is the parsed OpenAPI document.
type Spec struct {
	doc map[string]any
}

// Load parses the embedded document.
func Load() (*Spec, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(openapiYAML, &doc); err != nil {
		return nil, fmt.Errorf("docs.Load: parse openapi.yaml: %w", err)
	}
	return &Spec{doc: doc}, nil
}

// forRequest returns a shallow copy of the document whose servers entry
// points at the host the request was sent to.
func (s *Spec) forRequest(r *http.Request) map[string]any {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	doc := maps.Clone(s.doc)
	doc["servers"] = []map[string]string{
		{"url": fmt.Sprintf("%s://%s", scheme, r.Host)},
	}
	return doc
}

// UI serves the Swagger UI page.
func (s *Spec) UI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, uiPage)
	}
}

// JSON serves the document as application/json.
func (s *Spec) JSON() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, s.forRequest(r))
	}
}

// YAML serves the document as application/yaml.
func (s *Spec) YAML() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := yaml.Marshal(s.forRequest(r))
		if err != nil {
			slog.Error("error encoding openapi document", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		w.Header().Set("Content-Type", "application/yaml")
		w.Write(out)
	}
}
