// Package apidocs serves the OpenAPI description of the REST API and a
// Swagger UI page for browsing it.
package apidocs

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
)

//go:embed openapi.yaml
var document []byte

// SpecPath is where the JSON document is served, relative to the docs mount.
const SpecPath = "/openapi.json"

// Load parses and validates the embedded document. A non-empty serverURL
// replaces the servers list so "try it out" targets this deployment.
func Load(ctx context.Context, serverURL string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	if serverURL != "" {
		doc.Servers = openapi3.Servers{{URL: serverURL, Description: "This server"}}
	}
	return doc, nil
}

var uiPage = template.Must(template.New("ui").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui" data-spec-url="{{.SpecURL}}"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function () {
      var el = document.getElementById("swagger-ui");
      window.ui = SwaggerUIBundle({ url: el.dataset.specUrl, dom_id: "#swagger-ui", withCredentials: true });
    };
  </script>
</body>
</html>
`))

// NewHandler serves the UI at the mount root and the document at SpecPath.
// mountPath is the prefix the handler is mounted under, e.g. "/api-docs".
func NewHandler(doc *openapi3.T, mountPath string) (http.Handler, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode openapi document: %w", err)
	}
	title := "API docs"
	if doc.Info != nil && doc.Info.Title != "" {
		title = doc.Info.Title
	}

	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = uiPage.Execute(w, struct{ Title, SpecURL string }{title, mountPath + SpecPath})
	})
	r.Get(SpecPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(raw)
	})
	return r, nil
}
