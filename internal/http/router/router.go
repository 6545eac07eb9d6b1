// Package router assembles the HTTP surface of the service.
//
// Route table:
//
//	POST   /studentDetails        → create a student
//	GET    /studentDetails        → list all students
//	GET    /studentDetails/{id}   → get one student by id
//	PATCH  /studentDetails/{id}   → partially update a student
//	DELETE /studentDetails/{id}   → delete a student
//	GET    /api-docs              → Swagger UI (+ openapi.json / openapi.yaml)
//	GET    /healthz               → store reachability
package router

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/studentdb-api/internal/http/handlers/docs"
	"github.com/aanand-mishra/studentdb-api/internal/http/handlers/health"
	"github.com/aanand-mishra/studentdb-api/internal/http/handlers/student"
	"github.com/aanand-mishra/studentdb-api/internal/http/middleware"
	"github.com/aanand-mishra/studentdb-api/internal/storage"
)

// BasePath is where the student resource is mounted.
const BasePath = "/studentDetails"

// Options configures New.
type Options struct {
	Logger      *slog.Logger
	CORSOrigins []string
}

// New returns the fully wrapped handler for the service.
func New(store storage.Storage, opts Options) (http.Handler, error) {
	spec, err := docs.Load()
	if err != nil {
		return nil, fmt.Errorf("router.New: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	mux := http.NewServeMux()

	// {$} matches the trailing-slash form exactly, so both
	// /studentDetails and /studentDetails/ reach the collection handlers.
	for _, base := range []string{BasePath, BasePath + "/{$}"} {
		mux.HandleFunc("POST "+base, student.New(store))
		mux.HandleFunc("GET "+base, student.GetList(store))
	}
	mux.HandleFunc("GET "+BasePath+"/{id}", student.GetByID(store))
	mux.HandleFunc("PATCH "+BasePath+"/{id}", student.Update(store))
	mux.HandleFunc("DELETE "+BasePath+"/{id}", student.Delete(store))

	mux.HandleFunc("GET /api-docs", spec.UI())
	mux.HandleFunc("GET /api-docs/{$}", spec.UI())
	mux.HandleFunc("GET /api-docs/openapi.json", spec.JSON())
	mux.HandleFunc("GET /api-docs/openapi.yaml", spec.YAML())

	mux.HandleFunc("GET /healthz", health.Check(store))

	return middleware.Chain(mux,
		middleware.AccessLog(log),
		middleware.Recover(log),
		middleware.CORS(opts.CORSOrigins),
	), nil
}
