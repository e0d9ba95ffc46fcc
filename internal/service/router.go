// Package service implements the HTTP/JSON API of the dashboard.
package service

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/mmynk/mandato360/internal/metrics"
	"github.com/mmynk/mandato360/internal/middleware"
)

// Services groups the API handlers mounted by NewRouter.
type Services struct {
	Allocation *AllocationService
	Financial  *FinancialService
	Dashboard  *DashboardService
	Chat       *ChatService
}

// NewRouter builds the application handler: API routes, /healthz, /metrics
// and, when staticDir is set, the built frontend.
func NewRouter(svc Services, m *metrics.Metrics, staticDir string) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestID(), middleware.Logging(m))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	svc.Allocation.Register(r)
	svc.Financial.Register(r)
	svc.Dashboard.Register(r)
	svc.Chat.Register(r)
	r.NotFoundHandler = http.HandlerFunc(notFound)

	if staticDir != "" {
		r.PathPrefix("/").Handler(spaHandler(staticDir))
	}

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{"Content-Disposition", middleware.RequestIDHeader},
	})
	return c.Handler(r)
}

// spaHandler serves files from dir and falls back to index.html for
// unknown paths so client-side routes work on reload.
func spaHandler(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			notFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}
		filePath := filepath.Join(dir, filepath.Clean("/"+urlPath))

		if info, err := os.Stat(filePath); err != nil || info.IsDir() {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		http.ServeFile(w, r, filePath)
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "Rota não encontrada"})
}
