// internal/infra/httpapi/router.go
package httpapi

import (
	"encoding/json"
	"net/http"

	"video_xapi_tracker/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Handler exposes the host-application boundary: event ingestion, queue
// diagnostics and the LRS connectivity check.
type Handler struct {
	ingest   *app.IngestService
	delivery *app.DeliveryService
	logger   *logrus.Logger
}

func NewHandler(ingest *app.IngestService, delivery *app.DeliveryService, logger *logrus.Logger) *Handler {
	return &Handler{ingest: ingest, delivery: delivery, logger: logger}
}

func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.healthz)
	r.Route("/api", func(r chi.Router) {
		r.Post("/events", h.ingestEvent)
		r.Get("/queue/stats", h.queueStats)
		r.Post("/lrs/test", h.testConnection)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
