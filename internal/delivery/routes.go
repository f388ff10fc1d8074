package delivery

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Messages *MessageHandler
	Uploads  *UploadHandler
	Webhook  *WebhookHandler
	Static   *StaticHandler
}

func NewRouter(h Handlers) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	RegisterRoutes(r, h)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func RegisterRoutes(r chi.Router, h Handlers) {
	// front end
	r.Get("/", h.Static.Index)
	r.Get("/uploads/{filename}", h.Static.Upload)

	// messages
	r.Get("/api/messages", h.Messages.List)
	r.Post("/api/messages", h.Messages.Create)
	r.Delete("/api/messages/{id}", h.Messages.Delete)

	// audio in, replies back
	r.Post("/api/upload_audio", h.Uploads.UploadAudio)
	r.Post("/api/webhook_receive", h.Webhook.Receive)
}
