package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	// routes without authorization
	router.Get("/api/version", h.getServerVersion)

	// blob routes, scoped to the token owner
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/api/blobs", h.listBlobs)
		r.Put("/api/blobs/{recordID}", h.putBlob)
		r.Get("/api/blobs/{recordID}", h.getBlob)
		r.Delete("/api/blobs/{recordID}", h.deleteBlob)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
