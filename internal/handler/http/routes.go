package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer, h.withTraceID, h.withLogging, withGZip)
	if h.requestTimeout > 0 {
		router.Use(middleware.Timeout(h.requestTimeout))
	}

	router.Get("/", h.hello)
	router.Get("/api/version", h.getServerVersion)

	// one-time secrets
	router.Post("/api/store", h.storeSecret)
	router.Post("/api/view", h.viewSecret)
	router.Post("/api/burn", h.burnSecret)
	router.Post("/api/stats", h.stats)
	router.Get("/api/stats/all", h.statsAll)

	// demo entity store
	router.Get("/demo/users", h.listUsers)
	router.Post("/demo/users", h.upsertUser)
	router.Get("/demo/users/email/{email}", h.getUserByEmail)
	router.Get("/demo/users/{id}", h.getUserByID)
	router.Delete("/demo/users/{id}", h.deleteUserByID)
	router.Get("/demo/users/{id}/address", h.getAddressByUserID)
	router.Post("/demo/users/{id}/address", h.updateUserAddress)

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
