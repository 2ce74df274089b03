package handler

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/names-api/backend/internal/handler/docs"
	"github.com/zhouzirui/names-api/backend/internal/handler/home"
	"github.com/zhouzirui/names-api/backend/internal/handler/names"
	middlewarePkg "github.com/zhouzirui/names-api/backend/internal/middleware"
	"github.com/zhouzirui/names-api/backend/internal/model/name"
	"github.com/zhouzirui/names-api/backend/pkg/utils"
)

// NewRouter wires HTTP routes to the names store.
func NewRouter(store name.Store) (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(middlewarePkg.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	docsHandler, err := docs.New()
	if err != nil {
		return nil, fmt.Errorf("build api document: %w", err)
	}

	home.New(store).RegisterRoutes(r)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			log.Printf("[health] store ping failed: %v", err)
			utils.RespondError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		names.New(store).RegisterRoutes(api)
		docsHandler.RegisterRoutes(api)
	})

	return r, nil
}
