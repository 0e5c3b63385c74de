package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"equipviz/internal/http/handlers"
	"equipviz/internal/http/middleware"
)

// RouterDeps collects handler dependencies.
type RouterDeps struct {
	AuthHandlers      *handlers.AuthHandlers
	DatasetHandlers   *handlers.DatasetHandlers
	EquipmentHandlers *handlers.EquipmentHandlers
	HealthHandler     http.HandlerFunc
	MetricsHandler    http.Handler
	Logger            *zap.Logger
}

// NewRouter wires HTTP routes with middleware.
func NewRouter(deps RouterDeps, authMiddleware func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", deps.HealthHandler)
	r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", deps.AuthHandlers.Register)
			auth.Post("/login", deps.AuthHandlers.Login)
			auth.Post("/token/refresh", deps.AuthHandlers.Refresh)

			auth.Group(func(protected chi.Router) {
				protected.Use(authMiddleware)
				protected.Post("/logout", deps.AuthHandlers.Logout)
				protected.Get("/profile", deps.AuthHandlers.Profile)
				protected.Patch("/profile", deps.AuthHandlers.UpdateProfile)
				protected.Post("/password/change", deps.AuthHandlers.ChangePassword)
			})
		})

		api.Group(func(protected chi.Router) {
			protected.Use(authMiddleware)

			protected.Route("/datasets", func(ds chi.Router) {
				ds.Get("/", deps.DatasetHandlers.List)
				ds.Post("/upload", deps.DatasetHandlers.Upload)
				ds.Get("/dashboard", deps.DatasetHandlers.Dashboard)
				ds.Get("/{id}", deps.DatasetHandlers.Get)
				ds.Delete("/{id}", deps.DatasetHandlers.Delete)
				ds.Get("/{id}/analytics", deps.DatasetHandlers.Analytics)
				ds.Get("/{id}/equipment", deps.DatasetHandlers.Equipment)
				ds.Get("/{id}/report.pdf", deps.DatasetHandlers.Report)
			})

			protected.Get("/equipment", deps.EquipmentHandlers.List)
		})
	})

	return r
}
