package http

import (
	"log/slog"
	"net/http"

	_ "github.com/DRSN-tech/store-service/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/store-service/internal/usecase"
	"github.com/DRSN-tech/store-service/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router    *chi.Mux
	logger    logger.Logger
	accessLog *slog.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger, accessLog *slog.Logger) *Router {
	return &Router{router: router, logger: logger, accessLog: accessLog}
}

func (r *Router) Init(prUC usecase.ProductUC) {
	r.router.Use(
		chimiddleware.RequestID,
		chimiddleware.Recoverer,
		StructuredLogger(r.accessLog),
		Metrics,
	)

	r.router.Get("/health", health)
	r.router.Handle("/metrics", promhttp.Handler())
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"), // ссылка на JSON
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		prHandler := NewProductHandler(prUC, r.logger)
		registerProductRoutes(v1, prHandler)
	})
}

func registerProductRoutes(router chi.Router, prHandler *ProductHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Post("/", prHandler.createProduct)
		pr.Get("/", prHandler.queryProducts)
		pr.Get("/{id}", prHandler.getProduct)
		pr.Patch("/{id}", prHandler.updateProduct)
		pr.Delete("/{id}", prHandler.deleteProduct)
	})
}

func health(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}
