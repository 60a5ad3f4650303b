// Package benefitengine предоставляет маршруты для основного приложения.
package benefitengine

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	adminflag "github.com/magabrotheeeer/benefit-engine/internal/http/handlers/admin/flag"
	adminnote "github.com/magabrotheeeer/benefit-engine/internal/http/handlers/admin/note"
	benefitactivate "github.com/magabrotheeeer/benefit-engine/internal/http/handlers/benefit/activate"
	benefitprocess "github.com/magabrotheeeer/benefit-engine/internal/http/handlers/benefit/process"
	"github.com/magabrotheeeer/benefit-engine/internal/http/handlers/health"
	ledgerlist "github.com/magabrotheeeer/benefit-engine/internal/http/handlers/ledger/list"
	pioneeractivate "github.com/magabrotheeeer/benefit-engine/internal/http/handlers/pioneer/activate"
	pioneercomplete "github.com/magabrotheeeer/benefit-engine/internal/http/handlers/pioneer/complete"
	statuscredit "github.com/magabrotheeeer/benefit-engine/internal/http/handlers/status/credit"
	statusread "github.com/magabrotheeeer/benefit-engine/internal/http/handlers/status/read"
	withdrawalrequest "github.com/magabrotheeeer/benefit-engine/internal/http/handlers/withdrawal/request"
	"github.com/magabrotheeeer/benefit-engine/internal/http/middlewarectx"
	benefitservice "github.com/magabrotheeeer/benefit-engine/internal/services/benefit"
	pioneerservice "github.com/magabrotheeeer/benefit-engine/internal/services/pioneer"
	statusservice "github.com/magabrotheeeer/benefit-engine/internal/services/status"
	withdrawalservice "github.com/magabrotheeeer/benefit-engine/internal/services/withdrawal"
	"github.com/magabrotheeeer/benefit-engine/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, jwtMaker middlewarectx.TokenParser,
	statusService *statusservice.Service, benefitService *benefitservice.Service,
	withdrawalService *withdrawalservice.Service, pioneerService *pioneerservice.Service,
	db *repository.Storage) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/health", health.New(logger).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/packages/activate", benefitactivate.New(logger, benefitService).ServeHTTP)
			r.Post("/benefits/process", benefitprocess.New(logger, benefitService).ServeHTTP)
			r.Post("/withdrawals", withdrawalrequest.New(logger, withdrawalService).ServeHTTP)
			r.Post("/pioneer/activate", pioneeractivate.New(logger, pioneerService).ServeHTTP)
			r.Post("/pioneer/complete", pioneercomplete.New(logger, pioneerService).ServeHTTP)
			r.Post("/credits", statuscredit.New(logger, statusService).ServeHTTP)
			r.Post("/admin/flag", adminflag.New(logger, statusService).ServeHTTP)
			r.Post("/admin/notes", adminnote.New(logger, statusService).ServeHTTP)
			r.Get("/status/{userID}", statusread.New(logger, statusService).ServeHTTP)
			r.Get("/ledger/{userID}", ledgerlist.New(logger, db).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
