package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/synaptic/study-engine/internal/api"
	apiMiddleware "github.com/synaptic/study-engine/internal/api/middleware"
)

// handlers groups the HTTP handlers mounted by newRouter.
type handlers struct {
	cards    *api.CardHandler
	insights *api.InsightsHandler
	plans    *api.PlanHandler
	health   http.HandlerFunc
}

// setupRouter builds the handlers from the application's services.
func (app *application) setupRouter() http.Handler {
	return newRouter(handlers{
		cards:    api.NewCardHandler(app.cardReviewService, app.logger),
		insights: api.NewInsightsHandler(app.readinessService, app.gapService, app.logger),
		plans:    api.NewPlanHandler(app.studyPlanService, app.logger),
		health:   api.HealthHandler(app.db),
	}, app.logger)
}

func newRouter(h handlers, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(logger))

	r.Get("/health", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Use(apiMiddleware.LearnerIdentity)

		r.Get("/cards/due", h.cards.ListDue)
		r.Post("/cards/{id}/review", h.cards.SubmitReview)

		r.Get("/readiness", h.insights.GetReadiness)
		r.Get("/gaps", h.insights.GetGaps)

		r.Post("/plans", h.plans.CreatePlan)
	})

	return r
}
