// File: internal/infra/api/server.go
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"prime-fitness-backend/internal/config"
	"prime-fitness-backend/internal/infra/redis"
	"prime-fitness-backend/internal/usecase"
)

// Server owns the REST surface. Client routes sit behind JWT auth, admin
// routes behind the admin bearer token, and the payment webhook behind
// its own shared-secret header.
type Server struct {
	subUC        usecase.SubscriptionUseCase
	planUC       usecase.PlanUseCase
	promoAdminUC usecase.PromoAdminUseCase
	activityUC   usecase.ActivityUseCase
	achUC        usecase.AchievementUseCase
	weeklyUC     usecase.WeeklyFocusUseCase
	remUC        usecase.ReminderUseCase
	aiUC         usecase.AIPlanUseCase
	analyticsUC  usecase.AnalyticsUseCase

	limiter *redis.RateLimiter
	auth    config.AuthConfig
	promo   config.PromoConfig
	log     *zerolog.Logger
}

func NewServer(
	subUC usecase.SubscriptionUseCase,
	planUC usecase.PlanUseCase,
	promoAdminUC usecase.PromoAdminUseCase,
	activityUC usecase.ActivityUseCase,
	achUC usecase.AchievementUseCase,
	weeklyUC usecase.WeeklyFocusUseCase,
	remUC usecase.ReminderUseCase,
	aiUC usecase.AIPlanUseCase,
	analyticsUC usecase.AnalyticsUseCase,
	limiter *redis.RateLimiter,
	authCfg config.AuthConfig,
	promoCfg config.PromoConfig,
	logger *zerolog.Logger,
) *Server {
	compLog := logger.With().Str("component", "APIServer").Logger()
	return &Server{
		subUC:        subUC,
		planUC:       planUC,
		promoAdminUC: promoAdminUC,
		activityUC:   activityUC,
		achUC:        achUC,
		weeklyUC:     weeklyUC,
		remUC:        remUC,
		aiUC:         aiUC,
		analyticsUC:  analyticsUC,
		limiter:      limiter,
		auth:         authCfg,
		promo:        promoCfg,
		log:          &compLog,
	}
}

// Router builds the chi mux with all routes and middleware attached.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(s.observe)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Payment provider callback; authenticated by shared secret, not JWT.
		r.With(s.requireWebhookToken).Post("/payments/webhook", s.handlePaymentWebhook)

		// Internal trigger for the reminder sweep.
		r.With(s.requireAdminToken).Post("/push/reminders/run", s.handleReminderSweep)

		// Admin surface.
		r.Group(func(r chi.Router) {
			r.Use(s.requireAdminToken)
			r.Post("/subscription/plans", s.handlePlanCreate)
			r.Get("/subscription/promos", s.handlePromoList)
			r.Post("/subscription/promos", s.handlePromoCreate)
			r.Post("/subscription/promo-batches", s.handlePromoBatchCreate)
			r.Get("/subscription/promos/stats", s.handlePromoStats)
		})

		// Client surface.
		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)

			r.Get("/subscription", s.handleSubscriptionGet)
			r.Post("/subscription/purchase", s.handlePurchaseInit)
			r.Post("/subscription/verify", s.handlePurchaseVerify)
			r.With(s.promoRateLimit).Post("/subscription/activate-promo", s.handleActivatePromo)
			r.Post("/subscription/cancel", s.handleSubscriptionCancel)
			r.Get("/subscription/plans", s.handlePlanList)
			r.Get("/offline/entitlement", s.handleEntitlement)

			r.Get("/achievements", s.handleAchievements)
			r.Get("/weekly-focus", s.handleWeeklyFocus)
			r.Post("/workouts/runs", s.handleWorkoutStart)
			r.Post("/workouts/runs/{id}/complete", s.handleWorkoutComplete)
			r.Post("/meditations/runs", s.handleMeditationStart)
			r.Post("/meditations/runs/{id}/complete", s.handleMeditationComplete)

			r.Get("/reminders", s.handleReminderList)
			r.Post("/reminders", s.handleReminderCreate)
			r.Patch("/reminders/{id}", s.handleReminderPatch)
			r.Delete("/reminders/{id}", s.handleReminderDelete)
			r.Post("/push/register", s.handlePushRegister)
			r.Post("/push/unregister", s.handlePushUnregister)

			r.Post("/ai/plan", s.handleAIPlan)
			r.Post("/analytics/events", s.handleAnalyticsIngest)
		})
	})
	return r
}

// NewHTTPServer wraps the router in an http.Server with sane timeouts.
func NewHTTPServer(addr string, handler http.Handler, cfg config.ServerConfig) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
}
