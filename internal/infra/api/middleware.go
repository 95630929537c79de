// File: internal/infra/api/middleware.go
package api

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"prime-fitness-backend/internal/domain"
	"prime-fitness-backend/internal/infra/logging"
	"prime-fitness-backend/internal/infra/metrics"
	"prime-fitness-backend/internal/infra/redis"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// observe records request count and latency labeled by the chi route
// pattern, never the raw path, so IDs don't explode cardinality.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithRequestID(r.Context(), uuid.NewString())
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r.WithContext(ctx))

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(route, r.Method, strconv.Itoa(sw.status), float64(time.Since(start).Milliseconds()))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return ""
}

// requireUser verifies the HS256 access token and stores its subject as
// the acting user id.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			respondError(w, s.log, domain.ErrUnauthorized)
			return
		}
		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, domain.ErrUnauthorized
			}
			return []byte(s.auth.JWTSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			respondError(w, s.log, domain.ErrUnauthorized)
			return
		}
		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			respondError(w, s.log, domain.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(logging.WithUserID(r.Context(), sub)))
	})
}

// userID pulls the authenticated subject out of the request context.
// Routes behind requireUser always have one.
func userID(r *http.Request) string {
	if v, ok := logging.UserIDFrom(r.Context()); ok {
		return v
	}
	return ""
}

func (s *Server) requireAdminToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if s.auth.AdminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.auth.AdminToken)) != 1 {
			respondError(w, s.log, domain.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireWebhookToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Webhook-Token")
		if s.auth.WebhookToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.auth.WebhookToken)) != 1 {
			respondError(w, s.log, domain.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// promoRateLimit throttles activation attempts per user. A Redis outage
// fails open; activation correctness never depends on the limiter.
func (s *Server) promoRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil {
			ok, err := s.limiter.Allow(r.Context(), redis.PromoActivationKey(userID(r)), s.promo.ActivationRateLimit, s.promo.ActivationRateWindow)
			if err != nil {
				s.log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
			} else if !ok {
				respondError(w, s.log, domain.ErrRateLimited)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
