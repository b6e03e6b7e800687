package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-kpi-api/internal/domain"
	"github.com/vfg2006/sales-kpi-api/pkg/apiErrors"
	"golang.org/x/time/rate"
)

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterIdleTimeout     = 10 * time.Minute
)

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore guarda um token bucket por cliente. Cada consulta de KPI vira
// SQL no banco do tenant, por isso o limite é por tenant quando há token.
type limiterStore struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	cfg     RateLimitConfig
	now     func() time.Time
}

func newLimiterStore(cfg RateLimitConfig) *limiterStore {
	return &limiterStore{
		clients: make(map[string]*clientLimiter),
		cfg:     cfg,
		now:     time.Now,
	}
}

func (s *limiterStore) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cl, ok := s.clients[key]; ok {
		cl.lastSeen = s.now()
		return cl.limiter
	}

	limiter := rate.NewLimiter(rate.Limit(s.cfg.RequestsPerSecond), s.cfg.Burst)
	s.clients[key] = &clientLimiter{limiter: limiter, lastSeen: s.now()}
	return limiter
}

func (s *limiterStore) cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, cl := range s.clients {
		if s.now().Sub(cl.lastSeen) > limiterIdleTimeout {
			delete(s.clients, key)
			removed++
		}
	}
	return removed
}

// RateLimiter aplica um token bucket por cliente. Deve ficar depois do
// AuthMiddleware na cadeia para enxergar o tenant das claims.
func RateLimiter(ctx context.Context, cfg RateLimitConfig) func(http.Handler) http.Handler {
	store := newLimiterStore(cfg)

	go func() {
		ticker := time.NewTicker(limiterCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := store.cleanup(); removed > 0 {
					logrus.WithField("removed", removed).Debug("Limitadores ociosos removidos")
				}
			}
		}
	}()

	return rateLimit(store)
}

func rateLimit(store *limiterStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			limiter := store.get(clientKey(r))

			reservation := limiter.Reserve()
			if !reservation.OK() {
				writeTooManyRequests(w, 0)
				return
			}

			if delay := reservation.Delay(); delay > 0 {
				reservation.Cancel()
				writeTooManyRequests(w, int(delay.Seconds())+1)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(store.cfg.Burst))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey usa o tenant do token e cai para o IP remoto. X-Forwarded-For é ignorado.
func clientKey(r *http.Request) string {
	if claims, ok := r.Context().Value(ContextKeyUser).(*domain.Claims); ok && claims.TenantID != "" {
		return "tenant:" + claims.TenantID
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}

func writeTooManyRequests(w http.ResponseWriter, retryAfterSecs int) {
	if retryAfterSecs > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSecs))
	}
	apiErrors.WriteError(w, apiErrors.ErrRateLimited, "Limite de requisições excedido", nil)
}
