package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/keeplegacy/docvault/internal/access"
	apperrors "github.com/keeplegacy/docvault/internal/errors"
	"github.com/keeplegacy/docvault/internal/httputil"
)

// Header names trusted from the upstream authentication layer.
const (
	PrincipalIDHeader   = "X-Principal-Id"
	PrincipalRoleHeader = "X-Principal-Role"
)

// CustomLoggerMiddleware logs each HTTP request with slog after the handler
// chain completes.
func CustomLoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}

// PrincipalMiddleware extracts the principal from trusted request headers.
//
// The vault sits behind the platform's authentication gateway, which verifies
// the session and forwards the caller's identity as headers:
//
//	X-Principal-Id:   UUID of the authenticated user
//	X-Principal-Role: "user" or "admin" (defaults to "user" when absent)
//
// The middleware does not authenticate anything itself; it only parses the
// forwarded identity and stores it in the request context for handlers via
// access.PrincipalFromContext(). Document-level authorization happens in the
// use case layer on every call.
//
// Error handling:
//   - Missing X-Principal-Id header → 401 Unauthorized
//   - Malformed principal ID → 401 Unauthorized
//   - Unknown role value → 401 Unauthorized
func PrincipalMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		idHeader := c.GetHeader(PrincipalIDHeader)
		if idHeader == "" {
			logger.Debug("principal extraction failed: missing principal id header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		principalID, err := uuid.Parse(idHeader)
		if err != nil {
			logger.Debug("principal extraction failed: malformed principal id",
				slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		role := access.Role(c.GetHeader(PrincipalRoleHeader))
		if role == "" {
			role = access.RoleUser
		}
		if role != access.RoleUser && role != access.RoleAdmin {
			logger.Debug("principal extraction failed: unknown role",
				slog.String("role", string(role)))
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		ctx := access.WithPrincipal(c.Request.Context(), access.Principal{
			ID:   principalID,
			Role: role,
		})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// rateLimiterStore holds per-principal rate limiters with automatic cleanup.
type rateLimiterStore struct {
	limiters sync.Map // map[string]*rateLimiterEntry (principal ID -> limiter)
	rps      float64
	burst    int
}

// rateLimiterEntry holds a rate limiter and last access time for cleanup.
type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

// RateLimitMiddleware enforces per-principal rate limiting on vault endpoints.
//
// Uses the token bucket algorithm via golang.org/x/time/rate. Each principal
// gets an independent limiter, falling back to the client IP when the request
// carries no principal header (the principal middleware will reject it anyway,
// but the limiter still counts the attempt).
//
// Configuration:
//   - rps: Requests per second allowed per principal
//   - burst: Maximum burst capacity for temporary spikes
//
// Returns:
//   - 429 Too Many Requests: Rate limit exceeded (includes Retry-After header)
//   - Continues: Request allowed within rate limit
func RateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := &rateLimiterStore{
		rps:   rps,
		burst: burst,
	}

	// Start cleanup goroutine for stale limiters (every 5 minutes)
	go store.cleanupStale(context.Background(), 5*time.Minute)

	return func(c *gin.Context) {
		key := c.GetHeader(PrincipalIDHeader)
		if key == "" {
			key = c.ClientIP()
		}

		limiter := store.getLimiter(key)

		if !limiter.Allow() {
			reservation := limiter.Reserve()
			retryAfter := int(reservation.Delay().Seconds())
			reservation.Cancel()

			logger.Debug("rate limit exceeded",
				slog.String("principal", key),
				slog.Int("retry_after", retryAfter))

			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Too many requests. Please retry after the specified delay.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// getLimiter retrieves or creates a rate limiter for a principal key.
func (s *rateLimiterStore) getLimiter(key string) *rate.Limiter {
	if val, ok := s.limiters.Load(key); ok {
		entry := val.(*rateLimiterEntry)
		entry.mu.Lock()
		entry.lastAccess = time.Now()
		entry.mu.Unlock()
		return entry.limiter
	}

	limiter := rate.NewLimiter(rate.Limit(s.rps), s.burst)
	entry := &rateLimiterEntry{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	s.limiters.Store(key, entry)
	return limiter
}

// cleanupStale removes rate limiters that haven't been accessed recently.
// Runs periodically to prevent unbounded memory growth from principal churn.
func (s *rateLimiterStore) cleanupStale(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Remove limiters not accessed in the last hour
			threshold := time.Now().Add(-1 * time.Hour)
			s.limiters.Range(func(key, value interface{}) bool {
				entry := value.(*rateLimiterEntry)
				entry.mu.Lock()
				shouldDelete := entry.lastAccess.Before(threshold)
				entry.mu.Unlock()

				if shouldDelete {
					s.limiters.Delete(key)
				}
				return true
			})
		}
	}
}
