package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// accessLog writes one Info line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// limiterIdle is how long a client's limiter may sit unused before it is
// dropped. A bucket idle this long has refilled, so dropping it loses nothing.
const limiterIdle = 10 * time.Minute

type clientLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// uploadLimiter is a per-client token bucket for the upload endpoint.
type uploadLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	lastPrune time.Time
	now       func() time.Time
}

// newUploadLimiter allows perMin uploads per client per minute. A
// non-positive perMin disables limiting.
func newUploadLimiter(perMin int) *uploadLimiter {
	if perMin <= 0 {
		return &uploadLimiter{limit: rate.Inf, now: time.Now}
	}
	return &uploadLimiter{
		limiters: make(map[string]*clientLimiter),
		limit:    rate.Every(time.Minute / time.Duration(perMin)),
		burst:    perMin,
		now:      time.Now,
	}
}

func (l *uploadLimiter) limiterFor(client string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastPrune) >= limiterIdle {
		l.prune(now)
	}

	cl, ok := l.limiters[client]
	if !ok {
		cl = &clientLimiter{lim: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[client] = cl
	}
	cl.lastSeen = now
	return cl.lim
}

// prune drops limiters idle for limiterIdle. Callers hold l.mu.
func (l *uploadLimiter) prune(now time.Time) {
	for client, cl := range l.limiters {
		if now.Sub(cl.lastSeen) >= limiterIdle {
			delete(l.limiters, client)
		}
	}
	l.lastPrune = now
}

func (l *uploadLimiter) allow(client string) bool {
	if l.limit == rate.Inf {
		return true
	}
	return l.limiterFor(client).Allow()
}

// Middleware rejects requests over the limit with 429.
func (l *uploadLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := clientIP(r)
		if !l.allow(client) {
			zap.L().Warn("server: upload rate limit exceeded", zap.String("client", client))
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "too many uploads, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
