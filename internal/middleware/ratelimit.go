package middleware

import (
	"log"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/christian-rost/stammdatenmanagement/internal/api"
)

const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client address with a token bucket that
// allows perMinute requests per minute, all of which may arrive at once.
type RateLimiter struct {
	name      string
	limit     rate.Limit
	burst     int
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	now       func() time.Time
	lastSweep time.Time
}

// NewRateLimiter creates a limiter. A perMinute below one disables limiting.
func NewRateLimiter(name string, perMinute int) *RateLimiter {
	rl := &RateLimiter{
		name:    name,
		burst:   perMinute,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
	if perMinute > 0 {
		rl.limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	return rl
}

// Allow reports whether the client may make a request now. When it may not,
// the returned duration is how long until the next token is available.
func (rl *RateLimiter) Allow(client string) (bool, time.Duration) {
	if rl.burst <= 0 {
		return true, 0
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	cl, ok := rl.clients[client]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[client] = cl
	}
	cl.lastSeen = now

	res := cl.limiter.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// sweep drops limiters that have been idle long enough to be full again
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < limiterIdleTTL {
		return
	}
	rl.lastSweep = now
	for key, cl := range rl.clients {
		if now.Sub(cl.lastSeen) > limiterIdleTTL {
			delete(rl.clients, key)
		}
	}
}

// Wrap rejects requests over the limit with 429 and a Retry-After header
func (rl *RateLimiter) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := clientAddress(r)
		ok, wait := rl.Allow(client)
		if !ok {
			log.Printf("RateLimiter: %s limit exceeded for %s", rl.name, client)
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			api.RespondErrorWithCode(w, http.StatusTooManyRequests, "rate_limited", "Too many requests, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WrapFunc wraps an http.HandlerFunc with rate limiting
func (rl *RateLimiter) WrapFunc(next http.HandlerFunc) http.Handler {
	return rl.Wrap(next)
}

func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
