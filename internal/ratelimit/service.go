package ratelimit

import (
	"math"
	"site-functions/internal/observability"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleTTL is how long a client's limiter is kept after its last request
const idleTTL = 10 * time.Minute

// Result is the outcome of one rate limit check
type Result struct {
	Allowed      bool      `json:"allowed"`
	Limit        int       `json:"limit"`
	Remaining    int       `json:"remaining"`
	ResetAt      time.Time `json:"reset_at"`
	RetryAfterMs int       `json:"retry_after_ms,omitempty"`
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Service is a per-key token bucket: limit requests per minute, refilled continuously,
// with a burst of the full minute. State is in-process.
type Service struct {
	mu        sync.Mutex
	clients   map[string]*client
	lastPrune time.Time
	limit     int
	now       func() time.Time
	logger    *observability.Logger
}

// NewService returns a limiter allowing limit requests per minute per key.
// A limit of zero or less disables limiting.
func NewService(limit int, logger *observability.Logger) *Service {
	return &Service{
		clients: make(map[string]*client),
		limit:   limit,
		now:     time.Now,
		logger:  logger,
	}
}

// Enabled reports whether the service limits anything
func (s *Service) Enabled() bool {
	return s != nil && s.limit > 0
}

// Check consumes one request for key
func (s *Service) Check(key string) Result {
	if !s.Enabled() {
		return Result{Allowed: true}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.prune(now)

	interval := time.Minute / time.Duration(s.limit)
	c, ok := s.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rate.Every(interval), s.limit)}
		s.clients[key] = c
	}
	c.lastSeen = now

	if c.limiter.AllowN(now, 1) {
		tokens := c.limiter.TokensAt(now)
		missing := float64(s.limit) - tokens
		return Result{
			Allowed:   true,
			Limit:     s.limit,
			Remaining: int(math.Floor(tokens)),
			ResetAt:   now.Add(time.Duration(missing * float64(interval))),
		}
	}

	r := c.limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return Result{
		Allowed:      false,
		Limit:        s.limit,
		Remaining:    0,
		ResetAt:      now.Add(delay),
		RetryAfterMs: int(delay.Milliseconds()),
	}
}

// prune drops limiters idle for longer than idleTTL, at most once a minute. Callers hold mu.
func (s *Service) prune(now time.Time) {
	if now.Sub(s.lastPrune) < time.Minute {
		return
	}
	s.lastPrune = now
	for key, c := range s.clients {
		if now.Sub(c.lastSeen) > idleTTL {
			delete(s.clients, key)
		}
	}
}
