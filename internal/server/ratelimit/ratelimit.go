// Package ratelimit provides per-client request throttling using token buckets.
package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// bucket is a single token bucket refilling at a steady rate.
type bucket struct {
	mu         sync.Mutex
	capacity   float64
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
	lastAccess time.Time
}

func newBucket(capacity int, refillRate float64) *bucket {
	now := time.Now()
	return &bucket{
		capacity:   float64(capacity),
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: now,
		lastAccess: now,
	}
}

func (b *bucket) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.lastRefill).Seconds() * b.refillRate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.lastRefill = now
	b.lastAccess = now

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return true
	}
	return false
}

// Rule limits one endpoint. Path matches on prefix.
type Rule struct {
	Path   string
	Method string
	Limit  int
	Window time.Duration
	Burst  int
}

func (r Rule) matches(path, method string) bool {
	return r.Method == method && strings.HasPrefix(path, r.Path)
}

func (r Rule) refillRate() float64 {
	return float64(r.Limit) / r.Window.Seconds()
}

func (r Rule) burst() int {
	if r.Burst > 0 {
		return r.Burst
	}
	return r.Limit
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled       bool
	DefaultLimit  int
	DefaultWindow time.Duration
	Rules         []Rule
}

// LoadConfig reads rate limiting configuration from environment variables
// and applies the default endpoint rules.
func LoadConfig() *Config {
	enabled := true
	if v := os.Getenv("RATE_LIMIT_ENABLED"); v != "" {
		enabled, _ = strconv.ParseBool(v)
	}
	if !enabled {
		return &Config{Enabled: false}
	}

	defaultLimit := 300
	if v := os.Getenv("RATE_LIMIT_DEFAULT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			defaultLimit = n
		}
	}

	return &Config{
		Enabled:       true,
		DefaultLimit:  defaultLimit,
		DefaultWindow: time.Minute,
		Rules:         DefaultRules(),
	}
}

// DefaultRules returns the per-endpoint limits. LLM-backed endpoints are
// the most expensive and get the tightest budgets.
func DefaultRules() []Rule {
	return []Rule{
		{Path: "/optimize-resume", Method: "POST", Limit: 10, Window: time.Hour, Burst: 3},
		{Path: "/calculate-ats-detailed", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/upload-resume", Method: "POST", Limit: 20, Window: time.Hour, Burst: 5},
		{Path: "/auth/signup", Method: "POST", Limit: 10, Window: time.Minute},
		{Path: "/auth/login", Method: "POST", Limit: 20, Window: time.Minute},
	}
}

// Limiter throttles clients according to the configured rules.
type Limiter struct {
	config  *Config
	mu      sync.Mutex
	buckets map[string]*bucket
	stop    chan struct{}
	once    sync.Once
}

// NewLimiter creates a Limiter and starts its idle-bucket cleanup loop.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = LoadConfig()
	}
	l := &Limiter{
		config:  config,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	if config.Enabled {
		go l.cleanupLoop(5 * time.Minute)
	}
	return l
}

// Allow reports whether the client may perform the request.
func (l *Limiter) Allow(clientID, path, method string) bool {
	if !l.config.Enabled {
		return true
	}

	limit := l.config.DefaultLimit
	window := l.config.DefaultWindow
	burst := limit
	key := clientID + "|default"
	for _, rule := range l.config.Rules {
		if rule.matches(path, method) {
			limit = rule.Limit
			window = rule.Window
			burst = rule.burst()
			key = clientID + "|" + rule.Method + " " + rule.Path
			break
		}
	}

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = newBucket(burst, float64(limit)/window.Seconds())
		l.buckets[key] = b
	}
	l.mu.Unlock()

	return b.allow()
}

// Stop terminates the cleanup loop.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-interval)
			l.mu.Lock()
			for key, b := range l.buckets {
				b.mu.Lock()
				idle := b.lastAccess.Before(cutoff)
				b.mu.Unlock()
				if idle {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		case <-l.stop:
			return
		}
	}
}
