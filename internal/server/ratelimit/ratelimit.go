// Package ratelimit provides per-client request limiting on top of token-bucket limiters.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// entry is one client+endpoint limiter and the last time it was used.
type entry struct {
	limiter  *rate.Limiter
	limit    rate.Limit
	burst    int
	lastSeen time.Time
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter manages rate limiting for multiple clients.
type Limiter struct {
	mu            sync.Mutex
	entries       map[string]*entry
	config        *Config
	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	stopOnce      sync.Once
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	// EntryTTL is how long an idle client limiter is kept. Defaults to one hour.
	EntryTTL        time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
			Whitelist:       make(map[string]bool),
			Blacklist:       make(map[string]bool),
		}
	}

	limiter := &Limiter{
		entries: make(map[string]*entry),
		config:  config,
	}

	if config.Enabled && config.CleanupInterval > 0 {
		limiter.cleanupTicker = time.NewTicker(config.CleanupInterval)
		limiter.cleanupStop = make(chan struct{})
		go limiter.cleanup()
	}

	return limiter
}

// Allow checks if a request from the given client is allowed for the specified endpoint.
// Returns true if allowed, false if rate limited, along with rate limit information.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	endpointConfig := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if endpointConfig == nil {
		endpointConfig = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	}
	if endpointConfig.Limit <= 0 || endpointConfig.Window <= 0 {
		return true, Info{Allowed: true}
	}

	now := time.Now()
	e := l.getEntry(clientID+":"+endpoint+":"+method, endpointConfig, now)

	allowed := e.limiter.AllowN(now, 1)
	tokens := e.limiter.TokensAt(now)
	if tokens < 0 {
		tokens = 0
	}

	info := Info{
		Allowed:   allowed,
		Limit:     endpointConfig.Limit,
		Remaining: int(tokens),
		ResetTime: now.Add(secondsToDuration((float64(e.burst) - tokens) / float64(e.limit))),
	}
	if !allowed {
		info.RetryAfter = secondsToDuration((1 - tokens) / float64(e.limit))
	}
	return allowed, info
}

// getEntry gets or creates the limiter for key.
func (l *Limiter) getEntry(key string, cfg *EndpointConfig, now time.Time) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[key]; ok {
		e.lastSeen = now
		return e
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.Limit
	}
	limit := rate.Limit(float64(cfg.Limit) / cfg.Window.Seconds())
	e := &entry{
		limiter:  rate.NewLimiter(limit, burst),
		limit:    limit,
		burst:    burst,
		lastSeen: now,
	}
	l.entries[key] = e
	return e
}

// cleanup removes idle limiters until Stop is called.
func (l *Limiter) cleanup() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.cleanupEntries(time.Now())
		case <-l.cleanupStop:
			return
		}
	}
}

// cleanupEntries removes limiters that have been idle longer than the entry TTL.
func (l *Limiter) cleanupEntries(now time.Time) int {
	ttl := l.config.EntryTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, e := range l.entries {
		if now.Sub(e.lastSeen) > ttl {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cleanupTicker != nil {
			l.cleanupTicker.Stop()
		}
		if l.cleanupStop != nil {
			close(l.cleanupStop)
		}
	})
}

func secondsToDuration(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}
