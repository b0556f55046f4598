// Package ratelimit throttles draw runs and serializes schedule saves.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrSaveInProgress is returned by AcquireSave while another save for the
// same competition holds the guard.
var ErrSaveInProgress = errors.New("save already in progress")

// Clock interface for testing time-dependent behavior.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Config holds rate limit configuration.
type Config struct {
	DrawCooldown     time.Duration // Minimum time between runs for one competition (default: 5s)
	DrawMaxPerHour   int           // Max runs per competition per hour (default: 60)
	DrawMaxIPPerHour int           // Max runs per client IP per hour (default: 240)

	// Clock for testing (nil uses real time)
	Clock Clock
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		DrawCooldown:     5 * time.Second,
		DrawMaxPerHour:   60,
		DrawMaxIPPerHour: 240,
	}
}

// LimitResult contains the result of a rate limit check.
type LimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Reason     string
}

type entry struct {
	count   int
	firstAt time.Time // First run in window
	lastAt  time.Time // Most recent run (for cooldown)
}

// Limiter tracks draw runs per competition and per client IP, and holds
// the set of competitions with a save in flight.
type Limiter struct {
	config *Config
	clock  Clock
	mu     sync.RWMutex

	drawByCompetition map[int64]*entry
	drawByIP          map[string]*entry // Keyed by hash of IP

	savesMu sync.Mutex
	saving  map[int64]struct{}

	cleanupCtx    context.Context
	cleanupCancel context.CancelFunc
	cleanupOnce   sync.Once
	cleanupWg     sync.WaitGroup
}

// New creates a new rate limiter with the given config.
func New(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Limiter{
		config:            cfg,
		clock:             clock,
		drawByCompetition: make(map[int64]*entry),
		drawByIP:          make(map[string]*entry),
		saving:            make(map[int64]struct{}),
		cleanupCtx:        ctx,
		cleanupCancel:     cancel,
	}
}

// Close stops the cleanup goroutine.
func (l *Limiter) Close() {
	l.cleanupCancel()
	l.cleanupWg.Wait()
}

// CheckDraw reports whether a draw run for the competition is allowed.
// It does not record the run; call RecordDraw once the run starts.
func (l *Limiter) CheckDraw(competitionID int64, ip string) LimitResult {
	l.startCleanup()
	now := l.clock.Now()
	ipKey := hashKey("draw:ip:", ip)

	l.mu.RLock()
	defer l.mu.RUnlock()

	if e := l.drawByCompetition[competitionID]; e != nil {
		elapsed := now.Sub(e.lastAt)
		if elapsed < l.config.DrawCooldown {
			return LimitResult{
				RetryAfter: l.config.DrawCooldown - elapsed,
				Reason:     "cooldown",
			}
		}
		if now.Sub(e.firstAt) < time.Hour && e.count >= l.config.DrawMaxPerHour {
			return LimitResult{
				RetryAfter: time.Hour - now.Sub(e.firstAt),
				Reason:     "hourly_limit",
			}
		}
	}

	if e := l.drawByIP[ipKey]; e != nil {
		if now.Sub(e.firstAt) < time.Hour && e.count >= l.config.DrawMaxIPPerHour {
			return LimitResult{
				RetryAfter: time.Hour - now.Sub(e.firstAt),
				Reason:     "ip_hourly_limit",
			}
		}
	}

	return LimitResult{Allowed: true}
}

// RecordDraw records a draw run against the competition and the IP.
func (l *Limiter) RecordDraw(competitionID int64, ip string) {
	now := l.clock.Now()
	ipKey := hashKey("draw:ip:", ip)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.drawByCompetition[competitionID] = bump(l.drawByCompetition[competitionID], now)
	l.drawByIP[ipKey] = bump(l.drawByIP[ipKey], now)
}

func bump(e *entry, now time.Time) *entry {
	if e == nil || now.Sub(e.firstAt) >= time.Hour {
		return &entry{count: 1, firstAt: now, lastAt: now}
	}
	e.count++
	e.lastAt = now
	return e
}

// AcquireSave marks a save in flight for the competition. The returned
// release func is safe to call more than once.
func (l *Limiter) AcquireSave(competitionID int64) (release func(), err error) {
	l.savesMu.Lock()
	defer l.savesMu.Unlock()

	if _, busy := l.saving[competitionID]; busy {
		return func() {}, ErrSaveInProgress
	}
	l.saving[competitionID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.savesMu.Lock()
			delete(l.saving, competitionID)
			l.savesMu.Unlock()
		})
	}, nil
}

func hashKey(prefix, value string) string {
	h := sha256.Sum256([]byte(prefix + value))
	return hex.EncodeToString(h[:16])
}

func (l *Limiter) startCleanup() {
	l.cleanupOnce.Do(func() {
		l.cleanupWg.Add(1)
		go func() {
			defer l.cleanupWg.Done()
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-l.cleanupCtx.Done():
					return
				case <-ticker.C:
					l.cleanup()
				}
			}
		}()
	})
}

func (l *Limiter) cleanup() {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	for k, e := range l.drawByCompetition {
		if now.Sub(e.lastAt) > time.Hour {
			delete(l.drawByCompetition, k)
		}
	}
	for k, e := range l.drawByIP {
		if now.Sub(e.lastAt) > time.Hour {
			delete(l.drawByIP, k)
		}
	}
}

// LogRateLimitExceeded logs a rejected draw run.
func LogRateLimitExceeded(competitionID int64, ip string, result LimitResult) {
	log.Warn().
		Str("event", "rate_limit_exceeded").
		Str("competition_id", strconv.FormatInt(competitionID, 10)).
		Str("ip", ip).
		Str("reason", result.Reason).
		Dur("retry_after", result.RetryAfter).
		Msg("Draw rate limit exceeded")
}
