package service

import (
	"context"
	"time"

	"github.com/iliyamo/auth-session-service/internal/repository"
)

// LockoutPolicy drives the per-user failure state machine:
// UNLOCKED(count) -> LOCKED(unlockAt) -> UNLOCKED(0).  The transitions
// live here; the counters and lock records live in the store with TTLs
// doing the expiry work.
type LockoutPolicy struct {
	repo      *repository.LockoutRepo
	threshold int64
	duration  time.Duration
	window    time.Duration
}

func NewLockoutPolicy(repo *repository.LockoutRepo, threshold int, duration, window time.Duration) *LockoutPolicy {
	return &LockoutPolicy{repo: repo, threshold: int64(threshold), duration: duration, window: window}
}

// RecordFailure increments the user's consecutive-failure count and
// returns the new count.
func (p *LockoutPolicy) RecordFailure(ctx context.Context, userID uint64) (int64, error) {
	return p.repo.RecordFailure(ctx, userID, p.window)
}

// HasReachedThreshold reports whether a count meets the configured
// threshold. Takes the count rather than re-reading it so the decision is
// made on the same value the failure increment returned.
func (p *LockoutPolicy) HasReachedThreshold(count int64) bool {
	return count >= p.threshold
}

// Lock places the user into the LOCKED state for the configured duration.
func (p *LockoutPolicy) Lock(ctx context.Context, userID uint64, reason string) error {
	return p.repo.Lock(ctx, userID, reason, p.duration)
}

// IsLocked reports whether the user is currently locked. An expired lock
// reads as unlocked without any cleanup.
func (p *LockoutPolicy) IsLocked(ctx context.Context, userID uint64) (bool, error) {
	return p.repo.IsLocked(ctx, userID)
}

// ResetOnSuccess clears the failure count and any lock after a
// successful authentication.
func (p *LockoutPolicy) ResetOnSuccess(ctx context.Context, userID uint64) error {
	return p.repo.Reset(ctx, userID)
}
