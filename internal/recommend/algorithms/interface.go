// Reelrank - Latent Factor Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrank

package algorithms

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/reelrank/internal/recommend"
)

// BaseAlgorithm provides bookkeeping shared by all trainers.
// Training itself is stateless: every run returns a fresh model, so
// concurrent runs on different stores do not contend on this lock.
type BaseAlgorithm struct {
	name          string
	runs          int
	lastTrainedAt time.Time
	lastDuration  time.Duration
	mu            sync.RWMutex
}

// NewBaseAlgorithm creates a new base algorithm with the given name.
func NewBaseAlgorithm(name string) BaseAlgorithm {
	return BaseAlgorithm{
		name: name,
	}
}

// Name returns the algorithm identifier.
func (b *BaseAlgorithm) Name() string {
	return b.name
}

// Runs returns the number of completed training runs.
func (b *BaseAlgorithm) Runs() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.runs
}

// LastTrainedAt returns when the last run completed.
func (b *BaseAlgorithm) LastTrainedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastTrainedAt
}

// LastDuration returns the duration of the last completed run.
func (b *BaseAlgorithm) LastDuration() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastDuration
}

// markTrained records a completed run.
func (b *BaseAlgorithm) markTrained(at time.Time, d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.runs++
	b.lastTrainedAt = at
	b.lastDuration = d
}

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// budgetError converts a context error or an exhausted wall-clock budget into
// the error a trainer returns. A passed deadline, whether from the context or
// the trainer's own limit, is a training timeout; plain cancellation is
// returned as is.
func budgetError(ctx context.Context, deadline time.Time, now time.Time, epoch, epochs int) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: context deadline reached after %d of %d epochs", recommend.ErrTrainingTimeout, epoch, epochs)
		}
		return err
	}
	if !deadline.IsZero() && now.After(deadline) {
		return fmt.Errorf("%w: budget exhausted after %d of %d epochs", recommend.ErrTrainingTimeout, epoch, epochs)
	}
	return nil
}

// Ensure all algorithms implement the interface.
var (
	_ recommend.Trainer = (*SVD)(nil)
)
