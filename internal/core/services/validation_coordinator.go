package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/asientoflow/asientoflow/internal/core/domain"
	portsrepo "github.com/asientoflow/asientoflow/internal/core/ports/repositories"
	"github.com/asientoflow/asientoflow/internal/middleware"
)

// ValidationCoordinator debounces session changes into remote validation
// calls and reconciles their responses. Every issued call carries a
// generation number; only the response matching the latest issued generation
// may update the session, so a slow response for generation N can never
// overwrite the state produced by N+1. In-flight calls are never aborted,
// their results are just ignored.
type ValidationCoordinator struct {
	ledger   portsrepo.LedgerRemote
	debounce time.Duration
}

// NewValidationCoordinator creates a coordinator with the given debounce
// window (500 ms in production).
func NewValidationCoordinator(ledger portsrepo.LedgerRemote, debounce time.Duration) *ValidationCoordinator {
	return &ValidationCoordinator{ledger: ledger, debounce: debounce}
}

// shouldFire is the precondition for issuing a validation call.
func shouldFire(entry *domain.JournalEntry) bool {
	return len(entry.Lines) >= 2 && strings.TrimSpace(entry.Memo) != ""
}

// NoteChange registers a line or memo change and (re)arms the debounce timer.
// Callers hold the session mutex.
func (v *ValidationCoordinator) NoteChange(ctx context.Context, s *EditingSession) {
	if s.Mode == ModeView || s.closed {
		return
	}
	if !shouldFire(&s.Entry) {
		s.validationPending = false
		return
	}

	s.validationPending = true
	detached := middleware.DetachForRemote(ctx)

	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.debounce = time.AfterFunc(v.debounce, func() {
		v.fire(detached, s)
	})
}

// fire issues one validation call for the settled burst.
func (v *ValidationCoordinator) fire(ctx context.Context, s *EditingSession) {
	s.mu.Lock()
	if s.closed || !shouldFire(&s.Entry) {
		s.validationPending = false
		s.mu.Unlock()
		return
	}
	snapshot := s.snapshotEntry()
	generation := s.generation.Add(1)
	s.mu.Unlock()

	logger := middleware.GetLoggerFromCtx(ctx)
	validationRoundsTotal.Inc()

	result, err := v.ledger.Validate(ctx, snapshot)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		// Keep the last good result; record the failure so it is surfaced,
		// and let the next change burst retry.
		if generation == s.generation.Load() {
			s.validationTransportErr = err.Error()
			s.validationPending = false
		}
		logger.Warn("Validation call failed", slog.Uint64("generation", generation), slog.String("error", err.Error()))
		return
	}

	if !v.apply(s, generation, result) {
		logger.Debug("Dropped stale validation response", slog.Uint64("generation", generation))
	}
}

// apply installs a validation result if its generation is still the latest
// issued one. Returns false when the response is stale. Callers hold the
// session mutex.
func (v *ValidationCoordinator) apply(s *EditingSession, generation uint64, result *domain.ValidationResult) bool {
	if generation != s.generation.Load() || generation <= s.appliedGeneration {
		s.staleDropped++
		validationStaleDropped.Inc()
		return false
	}
	result.Generation = generation
	s.validation = result
	s.appliedGeneration = generation
	s.validationPending = false
	s.validationTransportErr = ""
	return true
}
