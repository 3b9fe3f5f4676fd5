package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/asientoflow/asientoflow/internal/apperrors"
	"github.com/asientoflow/asientoflow/internal/core/domain"
	portsrepo "github.com/asientoflow/asientoflow/internal/core/ports/repositories"
	"github.com/asientoflow/asientoflow/internal/middleware"
	"github.com/asientoflow/asientoflow/internal/utils/accounting"
)

// draftManager owns the local draft lifecycle: periodic autosave of open
// create sessions and the recovery policy on session open. One draft per
// company; each cycle overwrites the previous snapshot.
type draftManager struct {
	store    portsrepo.DraftStore
	interval time.Duration
	maxAge   time.Duration
	now      func() time.Time
}

func newDraftManager(store portsrepo.DraftStore, interval, maxAge time.Duration) *draftManager {
	return &draftManager{
		store:    store,
		interval: interval,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// recoveryOffer loads a stored draft for the company and applies the age
// policy: younger than maxAge it is offered, otherwise it is cleared
// silently. Only create sessions call this; edit/view sessions and sessions
// that already applied a template skip recovery entirely.
func (d *draftManager) recoveryOffer(ctx context.Context, companyID string) *domain.Draft {
	logger := middleware.GetLoggerFromCtx(ctx)

	draft, err := d.store.LoadDraft(ctx, companyID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Failed to load draft for recovery", slog.String("company_id", companyID), slog.String("error", err.Error()))
		}
		return nil
	}

	if draft.Age(d.now()) >= d.maxAge {
		if err := d.store.ClearDraft(ctx, companyID); err != nil {
			logger.Warn("Failed to clear expired draft", slog.String("company_id", companyID), slog.String("error", err.Error()))
		}
		return nil
	}
	return draft
}

// snapshot builds a draft from the session's working entry. Callers hold the
// session mutex.
func (d *draftManager) snapshot(s *EditingSession) domain.Draft {
	debit, _, _ := accounting.Totals(s.Entry.Lines)
	lines := make([]domain.EntryLine, len(s.Entry.Lines))
	copy(lines, s.Entry.Lines)
	return domain.Draft{
		CompanyID: s.CompanyID,
		EntryDate: s.Entry.EntryDate,
		Memo:      s.Entry.Memo,
		Amount:    debit,
		Lines:     lines,
		SavedAt:   d.now(),
	}
}

// startAutosave runs the 30-second autosave loop for a create session until
// stopped. Saves only while the memo is non-empty.
func (d *draftManager) startAutosave(ctx context.Context, s *EditingSession) {
	detached := middleware.DetachForRemote(ctx)
	logger := middleware.GetLoggerFromCtx(detached)
	done := make(chan struct{})

	s.stopAutosave = func() { close(done) }

	go func() {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				s.mu.Lock()
				if s.closed || s.Mode != ModeCreate || strings.TrimSpace(s.Entry.Memo) == "" {
					s.mu.Unlock()
					continue
				}
				draft := d.snapshot(s)
				s.mu.Unlock()

				if err := d.store.SaveDraft(detached, draft.CompanyID, draft); err != nil {
					logger.Warn("Draft autosave failed", slog.String("company_id", draft.CompanyID), slog.String("error", err.Error()))
				}
			}
		}
	}()
}

// clear removes the company's stored draft, used after a successful save or
// an explicit dismissal.
func (d *draftManager) clear(ctx context.Context, companyID string) {
	if err := d.store.ClearDraft(ctx, companyID); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to clear draft", slog.String("company_id", companyID), slog.String("error", err.Error()))
	}
}
