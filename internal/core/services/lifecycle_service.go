package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/asientoflow/asientoflow/internal/apperrors"
	"github.com/asientoflow/asientoflow/internal/core/domain"
	portsrepo "github.com/asientoflow/asientoflow/internal/core/ports/repositories"
	portssvc "github.com/asientoflow/asientoflow/internal/core/ports/services"
	"github.com/asientoflow/asientoflow/internal/dto"
	"github.com/asientoflow/asientoflow/internal/middleware"
	"github.com/asientoflow/asientoflow/internal/utils/accounting"
)

// lifecycleService drives entry state transitions against the ledger
// authority. Each transition is guarded per entry so double submits fail fast
// instead of reaching the authority twice.
type lifecycleService struct {
	ledger portsrepo.LedgerRemote
	sink   EntryEventSink

	mu       sync.Mutex
	inFlight map[string]struct{}
	// preVoid records the status an entry had before it was voided, so
	// reactivation can cross-check the authority's answer.
	preVoid map[string]domain.EntryStatus
}

// NewLifecycleService creates the lifecycle service.
func NewLifecycleService(ledger portsrepo.LedgerRemote, sink EntryEventSink) portssvc.LifecycleSvc {
	return &lifecycleService{
		ledger:   ledger,
		sink:     sink,
		inFlight: make(map[string]struct{}),
		preVoid:  make(map[string]domain.EntryStatus),
	}
}

var _ portssvc.LifecycleSvc = (*lifecycleService)(nil)

func (l *lifecycleService) acquire(entryID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.inFlight[entryID]; busy {
		return fmt.Errorf("%w: a transition for this entry is already in flight", apperrors.ErrConflict)
	}
	l.inFlight[entryID] = struct{}{}
	return nil
}

func (l *lifecycleService) release(entryID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.inFlight, entryID)
}

func (l *lifecycleService) notify(ctx context.Context, kind string, result *domain.TransitionResult, entryID, companyID string) {
	transitionsTotal.WithLabelValues(kind, "ok").Inc()

	event := EntryEvent{
		Kind:       kind,
		EntryID:    entryID,
		CompanyID:  companyID,
		Message:    result.Message,
		Entry:      result.Entry,
		OccurredAt: time.Now().UTC(),
	}
	if result.Entry != nil {
		event.EntryID = result.Entry.EntryID
		event.CompanyID = result.Entry.CompanyID
	}
	l.sink.EntryChanged(ctx, event)
}

// ListEntries returns a page of entry summaries.
func (l *lifecycleService) ListEntries(ctx context.Context, companyID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	if _, ok := middleware.GetPrincipalFromCtx(ctx); !ok {
		return nil, apperrors.ErrForbidden
	}

	entries, next, err := l.ledger.ListEntries(ctx, domain.EntryFilters{
		CompanyID: companyID,
		PeriodID:  params.PeriodID,
		DateFrom:  params.DateFrom,
		DateTo:    params.DateTo,
		Status:    params.Status,
		Limit:     params.Limit,
		NextToken: params.NextToken,
	})
	if err != nil {
		return nil, err
	}
	return &dto.ListEntriesResponse{
		Entries:   dto.ToEntryResponses(entries),
		NextToken: next,
	}, nil
}

// GetEntry returns the full entry.
func (l *lifecycleService) GetEntry(ctx context.Context, entryID string) (*dto.EntryResponse, error) {
	entry, err := l.ledger.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	resp := dto.ToEntryResponse(entry)
	return &resp, nil
}

// PostEntry commits a draft. Warnings requiring confirmation must all be
// acknowledged; the pre-posting check runs against the authority's current
// findings, not a possibly stale client copy.
func (l *lifecycleService) PostEntry(ctx context.Context, entryID string, req dto.PostEntryRequest) (*dto.TransitionResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	principal, ok := middleware.GetPrincipalFromCtx(ctx)
	if !ok {
		return nil, apperrors.ErrForbidden
	}
	if !principal.Role.CanWrite() {
		return nil, fmt.Errorf("%w: role %s cannot post entries", apperrors.ErrForbidden, principal.Role)
	}

	if err := l.acquire(entryID); err != nil {
		return nil, err
	}
	defer l.release(entryID)

	entry, err := l.ledger.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.StatusDraft {
		return nil, fmt.Errorf("%w: only draft entries can be posted, entry is %s", apperrors.ErrConflict, entry.Status)
	}
	if err := checkPeriod(principal.Role, req.Period.ToPeriod(), entry.EntryDate); err != nil {
		return nil, err
	}

	report, err := l.ledger.GetWarnings(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if report.HasErrors {
		msg := "entry has blocking errors"
		if len(report.Errors) > 0 {
			msg = report.Errors[0].Message
		}
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, msg)
	}
	if missing := domain.UnconfirmedWarningCodes(report.Warnings, req.ConfirmedWarningCodes); len(missing) > 0 {
		return nil, fmt.Errorf("%w: unconfirmed warnings: %v", apperrors.ErrPrecondition, missing)
	}

	result, err := l.ledger.PostEntry(ctx, entryID, req.ConfirmedWarningCodes)
	if err != nil {
		transitionsTotal.WithLabelValues("post", "rejected").Inc()
		return nil, err
	}

	logger.Info("Entry posted", slog.String("entry_id", entryID))
	l.notify(ctx, "post", result, entryID, entry.CompanyID)
	resp := dto.ToTransitionResponse(result)
	return &resp, nil
}

// VoidEntry voids a posted entry. The authority may refuse; its rejection is
// surfaced verbatim and never retried.
func (l *lifecycleService) VoidEntry(ctx context.Context, entryID string, req dto.VoidEntryRequest) (*dto.TransitionResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	principal, ok := middleware.GetPrincipalFromCtx(ctx)
	if !ok {
		return nil, apperrors.ErrForbidden
	}
	if !principal.Role.CanWrite() {
		return nil, fmt.Errorf("%w: role %s cannot void entries", apperrors.ErrForbidden, principal.Role)
	}
	if !req.Confirmed {
		return nil, fmt.Errorf("%w: voiding requires explicit confirmation", apperrors.ErrPrecondition)
	}

	if err := l.acquire(entryID); err != nil {
		return nil, err
	}
	defer l.release(entryID)

	entry, err := l.ledger.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status == domain.StatusVoided {
		return nil, fmt.Errorf("%w: entry is already voided", apperrors.ErrConflict)
	}

	result, err := l.ledger.VoidEntry(ctx, entryID)
	if err != nil {
		transitionsTotal.WithLabelValues("void", "rejected").Inc()
		logger.Warn("Void rejected by ledger authority", slog.String("entry_id", entryID), slog.String("error", err.Error()))
		return nil, err
	}

	l.mu.Lock()
	l.preVoid[entryID] = entry.Status
	l.mu.Unlock()

	logger.Info("Entry voided", slog.String("entry_id", entryID), slog.String("prior_status", string(entry.Status)))
	l.notify(ctx, "void", result, entryID, entry.CompanyID)
	resp := dto.ToTransitionResponse(result)
	return &resp, nil
}

// ReactivateEntry restores a voided entry to its pre-void status. When the
// pre-void status is known locally, an authority answer claiming a different
// status is rejected as inconsistent.
func (l *lifecycleService) ReactivateEntry(ctx context.Context, entryID string) (*dto.TransitionResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	principal, ok := middleware.GetPrincipalFromCtx(ctx)
	if !ok {
		return nil, apperrors.ErrForbidden
	}
	if !principal.Role.CanWrite() {
		return nil, fmt.Errorf("%w: role %s cannot reactivate entries", apperrors.ErrForbidden, principal.Role)
	}

	if err := l.acquire(entryID); err != nil {
		return nil, err
	}
	defer l.release(entryID)

	entry, err := l.ledger.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.StatusVoided {
		return nil, fmt.Errorf("%w: only voided entries can be reactivated", apperrors.ErrConflict)
	}

	result, err := l.ledger.ReactivateEntry(ctx, entryID)
	if err != nil {
		transitionsTotal.WithLabelValues("reactivate", "rejected").Inc()
		return nil, err
	}

	l.mu.Lock()
	prior, known := l.preVoid[entryID]
	delete(l.preVoid, entryID)
	l.mu.Unlock()

	if known && result.Entry != nil && result.Entry.Status != prior {
		logger.Error("Reactivation returned unexpected status",
			slog.String("entry_id", entryID),
			slog.String("expected", string(prior)),
			slog.String("got", string(result.Entry.Status)))
		return nil, fmt.Errorf("%w: reactivated entry came back %s, expected %s", apperrors.ErrConflict, result.Entry.Status, prior)
	}

	logger.Info("Entry reactivated", slog.String("entry_id", entryID))
	l.notify(ctx, "reactivate", result, entryID, entry.CompanyID)
	resp := dto.ToTransitionResponse(result)
	return &resp, nil
}

// ReverseEntry creates a posted entry offsetting the original. The answer is
// cross-checked line by line: same accounts, debit and credit swapped.
func (l *lifecycleService) ReverseEntry(ctx context.Context, entryID string, req dto.CorrectionRequest) (*dto.TransitionResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	principal, ok := middleware.GetPrincipalFromCtx(ctx)
	if !ok {
		return nil, apperrors.ErrForbidden
	}
	if !principal.Role.CanWrite() {
		return nil, fmt.Errorf("%w: role %s cannot reverse entries", apperrors.ErrForbidden, principal.Role)
	}

	if err := l.acquire(entryID); err != nil {
		return nil, err
	}
	defer l.release(entryID)

	original, err := l.ledger.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if original.Status != domain.StatusPosted {
		return nil, fmt.Errorf("%w: only posted entries can be reversed", apperrors.ErrConflict)
	}
	if original.ReversedFromID != nil {
		return nil, fmt.Errorf("%w: a reversal cannot itself be reversed", apperrors.ErrConflict)
	}
	if original.ReversedByID != nil {
		return nil, fmt.Errorf("%w: entry is already reversed by %s", apperrors.ErrConflict, *original.ReversedByID)
	}
	if err := checkPeriod(principal.Role, req.Period.ToPeriod(), req.Date); err != nil {
		return nil, err
	}

	result, err := l.ledger.ReverseEntry(ctx, entryID, req.Date, req.Reason)
	if err != nil {
		transitionsTotal.WithLabelValues("reverse", "rejected").Inc()
		return nil, err
	}

	if result.Entry != nil {
		if err := verifyReversal(original, result.Entry); err != nil {
			logger.Error("Reversal shape mismatch", slog.String("entry_id", entryID), slog.String("error", err.Error()))
			return nil, err
		}
	}

	logger.Info("Entry reversed", slog.String("entry_id", entryID), slog.String("reversal_id", result.Entry.EntryID))
	l.notify(ctx, "reverse", result, entryID, original.CompanyID)
	resp := dto.ToTransitionResponse(result)
	return &resp, nil
}

// verifyReversal checks the reversal offsets the original exactly.
func verifyReversal(original, reversal *domain.JournalEntry) error {
	if reversal.ReversedFromID == nil || *reversal.ReversedFromID != original.EntryID {
		return fmt.Errorf("%w: reversal is not back-linked to the original", apperrors.ErrConflict)
	}
	expected := accounting.ReverseLines(original.Lines)
	if len(reversal.Lines) != len(expected) {
		return fmt.Errorf("%w: reversal has %d lines, expected %d", apperrors.ErrConflict, len(reversal.Lines), len(expected))
	}
	for i, want := range expected {
		got := reversal.Lines[i]
		if got.AccountCode != want.AccountCode || !got.Debit.Equal(want.Debit) || !got.Credit.Equal(want.Credit) {
			return fmt.Errorf("%w: reversal line %d does not offset the original", apperrors.ErrConflict, i)
		}
	}
	return nil
}

// AdjustEntry creates an amount-less draft back-linked to the original.
func (l *lifecycleService) AdjustEntry(ctx context.Context, entryID string, req dto.CorrectionRequest) (*dto.TransitionResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	principal, ok := middleware.GetPrincipalFromCtx(ctx)
	if !ok {
		return nil, apperrors.ErrForbidden
	}
	if !principal.Role.CanWrite() {
		return nil, fmt.Errorf("%w: role %s cannot adjust entries", apperrors.ErrForbidden, principal.Role)
	}

	if err := l.acquire(entryID); err != nil {
		return nil, err
	}
	defer l.release(entryID)

	original, err := l.ledger.GetEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if original.Status != domain.StatusPosted {
		return nil, fmt.Errorf("%w: only posted entries can be adjusted", apperrors.ErrConflict)
	}
	if err := checkPeriod(principal.Role, req.Period.ToPeriod(), req.Date); err != nil {
		return nil, err
	}

	result, err := l.ledger.AdjustEntry(ctx, entryID, req.Date, req.Reason)
	if err != nil {
		transitionsTotal.WithLabelValues("adjust", "rejected").Inc()
		return nil, err
	}

	if result.Entry != nil && result.Entry.Status != domain.StatusDraft {
		return nil, fmt.Errorf("%w: adjustment came back %s, expected a draft", apperrors.ErrConflict, result.Entry.Status)
	}

	logger.Info("Adjustment created", slog.String("entry_id", entryID))
	l.notify(ctx, "adjust", result, entryID, original.CompanyID)
	resp := dto.ToTransitionResponse(result)
	return &resp, nil
}
