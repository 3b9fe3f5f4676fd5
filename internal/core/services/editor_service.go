package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/asientoflow/asientoflow/internal/apperrors"
	"github.com/asientoflow/asientoflow/internal/core/domain"
	portsrepo "github.com/asientoflow/asientoflow/internal/core/ports/repositories"
	portssvc "github.com/asientoflow/asientoflow/internal/core/ports/services"
	"github.com/asientoflow/asientoflow/internal/dto"
	"github.com/asientoflow/asientoflow/internal/middleware"
	"github.com/asientoflow/asientoflow/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// editorService owns editing sessions and the line editor semantics.
type editorService struct {
	registry    *SessionRegistry
	ledger      portsrepo.LedgerRemote
	coordinator *ValidationCoordinator
	drafts      *draftManager
	sink        EntryEventSink
}

// NewEditorService creates the editor service.
func NewEditorService(registry *SessionRegistry, ledger portsrepo.LedgerRemote, coordinator *ValidationCoordinator, drafts *draftManager, sink EntryEventSink) portssvc.EditorSvc {
	return &editorService{
		registry:    registry,
		ledger:      ledger,
		coordinator: coordinator,
		drafts:      drafts,
		sink:        sink,
	}
}

var _ portssvc.EditorSvc = (*editorService)(nil)

// checkPeriod runs the local preconditions that must hold before any write
// reaches the ledger authority. Failures carry actionable messages.
func checkPeriod(role domain.Role, period *domain.Period, date time.Time) error {
	if period == nil {
		return fmt.Errorf("%w: no accounting period selected", apperrors.ErrPrecondition)
	}
	if !date.IsZero() && !period.Contains(date) {
		return fmt.Errorf("%w: entry date %s is outside the selected period", apperrors.ErrPrecondition, date.Format("2006-01-02"))
	}
	if period.Closed && !role.CanPostInClosedPeriod() {
		return fmt.Errorf("%w: period %s is closed; ask an administrator or accountant", apperrors.ErrPrecondition, period.PeriodID)
	}
	return nil
}

// OpenSession starts a create, edit or view session.
func (e *editorService) OpenSession(ctx context.Context, req dto.OpenSessionRequest) (*dto.SessionResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	principal, ok := middleware.GetPrincipalFromCtx(ctx)
	if !ok {
		return nil, apperrors.ErrForbidden
	}

	mode := SessionMode(req.Mode)
	if mode != ModeView && !principal.Role.CanWrite() {
		return nil, fmt.Errorf("%w: role %s cannot edit entries", apperrors.ErrForbidden, principal.Role)
	}

	s := &EditingSession{
		SessionID: uuid.NewString(),
		Mode:      mode,
		CompanyID: req.CompanyID,
		UserID:    principal.UserID,
		Role:      principal.Role,
		Period:    req.Period.ToPeriod(),
	}

	switch mode {
	case ModeCreate:
		s.Entry = domain.JournalEntry{
			CompanyID:    req.CompanyID,
			Status:       domain.StatusDraft,
			Origin:       domain.OriginManual,
			ExchangeRate: decimal.NewFromInt(1),
			Lines:        []domain.EntryLine{newLine(), newLine()},
		}
		if s.Period != nil {
			s.Entry.EntryDate = s.Period.Start
		}
		s.draftOffer = e.drafts.recoveryOffer(ctx, req.CompanyID)
		e.drafts.startAutosave(ctx, s)

	case ModeEdit, ModeView:
		if req.EntryID == "" {
			return nil, fmt.Errorf("%w: entryID is required for %s mode", apperrors.ErrValidation, mode)
		}
		entry, err := e.ledger.GetEntry(ctx, req.EntryID)
		if err != nil {
			return nil, err
		}
		if entry.CompanyID != req.CompanyID {
			return nil, apperrors.ErrNotFound
		}
		// Non-draft entries are rendered view-only regardless of what was
		// requested; corrections go through reverse or adjust.
		if mode == ModeEdit && !entry.IsEditable() {
			logger.Info("Entry not editable, opening view session instead", slog.String("entry_id", entry.EntryID), slog.String("status", string(entry.Status)))
			s.Mode = ModeView
		}
		s.Entry = *entry

	default:
		return nil, fmt.Errorf("%w: unknown session mode %q", apperrors.ErrValidation, req.Mode)
	}

	e.registry.add(s)
	logger.Info("Editing session opened", slog.String("session_id", s.SessionID), slog.String("mode", string(s.Mode)), slog.String("company_id", s.CompanyID))

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toResponse(), nil
}

// GetSession returns the session's observable state.
func (e *editorService) GetSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	s, err := e.registry.get(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toResponse(), nil
}

// CloseSession discards the session and stops its background work.
func (e *editorService) CloseSession(ctx context.Context, sessionID string) error {
	s, err := e.registry.get(sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.closed = true
	if s.debounce != nil {
		s.debounce.Stop()
	}
	stop := s.stopAutosave
	s.stopAutosave = nil
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
	e.registry.remove(sessionID)
	middleware.GetLoggerFromCtx(ctx).Info("Editing session closed", slog.String("session_id", sessionID))
	return nil
}

// mutate runs fn on the session under its lock after the mode check, then
// schedules a validation round.
func (e *editorService) mutate(ctx context.Context, sessionID string, fn func(s *EditingSession) error) (*dto.SessionResponse, error) {
	s, err := e.registry.get(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.canMutate() {
		return nil, fmt.Errorf("%w: session is read-only", apperrors.ErrConflict)
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	e.coordinator.NoteChange(ctx, s)
	return s.toResponse(), nil
}

func lineIndexValid(s *EditingSession, index int) error {
	if index < 0 || index >= len(s.Entry.Lines) {
		return fmt.Errorf("%w: line index %d out of range", apperrors.ErrValidation, index)
	}
	return nil
}

// AddLine appends an empty line.
func (e *editorService) AddLine(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	return e.mutate(ctx, sessionID, func(s *EditingSession) error {
		s.Entry.Lines = append(s.Entry.Lines, newLine())
		return nil
	})
}

// DuplicateLine inserts a copy of line index after it, with a fresh line ID.
func (e *editorService) DuplicateLine(ctx context.Context, sessionID string, index int) (*dto.SessionResponse, error) {
	return e.mutate(ctx, sessionID, func(s *EditingSession) error {
		if err := lineIndexValid(s, index); err != nil {
			return err
		}
		copied := s.Entry.Lines[index]
		copied.LineID = uuid.NewString()
		lines := append(s.Entry.Lines[:index+1], append([]domain.EntryLine{copied}, s.Entry.Lines[index+1:]...)...)
		s.Entry.Lines = lines
		return nil
	})
}

// RemoveLine deletes line index. Removing the last remaining line is a no-op;
// saving still requires at least two lines.
func (e *editorService) RemoveLine(ctx context.Context, sessionID string, index int) (*dto.SessionResponse, error) {
	return e.mutate(ctx, sessionID, func(s *EditingSession) error {
		if err := lineIndexValid(s, index); err != nil {
			return err
		}
		if len(s.Entry.Lines) <= 1 {
			return nil
		}
		s.Entry.Lines = append(s.Entry.Lines[:index], s.Entry.Lines[index+1:]...)
		return nil
	})
}

// UpdateLine patches one line. Committing a positive debit zeroes the credit
// column and vice versa.
func (e *editorService) UpdateLine(ctx context.Context, sessionID string, index int, req dto.UpdateLineRequest) (*dto.SessionResponse, error) {
	return e.mutate(ctx, sessionID, func(s *EditingSession) error {
		if err := lineIndexValid(s, index); err != nil {
			return err
		}
		line := &s.Entry.Lines[index]
		if req.AccountCode != nil {
			line.AccountCode = strings.TrimSpace(*req.AccountCode)
		}
		if req.Memo != nil {
			line.Memo = *req.Memo
		}
		if req.Debit != nil {
			if req.Debit.IsNegative() {
				return fmt.Errorf("%w: debit must not be negative", apperrors.ErrValidation)
			}
			line.SetDebit(accounting.Round2(*req.Debit))
		}
		if req.Credit != nil {
			if req.Credit.IsNegative() {
				return fmt.Errorf("%w: credit must not be negative", apperrors.ErrValidation)
			}
			line.SetCredit(accounting.Round2(*req.Credit))
		}
		return nil
	})
}

// CommitAmount parses the raw text buffer of an amount field and commits it,
// mirroring a blur event. Empty or unparseable input restores the prior
// committed value.
func (e *editorService) CommitAmount(ctx context.Context, sessionID string, index int, req dto.CommitAmountRequest) (*dto.SessionResponse, error) {
	return e.mutate(ctx, sessionID, func(s *EditingSession) error {
		if err := lineIndexValid(s, index); err != nil {
			return err
		}
		line := &s.Entry.Lines[index]
		side := domain.SideDebit
		if req.Field == "credit" {
			side = domain.SideCredit
		}

		if strings.TrimSpace(req.Raw) == "" {
			return nil // field left empty, prior committed value stands
		}
		amount, err := accounting.ParseAmount(req.Raw)
		if err != nil || amount.IsNegative() {
			return nil // unparseable input falls back to the committed value
		}
		line.SetAmount(side, amount)
		return nil
	})
}

// UpdateHeader patches memo, date, currency or exchange rate.
func (e *editorService) UpdateHeader(ctx context.Context, sessionID string, req dto.UpdateHeaderRequest) (*dto.SessionResponse, error) {
	return e.mutate(ctx, sessionID, func(s *EditingSession) error {
		if req.Memo != nil {
			s.Entry.Memo = *req.Memo
		}
		if req.EntryDate != nil {
			s.Entry.EntryDate = *req.EntryDate
		}
		if req.CurrencyCode != nil {
			s.Entry.CurrencyCode = *req.CurrencyCode
		}
		if req.ExchangeRate != nil {
			if !req.ExchangeRate.IsPositive() {
				return fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
			}
			s.Entry.ExchangeRate = *req.ExchangeRate
		}
		return nil
	})
}

// ApplyDraft restores the offered draft into the session.
func (e *editorService) ApplyDraft(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	return e.mutate(ctx, sessionID, func(s *EditingSession) error {
		if s.draftOffer == nil {
			return fmt.Errorf("%w: no draft offered for recovery", apperrors.ErrNotFound)
		}
		draft := s.draftOffer
		s.Entry.EntryDate = draft.EntryDate
		s.Entry.Memo = draft.Memo
		s.Entry.Lines = make([]domain.EntryLine, len(draft.Lines))
		copy(s.Entry.Lines, draft.Lines)
		s.draftOffer = nil
		return nil
	})
}

// DiscardDraft rejects the offered draft and clears it from storage.
func (e *editorService) DiscardDraft(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	s, err := e.registry.get(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.draftOffer = nil
	companyID := s.CompanyID
	resp := s.toResponse()
	s.mu.Unlock()

	e.drafts.clear(ctx, companyID)
	return resp, nil
}

// Save creates or updates the DRAFT entry at the ledger authority. Local
// structural errors and rule-engine errors block it unconditionally.
func (e *editorService) Save(ctx context.Context, sessionID string) (*dto.EntryResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	s, err := e.registry.get(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if !s.canMutate() {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: session is read-only", apperrors.ErrConflict)
	}
	if s.saving {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: a save is already in flight", apperrors.ErrConflict)
	}
	if err := checkPeriod(s.Role, s.Period, s.Entry.EntryDate); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if structural := accounting.StructuralErrors(s.Entry.Lines); len(structural) > 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, structural[0].Message)
	}
	if s.validation.HasBlockingErrors() {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, s.validation.Errors[0].Message)
	}
	s.saving = true
	snapshot := s.snapshotEntry()
	isNew := snapshot.EntryID == ""
	s.mu.Unlock()

	var saved *domain.JournalEntry
	if isNew {
		saved, err = e.ledger.CreateEntry(ctx, snapshot)
	} else {
		saved, err = e.ledger.UpdateEntry(ctx, snapshot)
	}

	s.mu.Lock()
	s.saving = false
	if err == nil {
		s.Entry = *saved
		if s.Mode == ModeCreate {
			s.Mode = ModeEdit
			if stop := s.stopAutosave; stop != nil {
				s.stopAutosave = nil
				stop()
			}
		}
	}
	s.mu.Unlock()

	if err != nil {
		logger.Warn("Save rejected", slog.String("session_id", sessionID), slog.String("error", err.Error()))
		return nil, err
	}

	e.drafts.clear(ctx, saved.CompanyID)
	e.sink.EntryChanged(ctx, EntryEvent{
		Kind:       "saved",
		EntryID:    saved.EntryID,
		CompanyID:  saved.CompanyID,
		Message:    "entry saved",
		Entry:      saved,
		OccurredAt: time.Now().UTC(),
	})

	logger.Info("Entry saved", slog.String("entry_id", saved.EntryID), slog.Bool("created", isNew))
	resp := dto.ToEntryResponse(saved)
	return &resp, nil
}
