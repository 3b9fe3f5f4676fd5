package services

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/asientoflow/asientoflow/internal/apperrors"
	"github.com/asientoflow/asientoflow/internal/core/domain"
	"github.com/asientoflow/asientoflow/internal/dto"
	"github.com/asientoflow/asientoflow/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionMode is the kind of editing session. Exactly one mode is active per
// session; mode decides which mutations are legal and whether draft recovery
// applies.
type SessionMode string

const (
	ModeCreate SessionMode = "create"
	ModeEdit   SessionMode = "edit"
	ModeView   SessionMode = "view"
)

// EditingSession is one operator's working copy of a journal entry plus all
// per-session editing state. It replaces the loose visibility/loading flags
// of a form with a single explicit state record: mode, entry, lines,
// validation state and in-flight guards live together and invalid
// combinations are unrepresentable.
//
// A session is serialized by its own mutex. All exported methods of the
// services lock it; background work (debounced validation, autosave) locks it
// too, so the session behaves like the single cooperative thread it models.
type EditingSession struct {
	mu sync.Mutex

	SessionID string
	Mode      SessionMode
	CompanyID string
	UserID    string
	Role      domain.Role
	Period    *domain.Period

	Entry domain.JournalEntry

	// validation state owned by the coordinator
	validation             *domain.ValidationResult
	validationPending      bool
	validationTransportErr string
	generation             atomic.Uint64 // latest issued validation generation
	appliedGeneration      uint64
	staleDropped           uint64
	debounce               *time.Timer

	// lifecycle
	saving          bool
	draftOffer      *domain.Draft
	templateApplied bool
	stopAutosave    func()
	closed          bool

	lastTouched time.Time
}

// canMutate reports whether the session currently accepts line/header
// mutations.
func (s *EditingSession) canMutate() bool {
	if s.closed || s.Mode == ModeView {
		return false
	}
	return s.Entry.IsEditable()
}

// newLine returns an empty line ready for editing.
func newLine() domain.EntryLine {
	return domain.EntryLine{
		LineID: uuid.NewString(),
		Debit:  decimal.Zero,
		Credit: decimal.Zero,
	}
}

// snapshotEntry deep-copies the working entry for use outside the lock.
func (s *EditingSession) snapshotEntry() domain.JournalEntry {
	entry := s.Entry
	entry.Lines = make([]domain.EntryLine, len(s.Entry.Lines))
	copy(entry.Lines, s.Entry.Lines)
	return entry
}

// toResponse builds the observable state DTO. Callers hold s.mu.
func (s *EditingSession) toResponse() *dto.SessionResponse {
	debit, credit, diff := accounting.Totals(s.Entry.Lines)

	resp := &dto.SessionResponse{
		SessionID:       s.SessionID,
		Mode:            string(s.Mode),
		CompanyID:       s.CompanyID,
		Entry:           dto.ToEntryResponse(&s.Entry),
		TotalDebit:      debit,
		TotalCredit:     credit,
		Difference:      diff,
		Balanced:        diff.Abs().LessThan(accounting.BalanceTolerance),
		Structural:      accounting.StructuralErrors(s.Entry.Lines),
		DraftOffer:      dto.ToDraftOfferResponse(s.draftOffer),
		TemplateApplied: s.templateApplied,
	}

	if s.validation != nil || s.validationPending || s.validationTransportErr != "" {
		v := &dto.ValidationResponse{
			Pending:        s.validationPending,
			TransportError: s.validationTransportErr,
		}
		if s.validation != nil {
			v.Errors = s.validation.Errors
			v.Warnings = s.validation.Warnings
			v.Suggestions = s.validation.Suggestions
			v.CompatibleAccounts = s.validation.CompatibleAccounts
			v.Generation = s.validation.Generation
		}
		resp.Validation = v
	}

	return resp
}

// SessionRegistry holds the live editing sessions, keyed by session ID.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*EditingSession
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*EditingSession)}
}

func (r *SessionRegistry) add(s *EditingSession) {
	s.mu.Lock()
	s.lastTouched = time.Now()
	s.mu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.SessionID] = s
}

func (r *SessionRegistry) get(sessionID string) (*EditingSession, error) {
	r.mu.RLock()
	s, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	s.mu.Lock()
	s.lastTouched = time.Now()
	s.mu.Unlock()
	return s, nil
}

func (r *SessionRegistry) remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// forEntry returns the sessions currently holding a working copy of entryID.
// The entry ID is read under each session's own mutex because Save and the
// refresh sink replace the working entry concurrently.
func (r *SessionRegistry) forEntry(entryID string) []*EditingSession {
	if entryID == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*EditingSession
	for _, s := range r.sessions {
		s.mu.Lock()
		match := s.Entry.EntryID == entryID
		s.mu.Unlock()
		if match {
			out = append(out, s)
		}
	}
	return out
}

// evictIdle closes and removes sessions untouched for longer than ttl, so an
// abandoned client that never sends DELETE does not hold its session and
// autosave goroutine forever. Returns the number of sessions evicted.
func (r *SessionRegistry) evictIdle(ttl time.Duration, now time.Time) int {
	r.mu.Lock()
	var evicted []*EditingSession
	for id, s := range r.sessions {
		s.mu.Lock()
		idle := now.Sub(s.lastTouched) > ttl
		s.mu.Unlock()
		if idle {
			delete(r.sessions, id)
			evicted = append(evicted, s)
		}
	}
	r.mu.Unlock()

	for _, s := range evicted {
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
	}
	return len(evicted)
}
