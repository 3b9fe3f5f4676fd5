package services_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/asientoflow/asientoflow/internal/apperrors"
	"github.com/asientoflow/asientoflow/internal/core/domain"
	portsrepo "github.com/asientoflow/asientoflow/internal/core/ports/repositories"
	"github.com/asientoflow/asientoflow/internal/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock LedgerRemote ---
type MockLedgerRemote struct {
	mock.Mock
}

var _ portsrepo.LedgerRemote = (*MockLedgerRemote)(nil)

func (m *MockLedgerRemote) ListEntries(ctx context.Context, filters domain.EntryFilters) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var next *string
	if args.Get(1) != nil {
		token := args.Get(1).(string)
		next = &token
	}
	return args.Get(0).([]domain.JournalEntry), next, args.Error(2)
}

func (m *MockLedgerRemote) GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerRemote) CreateEntry(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerRemote) UpdateEntry(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerRemote) Validate(ctx context.Context, entry domain.JournalEntry) (*domain.ValidationResult, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ValidationResult), args.Error(1)
}

func (m *MockLedgerRemote) GetWarnings(ctx context.Context, entryID string) (*domain.WarningReport, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WarningReport), args.Error(1)
}

func (m *MockLedgerRemote) PostEntry(ctx context.Context, entryID string, confirmedWarningCodes []string) (*domain.TransitionResult, error) {
	args := m.Called(ctx, entryID, confirmedWarningCodes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransitionResult), args.Error(1)
}

func (m *MockLedgerRemote) VoidEntry(ctx context.Context, entryID string) (*domain.TransitionResult, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransitionResult), args.Error(1)
}

func (m *MockLedgerRemote) ReactivateEntry(ctx context.Context, entryID string) (*domain.TransitionResult, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransitionResult), args.Error(1)
}

func (m *MockLedgerRemote) ReverseEntry(ctx context.Context, entryID string, date time.Time, reason string) (*domain.TransitionResult, error) {
	args := m.Called(ctx, entryID, date, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransitionResult), args.Error(1)
}

func (m *MockLedgerRemote) AdjustEntry(ctx context.Context, entryID string, date time.Time, reason string) (*domain.TransitionResult, error) {
	args := m.Called(ctx, entryID, date, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransitionResult), args.Error(1)
}

func (m *MockLedgerRemote) SuggestEntry(ctx context.Context, companyID, memo string, amount *decimal.Decimal) ([]domain.SuggestedLine, error) {
	args := m.Called(ctx, companyID, memo, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SuggestedLine), args.Error(1)
}

func (m *MockLedgerRemote) SuggestAccounts(ctx context.Context, companyID, query string) ([]domain.AccountHint, error) {
	args := m.Called(ctx, companyID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountHint), args.Error(1)
}

func (m *MockLedgerRemote) ListTemplates(ctx context.Context, companyID string) ([]domain.Template, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Template), args.Error(1)
}

func (m *MockLedgerRemote) ListSimilar(ctx context.Context, companyID, memo string) ([]domain.SimilarEntry, error) {
	args := m.Called(ctx, companyID, memo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SimilarEntry), args.Error(1)
}

func (m *MockLedgerRemote) ExportSpreadsheet(ctx context.Context, filters domain.EntryFilters) (io.ReadCloser, string, string, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(io.ReadCloser), args.String(1), args.String(2), args.Error(3)
}

// --- In-memory DraftStore ---
type stubDraftStore struct {
	mu     sync.Mutex
	drafts map[string]domain.Draft
}

var _ portsrepo.DraftStore = (*stubDraftStore)(nil)

func newStubDraftStore() *stubDraftStore {
	return &stubDraftStore{drafts: make(map[string]domain.Draft)}
}

func (s *stubDraftStore) SaveDraft(ctx context.Context, companyID string, draft domain.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[companyID] = draft
	return nil
}

func (s *stubDraftStore) LoadDraft(ctx context.Context, companyID string) (*domain.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[companyID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &d, nil
}

func (s *stubDraftStore) ClearDraft(ctx context.Context, companyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, companyID)
	return nil
}

func (s *stubDraftStore) has(companyID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.drafts[companyID]
	return ok
}

// ctxWithRole builds a context carrying an authenticated principal.
func ctxWithRole(userID string, role domain.Role) context.Context {
	return middleware.WithPrincipal(context.Background(), middleware.Principal{UserID: userID, Role: role})
}
