package repositories

import (
	"context"
	"io"
	"time"

	"github.com/asientoflow/asientoflow/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerRemote is the contract the engine requires from the remote ledger
// authority. The authority owns persisted entries, validation rules, account
// suggestions, period locking and role enforcement; the engine treats its
// rejections as final. The bearer token of the inbound request is forwarded
// on every call via the context (see middleware auth).
type LedgerRemote interface {
	// ListEntries returns entry summaries (no lines) matching the filters,
	// plus an opaque continuation token.
	ListEntries(ctx context.Context, filters domain.EntryFilters) ([]domain.JournalEntry, *string, error)

	// GetEntry returns the full entry with its lines.
	GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// CreateEntry persists a new DRAFT entry.
	CreateEntry(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error)

	// UpdateEntry replaces a DRAFT entry's content.
	UpdateEntry(ctx context.Context, entry domain.JournalEntry) (*domain.JournalEntry, error)

	// Validate runs the rule engine against an entry shape without persisting.
	Validate(ctx context.Context, entry domain.JournalEntry) (*domain.ValidationResult, error)

	// GetWarnings returns the current pre-posting findings for a saved entry.
	GetWarnings(ctx context.Context, entryID string) (*domain.WarningReport, error)

	// PostEntry commits a DRAFT entry to the ledger, attaching the operator's
	// warning acknowledgments.
	PostEntry(ctx context.Context, entryID string, confirmedWarningCodes []string) (*domain.TransitionResult, error)

	// VoidEntry voids a posted entry. The authority may reject (for example
	// when dependent postings exist); the rejection is final.
	VoidEntry(ctx context.Context, entryID string) (*domain.TransitionResult, error)

	// ReactivateEntry restores a voided entry to its pre-void status.
	ReactivateEntry(ctx context.Context, entryID string) (*domain.TransitionResult, error)

	// ReverseEntry creates a new posted entry offsetting the original.
	ReverseEntry(ctx context.Context, entryID string, date time.Time, reason string) (*domain.TransitionResult, error)

	// AdjustEntry creates a new DRAFT entry referencing the original, with
	// amounts left open for the operator.
	AdjustEntry(ctx context.Context, entryID string, date time.Time, reason string) (*domain.TransitionResult, error)

	// SuggestEntry proposes lines for a memo, optionally anchored to an amount.
	SuggestEntry(ctx context.Context, companyID, memo string, amount *decimal.Decimal) ([]domain.SuggestedLine, error)

	// SuggestAccounts ranks accounts for a free-text query.
	SuggestAccounts(ctx context.Context, companyID, query string) ([]domain.AccountHint, error)

	// ListTemplates returns the company's entry templates.
	ListTemplates(ctx context.Context, companyID string) ([]domain.Template, error)

	// ListSimilar returns prior entries ranked by textual similarity to memo.
	ListSimilar(ctx context.Context, companyID, memo string) ([]domain.SimilarEntry, error)

	// ExportSpreadsheet streams the server-rendered binary spreadsheet for the
	// filters. Returns the stream, content type and suggested filename.
	ExportSpreadsheet(ctx context.Context, filters domain.EntryFilters) (io.ReadCloser, string, string, error)
}
