package services

import (
	"context"
	"io"

	"github.com/asientoflow/asientoflow/internal/dto"
)

// LifecycleSvc drives entry state transitions against the ledger authority.
// Transitions are guarded per entry so a second request while one is in
// flight fails fast instead of duplicating the call.
type LifecycleSvc interface {
	// ListEntries returns entry summaries for the company.
	ListEntries(ctx context.Context, companyID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)

	// GetEntry returns the full entry with lines.
	GetEntry(ctx context.Context, entryID string) (*dto.EntryResponse, error)

	// PostEntry commits a draft to the ledger. Rejected client-side while any
	// warning requiring confirmation lacks a matching acknowledgment.
	PostEntry(ctx context.Context, entryID string, req dto.PostEntryRequest) (*dto.TransitionResponse, error)

	// VoidEntry voids a posted entry after explicit confirmation.
	VoidEntry(ctx context.Context, entryID string, req dto.VoidEntryRequest) (*dto.TransitionResponse, error)

	// ReactivateEntry restores a voided entry to its pre-void status.
	ReactivateEntry(ctx context.Context, entryID string) (*dto.TransitionResponse, error)

	// ReverseEntry creates a posted entry with debit and credit swapped,
	// back-linked to the original.
	ReverseEntry(ctx context.Context, entryID string, req dto.CorrectionRequest) (*dto.TransitionResponse, error)

	// AdjustEntry creates an amount-less draft back-linked to the original.
	AdjustEntry(ctx context.Context, entryID string, req dto.CorrectionRequest) (*dto.TransitionResponse, error)
}

// ExportSvc renders entry listings to files.
type ExportSvc interface {
	// ExportCSV assembles the delimited text format locally, prefixed with a
	// UTF-8 byte-order mark for spreadsheet compatibility. Returns the bytes
	// and a suggested filename.
	ExportCSV(ctx context.Context, companyID string, params dto.ListEntriesParams) ([]byte, string, error)

	// ExportSpreadsheet streams the server-rendered binary spreadsheet.
	// Returns the stream, content type and suggested filename.
	ExportSpreadsheet(ctx context.Context, companyID string, params dto.ListEntriesParams) (io.ReadCloser, string, string, error)
}
