package services

import (
	"context"

	"github.com/asientoflow/asientoflow/internal/dto"
)

// EditorSvc owns editing sessions: the ordered line collection, the header
// fields, the amount commits and the save operation. Every mutation
// recomputes totals synchronously and schedules a debounced validation round.
type EditorSvc interface {
	// OpenSession starts a create, edit or view session. For create mode the
	// response may carry a draft-recovery offer.
	OpenSession(ctx context.Context, req dto.OpenSessionRequest) (*dto.SessionResponse, error)

	// GetSession returns the session's observable state.
	GetSession(ctx context.Context, sessionID string) (*dto.SessionResponse, error)

	// CloseSession discards the session and stops its autosave loop.
	CloseSession(ctx context.Context, sessionID string) error

	// AddLine appends an empty line.
	AddLine(ctx context.Context, sessionID string) (*dto.SessionResponse, error)

	// DuplicateLine inserts a copy of line index after it.
	DuplicateLine(ctx context.Context, sessionID string, index int) (*dto.SessionResponse, error)

	// RemoveLine deletes line index; removing the last remaining line is a
	// no-op.
	RemoveLine(ctx context.Context, sessionID string, index int) (*dto.SessionResponse, error)

	// UpdateLine patches line index.
	UpdateLine(ctx context.Context, sessionID string, index int, req dto.UpdateLineRequest) (*dto.SessionResponse, error)

	// CommitAmount parses and commits the raw text buffer of an amount field,
	// falling back to the prior committed value when parsing fails.
	CommitAmount(ctx context.Context, sessionID string, index int, req dto.CommitAmountRequest) (*dto.SessionResponse, error)

	// UpdateHeader patches memo, date, currency or exchange rate.
	UpdateHeader(ctx context.Context, sessionID string, req dto.UpdateHeaderRequest) (*dto.SessionResponse, error)

	// Save creates or updates the DRAFT entry at the ledger authority after
	// the local structural checks pass.
	Save(ctx context.Context, sessionID string) (*dto.EntryResponse, error)

	// ApplyDraft restores the offered draft into the session.
	ApplyDraft(ctx context.Context, sessionID string) (*dto.SessionResponse, error)

	// DiscardDraft rejects the offered draft and clears it from storage.
	DiscardDraft(ctx context.Context, sessionID string) (*dto.SessionResponse, error)
}
