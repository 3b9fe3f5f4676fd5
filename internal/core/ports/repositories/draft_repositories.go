package repositories

import (
	"context"

	"github.com/asientoflow/asientoflow/internal/core/domain"
)

// DraftStore persists one in-progress draft per company in local durable
// storage. Implementations must return apperrors.ErrNotFound from LoadDraft
// when no draft exists. Drafts are never synced to the ledger authority.
type DraftStore interface {
	// SaveDraft overwrites the company's draft.
	SaveDraft(ctx context.Context, companyID string, draft domain.Draft) error

	// LoadDraft returns the company's draft, if any.
	LoadDraft(ctx context.Context, companyID string) (*domain.Draft, error)

	// ClearDraft removes the company's draft. Removing an absent draft is not
	// an error.
	ClearDraft(ctx context.Context, companyID string) error
}
