package services

import (
	"context"

	"github.com/asientoflow/asientoflow/internal/dto"
)

// SuggestionSvc applies templates and remote suggestions to a session's line
// collection. Lookup failures degrade to empty results; template math is
// local and exact.
type SuggestionSvc interface {
	// ListTemplates returns the company's templates.
	ListTemplates(ctx context.Context, companyID string) (*dto.TemplatesResponse, error)

	// ApplyTemplate resolves the template's auto-calculated amounts for the
	// target total and replaces the session's lines.
	ApplyTemplate(ctx context.Context, sessionID string, req dto.ApplyTemplateRequest) (*dto.SessionResponse, error)

	// SuggestLines requests ranked line suggestions for a memo.
	SuggestLines(ctx context.Context, sessionID string, req dto.SuggestRequest) (*dto.SuggestResponse, error)

	// SimilarEntries requests prior entries ranked by similarity to the
	// session's memo.
	SimilarEntries(ctx context.Context, sessionID string) (*dto.SimilarResponse, error)

	// ApplySimilar copies a similar entry's account pattern and line memos
	// into the session, leaving amounts open for review.
	ApplySimilar(ctx context.Context, sessionID string, req dto.ApplySimilarRequest) (*dto.SessionResponse, error)

	// SuggestAccounts ranks accounts for a free-text query.
	SuggestAccounts(ctx context.Context, companyID, query string) (*dto.AccountHintsResponse, error)
}
