package services

import (
	"context"
	"fmt"
	"log/slog"

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

// suggestionService applies templates and remote suggestions to a session.
type suggestionService struct {
	registry    *SessionRegistry
	ledger      portsrepo.LedgerRemote
	coordinator *ValidationCoordinator
}

// NewSuggestionService creates the suggestion service.
func NewSuggestionService(registry *SessionRegistry, ledger portsrepo.LedgerRemote, coordinator *ValidationCoordinator) portssvc.SuggestionSvc {
	return &suggestionService{registry: registry, ledger: ledger, coordinator: coordinator}
}

var _ portssvc.SuggestionSvc = (*suggestionService)(nil)

// ListTemplates returns the company's templates.
func (g *suggestionService) ListTemplates(ctx context.Context, companyID string) (*dto.TemplatesResponse, error) {
	templates, err := g.ledger.ListTemplates(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return &dto.TemplatesResponse{Templates: templates}, nil
}

// resolveTemplateLines computes concrete amounts for a tax-inclusive total.
// The base is total divided by the tax rate rounded to 2 decimals; the tax
// amount is the remainder, so base plus tax reproduces the total exactly.
func resolveTemplateLines(t *domain.Template, total decimal.Decimal) []domain.EntryLine {
	total = accounting.Round2(total)
	base := total.Div(domain.IGVRate).Round(2)
	igv := total.Sub(base)

	var lines []domain.EntryLine
	for _, tl := range t.Lines {
		if tl.AccountCode == "" {
			continue
		}
		line := domain.EntryLine{
			LineID:      uuid.NewString(),
			AccountCode: tl.AccountCode,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
			Memo:        tl.Memo,
		}
		switch tl.AutoCalc {
		case domain.CalcBase:
			line.SetAmount(tl.Side, base)
		case domain.CalcIGV:
			line.SetAmount(tl.Side, igv)
		case domain.CalcTotal:
			line.SetAmount(tl.Side, total)
		}
		lines = append(lines, line)
	}
	return lines
}

// ApplyTemplate replaces the session's lines with the template resolved for
// the target total. A pending draft recovery offer is dropped: the operator
// chose a fresh starting point.
func (g *suggestionService) ApplyTemplate(ctx context.Context, sessionID string, req dto.ApplyTemplateRequest) (*dto.SessionResponse, error) {
	s, err := g.registry.get(sessionID)
	if err != nil {
		return nil, err
	}

	templates, err := g.ledger.ListTemplates(ctx, s.CompanyID)
	if err != nil {
		return nil, err
	}
	var tpl *domain.Template
	for i := range templates {
		if templates[i].TemplateID == req.TemplateID {
			tpl = &templates[i]
			break
		}
	}
	if tpl == nil {
		return nil, fmt.Errorf("%w: template %s", apperrors.ErrNotFound, req.TemplateID)
	}
	if !req.Total.IsPositive() {
		return nil, fmt.Errorf("%w: template total must be positive", apperrors.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.canMutate() {
		return nil, fmt.Errorf("%w: session is read-only", apperrors.ErrConflict)
	}

	s.Entry.Lines = resolveTemplateLines(tpl, req.Total)
	if s.Entry.Memo == "" {
		s.Entry.Memo = tpl.ExampleMemo
	}
	s.templateApplied = true
	s.draftOffer = nil

	g.coordinator.NoteChange(ctx, s)
	return s.toResponse(), nil
}

// SuggestLines asks the authority for line suggestions. Failures degrade to
// an empty result so the editor keeps working without the helper.
func (g *suggestionService) SuggestLines(ctx context.Context, sessionID string, req dto.SuggestRequest) (*dto.SuggestResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	s, err := g.registry.get(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	companyID := s.CompanyID
	memo := req.Memo
	if memo == "" {
		memo = s.Entry.Memo
	}
	s.mu.Unlock()

	suggestions, err := g.ledger.SuggestEntry(ctx, companyID, memo, req.Amount)
	if err != nil {
		logger.Warn("Line suggestion lookup failed", slog.String("error", err.Error()))
		return &dto.SuggestResponse{Empty: true}, nil
	}
	return &dto.SuggestResponse{Suggestions: suggestions, Empty: len(suggestions) == 0}, nil
}

// SimilarEntries asks for prior entries resembling the session's memo.
func (g *suggestionService) SimilarEntries(ctx context.Context, sessionID string) (*dto.SimilarResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	s, err := g.registry.get(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	companyID := s.CompanyID
	memo := s.Entry.Memo
	s.mu.Unlock()

	entries, err := g.ledger.ListSimilar(ctx, companyID, memo)
	if err != nil {
		logger.Warn("Similar entry lookup failed", slog.String("error", err.Error()))
		return &dto.SimilarResponse{Empty: true}, nil
	}
	return &dto.SimilarResponse{Entries: entries, Empty: len(entries) == 0}, nil
}

// ApplySimilar copies a prior entry's account pattern and line memos into the
// session. Amounts are left at zero, the operator fills them in.
func (g *suggestionService) ApplySimilar(ctx context.Context, sessionID string, req dto.ApplySimilarRequest) (*dto.SessionResponse, error) {
	s, err := g.registry.get(sessionID)
	if err != nil {
		return nil, err
	}

	source, err := g.ledger.GetEntry(ctx, req.EntryID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.canMutate() {
		return nil, fmt.Errorf("%w: session is read-only", apperrors.ErrConflict)
	}
	if source.CompanyID != s.CompanyID {
		return nil, apperrors.ErrNotFound
	}

	lines := make([]domain.EntryLine, 0, len(source.Lines))
	for _, l := range source.Lines {
		lines = append(lines, domain.EntryLine{
			LineID:      uuid.NewString(),
			AccountCode: l.AccountCode,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
			Memo:        l.Memo,
		})
	}
	s.Entry.Lines = lines

	g.coordinator.NoteChange(ctx, s)
	return s.toResponse(), nil
}

// SuggestAccounts ranks accounts for a free-text query.
func (g *suggestionService) SuggestAccounts(ctx context.Context, companyID, query string) (*dto.AccountHintsResponse, error) {
	hints, err := g.ledger.SuggestAccounts(ctx, companyID, query)
	if err != nil {
		return nil, err
	}
	return &dto.AccountHintsResponse{Accounts: hints}, nil
}
