package dto

import (
	"time"

	"github.com/asientoflow/asientoflow/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PeriodRequest snapshots the operator's selected accounting period.
type PeriodRequest struct {
	PeriodID string    `json:"periodID" binding:"required"`
	Start    time.Time `json:"start" binding:"required"`
	End      time.Time `json:"end" binding:"required"`
	Closed   bool      `json:"closed"`
}

// ToPeriod converts the request to its domain type.
func (p *PeriodRequest) ToPeriod() *domain.Period {
	if p == nil {
		return nil
	}
	return &domain.Period{PeriodID: p.PeriodID, Start: p.Start, End: p.End, Closed: p.Closed}
}

// OpenSessionRequest opens an editing session. EntryID is required for edit
// and view modes; create mode starts from an empty entry.
type OpenSessionRequest struct {
	Mode      string         `json:"mode" binding:"required,oneof=create edit view"`
	CompanyID string         `json:"companyID" binding:"required"`
	EntryID   string         `json:"entryID"`
	Period    *PeriodRequest `json:"period"`
}

// UpdateHeaderRequest patches the entry header fields of a session.
type UpdateHeaderRequest struct {
	Memo         *string          `json:"memo"`
	EntryDate    *time.Time       `json:"entryDate"`
	CurrencyCode *string          `json:"currencyCode" binding:"omitempty,uppercase,len=3"`
	ExchangeRate *decimal.Decimal `json:"exchangeRate"`
}

// UpdateLineRequest patches one line. Setting a positive debit zeroes the
// credit column and vice versa.
type UpdateLineRequest struct {
	AccountCode *string          `json:"accountCode" binding:"omitempty,account_code"`
	Debit       *decimal.Decimal `json:"debit"`
	Credit      *decimal.Decimal `json:"credit"`
	Memo        *string          `json:"memo"`
}

// CommitAmountRequest commits the raw text an operator typed into an amount
// field, mirroring a blur event. Raw may be empty, meaning the field was left
// blank and the prior committed value stands.
type CommitAmountRequest struct {
	Field string `json:"field" binding:"required,oneof=debit credit"`
	Raw   string `json:"raw"`
}

// ApplyTemplateRequest applies a named template for a target total amount.
type ApplyTemplateRequest struct {
	TemplateID string          `json:"templateID" binding:"required"`
	Total      decimal.Decimal `json:"total" binding:"required"`
}

// SuggestRequest asks for free-text line suggestions. Memo defaults to the
// session's memo when empty.
type SuggestRequest struct {
	Memo   string           `json:"memo"`
	Amount *decimal.Decimal `json:"amount"`
}

// ApplySimilarRequest copies the line structure of a similar entry into the
// session, leaving amounts open.
type ApplySimilarRequest struct {
	EntryID string `json:"entryID" binding:"required"`
}

// ValidationResponse is the session's last applied validation round.
type ValidationResponse struct {
	Errors             []domain.ValidationError   `json:"errors"`
	Warnings           []domain.ValidationWarning `json:"warnings"`
	Suggestions        []string                   `json:"suggestions"`
	CompatibleAccounts []domain.AccountHint       `json:"compatibleAccounts"`
	Generation         uint64                     `json:"generation"`
	Pending            bool                       `json:"pending"`
	TransportError     string                     `json:"transportError,omitempty"`
}

// DraftOfferResponse describes a recoverable draft awaiting an apply/discard
// choice.
type DraftOfferResponse struct {
	SavedAt   time.Time       `json:"savedAt"`
	Memo      string          `json:"memo"`
	Amount    decimal.Decimal `json:"amount"`
	LineCount int             `json:"lineCount"`
}

// SessionResponse is the full observable state of an editing session.
type SessionResponse struct {
	SessionID       string              `json:"sessionID"`
	Mode            string              `json:"mode"`
	CompanyID       string              `json:"companyID"`
	Entry           EntryResponse       `json:"entry"`
	TotalDebit      decimal.Decimal     `json:"totalDebit"`
	TotalCredit     decimal.Decimal     `json:"totalCredit"`
	Difference      decimal.Decimal     `json:"difference"`
	Balanced        bool                `json:"balanced"`
	Structural      []domain.ValidationError `json:"structuralErrors"`
	Validation      *ValidationResponse `json:"validation,omitempty"`
	DraftOffer      *DraftOfferResponse `json:"draftOffer,omitempty"`
	TemplateApplied bool                `json:"templateApplied"`
}

// ToDraftOfferResponse converts a domain.Draft into the recovery offer DTO.
func ToDraftOfferResponse(d *domain.Draft) *DraftOfferResponse {
	if d == nil {
		return nil
	}
	return &DraftOfferResponse{
		SavedAt:   d.SavedAt,
		Memo:      d.Memo,
		Amount:    d.Amount,
		LineCount: len(d.Lines),
	}
}
