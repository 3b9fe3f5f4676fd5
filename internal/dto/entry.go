package dto

import (
	"time"

	"github.com/asientoflow/asientoflow/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LineResponse defines the data returned for one entry line.
type LineResponse struct {
	LineID      string          `json:"lineID"`
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Memo        string          `json:"memo"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID        string          `json:"entryID"`
	CompanyID      string          `json:"companyID"`
	Voucher        string          `json:"voucher"`
	EntryDate      time.Time       `json:"entryDate"`
	Memo           string          `json:"memo"`
	CurrencyCode   string          `json:"currencyCode"`
	ExchangeRate   decimal.Decimal `json:"exchangeRate"`
	Origin         string          `json:"origin"`
	Status         string          `json:"status"`
	Lines          []LineResponse  `json:"lines,omitempty"`
	TotalDebit     decimal.Decimal `json:"totalDebit"`
	TotalCredit    decimal.Decimal `json:"totalCredit"`
	ReversedFromID *string         `json:"reversedFromID,omitempty"`
	ReversedByID   *string         `json:"reversedByID,omitempty"`
	AdjustedFromID *string         `json:"adjustedFromID,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      string          `json:"createdBy"`
}

// ListEntriesParams narrows an entry listing.
type ListEntriesParams struct {
	PeriodID  string             `form:"periodID"`
	DateFrom  *time.Time         `form:"dateFrom" time_format:"2006-01-02"`
	DateTo    *time.Time         `form:"dateTo" time_format:"2006-01-02"`
	Status    domain.EntryStatus `form:"status"`
	Limit     int                `form:"limit"`
	NextToken *string            `form:"nextToken"`
}

// ListEntriesResponse is a page of entry summaries.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ToLineResponse converts a domain.EntryLine to its DTO.
func ToLineResponse(l *domain.EntryLine) LineResponse {
	return LineResponse{
		LineID:      l.LineID,
		AccountCode: l.AccountCode,
		Debit:       l.Debit,
		Credit:      l.Credit,
		Memo:        l.Memo,
	}
}

// ToLineResponses converts a slice of domain.EntryLine to DTOs.
func ToLineResponses(lines []domain.EntryLine) []LineResponse {
	responses := make([]LineResponse, len(lines))
	for i := range lines {
		responses[i] = ToLineResponse(&lines[i])
	}
	return responses
}

// ToEntryResponse converts a domain.JournalEntry to its DTO.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	return EntryResponse{
		EntryID:        e.EntryID,
		CompanyID:      e.CompanyID,
		Voucher:        e.Voucher,
		EntryDate:      e.EntryDate,
		Memo:           e.Memo,
		CurrencyCode:   e.CurrencyCode,
		ExchangeRate:   e.ExchangeRate,
		Origin:         string(e.Origin),
		Status:         string(e.Status),
		Lines:          ToLineResponses(e.Lines),
		TotalDebit:     e.TotalDebit,
		TotalCredit:    e.TotalCredit,
		ReversedFromID: e.ReversedFromID,
		ReversedByID:   e.ReversedByID,
		AdjustedFromID: e.AdjustedFromID,
		CreatedAt:      e.CreatedAt,
		CreatedBy:      e.CreatedBy,
	}
}

// ToEntryResponses converts a slice of domain.JournalEntry to DTOs.
func ToEntryResponses(entries []domain.JournalEntry) []EntryResponse {
	responses := make([]EntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToEntryResponse(&entries[i])
	}
	return responses
}
