package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the lifecycle state of a journal entry.
type EntryStatus string

const (
	StatusDraft  EntryStatus = "DRAFT"
	StatusPosted EntryStatus = "POSTED"
	StatusVoided EntryStatus = "VOIDED"
)

// EntryOrigin tags where an entry came from.
type EntryOrigin string

const (
	OriginManual    EntryOrigin = "MANUAL"
	OriginAutomatic EntryOrigin = "AUTOMATIC"
)

// Side indicates whether an amount sits on the debit or the credit column.
type Side string

const (
	SideDebit  Side = "DEBIT"
	SideCredit Side = "CREDIT"
)

// EntryLine is a single line of a journal entry, affecting one account.
// A line never carries both a debit and a credit: the setters below zero the
// opposite column, so the exclusion holds by construction and not only by
// validation.
type EntryLine struct {
	LineID      string          `json:"lineID"`
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`  // >= 0
	Credit      decimal.Decimal `json:"credit"` // >= 0
	Memo        string          `json:"memo"`
}

// SetDebit commits a debit amount and zeroes the credit column.
func (l *EntryLine) SetDebit(amount decimal.Decimal) {
	l.Debit = amount
	if amount.IsPositive() {
		l.Credit = decimal.Zero
	}
}

// SetCredit commits a credit amount and zeroes the debit column.
func (l *EntryLine) SetCredit(amount decimal.Decimal) {
	l.Credit = amount
	if amount.IsPositive() {
		l.Debit = decimal.Zero
	}
}

// SetAmount routes to SetDebit or SetCredit by side.
func (l *EntryLine) SetAmount(side Side, amount decimal.Decimal) {
	if side == SideCredit {
		l.SetCredit(amount)
		return
	}
	l.SetDebit(amount)
}

// Amount returns the committed amount on the given side.
func (l *EntryLine) Amount(side Side) decimal.Decimal {
	if side == SideCredit {
		return l.Credit
	}
	return l.Debit
}

// JournalEntry is the working copy of a journal entry. The ledger authority
// owns the persisted record; the engine holds this transient copy while an
// operator is composing or inspecting it.
type JournalEntry struct {
	EntryID        string          `json:"entryID"`
	CompanyID      string          `json:"companyID"`
	Voucher        string          `json:"voucher"` // correlative number, server assigned
	EntryDate      time.Time       `json:"entryDate"`
	Memo           string          `json:"memo"` // glosa
	CurrencyCode   string          `json:"currencyCode"`
	ExchangeRate   decimal.Decimal `json:"exchangeRate"`
	Origin         EntryOrigin     `json:"origin"`
	Status         EntryStatus     `json:"status"`
	Lines          []EntryLine     `json:"lines"`
	TotalDebit     decimal.Decimal `json:"totalDebit"`
	TotalCredit    decimal.Decimal `json:"totalCredit"`
	ReversedFromID *string         `json:"reversedFromID,omitempty"`
	ReversedByID   *string         `json:"reversedByID,omitempty"`
	AdjustedFromID *string         `json:"adjustedFromID,omitempty"`
	AuditFields
}

// IsEditable reports whether the entry may still be mutated in place.
// Anything past DRAFT is view-only; corrections go through reverse or adjust.
func (e *JournalEntry) IsEditable() bool {
	return e.Status == StatusDraft || e.Status == ""
}

// EntryFilters narrows entry listings and exports.
type EntryFilters struct {
	CompanyID string
	PeriodID  string
	DateFrom  *time.Time
	DateTo    *time.Time
	Status    EntryStatus
	Limit     int
	NextToken *string
}

// TransitionResult carries the outcome of a lifecycle transition together
// with the authority's literal message, which notifications must show as-is.
type TransitionResult struct {
	Entry   *JournalEntry `json:"entry"`
	Message string        `json:"message"`
}
