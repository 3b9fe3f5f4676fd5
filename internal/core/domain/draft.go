package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Draft is a locally persisted snapshot of an in-progress, unsaved entry.
// One draft is kept per company; each autosave cycle overwrites it. Drafts
// never reach the ledger authority.
type Draft struct {
	CompanyID string          `json:"companyID"`
	EntryDate time.Time       `json:"entryDate"`
	Memo      string          `json:"memo"`
	Amount    decimal.Decimal `json:"amount"` // estimated, sum of debit column
	Lines     []EntryLine     `json:"lines"`
	SavedAt   time.Time       `json:"savedAt"`
}

// Age returns how old the draft is at the given instant.
func (d *Draft) Age(now time.Time) time.Duration {
	return now.Sub(d.SavedAt)
}
