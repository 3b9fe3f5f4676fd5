package domain

import "github.com/shopspring/decimal"

// SuggestedLine is one line proposed by the suggestion engine for a memo.
type SuggestedLine struct {
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	Side        Side            `json:"side"`
	Amount      decimal.Decimal `json:"amount"`
	Memo        string          `json:"memo"`
}

// SimilarEntry is a prior entry ranked by textual similarity to a memo.
// Applying one copies the account pattern and line memos; amounts stay open
// for operator review.
type SimilarEntry struct {
	EntryID    string      `json:"entryID"`
	Voucher    string      `json:"voucher"`
	Memo       string      `json:"memo"`
	Similarity float64     `json:"similarity"`
	Lines      []EntryLine `json:"lines"`
}
