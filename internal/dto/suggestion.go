package dto

import "github.com/asientoflow/asientoflow/internal/core/domain"

// SuggestResponse carries ranked line suggestions. Empty is a reportable
// outcome of its own, distinguished from a failed lookup only in logs.
type SuggestResponse struct {
	Suggestions []domain.SuggestedLine `json:"suggestions"`
	Empty       bool                   `json:"empty"`
}

// SimilarResponse carries prior entries ranked by memo similarity.
type SimilarResponse struct {
	Entries []domain.SimilarEntry `json:"entries"`
	Empty   bool                  `json:"empty"`
}

// TemplatesResponse lists the company's entry templates.
type TemplatesResponse struct {
	Templates []domain.Template `json:"templates"`
}

// AccountHintsResponse lists ranked account suggestions for a query.
type AccountHintsResponse struct {
	Accounts []domain.AccountHint `json:"accounts"`
}
