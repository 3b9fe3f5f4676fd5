package dto

import (
	"time"

	"github.com/asientoflow/asientoflow/internal/core/domain"
)

// PostEntryRequest carries the operator's warning acknowledgments and the
// period context checked before the remote call.
type PostEntryRequest struct {
	ConfirmedWarningCodes []string       `json:"confirmedWarningCodes"`
	Period                *PeriodRequest `json:"period"`
}

// VoidEntryRequest confirms an irreversible void.
type VoidEntryRequest struct {
	Confirmed bool `json:"confirmed" binding:"required"`
}

// CorrectionRequest drives reverse and adjust: both create a new entry dated
// within the operator's selected period.
type CorrectionRequest struct {
	Date   time.Time      `json:"date" binding:"required"`
	Reason string         `json:"reason"`
	Period *PeriodRequest `json:"period"`
}

// TransitionResponse reports a lifecycle transition outcome. Message is the
// ledger authority's literal message.
type TransitionResponse struct {
	Entry   EntryResponse `json:"entry"`
	Message string        `json:"message"`
}

// ToTransitionResponse converts a domain.TransitionResult to its DTO.
func ToTransitionResponse(r *domain.TransitionResult) TransitionResponse {
	resp := TransitionResponse{Message: r.Message}
	if r.Entry != nil {
		resp.Entry = ToEntryResponse(r.Entry)
	}
	return resp
}
