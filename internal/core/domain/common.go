package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID reference
}

// Role is the operator role within a company, as asserted by the auth token.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleAccountant Role = "ACCOUNTANT"
	RoleAssistant  Role = "ASSISTANT"
	RoleReadOnly   Role = "READ_ONLY"
)

// CanPostInClosedPeriod reports whether the role may push entries into a
// period the ledger authority has marked closed. The authority still has the
// final word; this only gates the request client-side.
func (r Role) CanPostInClosedPeriod() bool {
	return r == RoleAdmin || r == RoleAccountant
}

// CanWrite reports whether the role may mutate entries at all.
func (r Role) CanWrite() bool {
	return r != RoleReadOnly && r != ""
}

// Period is the accounting period selected by the operator. Open/closed state
// is owned by the ledger authority and snapshotted here at session open.
type Period struct {
	PeriodID string    `json:"periodID"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Closed   bool      `json:"closed"`
}

// Contains reports whether the date falls inside the period, inclusive.
func (p Period) Contains(date time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	return !d.Before(p.Start.Truncate(24*time.Hour)) && !d.After(p.End.Truncate(24*time.Hour))
}
