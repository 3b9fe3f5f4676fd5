package domain

// ValidationError is a blocking finding from the rule engine or from local
// structural checks. Affected account codes are kept so the UI can point at
// the offending lines.
type ValidationError struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Accounts []string `json:"accounts,omitempty"`
}

// ValidationWarning does not block saving, but blocks posting until the
// operator acknowledges it when RequiresConfirmation is set. Code is stable
// across validation rounds so acknowledgments can be matched.
type ValidationWarning struct {
	Code                 string `json:"code"`
	Message              string `json:"message"`
	RequiresConfirmation bool   `json:"requiresConfirmation"`
}

// AccountHint is a compatible-account suggestion from the rule engine.
// Informational only.
type AccountHint struct {
	AccountCode string  `json:"accountCode"`
	Name        string  `json:"name"`
	Score       float64 `json:"score,omitempty"`
}

// ValidationResult is the outcome of one validation round trip. It is
// transient: recomputed on every round and never persisted by the engine.
type ValidationResult struct {
	Errors             []ValidationError   `json:"errors"`
	Warnings           []ValidationWarning `json:"warnings"`
	Suggestions        []string            `json:"suggestions"`
	CompatibleAccounts []AccountHint       `json:"compatibleAccounts"`

	// Generation identifies the validation round that produced this result.
	// Client-assigned, monotonically increasing per session.
	Generation uint64 `json:"generation"`
}

// HasBlockingErrors reports whether saving must be blocked.
func (r *ValidationResult) HasBlockingErrors() bool {
	return r != nil && len(r.Errors) > 0
}

// UnconfirmedWarningCodes filters warnings requiring confirmation against the
// set of acknowledged codes.
func UnconfirmedWarningCodes(warnings []ValidationWarning, confirmed []string) []string {
	ack := make(map[string]struct{}, len(confirmed))
	for _, c := range confirmed {
		ack[c] = struct{}{}
	}
	var missing []string
	for _, w := range warnings {
		if !w.RequiresConfirmation {
			continue
		}
		if _, ok := ack[w.Code]; !ok {
			missing = append(missing, w.Code)
		}
	}
	return missing
}

// WarningReport is the pre-posting check returned by the ledger authority.
type WarningReport struct {
	Warnings  []ValidationWarning `json:"warnings"`
	HasErrors bool                `json:"hasErrors"`
	Errors    []ValidationError   `json:"errors"`
}
