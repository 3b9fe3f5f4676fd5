package accounting

import (
	"strings"

	"github.com/asientoflow/asientoflow/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceTolerance is the largest debit/credit difference still considered
// balanced, absorbing 2-decimal rounding residue.
var BalanceTolerance = decimal.RequireFromString("0.01")

// Round2 rounds a monetary amount to 2 decimals.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Totals sums the debit and credit columns of the lines, rounding each term
// to 2 decimals before accumulation, and returns both sums plus the signed
// difference (debit - credit). Pure; order of lines does not matter.
func Totals(lines []domain.EntryLine) (debit, credit, diff decimal.Decimal) {
	debit = decimal.Zero
	credit = decimal.Zero
	for _, l := range lines {
		debit = debit.Add(Round2(l.Debit))
		credit = credit.Add(Round2(l.Credit))
	}
	return debit, credit, debit.Sub(credit)
}

// IsBalanced reports whether |sum(debit) - sum(credit)| < 0.01.
func IsBalanced(lines []domain.EntryLine) bool {
	_, _, diff := Totals(lines)
	return diff.Abs().LessThan(BalanceTolerance)
}

// SwapSides returns a copy of the line with the debit and credit columns
// exchanged. Used to build and verify reversal entries.
func SwapSides(l domain.EntryLine) domain.EntryLine {
	swapped := l
	swapped.Debit = l.Credit
	swapped.Credit = l.Debit
	return swapped
}

// ReverseLines returns new lines offsetting the given ones: same accounts and
// memos, debit and credit swapped.
func ReverseLines(lines []domain.EntryLine) []domain.EntryLine {
	reversed := make([]domain.EntryLine, len(lines))
	for i, l := range lines {
		reversed[i] = SwapSides(l)
	}
	return reversed
}

// ParseAmount parses operator-typed amount text. Thousands separators and
// surrounding whitespace are tolerated; the result is rounded to 2 decimals.
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, err
	}
	return Round2(d), nil
}

// StructuralErrors runs the local checks that block saving unconditionally:
// minimum line count, account codes present, no line mixing debit and credit,
// and the balance invariant. These run before any remote call.
func StructuralErrors(lines []domain.EntryLine) []domain.ValidationError {
	var errs []domain.ValidationError

	if len(lines) < 2 {
		errs = append(errs, domain.ValidationError{
			Code:    "MIN_LINES",
			Message: "entry must have at least two lines",
		})
	}

	var missingAccounts []string
	for _, l := range lines {
		if strings.TrimSpace(l.AccountCode) == "" {
			missingAccounts = append(missingAccounts, l.LineID)
		}
		if l.Debit.IsPositive() && l.Credit.IsPositive() {
			errs = append(errs, domain.ValidationError{
				Code:     "MIXED_LINE",
				Message:  "a line cannot carry both a debit and a credit",
				Accounts: []string{l.AccountCode},
			})
		}
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			errs = append(errs, domain.ValidationError{
				Code:     "NEGATIVE_AMOUNT",
				Message:  "line amounts must not be negative",
				Accounts: []string{l.AccountCode},
			})
		}
	}
	if len(missingAccounts) > 0 {
		errs = append(errs, domain.ValidationError{
			Code:    "MISSING_ACCOUNT",
			Message: "every line must reference an account",
		})
	}

	if _, _, diff := Totals(lines); !diff.Abs().LessThan(BalanceTolerance) {
		errs = append(errs, domain.ValidationError{
			Code:    "UNBALANCED",
			Message: "debits and credits differ by " + diff.Abs().StringFixed(2),
		})
	}

	return errs
}
