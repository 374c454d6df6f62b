package usecase

import (
	"github.com/paramstock/alerter/internal/domain"
	"github.com/shopspring/decimal"
)

// Evaluate reports whether the observed price satisfies the comparison
// against the target. Comparisons are exact: callers that need a tolerance
// must round both prices to the same currency precision before calling.
func Evaluate(cmp domain.Comparison, observed, target decimal.Decimal) bool {
	c := observed.Cmp(target)
	switch cmp {
	case domain.AboveOrEqual:
		return c >= 0
	case domain.BelowOrEqual:
		return c <= 0
	case domain.Above:
		return c > 0
	case domain.Below:
		return c < 0
	}
	return false
}
