package usecase

import (
	"testing"

	"github.com/paramstock/alerter/internal/domain"
	"github.com/shopspring/decimal"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name     string
		cmp      domain.Comparison
		observed string
		target   string
		want     bool
	}{
		{"above or equal, below target", domain.AboveOrEqual, "90", "100", false},
		{"above or equal, at target", domain.AboveOrEqual, "100", "100", true},
		{"above or equal, above target", domain.AboveOrEqual, "105", "100", true},
		{"below or equal, above target", domain.BelowOrEqual, "105", "100", false},
		{"below or equal, at target", domain.BelowOrEqual, "100", "100", true},
		{"below or equal, below target", domain.BelowOrEqual, "90", "100", true},
		{"strictly above, at target", domain.Above, "100", "100", false},
		{"strictly above, above target", domain.Above, "100.01", "100", true},
		{"strictly below, at target", domain.Below, "100", "100", false},
		{"strictly below, below target", domain.Below, "99.99", "100", true},
		{"fractional equality", domain.AboveOrEqual, "123.45", "123.45", true},
		{"unknown comparison", domain.Comparison("=="), "100", "100", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			observed := decimal.RequireFromString(tc.observed)
			target := decimal.RequireFromString(tc.target)
			if got := Evaluate(tc.cmp, observed, target); got != tc.want {
				t.Errorf("Evaluate(%q, %s, %s) = %v, want %v", tc.cmp, observed, target, got, tc.want)
			}
		})
	}
}
