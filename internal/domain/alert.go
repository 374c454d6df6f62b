package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an alert. A triggered alert is terminal:
// it is never re-evaluated and never re-notified.
type Status string

const (
	StatusPending   Status = "pending"
	StatusTriggered Status = "triggered"
)

// Comparison is the condition an observed price is checked against the
// target price with. The or-equal forms include the boundary, the strict
// forms exclude it.
type Comparison string

const (
	AboveOrEqual Comparison = ">="
	BelowOrEqual Comparison = "<="
	Above        Comparison = ">"
	Below        Comparison = "<"
)

func (c Comparison) Valid() bool {
	switch c {
	case AboveOrEqual, BelowOrEqual, Above, Below:
		return true
	}
	return false
}

// CompleteOutcome selects the terminal state TryComplete drives a pending
// alert into.
type CompleteOutcome string

const (
	OutcomeMarkTriggered CompleteOutcome = "mark_triggered"
	OutcomeDelete        CompleteOutcome = "delete"
)

type Alert struct {
	ID              string
	OwnerAddress    string
	Ticker          string
	TargetPrice     decimal.Decimal
	Comparison      Comparison
	DeleteOnTrigger bool
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}

// Validate enforces the store-level creation constraints.
func (a *Alert) Validate() error {
	if a.OwnerAddress == "" {
		return fmt.Errorf("%w: empty owner address", ErrInvalidArgument)
	}
	if a.Ticker == "" {
		return fmt.Errorf("%w: empty ticker", ErrInvalidArgument)
	}
	if !a.TargetPrice.IsPositive() {
		return fmt.Errorf("%w: target price must be positive", ErrInvalidArgument)
	}
	if !a.Comparison.Valid() {
		return fmt.Errorf("%w: unknown comparison %q", ErrInvalidArgument, a.Comparison)
	}
	return nil
}
