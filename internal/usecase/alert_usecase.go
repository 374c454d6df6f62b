package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/paramstock/alerter/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidOwner       = errors.New("invalid owner address")
	ErrInvalidTicker      = errors.New("invalid ticker")
	ErrInvalidTargetPrice = errors.New("invalid target price")
	ErrInvalidCondition   = errors.New("invalid condition")
	ErrAlertNotFound      = errors.New("alert not found")
)

// AlertUsecase is the thin API-facing service: input normalization and
// validation, then delegation to the store.
type AlertUsecase struct {
	alerts domain.AlertStore
}

func NewAlertUsecase(alerts domain.AlertStore) *AlertUsecase {
	return &AlertUsecase{alerts: alerts}
}

func (u *AlertUsecase) AddAlert(ctx context.Context, ownerAddress, ticker, targetPrice, condition string, deleteOnTrigger bool) (*domain.Alert, error) {
	ownerAddress = strings.TrimSpace(ownerAddress)
	if ownerAddress == "" {
		return nil, ErrInvalidOwner
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, ErrInvalidTicker
	}

	comparison, err := normalizeCondition(condition)
	if err != nil {
		return nil, err
	}

	target, err := decimal.NewFromString(strings.TrimSpace(targetPrice))
	if err != nil || !target.IsPositive() {
		return nil, ErrInvalidTargetPrice
	}

	alert := &domain.Alert{
		OwnerAddress:    ownerAddress,
		Ticker:          ticker,
		TargetPrice:     target,
		Comparison:      comparison,
		DeleteOnTrigger: deleteOnTrigger,
		Status:          domain.StatusPending,
	}

	if err := u.alerts.Create(ctx, alert); err != nil {
		return nil, err
	}

	return alert, nil
}

func (u *AlertUsecase) ListAlerts(ctx context.Context, ownerAddress string) ([]domain.Alert, error) {
	ownerAddress = strings.TrimSpace(ownerAddress)
	if ownerAddress == "" {
		return nil, ErrInvalidOwner
	}

	return u.alerts.ListByOwner(ctx, ownerAddress)
}

func (u *AlertUsecase) DeleteAlert(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrAlertNotFound
	}

	if err := u.alerts.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrAlertNotFound
		}
		return err
	}

	return nil
}

// normalizeCondition accepts both the symbolic comparators and the word
// forms used by older clients (gte/lte/gt/lt, above/below).
func normalizeCondition(input string) (domain.Comparison, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case ">=", "gte", "above":
		return domain.AboveOrEqual, nil
	case "<=", "lte", "below":
		return domain.BelowOrEqual, nil
	case ">", "gt":
		return domain.Above, nil
	case "<", "lt":
		return domain.Below, nil
	default:
		return "", ErrInvalidCondition
	}
}
