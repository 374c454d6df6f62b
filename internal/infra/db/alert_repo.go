package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paramstock/alerter/internal/domain"
	"gorm.io/gorm"
)

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(ctx context.Context, alert *domain.Alert) error {
	if alert.Status == "" {
		alert.Status = domain.StatusPending
	}
	if err := alert.Validate(); err != nil {
		return err
	}
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}

	model := mapAlertToModel(*alert)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}

	alert.CreatedAt = model.CreatedAt
	alert.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *AlertRepository) ListByOwner(ctx context.Context, ownerAddress string) ([]domain.Alert, error) {
	var models []alertModel
	if err := r.db.WithContext(ctx).
		Where("owner_address = ?", ownerAddress).
		Order("ticker, id").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return mapAlertsToDomain(models), nil
}

func (r *AlertRepository) ListPending(ctx context.Context) ([]domain.Alert, error) {
	var models []alertModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", domain.StatusPending).
		Order("ticker, id").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return mapAlertsToDomain(models), nil
}

func (r *AlertRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&alertModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// TryComplete relies on the conditional UPDATE/DELETE being a single
// statement: the status guard and the mutation are atomic on the database
// side, so a concurrent user deletion or a second loop instance observes
// RowsAffected == 0 instead of applying twice.
func (r *AlertRepository) TryComplete(ctx context.Context, id string, outcome domain.CompleteOutcome) (bool, error) {
	var result *gorm.DB
	switch outcome {
	case domain.OutcomeDelete:
		result = r.db.WithContext(ctx).
			Where("id = ? AND status = ?", id, domain.StatusPending).
			Delete(&alertModel{})
	case domain.OutcomeMarkTriggered:
		result = r.db.WithContext(ctx).
			Model(&alertModel{}).
			Where("id = ? AND status = ?", id, domain.StatusPending).
			Update("status", domain.StatusTriggered)
	default:
		return false, fmt.Errorf("%w: unknown outcome %q", domain.ErrInvalidArgument, outcome)
	}

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func mapAlertsToDomain(models []alertModel) []domain.Alert {
	alerts := make([]domain.Alert, 0, len(models))
	for _, model := range models {
		var deleted *time.Time
		if model.DeletedAt.Valid {
			t := model.DeletedAt.Time
			deleted = &t
		}
		alerts = append(alerts, domain.Alert{
			ID:              model.ID,
			OwnerAddress:    model.OwnerAddress,
			Ticker:          model.Ticker,
			TargetPrice:     model.TargetPrice,
			Comparison:      domain.Comparison(model.Comparison),
			DeleteOnTrigger: model.DeleteOnTrigger,
			Status:          domain.Status(model.Status),
			CreatedAt:       model.CreatedAt,
			UpdatedAt:       model.UpdatedAt,
			DeletedAt:       deleted,
		})
	}
	return alerts
}

func mapAlertToModel(alert domain.Alert) alertModel {
	return alertModel{
		ID:              alert.ID,
		OwnerAddress:    alert.OwnerAddress,
		Ticker:          alert.Ticker,
		TargetPrice:     alert.TargetPrice,
		Comparison:      string(alert.Comparison),
		DeleteOnTrigger: alert.DeleteOnTrigger,
		Status:          string(alert.Status),
		CreatedAt:       alert.CreatedAt,
		UpdatedAt:       alert.UpdatedAt,
	}
}
