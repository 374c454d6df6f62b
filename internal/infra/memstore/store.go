// Package memstore provides an in-memory AlertStore. It carries the same
// contract as the postgres-backed store and is selectable with
// STORE_DRIVER=memory for local runs; state does not survive a restart.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paramstock/alerter/internal/domain"
)

type Store struct {
	mu     sync.Mutex
	alerts map[string]*domain.Alert
}

func New() *Store {
	return &Store{alerts: make(map[string]*domain.Alert)}
}

func (s *Store) Create(ctx context.Context, alert *domain.Alert) error {
	if alert.Status == "" {
		alert.Status = domain.StatusPending
	}
	if err := alert.Validate(); err != nil {
		return err
	}
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}

	now := time.Now().UTC()
	alert.CreatedAt = now
	alert.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *alert
	s.alerts[alert.ID] = &stored
	return nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerAddress string) ([]domain.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var alerts []domain.Alert
	for _, alert := range s.alerts {
		if alert.OwnerAddress == ownerAddress {
			alerts = append(alerts, *alert)
		}
	}
	sortAlerts(alerts)
	return alerts, nil
}

func (s *Store) ListPending(ctx context.Context) ([]domain.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var alerts []domain.Alert
	for _, alert := range s.alerts {
		if alert.Status == domain.StatusPending {
			alerts = append(alerts, *alert)
		}
	}
	sortAlerts(alerts)
	return alerts, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.alerts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.alerts, id)
	return nil
}

// TryComplete applies the outcome iff the alert is still pending. A missing
// alert means a concurrent deletion won the race; that is a no-op, not an
// error.
func (s *Store) TryComplete(ctx context.Context, id string, outcome domain.CompleteOutcome) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, ok := s.alerts[id]
	if !ok || alert.Status != domain.StatusPending {
		return false, nil
	}

	switch outcome {
	case domain.OutcomeDelete:
		delete(s.alerts, id)
	case domain.OutcomeMarkTriggered:
		alert.Status = domain.StatusTriggered
		alert.UpdatedAt = time.Now().UTC()
	default:
		return false, domain.ErrInvalidArgument
	}

	return true, nil
}

// Stable ticker-then-id order for deterministic rendering.
func sortAlerts(alerts []domain.Alert) {
	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].Ticker != alerts[j].Ticker {
			return alerts[i].Ticker < alerts[j].Ticker
		}
		return alerts[i].ID < alerts[j].ID
	})
}
