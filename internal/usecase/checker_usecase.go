package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/paramstock/alerter/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Notifier delivers a single message to a destination address. Delivery
// failures are transient: the checker leaves the alert pending and retries
// on the next cycle.
type Notifier interface {
	Send(destination, message string) error
}

// Stats is the counter/timing sink the checker reports to.
type Stats interface {
	Inc(name string)
	Timing(name string, d time.Duration)
}

// PriceChecker is the scheduler loop: on a fixed cadence it snapshots the
// pending alerts, resolves a quote per alert, evaluates the condition and
// drives each triggered alert through notification and completion. Failures
// are isolated per alert and never abort a cycle.
type PriceChecker struct {
	alerts   domain.AlertStore
	quotes   domain.QuoteSource
	notifier Notifier
	stats    Stats
	interval time.Duration
	logger   *zap.Logger
}

func NewPriceChecker(alerts domain.AlertStore, quotes domain.QuoteSource, notifier Notifier, stats Stats, interval time.Duration, logger *zap.Logger) *PriceChecker {
	return &PriceChecker{
		alerts:   alerts,
		quotes:   quotes,
		notifier: notifier,
		stats:    stats,
		interval: interval,
		logger:   logger,
	}
}

// Run executes cycles until ctx is cancelled, sleeping the full interval
// between cycle completions. No catch-up on slow cycles.
func (c *PriceChecker) Run(ctx context.Context) {
	c.logger.Info("price checker started", zap.Duration("interval", c.interval))
	for {
		c.RunCycle(ctx)

		select {
		case <-ctx.Done():
			c.logger.Info("price checker stopped")
			return
		case <-time.After(c.interval):
		}
	}
}

// RunCycle performs one full pass over the pending alerts. A store failure
// fails only this cycle; the next one retries from scratch.
func (c *PriceChecker) RunCycle(ctx context.Context) {
	start := time.Now()

	pending, err := c.alerts.ListPending(ctx)
	if err != nil {
		c.stats.Inc("checker.cycle.store_error")
		c.logger.Error("failed to list pending alerts, skipping cycle", zap.Error(err))
		return
	}

	if len(pending) > 0 {
		c.logger.Info("price check cycle start", zap.Int("pending", len(pending)))
	}

	for i := range pending {
		if ctx.Err() != nil {
			return
		}
		c.checkAlert(ctx, &pending[i])
	}

	c.stats.Inc("checker.cycle.complete")
	c.stats.Timing("checker.cycle.duration", time.Since(start))
}

func (c *PriceChecker) checkAlert(ctx context.Context, alert *domain.Alert) {
	price, err := c.quotes.GetPrice(ctx, alert.Ticker)
	if err != nil {
		c.stats.Inc("checker.quote.error")
		if errors.Is(err, domain.ErrQuoteUnavailable) {
			c.logger.Warn("quote unavailable, deferring alert",
				zap.String("alert_id", alert.ID),
				zap.String("ticker", alert.Ticker),
			)
		} else {
			c.logger.Warn("quote lookup failed, deferring alert",
				zap.String("alert_id", alert.ID),
				zap.String("ticker", alert.Ticker),
				zap.Error(err),
			)
		}
		return
	}

	if !Evaluate(alert.Comparison, price, alert.TargetPrice) {
		return
	}

	c.stats.Inc("checker.alert.triggered")

	// Deliver before committing: a failed delivery must leave the alert
	// pending so the next cycle retries it.
	message := formatAlertMessage(alert, price)
	if err := c.notifier.Send(alert.OwnerAddress, message); err != nil {
		c.stats.Inc("checker.delivery.error")
		c.logger.Warn("delivery failed, alert stays pending",
			zap.String("alert_id", alert.ID),
			zap.String("ticker", alert.Ticker),
			zap.Error(err),
		)
		return
	}

	outcome := domain.OutcomeMarkTriggered
	if alert.DeleteOnTrigger {
		outcome = domain.OutcomeDelete
	}

	applied, err := c.alerts.TryComplete(ctx, alert.ID, outcome)
	if err != nil {
		c.logger.Error("failed to complete alert",
			zap.String("alert_id", alert.ID),
			zap.Error(err),
		)
		return
	}
	if !applied {
		c.logger.Info("alert already completed concurrently", zap.String("alert_id", alert.ID))
		return
	}

	c.logger.Info("alert completed",
		zap.String("alert_id", alert.ID),
		zap.String("ticker", alert.Ticker),
		zap.String("price", price.String()),
		zap.String("outcome", string(outcome)),
	)
}

func formatAlertMessage(alert *domain.Alert, price decimal.Decimal) string {
	return fmt.Sprintf(
		"🚨 Stock Alert! 🚨\n\n%s is now at %s.\nYour target was: price %s %s.",
		alert.Ticker,
		price.StringFixed(2),
		alert.Comparison,
		alert.TargetPrice.StringFixed(2),
	)
}
