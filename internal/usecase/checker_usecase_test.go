package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/paramstock/alerter/internal/domain"
	"github.com/paramstock/alerter/internal/infra/memstore"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type noopStats struct{}

func (noopStats) Inc(string)                   {}
func (noopStats) Timing(string, time.Duration) {}

type quoteStep struct {
	price string
	err   error
}

// fakeQuoteSource replays a scripted price sequence per ticker, one step per
// GetPrice call. Exhausted scripts report the quote as unavailable.
type fakeQuoteSource struct {
	mu    sync.Mutex
	steps map[string][]quoteStep
	calls map[string]int
}

func newFakeQuoteSource() *fakeQuoteSource {
	return &fakeQuoteSource{steps: make(map[string][]quoteStep), calls: make(map[string]int)}
}

func (f *fakeQuoteSource) script(ticker string, steps ...quoteStep) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.steps[ticker] = steps
}

func (f *fakeQuoteSource) GetPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[ticker]++
	steps := f.steps[ticker]
	if len(steps) == 0 {
		return decimal.Decimal{}, domain.ErrQuoteUnavailable
	}
	step := steps[0]
	f.steps[ticker] = steps[1:]
	if step.err != nil {
		return decimal.Decimal{}, step.err
	}
	return decimal.RequireFromString(step.price), nil
}

func (f *fakeQuoteSource) callCount(ticker string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[ticker]
}

// fakeNotifier fails the first `failures` sends, then delivers.
type fakeNotifier struct {
	mu       sync.Mutex
	failures int
	attempts int
	sent     []string
}

func (f *fakeNotifier) Send(destination, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.attempts++
	if f.attempts <= f.failures {
		return errors.New("delivery failed")
	}
	f.sent = append(f.sent, destination+"|"+message)
	return nil
}

func (f *fakeNotifier) attemptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

func (f *fakeNotifier) delivered() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func newTestChecker(store domain.AlertStore, quotes domain.QuoteSource, notifier Notifier) *PriceChecker {
	return NewPriceChecker(store, quotes, notifier, noopStats{}, time.Minute, zap.NewNop())
}

func mustCreate(t *testing.T, store domain.AlertStore, alert domain.Alert) domain.Alert {
	t.Helper()
	if err := store.Create(context.Background(), &alert); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return alert
}

func TestCheckerTriggersOnceAndNeverAgain(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	quotes := newFakeQuoteSource()
	notifier := &fakeNotifier{}
	checker := newTestChecker(store, quotes, notifier)

	mustCreate(t, store, domain.Alert{
		OwnerAddress: "+911111111111",
		Ticker:       "ACME",
		TargetPrice:  decimal.RequireFromString("100"),
		Comparison:   domain.AboveOrEqual,
	})
	quotes.script("ACME",
		quoteStep{price: "90"},
		quoteStep{price: "100"},
		quoteStep{price: "105"},
	)

	for i := 0; i < 3; i++ {
		checker.RunCycle(ctx)
	}

	if got := notifier.attemptCount(); got != 1 {
		t.Errorf("delivery attempts = %d, want 1 (boundary price must trigger, triggered alert must not re-notify)", got)
	}
	if got := quotes.callCount("ACME"); got != 2 {
		t.Errorf("quote lookups = %d, want 2 (triggered alert must not be re-evaluated)", got)
	}

	pending, err := store.ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending alerts = %d, want 0", len(pending))
	}

	alerts, err := store.ListByOwner(ctx, "+911111111111")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Status != domain.StatusTriggered {
		t.Errorf("alert after trigger = %+v, want status triggered", alerts)
	}
}

func TestCheckerDeleteOnTrigger(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	quotes := newFakeQuoteSource()
	notifier := &fakeNotifier{}
	checker := newTestChecker(store, quotes, notifier)

	mustCreate(t, store, domain.Alert{
		OwnerAddress:    "+911111111111",
		Ticker:          "ACME",
		TargetPrice:     decimal.RequireFromString("50"),
		Comparison:      domain.BelowOrEqual,
		DeleteOnTrigger: true,
	})
	quotes.script("ACME", quoteStep{price: "40"})

	checker.RunCycle(ctx)

	if got := notifier.attemptCount(); got != 1 {
		t.Errorf("delivery attempts = %d, want 1", got)
	}

	pending, _ := store.ListPending(ctx)
	if len(pending) != 0 {
		t.Errorf("pending alerts = %d, want 0", len(pending))
	}
	alerts, _ := store.ListByOwner(ctx, "+911111111111")
	if len(alerts) != 0 {
		t.Errorf("owner alerts = %d, want 0 (one-time alert removes itself)", len(alerts))
	}
}

func TestCheckerDefersOnQuoteUnavailable(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	quotes := newFakeQuoteSource()
	notifier := &fakeNotifier{}
	checker := newTestChecker(store, quotes, notifier)

	mustCreate(t, store, domain.Alert{
		OwnerAddress: "+911111111111",
		Ticker:       "ACME",
		TargetPrice:  decimal.RequireFromString("100"),
		Comparison:   domain.AboveOrEqual,
	})
	quotes.script("ACME",
		quoteStep{err: domain.ErrQuoteUnavailable},
		quoteStep{err: domain.ErrQuoteUnavailable},
		quoteStep{err: domain.ErrQuoteUnavailable},
	)

	for i := 0; i < 3; i++ {
		checker.RunCycle(ctx)
	}

	if got := notifier.attemptCount(); got != 0 {
		t.Errorf("delivery attempts = %d, want 0", got)
	}
	pending, _ := store.ListPending(ctx)
	if len(pending) != 1 {
		t.Errorf("pending alerts = %d, want 1 (alert deferred, not dropped)", len(pending))
	}
}

func TestCheckerRetriesAfterDeliveryFailure(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	quotes := newFakeQuoteSource()
	notifier := &fakeNotifier{failures: 1}
	checker := newTestChecker(store, quotes, notifier)

	mustCreate(t, store, domain.Alert{
		OwnerAddress: "+911111111111",
		Ticker:       "ACME",
		TargetPrice:  decimal.RequireFromString("100"),
		Comparison:   domain.AboveOrEqual,
	})
	quotes.script("ACME", quoteStep{price: "105"}, quoteStep{price: "105"})

	checker.RunCycle(ctx)

	pending, _ := store.ListPending(ctx)
	if len(pending) != 1 {
		t.Fatalf("after failed delivery: pending = %d, want 1 (must stay pending)", len(pending))
	}

	checker.RunCycle(ctx)

	if got := notifier.attemptCount(); got != 2 {
		t.Errorf("delivery attempts = %d, want exactly 2", got)
	}
	pending, _ = store.ListPending(ctx)
	if len(pending) != 0 {
		t.Errorf("after successful delivery: pending = %d, want 0", len(pending))
	}
}

func TestCheckerIsolatesPerAlertFailures(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	quotes := newFakeQuoteSource()
	notifier := &fakeNotifier{}
	checker := newTestChecker(store, quotes, notifier)

	mustCreate(t, store, domain.Alert{
		OwnerAddress: "+911111111111",
		Ticker:       "BADQ",
		TargetPrice:  decimal.RequireFromString("10"),
		Comparison:   domain.AboveOrEqual,
	})
	mustCreate(t, store, domain.Alert{
		OwnerAddress: "+922222222222",
		Ticker:       "GOOD",
		TargetPrice:  decimal.RequireFromString("10"),
		Comparison:   domain.AboveOrEqual,
	})
	quotes.script("BADQ", quoteStep{err: errors.New("provider exploded")})
	quotes.script("GOOD", quoteStep{price: "20"})

	checker.RunCycle(ctx)

	delivered := notifier.delivered()
	if len(delivered) != 1 || !strings.Contains(delivered[0], "GOOD") {
		t.Errorf("delivered = %v, want exactly one message for GOOD", delivered)
	}
}

func TestCheckerRunStopsOnCancel(t *testing.T) {
	store := memstore.New()
	checker := NewPriceChecker(store, newFakeQuoteSource(), &fakeNotifier{}, noopStats{}, 5*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		checker.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}
