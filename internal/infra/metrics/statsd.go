// Package metrics reports checker counters and timings to statsd. A client
// built without an address is disabled and every method no-ops.
package metrics

import (
	"sync"
	"time"

	"github.com/cactus/go-statsd-client/v5/statsd"
	"go.uber.org/zap"
)

type Client struct {
	statter statsd.Statter
	logger  *zap.Logger
	once    sync.Once
}

func NewClient(addr, prefix string, logger *zap.Logger) *Client {
	c := &Client{logger: logger}
	if addr == "" {
		logger.Info("statsd disabled, no address configured")
		return c
	}

	statter, err := statsd.NewClientWithConfig(&statsd.ClientConfig{
		Address:       addr,
		Prefix:        prefix,
		FlushInterval: time.Second,
	})
	if err != nil {
		logger.Error("statsd init failed, disabling stats", zap.Error(err))
		return c
	}

	c.statter = statter
	logger.Info("statsd connected", zap.String("addr", addr), zap.String("prefix", prefix))
	return c
}

func (c *Client) Inc(name string) {
	if c.statter == nil {
		return
	}
	if err := c.statter.Inc(name, 1, 1.0); err != nil {
		c.logError(err)
	}
}

func (c *Client) Timing(name string, d time.Duration) {
	if c.statter == nil {
		return
	}
	if err := c.statter.TimingDuration(name, d, 1.0); err != nil {
		c.logError(err)
	}
}

func (c *Client) Close() {
	if c.statter != nil {
		_ = c.statter.Close()
	}
}

func (c *Client) logError(err error) {
	c.once.Do(func() {
		c.logger.Error("statsd error, further errors suppressed", zap.Error(err))
	})
}
