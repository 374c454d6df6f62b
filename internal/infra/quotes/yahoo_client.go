// Package quotes resolves ticker symbols to current prices against a
// Yahoo-finance-style quote endpoint.
package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paramstock/alerter/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type YahooClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewYahooClient builds a quote client with a bounded request timeout;
// the checker loop must never hang on a slow provider.
func NewYahooClient(baseURL string, timeout time.Duration, logger *zap.Logger) *YahooClient {
	return &YahooClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []quoteResult `json:"result"`
	} `json:"quoteResponse"`
}

type quoteResult struct {
	Symbol             string           `json:"symbol"`
	RegularMarketPrice *decimal.Decimal `json:"regularMarketPrice"`
	PreviousClose      *decimal.Decimal `json:"previousClose"`
}

// GetPrice returns the regular market price for the ticker, falling back to
// the previous close when the market price is absent or zero. All transient
// provider failures surface as ErrQuoteUnavailable.
func (c *YahooClient) GetPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", c.baseURL, url.QueryEscape(ticker))
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Decimal{}, err
	}

	start := time.Now()
	response, err := c.client.Do(request)
	if err != nil {
		c.logger.Warn("quote request failed", zap.String("ticker", ticker), zap.Error(err))
		return decimal.Decimal{}, fmt.Errorf("%w: %v", domain.ErrQuoteUnavailable, err)
	}
	defer response.Body.Close()

	c.logger.Debug(
		"quote request complete",
		zap.String("ticker", ticker),
		zap.Int("status", response.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if response.StatusCode == http.StatusNotFound {
		return decimal.Decimal{}, domain.ErrQuoteUnavailable
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return decimal.Decimal{}, fmt.Errorf("%w: status %d", domain.ErrQuoteUnavailable, response.StatusCode)
	}

	var payload quoteResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: decode response: %v", domain.ErrQuoteUnavailable, err)
	}

	if len(payload.QuoteResponse.Result) == 0 {
		return decimal.Decimal{}, domain.ErrQuoteUnavailable
	}

	result := payload.QuoteResponse.Result[0]
	price := result.RegularMarketPrice
	if price == nil || price.IsZero() {
		price = result.PreviousClose
	}
	if price == nil || price.IsZero() {
		return decimal.Decimal{}, fmt.Errorf("%w: no price for %s", domain.ErrQuoteUnavailable, ticker)
	}

	return *price, nil
}
