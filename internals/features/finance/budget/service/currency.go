package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"educenter_backend/internals/cache"
	"educenter_backend/internals/metrics"
)

const (
	rateCacheKey = "currency:uzs:usd"
	rateTTL      = time.Hour
)

// RateSource converts UZS to USD.
type RateSource interface {
	USDRate(ctx context.Context) float64
}

// FixedRate is a RateSource that never calls out.
type FixedRate float64

func (r FixedRate) USDRate(context.Context) float64 { return float64(r) }

type CurrencyClient struct {
	URL      string
	Fallback float64
	HTTP     *http.Client
	Cache    *cache.RedisCache
}

// NewCurrencyClient bounds every lookup by timeout. rc may be nil.
func NewCurrencyClient(url string, timeout time.Duration, fallback float64, rc *cache.RedisCache) *CurrencyClient {
	return &CurrencyClient{
		URL:      url,
		Fallback: fallback,
		HTTP:     &http.Client{Timeout: timeout},
		Cache:    rc,
	}
}

type rateBody struct {
	USD struct {
		Rate float64 `json:"rate"`
	} `json:"usd"`
}

func (c *CurrencyClient) fetch(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("currency endpoint returned %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, err
	}
	var body rateBody
	if err := sonic.Unmarshal(raw, &body); err != nil {
		return 0, err
	}
	if body.USD.Rate <= 0 {
		return 0, errors.New("currency response has no usd.rate")
	}
	return body.USD.Rate, nil
}

// USDRate answers from the cache, then the endpoint, then the fallback.
func (c *CurrencyClient) USDRate(ctx context.Context) float64 {
	rate, err := cache.GetOrSet(c.Cache, ctx, rateCacheKey, rateTTL, func() (float64, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		metrics.CurrencyFallbacks.Inc()
		zap.S().Warnw("currency rate lookup failed, using fallback", "err", err, "fallback", c.Fallback)
		return c.Fallback
	}
	return rate
}

// Refresh refetches the rate and overwrites the cached value.
func (c *CurrencyClient) Refresh(ctx context.Context) error {
	rate, err := c.fetch(ctx)
	if err != nil {
		return err
	}
	if c.Cache == nil {
		return nil
	}
	return c.Cache.Set(ctx, rateCacheKey, rate, rateTTL)
}

// FormatUSD renders a UZS amount in dollars.
func FormatUSD(amount decimal.Decimal, rate float64) string {
	return "$" + amount.Mul(decimal.NewFromFloat(rate)).StringFixed(2)
}
