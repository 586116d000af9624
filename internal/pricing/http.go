package pricing

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/papertrade/gopaper/pkg/logger"
	"github.com/papertrade/gopaper/pkg/ratelimit"
)

// HTTPOracleConfig configures the live quote source.
type HTTPOracleConfig struct {
	BaseURL       string
	APIKey        string        // sent as X-Api-Key; transport details of the collaborator
	Timeout       time.Duration // hard bound per quote; expired = unavailable
	RatePerSecond int           // 0 disables the limiter
}

// HTTPOracle quotes from an external REST source. Any failure mode (network,
// non-200, unknown symbol, malformed or non-positive price) collapses into
// ErrUnavailable; the ledger never sees transport detail.
type HTTPOracle struct {
	client  *resty.Client
	limiter ratelimit.RateLimiter
}

type quoteResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// NewHTTPOracle builds the resty client. resty 会自动从环境变量读取代理配置。
func NewHTTPOracle(cfg HTTPOracleConfig) *HTTPOracle {
	host := strings.TrimSuffix(cfg.BaseURL, "/")
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := resty.New().
		SetBaseURL(host).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(1 * time.Second).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("X-Api-Key", cfg.APIKey)
	}

	o := &HTTPOracle{client: client}
	if cfg.RatePerSecond > 0 {
		o.limiter = ratelimit.NewTokenBucket(cfg.RatePerSecond, cfg.RatePerSecond, time.Second)
	}
	return o
}

// Quote implements Oracle.
func (o *HTTPOracle) Quote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return decimal.Decimal{}, errors.Wrap(ErrUnavailable, "rate limit wait")
		}
	}

	var out quoteResponse
	resp, err := o.client.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		SetResult(&out).
		Get("/v1/quote")
	if err != nil {
		logger.WithField("symbol", symbol).Warnf("quote request failed: %v", err)
		return decimal.Decimal{}, errors.Wrap(ErrUnavailable, err.Error())
	}
	if resp.StatusCode() != 200 {
		logger.WithField("symbol", symbol).Warnf("quote source returned %d", resp.StatusCode())
		return decimal.Decimal{}, errors.Wrapf(ErrUnavailable, "status %d", resp.StatusCode())
	}
	if out.Price == "" {
		return decimal.Decimal{}, errors.Wrap(ErrUnavailable, "missing price field")
	}
	price, perr := decimal.NewFromString(out.Price)
	if perr != nil || price.Sign() <= 0 {
		return decimal.Decimal{}, errors.Wrapf(ErrUnavailable, "bad price %q", out.Price)
	}
	return price, nil
}
