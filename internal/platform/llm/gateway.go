package llm

import (
	"context"
	"errors"
	"time"

	"github.com/andreypavlenko/scout/internal/config"
	"github.com/andreypavlenko/scout/internal/platform/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxAttempts    = 3
	baseRetryDelay = time.Second
	maxRetryDelay  = 60 * time.Second
)

// Gateway wraps the external LLM behind rate limiting, retries, and a circuit
// breaker, and logs every call. Composition order is
// rate_limit(retry(breaker(transport))): one token covers all attempts of a
// call, and each attempt consults the breaker.
type Gateway struct {
	tr      transport
	limiter *TokenBucket
	breaker *Breaker
	callLog *CallLog
	log     *logger.Logger

	defaultModel   string
	defaultTemp    float64
	requestTimeout time.Duration
	acquireTimeout time.Duration
	retryBaseDelay time.Duration
}

// NewGateway builds the gateway from config. Without an API key the gateway
// stays constructible but every call fails with ErrUnavailable, so endpoints
// that do not need the LLM keep working.
func NewGateway(cfg config.LLMConfig, log *logger.Logger, callLog *CallLog) *Gateway {
	g := &Gateway{
		limiter:        NewTokenBucket(cfg.RatePerMinute),
		breaker:        NewBreaker(cfg.FailThreshold, cfg.CooldownSeconds),
		callLog:        callLog,
		log:            log,
		defaultModel:   cfg.DefaultModel,
		defaultTemp:    cfg.Temperature,
		requestTimeout: cfg.RequestTimeout,
		acquireTimeout: cfg.AcquireTimeout,
		retryBaseDelay: baseRetryDelay,
	}
	if cfg.APIKey != "" {
		g.tr = newAnthropicTransport(cfg.APIKey, cfg.BaseURL, cfg.DefaultModel)
	}
	return g
}

// DefaultModel returns the configured model identifier.
func (g *Gateway) DefaultModel() string { return g.defaultModel }

// DefaultTemperature returns the configured sampling temperature.
func (g *Gateway) DefaultTemperature() float64 { return g.defaultTemp }

// Available reports whether the gateway has a transport configured.
func (g *Gateway) Available() bool { return g.tr != nil }

// BreakerState exposes the circuit state for health reporting and tests.
func (g *Gateway) BreakerState() string { return g.breaker.State() }

// Complete executes a completion request. Cancellation aborts the in-flight
// attempt, refunds the rate-limit token, and does not move the breaker.
func (g *Gateway) Complete(ctx context.Context, req *Request) (*Response, error) {
	if g.tr == nil {
		return nil, ErrUnavailable
	}

	requestID := uuid.New().String()
	if req.Model == "" {
		req.Model = g.defaultModel
	}

	if err := g.limiter.Acquire(ctx, g.acquireTimeout); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		g.logCall(requestID, req.Model, 0, Usage{}, ErrRateLimited)
		return nil, ErrRateLimited
	}

	if g.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.requestTimeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.completeWithRetry(ctx, req)
	duration := time.Since(start)

	if err != nil && ctx.Err() != nil {
		// Cancelled mid-call: hand the unused budget back.
		g.limiter.Refund()
	}

	usage := Usage{}
	if resp != nil {
		usage = resp.Usage
	}
	g.logCall(requestID, req.Model, duration, usage, err)

	if g.callLog != nil {
		g.callLog.Record(&CallRecord{
			RequestID:  requestID,
			Model:      req.Model,
			Timestamp:  start,
			DurationMS: duration.Milliseconds(),
			Success:    err == nil,
			ErrorKind:  errorKind(err),
			Request:    req,
			Response:   resp,
			Usage:      usage,
		})
	}

	return resp, err
}

func (g *Gateway) completeWithRetry(ctx context.Context, req *Request) (*Response, error) {
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := g.breaker.Allow(); err != nil {
			return nil, err
		}

		resp, err := g.tr.complete(ctx, req)
		if err == nil {
			g.breaker.Success()
			return resp, nil
		}

		if ctx.Err() != nil {
			// Cancellation is the caller's doing, not the provider's.
			g.breaker.Ignore()
			return nil, ctx.Err()
		}

		g.breaker.Failure()
		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		if attempt < maxAttempts-1 {
			delay := g.retryBaseDelay << attempt // 1s, 2s, 4s
			if delay > maxRetryDelay {
				delay = maxRetryDelay
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return nil, lastErr
}

// isRetryable reports whether an attempt error is transient: transport
// failures, 429, and 5xx retry; other 4xx do not.
func isRetryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		if se.status == 429 {
			return true
		}
		return se.status >= 500
	}
	// Non-status errors are transport-level (connection reset, EOF).
	return true
}

func errorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, ErrRateLimited):
		return "rate_limit_exceeded"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		var se *statusError
		if errors.As(err, &se) {
			if se.status == 429 {
				return "rate_limit_exceeded"
			}
			if se.status >= 500 {
				return "upstream_error"
			}
			return "bad_request"
		}
		return "transport_error"
	}
}

func (g *Gateway) logCall(requestID, model string, duration time.Duration, usage Usage, err error) {
	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("model", model),
		zap.Int64("duration_ms", duration.Milliseconds()),
		zap.Int("prompt_tokens", usage.PromptTokens),
		zap.Int("completion_tokens", usage.CompletionTokens),
		zap.Bool("success", err == nil),
	}
	if err != nil {
		fields = append(fields, zap.String("error_kind", errorKind(err)), zap.Error(err))
		g.log.Warn("llm call failed", fields...)
		return
	}
	g.log.Info("llm call completed", fields...)
}
