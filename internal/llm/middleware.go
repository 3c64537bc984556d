package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ziadkadry99/promptsuite/internal/logger"
)

// Middleware decorates a Provider.
type Middleware func(Provider) Provider

// Chain applies middlewares so that the first one listed is outermost.
func Chain(p Provider, mws ...Middleware) Provider {
	for i := len(mws) - 1; i >= 0; i-- {
		p = mws[i](p)
	}
	return p
}

// WithTimeout bounds every call. A zero duration disables the bound.
func WithTimeout(d time.Duration) Middleware {
	return func(next Provider) Provider {
		if d <= 0 {
			return next
		}
		return &timeoutProvider{next: next, d: d}
	}
}

type timeoutProvider struct {
	next Provider
	d    time.Duration
}

func (t *timeoutProvider) Name() string { return t.next.Name() }

func (t *timeoutProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.Complete(ctx, req)
}

// WithRetry retries failed calls up to maxRetries extra times with
// exponential backoff starting at baseDelay. Permanent errors and context
// cancellation stop immediately.
func WithRetry(maxRetries int, baseDelay time.Duration) Middleware {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	return func(next Provider) Provider {
		return &retryProvider{next: next, max: maxRetries, base: baseDelay}
	}
}

type retryProvider struct {
	next Provider
	max  int
	base time.Duration
}

func (r *retryProvider) Name() string { return r.next.Name() }

func (r *retryProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	var last error
	for attempt := 0; attempt <= r.max; attempt++ {
		resp, err := r.next.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		last = err
		if IsPermanent(err) || ctx.Err() != nil {
			return nil, err
		}
		if attempt == r.max {
			break
		}

		delay := r.base * time.Duration(1<<attempt)
		if isRateLimit(err) {
			delay *= 4
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("after %d retries: %w", r.max, last)
}

func isRateLimit(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "rate_limit") || strings.Contains(s, "429") ||
		strings.Contains(s, "too many requests") || strings.Contains(s, "overloaded")
}

// WithLogging logs each call's stage, duration, and outcome.
func WithLogging(log *logger.Logger) Middleware {
	log = logger.OrNop(log)
	return func(next Provider) Provider {
		return &loggingProvider{next: next, log: log}
	}
}

type loggingProvider struct {
	next Provider
	log  *logger.Logger
}

func (l *loggingProvider) Name() string { return l.next.Name() }

func (l *loggingProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()
	resp, err := l.next.Complete(ctx, req)
	if err != nil {
		l.log.Debug("llm call failed",
			"provider", l.next.Name(), "stage", req.Stage,
			"duration", time.Since(start), "error", err)
		return nil, err
	}
	l.log.Debug("llm call",
		"provider", l.next.Name(), "stage", req.Stage,
		"duration", time.Since(start),
		"input_tokens", resp.InputTokens, "output_tokens", resp.OutputTokens)
	return resp, nil
}

// WithUsage records token usage of successful calls into tracker.
func WithUsage(tracker *UsageTracker) Middleware {
	return func(next Provider) Provider {
		if tracker == nil {
			return next
		}
		return &usageProvider{next: next, tracker: tracker}
	}
}

type usageProvider struct {
	next    Provider
	tracker *UsageTracker
}

func (u *usageProvider) Name() string { return u.next.Name() }

func (u *usageProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	resp, err := u.next.Complete(ctx, req)
	if err != nil {
		u.tracker.recordFailure()
		return nil, err
	}
	in, out := resp.InputTokens, resp.OutputTokens
	if in == 0 && out == 0 {
		// Some backends omit usage; fall back to a character estimate.
		for _, m := range req.Messages {
			in += EstimateTokens(m.Content)
		}
		out = EstimateTokens(resp.Content)
	}
	u.tracker.Record(resp.Model, in, out)
	return resp, nil
}
