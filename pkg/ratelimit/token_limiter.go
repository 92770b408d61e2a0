package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// TokenLimiter limits the number of LLM tokens spent per minute.
type TokenLimiter struct {
	limiter *rate.Limiter
	burst   int
}

// NewTokenLimiter creates a limiter allowing tokensPerMinute tokens, refilled continuously.
// A non-positive budget disables limiting.
func NewTokenLimiter(tokensPerMinute int) *TokenLimiter {
	if tokensPerMinute <= 0 {
		return &TokenLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	every := time.Minute / time.Duration(tokensPerMinute)
	return &TokenLimiter{
		limiter: rate.NewLimiter(rate.Every(every), tokensPerMinute),
		burst:   tokensPerMinute,
	}
}

// Wait blocks until n tokens are available or ctx is done.
func (t *TokenLimiter) Wait(ctx context.Context, n int) error {
	if t.limiter.Limit() == rate.Inf {
		return nil
	}
	if n > t.burst {
		return fmt.Errorf("request needs %d tokens, budget is %d per minute", n, t.burst)
	}
	return t.limiter.WaitN(ctx, n)
}

// GetRemaining returns the tokens currently available.
func (t *TokenLimiter) GetRemaining() int {
	if t.limiter.Limit() == rate.Inf {
		return -1
	}
	return int(t.limiter.Tokens())
}

// NewRequestLimiter returns a limiter spacing requests evenly over a minute.
// A non-positive rate disables limiting.
func NewRequestLimiter(maxRequestPerMinute int) *rate.Limiter {
	if maxRequestPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	secondsPerRequest := time.Minute / time.Duration(maxRequestPerMinute)
	return rate.NewLimiter(rate.Every(secondsPerRequest), 1)
}
