// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"math/rand"
	"time"
)

// RetryConfig holds retry configuration.
type RetryConfig struct {
	MaxRetries      int           // retry attempts after the first try
	InitialInterval time.Duration // delay before the first retry
	MaxInterval     time.Duration // cap on any single delay
	Multiplier      float64       // backoff multiplier per attempt
	Jitter          bool          // add up to 25% random jitter
}

// DefaultRetryConfig returns the defaults used for detector probes.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      2,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      2.0,
		Jitter:          true,
	}
}

// Operation is a retryable unit of work.
type Operation func(ctx context.Context) error

// Retry executes op with exponential backoff. The delay before attempt
// n is InitialInterval * Multiplier^(n-1), capped at MaxInterval.
// Non-retryable errors return immediately.
func Retry(ctx context.Context, cfg RetryConfig, op Operation) error {
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := float64(cfg.InitialInterval)
			for i := 1; i < attempt; i++ {
				delay *= cfg.Multiplier
			}
			if cfg.Jitter {
				delay += delay * 0.25 * rand.Float64()
			}
			capped := time.Duration(delay)
			if capped > cfg.MaxInterval {
				capped = cfg.MaxInterval
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(capped):
			}
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return err
		}
	}
	return lastErr
}
