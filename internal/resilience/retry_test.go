// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func TestRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastConfig(), func(ctx context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryRecoversFromTransient(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastConfig(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryExhaustsTransient(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastConfig(), func(ctx context.Context) error {
		calls++
		return errors.New("connection refused")
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3 (initial + 2 retries)", calls)
	}
}

func TestRetryStopsOnPermanent(t *testing.T) {
	calls := 0
	permanent := errors.New("invalid request")
	err := Retry(context.Background(), fastConfig(), func(ctx context.Context) error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("err = %v", err)
	}
	if calls != 1 {
		t.Errorf("permanent error retried: calls = %d", calls)
	}
}

func TestRetryHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, fastConfig(), func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("connection refused")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorType
	}{
		{nil, ErrorTypeUnknown},
		{context.Canceled, ErrorTypePermanent},
		{context.DeadlineExceeded, ErrorTypeTimeout},
		{errors.New("dial tcp: connection refused"), ErrorTypeTransient},
		{errors.New("read: connection reset by peer"), ErrorTypeTransient},
		{errors.New("lookup host: no such host"), ErrorTypeTransient},
		{errors.New("request timeout exceeded"), ErrorTypeTransient},
		{errors.New("invalid model name"), ErrorTypePermanent},
	}
	for _, tc := range cases {
		if got := Classify(tc.err); got != tc.want {
			t.Errorf("Classify(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(errors.New("boom")) {
		t.Error("unclassified error should not retry")
	}
	if !IsRetryable(context.DeadlineExceeded) {
		t.Error("timeout should retry")
	}
}
