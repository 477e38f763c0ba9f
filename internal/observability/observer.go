// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package observability provides lightweight operation timing and
// structured JSON logging for pipeline components.
package observability

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level controls how much the observer emits.
type Level int

const (
	LevelOff Level = iota
	LevelMetrics
	LevelDebug
)

// Observer records component operation timings. Safe for concurrent
// use; pipeline instances across requests share one observer.
type Observer struct {
	level  Level
	writer io.Writer
	mu     sync.Mutex
}

// NewObserver creates an observer writing JSON records to w when the
// level is LevelDebug.
func NewObserver(level Level, w io.Writer) *Observer {
	return &Observer{level: level, writer: w}
}

// Record is one logged operation.
type Record struct {
	Component  string                 `json:"component"`
	Operation  string                 `json:"operation"`
	RequestID  string                 `json:"request_id"`
	DurationMs int64                  `json:"duration_ms,omitempty"`
	Success    bool                   `json:"success"`
	Error      string                 `json:"error,omitempty"`
	TextLength int                    `json:"text_length,omitempty"`
	SpanCount  int                    `json:"span_count,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// StartTiming returns a completion closure that logs the operation's
// duration and outcome.
func (o *Observer) StartTiming(component, operation string) func(success bool, metadata map[string]interface{}) {
	start := time.Now()
	return func(success bool, metadata map[string]interface{}) {
		o.Log(Record{
			Component:  component,
			Operation:  operation,
			DurationMs: time.Since(start).Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		})
	}
}

// Log emits a record. No-op below LevelDebug.
func (o *Observer) Log(rec Record) {
	if o == nil || o.level < LevelDebug || o.writer == nil {
		return
	}
	if rec.RequestID == "" {
		rec.RequestID = "req-" + uuid.NewString()[:8]
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	json.NewEncoder(o.writer).Encode(rec)
}
