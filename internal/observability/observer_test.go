// Copyright The pii-redact Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestObserverEmitsJSONAtDebug(t *testing.T) {
	var buf bytes.Buffer
	o := NewObserver(LevelDebug, &buf)

	o.Log(Record{Component: "core", Operation: "redact", Success: true})

	var rec Record
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if rec.Component != "core" || !rec.Success {
		t.Errorf("record = %+v", rec)
	}
	if !strings.HasPrefix(rec.RequestID, "req-") {
		t.Errorf("request id = %q", rec.RequestID)
	}
}

func TestObserverSilentBelowDebug(t *testing.T) {
	var buf bytes.Buffer
	o := NewObserver(LevelMetrics, &buf)
	o.Log(Record{Component: "core"})
	if buf.Len() != 0 {
		t.Errorf("metrics level wrote output: %q", buf.String())
	}
}

func TestObserverNilSafe(t *testing.T) {
	var o *Observer
	o.Log(Record{Component: "core"}) // must not panic
}

func TestStartTimingLogsDuration(t *testing.T) {
	var buf bytes.Buffer
	o := NewObserver(LevelDebug, &buf)

	finish := o.StartTiming("llm_client", "redact")
	finish(true, map[string]interface{}{"model": "mistral"})

	var rec Record
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Operation != "redact" || rec.Metadata["model"] != "mistral" {
		t.Errorf("record = %+v", rec)
	}
}
