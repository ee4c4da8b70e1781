// Copyright 2025 The Sprout Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tracing

import (
	"context"
	"errors"
	"testing"
)

type recordingSpan struct {
	name  string
	attrs map[string]interface{}
	ended bool
}

func (s *recordingSpan) SetAttribute(key string, value interface{}) {
	s.attrs[key] = value
}

func (s *recordingSpan) End() { s.ended = true }

type recordingTracer struct {
	spans []*recordingSpan
}

func (t *recordingTracer) Start(ctx context.Context, name string) (context.Context, Span) {
	span := &recordingSpan{name: name, attrs: map[string]interface{}{}}
	t.spans = append(t.spans, span)
	return ctx, span
}

func TestRunWithoutTracerCallsDirectly(t *testing.T) {
	SetTracer(nil)
	if Enabled() {
		t.Fatal("no-op tracer should not report enabled")
	}

	called := false
	err := Run(context.Background(), "op", nil, func(context.Context) error {
		called = true
		return nil
	})
	if err != nil || !called {
		t.Fatalf("Run() = %v, called = %v", err, called)
	}
}

func TestRunRecordsSpanAndAttributes(t *testing.T) {
	tracer := &recordingTracer{}
	SetTracer(tracer)
	t.Cleanup(func() { SetTracer(nil) })

	wantErr := errors.New("boom")
	err := Run(context.Background(), "resign.asset", map[string]interface{}{
		"asset": "widget.zip",
	}, func(context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Run() error = %v, want %v", err, wantErr)
	}

	if len(tracer.spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(tracer.spans))
	}
	span := tracer.spans[0]
	if span.name != "resign.asset" || !span.ended {
		t.Errorf("span = %+v, want ended resign.asset", span)
	}
	if span.attrs["asset"] != "widget.zip" {
		t.Errorf("attrs = %v", span.attrs)
	}
}
