package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestContextKeys(t *testing.T) {
	ctx := context.Background()
	ctx = WithRunID(ctx, "run-1")
	ctx = WithInputFile(ctx, "/data/lake.yaml")
	ctx = WithPartition(ctx, "2020")
	ctx = WithModel(ctx, "lake")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"run id", GetRunID(ctx), "run-1"},
		{"input file", GetInputFile(ctx), "/data/lake.yaml"},
		{"partition", GetPartition(ctx), "2020"},
		{"model", GetModel(ctx), "lake"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestContextKeys_Empty(t *testing.T) {
	ctx := context.Background()
	if GetRunID(ctx) != "" || GetInputFile(ctx) != "" || GetPartition(ctx) != "" || GetModel(ctx) != "" {
		t.Error("empty context returned a value")
	}
}

func TestExtractContextFields(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want []any
	}{
		{
			name: "nil context",
			ctx:  nil,
			want: nil,
		},
		{
			name: "empty context",
			ctx:  context.Background(),
			want: nil,
		},
		{
			name: "run and model",
			ctx:  WithModel(WithRunID(context.Background(), "r"), "m"),
			want: []any{"run_id", "r", "model", "m"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractContextFields(tt.ctx)
			if len(got) != len(tt.want) {
				t.Fatalf("extractContextFields() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("field %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestContextLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, _ := New(Config{Level: "debug", Format: "json", Writer: buf})

	ctx := WithPartition(WithRunID(context.Background(), "run-7"), "part-a")
	cl := NewContextLogger(logger, ctx).With("component", "processor")

	cl.Debug("d")
	cl.Info("i")
	cl.Warn("w")
	cl.Error("e")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), buf.String())
	}
	for _, line := range lines {
		for _, want := range []string{`"run_id":"run-7"`, `"partition":"part-a"`, `"component":"processor"`} {
			if !strings.Contains(line, want) {
				t.Errorf("line %s missing %s", line, want)
			}
		}
	}
}

func TestContextOverwrite(t *testing.T) {
	ctx := WithPartition(context.Background(), "first")
	ctx = WithPartition(ctx, "second")
	if got := GetPartition(ctx); got != "second" {
		t.Errorf("GetPartition() = %q, want %q", got, "second")
	}
}

func TestExtractContextFields_TraceID(t *testing.T) {
	traceID := trace.TraceID{0x4b, 0xf9, 0x2f, 0x35, 0x77, 0xb3, 0x4d, 0xa6, 0xa3, 0xce, 0x92, 0x9d, 0x0e, 0x0e, 0x47, 0x36}
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  trace.SpanID{0x00, 0xf0, 0x67, 0xaa, 0x0b, 0xa9, 0x02, 0xb7},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	fields := extractContextFields(ctx)
	if len(fields) != 2 || fields[0] != "trace_id" || fields[1] != traceID.String() {
		t.Errorf("fields = %v, want [trace_id %s]", fields, traceID)
	}
}
