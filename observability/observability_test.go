package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNopTracer(t *testing.T) {
	tracer := NopTracer()
	ctx := context.Background()
	ctx2, span := tracer.StartSpan(ctx, SpanCompile)
	if ctx2 != ctx {
		t.Fatalf("nop tracer should return same context")
	}
	span.SetTag("key", "value")
	span.SetError(nil)
	span.Finish()
}

func TestZapAdapterFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := NewZap(zap.New(core)).With(String("compile_id", "abc"))

	logger.Info("compiled",
		Int("pages", 2),
		Int64("bytes", 1024),
		Float64("scale", 2),
		Bool("html", false),
		Duration("elapsed", time.Second),
		Error("error", errors.New("boom")))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["compile_id"] != "abc" {
		t.Fatalf("With field missing: %v", ctx)
	}
	if ctx["pages"] != int64(2) {
		t.Fatalf("pages = %v", ctx["pages"])
	}
	if ctx["elapsed"] != time.Second {
		t.Fatalf("elapsed = %v", ctx["elapsed"])
	}
	if ctx["error"] != "boom" {
		t.Fatalf("error = %v", ctx["error"])
	}
}

func TestNewZapNil(t *testing.T) {
	if _, ok := NewZap(nil).(NopLogger); !ok {
		t.Fatal("nil zap logger should yield NopLogger")
	}
}

func TestNewLoggerRequiresOutput(t *testing.T) {
	if _, err := NewLogger(LogConfig{Level: LogLevelInfo}); err == nil {
		t.Fatal("expected error when no outputs are enabled")
	}
	if _, err := NewLogger(LogConfig{File: FileOutput{Enabled: true}}); err == nil {
		t.Fatal("expected error for file output without path")
	}
}

func TestNewLoggerFileOutput(t *testing.T) {
	path := t.TempDir() + "/texkit.log"
	l, err := NewLogger(LogConfig{
		Level: LogLevelDebug,
		File:  FileOutput{Enabled: true, Format: LogFormatJSON, Path: path, Rotation: RotationConfig{MaxSize: 1}},
	})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	l.Debug("hello")
	_ = l.Sync()
}

func TestPrometheusMetrics(t *testing.T) {
	pm := NewPrometheusMetrics("texkit")
	pm.ObserveCompile(StatusSuccess, 120*time.Millisecond)
	pm.ObserveCompile(StatusError, time.Millisecond)
	pm.ObservePages(3)
	pm.IncDegraded()
	pm.ObserveValidation(2)

	families, err := pm.Gatherer().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := map[string]bool{}
	for _, f := range families {
		found[f.GetName()] = true
	}
	for _, name := range []string{
		"texkit_pdf_compiles_total",
		"texkit_pdf_compile_duration_seconds",
		"texkit_pdf_pages",
		"texkit_latex_degraded_total",
		"texkit_latex_validation_errors",
	} {
		if !found[name] {
			t.Errorf("metric %s not registered", name)
		}
	}
}
