package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestResolveLogFilePathDefaultDir(t *testing.T) {
	tmpDir := t.TempDir()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("get wd failed: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldWD)
	})
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}

	got, err := resolveLogFilePath(Options{})
	if err != nil {
		t.Fatalf("resolve default log path failed: %v", err)
	}

	realTmpDir, err := filepath.EvalSymlinks(tmpDir)
	if err != nil {
		t.Fatalf("resolve tmp dir symlink failed: %v", err)
	}
	realGot, err := filepath.EvalSymlinks(filepath.Dir(got))
	if err != nil {
		t.Fatalf("resolve got dir symlink failed: %v", err)
	}
	expectedDir := filepath.Join(realTmpDir, defaultLogDirName)
	if realGot != expectedDir {
		t.Fatalf("unexpected log dir: got=%s expected=%s", realGot, expectedDir)
	}
	if filepath.Base(got) != defaultLogFilename {
		t.Fatalf("unexpected log filename: %s", filepath.Base(got))
	}
	if _, err := os.Stat(filepath.Dir(got)); err != nil {
		t.Fatalf("expected log dir to be created: %v", err)
	}
}

func TestNewReleaseWritesToConfiguredFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := Options{
		Dir:      tmpDir,
		Filename: "release.log",
	}
	log := New("release", cfg)
	log.Info("release-log-test")
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "release.log"))
	if err != nil {
		t.Fatalf("read release log failed: %v", err)
	}
	if !strings.Contains(string(content), "release-log-test") {
		t.Fatalf("expected log content to contain message, got=%s", string(content))
	}
}

func TestNewDebugDoesNotWriteFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := Options{
		Dir:      tmpDir,
		Filename: "debug.log",
	}
	log := New("debug", cfg)
	log.Info("debug-log-test")
	_ = log.Sync()

	if _, err := os.Stat(filepath.Join(tmpDir, "debug.log")); !os.IsNotExist(err) {
		t.Fatalf("debug mode should not create log file")
	}
}

func TestForOrderAttachesFields(t *testing.T) {
	tmpDir := t.TempDir()
	L = New("release", Options{Dir: tmpDir, Filename: "order.log"})
	t.Cleanup(func() { L = nil })

	ForOrder(context.Background(), 42, "SF20260101").Infow("order_status_changed", "status", "pending")
	_ = L.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "order.log"))
	if err != nil {
		t.Fatalf("read order log failed: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, `"order_id":42`) || !strings.Contains(text, `"order_no":"SF20260101"`) {
		t.Fatalf("expected order fields in log, got: %s", text)
	}
}

func TestForOrderAttachesTraceFields(t *testing.T) {
	tmpDir := t.TempDir()
	L = New("release", Options{Dir: tmpDir, Filename: "trace.log"})
	t.Cleanup(func() { L = nil })

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	ForOrder(ctx, 7, "").Infow("order_compensated")
	_ = L.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "trace.log"))
	if err != nil {
		t.Fatalf("read trace log failed: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, `"trace_id":"4bf92f3577b34da6a3ce929d0e0e4736"`) || !strings.Contains(text, `"span_id":"00f067aa0ba902b7"`) {
		t.Fatalf("expected trace fields in log, got: %s", text)
	}
	if strings.Contains(text, `"order_no"`) {
		t.Fatalf("empty order no should be omitted, got: %s", text)
	}
}

func TestCtxWithoutSpanFallsBack(t *testing.T) {
	if Ctx(context.Background()) == nil {
		t.Fatalf("Ctx should never return nil")
	}
}

func TestCallerPointsAtCallSite(t *testing.T) {
	tmpDir := t.TempDir()
	L = New("release", Options{Dir: tmpDir, Filename: "caller.log"})
	t.Cleanup(func() { L = nil })

	ForOrder(context.Background(), 1, "SF1").Infow("scoped_logger_line")
	Ctx(context.Background()).Infow("ctx_logger_line")
	Infow("helper_line")
	_ = L.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "caller.log"))
	if err != nil {
		t.Fatalf("read caller log failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 3 {
		t.Fatalf("want 3 log lines, got %d: %s", len(lines), content)
	}
	for _, line := range lines {
		if !strings.Contains(line, `"caller":"logger/logger_test.go:`) {
			t.Fatalf("caller should be the test file, got: %s", line)
		}
	}
}
