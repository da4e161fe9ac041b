package gfx

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/gogpu/gfx/gl"
	"github.com/gogpu/gfx/gl/gltrace"
)

func TestNopHandler(t *testing.T) {
	var h slog.Handler = nopHandler{}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if h.Enabled(t.Context(), level) {
			t.Errorf("Enabled(%v) = true", level)
		}
	}
	if err := h.Handle(t.Context(), slog.Record{}); err != nil {
		t.Errorf("Handle() = %v", err)
	}
	if _, ok := h.WithAttrs([]slog.Attr{slog.Int("unit", 0)}).(nopHandler); !ok {
		t.Error("WithAttrs() left the nop handler")
	}
	if _, ok := h.WithGroup("pass").(nopHandler); !ok {
		t.Error("WithGroup() left the nop handler")
	}
}

// captureLogs installs a text logger at level for the duration of the test.
func captureLogs(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})))
	return &buf
}

func TestSetLogger(t *testing.T) {
	if Logger().Enabled(t.Context(), slog.LevelWarn) {
		t.Fatal("default logger is enabled")
	}

	buf := captureLogs(t, slog.LevelDebug)
	Logger().Info("submitted", "pass", "render")
	if !strings.Contains(buf.String(), "pass=render") {
		t.Errorf("output = %q", buf.String())
	}

	SetLogger(nil)
	if l := Logger(); l == nil || l.Enabled(t.Context(), slog.LevelError) {
		t.Error("SetLogger(nil) should restore a silent logger")
	}
}

func TestDeviceLogsLifecycle(t *testing.T) {
	buf := captureLogs(t, slog.LevelDebug)

	d := NewDevice(gltrace.New())
	d.CreateBuffer(16, BufferUsageUniform, FrequencyHintDynamic)
	d.Destroy()

	out := buf.String()
	for _, want := range []string{"device created", "buffer created", "device destroyed", "uniformPageSize=65536"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestDeviceWarnsOnClampedPageSize(t *testing.T) {
	buf := captureLogs(t, slog.LevelWarn)

	ctx := gltrace.New(gltrace.WithInteger(gl.MAX_UNIFORM_BLOCK_SIZE, 0x4000))
	d := NewDevice(ctx)
	if got := d.QueryLimits().UniformBufferMaxPageWordSize; got != 0x1000 {
		t.Errorf("UniformBufferMaxPageWordSize = %#x, want 0x1000", got)
	}
	if !strings.Contains(buf.String(), "level=WARN") {
		t.Errorf("expected a warning, got: %s", buf.String())
	}
}

func TestLoggerConcurrentAccess(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var wg sync.WaitGroup
	for range 64 {
		wg.Go(func() { Logger().Debug("read") })
		wg.Go(func() {
			SetLogger(slog.Default())
			SetLogger(nil)
		})
	}
	wg.Wait()
}

func BenchmarkDisabledLogger(b *testing.B) {
	l := Logger()
	b.ReportAllocs()
	for b.Loop() {
		l.Debug("buffer created", "words", 16, "pages", 1)
	}
}
