package observability

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestWithBuildID(t *testing.T) {
	ctx := WithBuildID(context.Background(), "build-123")

	if lc := GetContext(ctx); lc.BuildID != "build-123" {
		t.Errorf("expected build-123, got %s", lc.BuildID)
	}
}

func TestContextValuesAccumulate(t *testing.T) {
	ctx := WithBuildID(context.Background(), "b1")
	ctx = WithStage(ctx, "resolve")
	ctx = WithPage(ctx, "section-1.html")

	lc := GetContext(ctx)
	if lc.BuildID != "b1" || lc.Stage != "resolve" || lc.Page != "section-1.html" {
		t.Errorf("unexpected log context %+v", lc)
	}
}

func TestNewBuildIDUnique(t *testing.T) {
	if NewBuildID() == NewBuildID() {
		t.Error("expected distinct build ids")
	}
}

func TestWarnContextIncludesAttrs(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	ctx := WithStage(WithBuildID(context.Background(), "b42"), "render")
	WarnContext(ctx, "template not found", slog.String("section", "1.1"))

	out := buf.String()
	for _, want := range []string{"level=WARN", "build_id=b42", "stage=render", "section=1.1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "json", "warn", false)
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("expected json record, got %q", out)
	}

	buf.Reset()
	NewLogger(&buf, "text", "error", true).Debug("verbose wins")
	if !strings.Contains(buf.String(), "verbose wins") {
		t.Errorf("verbose should force debug level, got %q", buf.String())
	}
}
