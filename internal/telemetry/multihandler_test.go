package telemetry

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestMultiHandler(t *testing.T) {
	var debugBuf, infoBuf bytes.Buffer

	logger := slog.New(NewMultiHandler(
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
	)).With("source", "Acme")

	logger.Debug("skipped listing entry", "path", "movies[0]")
	logger.WithGroup("run").Info("source ingested", "showtimes", 2)

	debugOut := debugBuf.String()
	infoOut := infoBuf.String()

	if !strings.Contains(debugOut, "skipped listing entry") || !strings.Contains(debugOut, "source=Acme") {
		t.Errorf("debug handler output missing record or attrs: %q", debugOut)
	}
	if strings.Contains(infoOut, "skipped listing entry") {
		t.Errorf("info handler received a debug record: %q", infoOut)
	}
	if !strings.Contains(infoOut, "run.showtimes=2") {
		t.Errorf("info handler output missing grouped attr: %q", infoOut)
	}
}

func TestNewLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer

	logger := NewLogger(&buf, Config{ServiceName: "showtime-seeder"}, slog.LevelInfo)
	if _, ok := logger.Handler().(*MultiHandler); ok {
		t.Error("NewLogger() fanned out without a collector URL")
	}

	logger.Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
