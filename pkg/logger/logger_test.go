package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf})

	ctx := context.Background()
	ctx = log.WithLineID(ctx, "line-123")
	ctx = log.WithSessionID(ctx, "sess-9")

	log.Error(ctx, "boom", errors.New("boom"))

	if !bytes.Contains(buf.Bytes(), []byte("\"line_id\"")) {
		t.Fatalf("expected line_id to be preserved; entry=%s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("\"session_id\"")) {
		t.Fatalf("expected session_id to be preserved; entry=%s", buf.String())
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("warn"), Output: buf})
	log.Info(context.Background(), "quiet")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level; entry=%s", buf.String())
	}
	log.Warn(context.Background(), "loud")
	if buf.Len() == 0 {
		t.Fatal("warn should pass at warn level")
	}
}

func TestParseLevelDefaults(t *testing.T) {
	if lvl := ParseLevel(""); lvl != zerolog.InfoLevel {
		t.Fatalf("expected default info level, got %v", lvl)
	}
	if lvl := ParseLevel("invalid"); lvl != zerolog.InfoLevel {
		t.Fatalf("invalid level should fallback to info, got %v", lvl)
	}
	if lvl := ParseLevel("DEBUG"); lvl != zerolog.DebugLevel {
		t.Fatalf("expected case-insensitive parse, got %v", lvl)
	}
}
