package app

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestPrettyHandler_PlainLine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(newPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}, false))

	log.With("request_id", "r-1").Info("http.request",
		"method", "get",
		"path", "/account/orders",
		"status", 200,
		"status_class", "2xx",
		"duration_ms", int64(12),
		"result", "success",
		"user_agent", "curl/8.0 (x86)",
	)

	line := buf.String()
	for _, want := range []string{
		"lvl=[INFO]",
		"msg=http.request",
		"request_id=r-1",
		"method=GET",
		"path=/account/orders",
		"status=200",
		"class=2xx",
		"duration=12ms",
		"result=success",
		`user_agent="curl/8.0 (x86)"`,
	} {
		if !strings.Contains(line, want) {
			t.Fatalf("missing %q in %q", want, line)
		}
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("unexpected ANSI codes in %q", line)
	}
	if !strings.HasSuffix(line, "\n") {
		t.Fatalf("expected trailing newline")
	}
}

func TestPrettyHandler_ColorAndLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(newPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}, true))

	log.Info("dropped")
	log.Error("http.request", "status", 503, "result", "server_error")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info record should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, ansiRed+"[ERROR]"+ansiReset) {
		t.Fatalf("expected red error tag in %q", out)
	}
	if !strings.Contains(out, "status="+ansiRed+"503"+ansiReset) {
		t.Fatalf("expected red 503 in %q", out)
	}
}

func TestPrettyHandler_Groups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(newPrettyHandler(&buf, nil, false))
	log.WithGroup("session").Info("session.resolve", "outcome", "absent", slog.Group("store", "kind", "redis"))

	out := buf.String()
	if !strings.Contains(out, "session.outcome=absent") || !strings.Contains(out, "session.store.kind=redis") {
		t.Fatalf("group keys not flattened: %q", out)
	}
}

func TestValueToInt64(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   slog.Value
		want int64
		ok   bool
	}{
		{slog.Int64Value(7), 7, true},
		{slog.Uint64Value(8), 8, true},
		{slog.Float64Value(9.7), 9, true},
		{slog.StringValue(" 10 "), 10, true},
		{slog.StringValue("x"), 0, false},
		{slog.BoolValue(true), 0, false},
	}
	for _, tc := range cases {
		got, ok := valueToInt64(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("valueToInt64(%v)=(%d,%v) want (%d,%v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestPrettyHandler_WithAttrsKeepsGroupAtCallTime(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(newPrettyHandler(&buf, nil, false))
	log.With("request_id", "r-9").WithGroup("session").With("backend", "redis").Info("session.resolve", "outcome", "canceled")

	out := buf.String()
	for _, want := range []string{"request_id=r-9", "session.backend=redis", "session.outcome=canceled"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
	if strings.Contains(out, "session.request_id") {
		t.Fatalf("group applied to earlier attrs: %q", out)
	}
}

func TestPrettyHandler_OutcomeColors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(newPrettyHandler(&buf, nil, true))
	log.Info("session.resolve", "outcome", "backend_error")
	log.Info("auth.login", "result", "success")
	log.Info("session.resolve", "outcome", "absent")

	out := buf.String()
	if !strings.Contains(out, "outcome="+ansiRed+"backend_error"+ansiReset) {
		t.Fatalf("backend_error not red: %q", out)
	}
	if !strings.Contains(out, "result="+ansiGreen+"success"+ansiReset) {
		t.Fatalf("success not green: %q", out)
	}
	if !strings.Contains(out, "outcome=absent") {
		t.Fatalf("absent should stay plain: %q", out)
	}
}
