package database

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"
)

func TestWrapNilErrorPassesThrough(t *testing.T) {
	reporter := NewErrorReporter(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), true)
	if err := reporter.Wrap(context.Background(), "op", func() error { return nil }); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestWrapClassifiesAndPreservesCause(t *testing.T) {
	sentinel := errors.New("UNIQUE constraint failed: machines.asset_tag")
	reporter := NewErrorReporter(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), false)

	err := reporter.Wrap(context.Background(), "machines.create", func() error { return sentinel })
	if err == nil {
		t.Fatal("expected an error")
	}

	var classified *ClassifiedError
	if !errors.As(err, &classified) {
		t.Fatalf("expected ClassifiedError, got %T", err)
	}
	if classified.Descriptor.Code != CodeUniqueViolation || classified.Descriptor.StatusCode != http.StatusConflict {
		t.Fatalf("unexpected descriptor: %+v", classified.Descriptor)
	}

	// The raw cause stays reachable for errors.Is checks in handlers.
	if !errors.Is(err, sentinel) {
		t.Fatal("expected errors.Is to match through Unwrap")
	}
	// But the user-facing string is the localized message, not driver text.
	if strings.Contains(err.Error(), "UNIQUE constraint") {
		t.Fatalf("driver text leaked into Error(): %q", err.Error())
	}
}

func TestWrapVerboseLoggingGatesRawError(t *testing.T) {
	run := func(verbose bool) map[string]any {
		var buf bytes.Buffer
		reporter := NewErrorReporter(slog.New(slog.NewJSONHandler(&buf, nil)), verbose)
		_ = reporter.Wrap(context.Background(), "records.create", func() error {
			return errors.New("duplicate key value violates unique constraint")
		})
		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("decode log line: %v raw=%q", err, buf.String())
		}
		return entry
	}

	verbose := run(true)
	if _, ok := verbose["error"]; !ok {
		t.Fatalf("verbose log should carry the raw error: %+v", verbose)
	}
	if verbose["operation"] != "records.create" || verbose["code"] != CodeUniqueViolation {
		t.Fatalf("unexpected verbose log: %+v", verbose)
	}

	quiet := run(false)
	if _, ok := quiet["error"]; ok {
		t.Fatalf("quiet log must not carry the raw error: %+v", quiet)
	}
	if quiet["code"] != CodeUniqueViolation {
		t.Fatalf("unexpected quiet log: %+v", quiet)
	}
}
