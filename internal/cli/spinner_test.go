package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestWithSpinnerShowsMessage(t *testing.T) {
	var buf bytes.Buffer
	ran := false
	err := withSpinner(context.Background(), &buf, "Rendering SVG...", func() error {
		ran = true
		return nil
	})
	if err != nil || !ran {
		t.Fatalf("withSpinner() = %v, ran = %v", err, ran)
	}
	if !strings.Contains(buf.String(), "Rendering SVG...") {
		t.Errorf("output %q does not contain the message", buf.String())
	}
	if !strings.HasSuffix(buf.String(), "\r") {
		t.Errorf("output %q does not end with a cleared line", buf.String())
	}
}

func TestWithSpinnerReturnsError(t *testing.T) {
	errOpen := errors.New("connection refused")
	var buf bytes.Buffer
	err := withSpinner(context.Background(), &buf, "Connecting to redis store...", func() error {
		return errOpen
	})
	if !errors.Is(err, errOpen) {
		t.Errorf("withSpinner() = %v, want %v", err, errOpen)
	}
}

func TestSpinnerStopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var buf bytes.Buffer
	s := newSpinner(ctx, &buf, "Connecting to mongo store...")
	s.start()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner still running after context deadline")
	}
	s.stop()
	s.stop()
}
