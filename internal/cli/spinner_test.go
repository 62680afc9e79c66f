package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func quietSpinner(ctx context.Context, msg string) (*Spinner, *bytes.Buffer) {
	var buf bytes.Buffer
	s := newSpinnerWithContext(ctx, msg)
	s.w = &buf
	return s, &buf
}

func TestSpinnerDraws(t *testing.T) {
	s, buf := quietSpinner(context.Background(), "Computing layout...")
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	if !strings.Contains(buf.String(), "Computing layout...") {
		t.Errorf("spinner output = %q", buf.String())
	}
	if s.Cancelled() {
		t.Error("Stop should not count as cancellation")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s, _ := quietSpinner(ctx, "Testing with context...")
	s.Start()
	cancel()
	s.Stop()

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s, _ := quietSpinner(context.Background(), "Testing idempotent stop...")
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s, buf := quietSpinner(context.Background(), "never started")
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop without Start should not block")
	}
	if strings.Contains(buf.String(), "never started") {
		t.Error("unstarted spinner should draw nothing")
	}
}

func TestSpinnerStopWithMessage(t *testing.T) {
	out := captureStdout(t)

	s, _ := quietSpinner(context.Background(), "Testing...")
	s.Start()
	s.StopWithSuccess("Done!")
	s2, _ := quietSpinner(context.Background(), "Testing...")
	s2.Start()
	s2.StopWithError("Failed!")

	if !strings.Contains(out.String(), "Done!") || !strings.Contains(out.String(), "Failed!") {
		t.Errorf("stdout = %q", out.String())
	}
}
