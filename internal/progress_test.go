package internal

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestShowProgress(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		message string
		fn      func() error
		wantErr bool
	}{
		{
			name:    "successful function",
			message: "Testing",
			fn: func() error {
				return nil
			},
			wantErr: false,
		},
		{
			name:    "function with error",
			message: "Testing error",
			fn: func() error {
				return errors.New("test error")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ShowProgress(ctx, tt.message, tt.fn)
			if (err != nil) != tt.wantErr {
				t.Errorf("ShowProgress() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestShowSpinner(t *testing.T) {
	var buf bytes.Buffer
	err := showSpinner(context.Background(), &buf, "Generating...", func() error {
		time.Sleep(250 * time.Millisecond)
		return nil
	})
	if err != nil {
		t.Fatalf("showSpinner() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Generating...") {
		t.Errorf("spinner output should contain message, got: %q", buf.String())
	}
}

func TestShowSpinner_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var buf bytes.Buffer
	err := showSpinner(ctx, &buf, "Testing", func() error {
		time.Sleep(500 * time.Millisecond)
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("showSpinner() error = %v, want deadline exceeded", err)
	}
}

func TestPrintHelpers_NonTerminal(t *testing.T) {
	tests := []struct {
		name  string
		print func(w *bytes.Buffer)
		want  string
	}{
		{"success", func(w *bytes.Buffer) { PrintSuccess(w, "done") }, "done\n"},
		{"error", func(w *bytes.Buffer) { PrintError(w, "failed") }, "failed\n"},
		{"info", func(w *bytes.Buffer) { PrintInfo(w, "note") }, "note\n"},
		{"warning", func(w *bytes.Buffer) { PrintWarning(w, "careful") }, "WARNING: careful\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.print(&buf)
			if buf.String() != tt.want {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestIsTerminal_Buffer(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("IsTerminal() should be false for a buffer")
	}
}
