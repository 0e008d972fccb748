package internal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Recognizer performs a one-shot speech-to-text capture. Cancelling ctx stops
// the capture.
type Recognizer interface {
	Recognize(ctx context.Context) (string, error)
}

// CommandRecognizer runs an external speech-to-text program and reads the
// transcript from its standard output.
type CommandRecognizer struct {
	Name string
	Args []string
}

// NewCommandRecognizer splits a configured command line. An empty command
// yields nil, meaning speech input is unavailable.
func NewCommandRecognizer(command string) *CommandRecognizer {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil
	}
	return &CommandRecognizer{Name: fields[0], Args: fields[1:]}
}

// Recognize implements Recognizer
func (r *CommandRecognizer) Recognize(ctx context.Context) (string, error) {
	if _, err := exec.LookPath(r.Name); err != nil {
		return "", ErrSpeechUnavailable
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Name, r.Args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %s", r.Name, msg)
		}
		return "", fmt.Errorf("%s: %w", r.Name, err)
	}

	transcript := strings.TrimSpace(stdout.String())
	if transcript == "" {
		return "", errors.New("no-speech")
	}
	return transcript, nil
}
