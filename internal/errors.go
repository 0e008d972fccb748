package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when a session already has a request in flight
	ErrBusy = errors.New("a request is already in flight for this session")
	// ErrSessionNotFound is returned for unknown session ids
	ErrSessionNotFound = errors.New("session not found")
	// ErrEmptyTitle is returned when renaming a session to a blank title
	ErrEmptyTitle = errors.New("title cannot be empty")
	// ErrInvalidEdit is returned when an edit index does not point at a user message
	ErrInvalidEdit = errors.New("edit index does not point at a user message")
	// ErrSpeechUnavailable is reported when no speech recognizer is configured
	ErrSpeechUnavailable = errors.New("speech recognition is not available")
	// ErrNotLoggedIn is returned by commands that need a stored user
	ErrNotLoggedIn = errors.New("not logged in (run 'chatpane login')")
)

// StorageError represents errors accessing a persistent slot
type StorageError struct {
	Key string
	Op  string // "read", "write", "delete"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ParseError represents errors parsing data
type ParseError struct {
	Source string // "slot", "response", "config"
	Key    string // slot key, endpoint or file path
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RequestError represents a failed call to a remote endpoint
type RequestError struct {
	Endpoint string
	Status   int // HTTP status, 0 when the request never completed
	Err      error
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("request error [%s] status %d: %v", e.Endpoint, e.Status, e.Err)
	}
	return fmt.Sprintf("request error [%s]: %v", e.Endpoint, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
