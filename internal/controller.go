package internal

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// SendStatus is the outcome of a send action
type SendStatus int

const (
	// SendIgnored means the input was blank and nothing happened
	SendIgnored SendStatus = iota
	// SendReplied means the endpoint answered and the reply was classified
	SendReplied
	// SendFailed means an error-flagged reply was recorded instead
	SendFailed
)

func (s SendStatus) String() string {
	switch s {
	case SendIgnored:
		return "ignored"
	case SendReplied:
		return "replied"
	case SendFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SendResult describes what a send action did
type SendResult struct {
	Status    SendStatus
	SessionID string
	Reply     Message
}

// VoiceResult describes a voice capture
type VoiceResult struct {
	Transcript string
	// Stopped is set when the capture was cancelled by a second Voice call
	Stopped bool
	// Failed is set when an error message was recorded
	Failed bool
}

// AppState is the UI-facing state of the conversation controller
type AppState struct {
	Model     string
	UserEmail string
	Listening bool
	// InFlight holds the ids of sessions awaiting a response
	InFlight map[string]bool
}

// Controller sends prompts on behalf of the active session and records the
// classified replies. At most one request per session is in flight; a second
// one is rejected with ErrBusy.
type Controller struct {
	store      *SessionStore
	generator  Generator
	recognizer Recognizer

	mu          sync.Mutex
	state       AppState
	voiceGen    int
	voiceCancel context.CancelFunc

	now func() time.Time
}

// NewController creates a controller for store using generator
func NewController(store *SessionStore, generator Generator, model, userEmail string) *Controller {
	return &Controller{
		store:     store,
		generator: generator,
		state: AppState{
			Model:     model,
			UserEmail: userEmail,
			InFlight:  make(map[string]bool),
		},
		now: time.Now,
	}
}

// SetRecognizer enables voice input
func (c *Controller) SetRecognizer(r Recognizer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recognizer = r
}

// SetModel selects the model sent with the next request
func (c *Controller) SetModel(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Model = model
}

// State returns a snapshot of the controller state
func (c *Controller) State() AppState {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.InFlight = make(map[string]bool, len(c.state.InFlight))
	for id := range c.state.InFlight {
		s.InFlight[id] = true
	}
	return s
}

// Busy reports whether sessionID has a request in flight
func (c *Controller) Busy(sessionID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.InFlight[sessionID]
}

// Store returns the session store the controller writes to
func (c *Controller) Store() *SessionStore {
	return c.store
}

type outgoing struct {
	display    string // user message text and seed title
	editIndex  int    // -1 appends a new user message
	attachment string
	call       func(ctx context.Context, req GenerateRequest) (string, error)
	prompt     string
}

// SendPrompt appends text as a user message to the active session (creating
// one if needed), asks the endpoint for a reply and records it.
func (c *Controller) SendPrompt(ctx context.Context, text string) (SendResult, error) {
	text = strings.TrimSpace(text)
	return c.send(ctx, outgoing{
		display:   text,
		prompt:    text,
		editIndex: -1,
		call:      c.generator.Generate,
	})
}

// EditPrompt replaces the user message at index with text, drops the bot
// reply directly after it, and records the new reply in its place.
func (c *Controller) EditPrompt(ctx context.Context, index int, text string) (SendResult, error) {
	if index < 0 {
		return SendResult{}, ErrInvalidEdit
	}
	text = strings.TrimSpace(text)
	return c.send(ctx, outgoing{
		display:   text,
		prompt:    text,
		editIndex: index,
		call:      c.generator.Generate,
	})
}

// SendFile uploads the file at path with an optional prompt
func (c *Controller) SendFile(ctx context.Context, path, prompt string) (SendResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return SendResult{Status: SendIgnored}, nil
	}
	prompt = strings.TrimSpace(prompt)
	name := filepath.Base(path)

	display := prompt
	if display == "" {
		display = name
	}

	return c.send(ctx, outgoing{
		display:    display,
		prompt:     prompt,
		editIndex:  -1,
		attachment: name,
		call: func(ctx context.Context, req GenerateRequest) (string, error) {
			fileReq, f, err := OpenUpload(path, req)
			if err != nil {
				return "", err
			}
			defer f.Close()
			return c.generator.GenerateFile(ctx, fileReq)
		},
	})
}

func (c *Controller) send(ctx context.Context, out outgoing) (SendResult, error) {
	if out.display == "" {
		return SendResult{Status: SendIgnored}, nil
	}

	sessionID, insertAt, req, err := c.begin(out)
	if err != nil {
		return SendResult{}, err
	}
	defer c.finish(sessionID)

	raw, callErr := out.call(ctx, req)

	var result SendResult
	result.SessionID = sessionID
	if callErr != nil {
		LogDebug("Request for session %s failed: %v", sessionID, callErr)
		result.Status = SendFailed
		result.Reply = NewErrorMessage("Error: "+callErr.Error(), c.now())
	} else {
		result.Status = SendReplied
		result.Reply = classifyAt(raw, c.now())
	}

	_, err = c.store.Update(sessionID, func(s *Session) error {
		if insertAt >= 0 && insertAt < len(s.Messages) {
			s.Messages = append(s.Messages[:insertAt], append([]Message{result.Reply}, s.Messages[insertAt:]...)...)
			return nil
		}
		s.Messages = append(s.Messages, result.Reply)
		return nil
	})
	if errors.Is(err, ErrSessionNotFound) {
		LogDebug("Session %s was deleted before its reply arrived, discarding", sessionID)
		return result, nil
	}
	if err != nil {
		return result, err
	}
	return result, nil
}

// begin records the user side of a send and marks the session busy. It
// returns where the reply belongs (-1 for the end).
func (c *Controller) begin(out outgoing) (string, int, GenerateRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, ok := c.store.Active()
	if !ok {
		if out.editIndex >= 0 {
			return "", 0, GenerateRequest{}, ErrInvalidEdit
		}
		var err error
		session, err = c.store.CreateSession(out.display)
		if err != nil {
			return "", 0, GenerateRequest{}, err
		}
	}

	if c.state.InFlight[session.ID] {
		return "", 0, GenerateRequest{}, ErrBusy
	}

	insertAt := -1
	now := c.now()
	_, err := c.store.Update(session.ID, func(s *Session) error {
		if out.editIndex < 0 {
			msg := NewUserMessage(out.display, now)
			msg.Attachment = out.attachment
			s.Messages = append(s.Messages, msg)
			return nil
		}

		i := out.editIndex
		if i >= len(s.Messages) || s.Messages[i].Sender != SenderUser {
			return ErrInvalidEdit
		}
		s.Messages[i].Payload = TextData(out.display)
		s.Messages[i].Raw = out.display
		s.Messages[i].Timestamp = now
		if i+1 < len(s.Messages) && s.Messages[i+1].Sender == SenderBot {
			s.Messages = append(s.Messages[:i+1], s.Messages[i+2:]...)
		}
		insertAt = i + 1
		return nil
	})
	if err != nil {
		return "", 0, GenerateRequest{}, err
	}

	c.state.InFlight[session.ID] = true
	req := GenerateRequest{
		Prompt:    out.prompt,
		Model:     c.state.Model,
		UserEmail: c.state.UserEmail,
	}
	return session.ID, insertAt, req, nil
}

func (c *Controller) finish(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.state.InFlight, sessionID)
}

// Voice captures one utterance and returns it as the next prompt. Calling
// Voice while a capture is running stops it; neither call records a message.
// A missing or failing recognizer records an error message instead.
func (c *Controller) Voice(ctx context.Context) (VoiceResult, error) {
	c.mu.Lock()
	if c.voiceCancel != nil {
		c.voiceCancel()
		c.voiceCancel = nil
		c.state.Listening = false
		c.mu.Unlock()
		return VoiceResult{Stopped: true}, nil
	}

	recognizer := c.recognizer
	if recognizer == nil {
		c.mu.Unlock()
		return VoiceResult{Failed: true}, c.recordVoiceError(ErrSpeechUnavailable)
	}

	vctx, cancel := context.WithCancel(ctx)
	c.voiceGen++
	gen := c.voiceGen
	c.voiceCancel = cancel
	c.state.Listening = true
	c.mu.Unlock()

	transcript, err := recognizer.Recognize(vctx)

	c.mu.Lock()
	if c.voiceGen == gen && c.voiceCancel != nil {
		c.voiceCancel = nil
		c.state.Listening = false
	}
	c.mu.Unlock()
	stopped := vctx.Err() != nil
	cancel()

	if stopped {
		return VoiceResult{Stopped: true}, nil
	}
	if err != nil {
		return VoiceResult{Failed: true}, c.recordVoiceError(err)
	}
	return VoiceResult{Transcript: transcript}, nil
}

// recordVoiceError appends an error message to the active session without
// contacting the endpoint.
func (c *Controller) recordVoiceError(cause error) error {
	session, ok := c.store.Active()
	if !ok {
		var err error
		session, err = c.store.CreateSession("Voice input")
		if err != nil {
			return err
		}
	}

	msg := NewErrorMessage("Voice input error: "+cause.Error(), c.now())
	_, err := c.store.Update(session.ID, func(s *Session) error {
		s.Messages = append(s.Messages, msg)
		return nil
	})
	return err
}
