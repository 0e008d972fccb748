package internal

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType tells the renderer how to interpret a message payload
type MessageType string

const (
	TypeText  MessageType = "text"
	TypeTable MessageType = "table"
	TypeJSON  MessageType = "json"
)

// Sender identifies who produced a message
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Payload is the interpreted content of a message. It is implemented by
// TextData, *TableData and JSONData only.
type Payload interface {
	Type() MessageType
}

// TextData is a plain text payload
type TextData string

// Type implements Payload
func (TextData) Type() MessageType { return TypeText }

// Type implements Payload
func (*TableData) Type() MessageType { return TypeTable }

// JSONData holds a parsed JSON document. Objects are JSONObject values and
// numbers are json.Number, so re-encoding keeps key order and number literals.
type JSONData struct {
	Value any
}

// Type implements Payload
func (JSONData) Type() MessageType { return TypeJSON }

// MarshalJSON encodes the wrapped value
func (d JSONData) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Value)
}

// UnmarshalJSON decodes a single JSON value, preserving number literals
func (d *JSONData) UnmarshalJSON(data []byte) error {
	v, err := decodeJSONDocument(data)
	if err != nil {
		return err
	}
	d.Value = v
	return nil
}

// Message is one exchanged message in a session
type Message struct {
	Payload    Payload
	Raw        string
	Sender     Sender
	Error      bool
	Attachment string
	Timestamp  time.Time
}

// Type returns the payload type, defaulting to text
func (m Message) Type() MessageType {
	if m.Payload == nil {
		return TypeText
	}
	return m.Payload.Type()
}

// Text returns the text payload, or the raw string for non-text payloads
func (m Message) Text() string {
	if t, ok := m.Payload.(TextData); ok {
		return string(t)
	}
	return m.Raw
}

// Table returns the table payload, if any
func (m Message) Table() (*TableData, bool) {
	t, ok := m.Payload.(*TableData)
	return t, ok && t != nil
}

// JSON returns the JSON payload, if any
func (m Message) JSON() (JSONData, bool) {
	d, ok := m.Payload.(JSONData)
	return d, ok
}

// NewUserMessage creates a user text message
func NewUserMessage(text string, now time.Time) Message {
	return Message{
		Payload:   TextData(text),
		Raw:       text,
		Sender:    SenderUser,
		Timestamp: now,
	}
}

// NewErrorMessage creates an error-flagged bot text message
func NewErrorMessage(text string, now time.Time) Message {
	return Message{
		Payload:   TextData(text),
		Raw:       text,
		Sender:    SenderBot,
		Error:     true,
		Timestamp: now,
	}
}

type messageJSON struct {
	Type       MessageType     `json:"type"`
	Data       json.RawMessage `json:"data"`
	Raw        string          `json:"raw"`
	Sender     Sender          `json:"sender"`
	Error      bool            `json:"error,omitempty"`
	Attachment string          `json:"attachment,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// MarshalJSON encodes the message as {type, data, raw, sender, error}
func (m Message) MarshalJSON() ([]byte, error) {
	payload := m.Payload
	if payload == nil {
		payload = TextData(m.Raw)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", payload.Type(), err)
	}
	return json.Marshal(messageJSON{
		Type:       payload.Type(),
		Data:       data,
		Raw:        m.Raw,
		Sender:     m.Sender,
		Error:      m.Error,
		Attachment: m.Attachment,
		Timestamp:  m.Timestamp,
	})
}

// UnmarshalJSON decodes data according to the type tag
func (m *Message) UnmarshalJSON(b []byte) error {
	var wire messageJSON
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}

	var payload Payload
	switch wire.Type {
	case TypeText, "":
		var s string
		if len(wire.Data) > 0 {
			if err := json.Unmarshal(wire.Data, &s); err != nil {
				return fmt.Errorf("invalid text payload: %w", err)
			}
		}
		payload = TextData(s)
	case TypeTable:
		var t TableData
		if err := json.Unmarshal(wire.Data, &t); err != nil {
			return fmt.Errorf("invalid table payload: %w", err)
		}
		payload = &t
	case TypeJSON:
		var d JSONData
		if err := d.UnmarshalJSON(wire.Data); err != nil {
			return fmt.Errorf("invalid json payload: %w", err)
		}
		payload = d
	default:
		return fmt.Errorf("unknown message type %q", wire.Type)
	}

	*m = Message{
		Payload:    payload,
		Raw:        wire.Raw,
		Sender:     wire.Sender,
		Error:      wire.Error,
		Attachment: wire.Attachment,
		Timestamp:  wire.Timestamp,
	}
	return nil
}

type messageYAML struct {
	Type       MessageType `yaml:"type"`
	Data       any         `yaml:"data"`
	Raw        string      `yaml:"raw"`
	Sender     Sender      `yaml:"sender"`
	Error      bool        `yaml:"error,omitempty"`
	Attachment string      `yaml:"attachment,omitempty"`
	Timestamp  time.Time   `yaml:"timestamp"`
}

// MarshalYAML mirrors the JSON shape so YAML exports read the same way
func (m Message) MarshalYAML() (any, error) {
	var data any
	switch p := m.Payload.(type) {
	case *TableData:
		data = p
	case JSONData:
		data = jsonYAMLNode(p.Value)
	default:
		data = m.Text()
	}
	return messageYAML{
		Type:       m.Type(),
		Data:       data,
		Raw:        m.Raw,
		Sender:     m.Sender,
		Error:      m.Error,
		Attachment: m.Attachment,
		Timestamp:  m.Timestamp,
	}, nil
}
