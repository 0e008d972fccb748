package internal

import (
	"time"
)

// TestTime is a fixed instant used by test sessions
var TestTime = time.Date(2024, time.March, 14, 15, 9, 26, 0, time.UTC)

// CreateTestSession creates a test session with sample data
func CreateTestSession(id string) *Session {
	return &Session{
		ID:    id,
		Title: "Test Conversation",
		Messages: []Message{
			NewUserMessage("Hello, how are you?", TestTime),
			classifyAt("I'm doing well, thank you!", TestTime.Add(time.Second)),
		},
		Timestamp: TestTime,
	}
}

// CreateTestSessionWithMessages creates a test session with custom messages
func CreateTestSessionWithMessages(id string, messages []Message) *Session {
	return &Session{
		ID:        id,
		Title:     "Test Conversation",
		Messages:  messages,
		Timestamp: TestTime,
	}
}

// CreateTestBotMessage classifies raw the way a live reply would be
func CreateTestBotMessage(raw string) Message {
	return classifyAt(raw, TestTime)
}

// CreateTestTable returns a two-column table with two rows
func CreateTestTable() *TableData {
	return &TableData{
		Headers: []string{"Name", "Age"},
		Rows: [][]string{
			{"Alice", "30"},
			{"Bob", "25"},
		},
	}
}
