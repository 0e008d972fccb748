package internal

import (
	"strings"
	"testing"
	"time"
)

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{
			name:  "35 characters",
			title: "abcdefghijklmnopqrstuvwxyz012345678",
			want:  "abcdefghijklmnopqrstuvwxyz0...",
		},
		{
			name:  "20 characters unchanged",
			title: "abcdefghijklmnopqrst",
			want:  "abcdefghijklmnopqrst",
		},
		{
			name:  "exactly 30 characters unchanged",
			title: strings.Repeat("x", 30),
			want:  strings.Repeat("x", 30),
		},
		{
			name:  "surrounding whitespace trimmed",
			title: "  Hello  ",
			want:  "Hello",
		},
		{
			name:  "multibyte runes counted once",
			title: strings.Repeat("é", 31),
			want:  strings.Repeat("é", 27) + "...",
		},
		{
			name:  "blank",
			title: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateTitle(tt.title)
			if got != tt.want {
				t.Errorf("TruncateTitle() = %q, want %q", got, tt.want)
			}
			if n := len([]rune(got)); n > MaxTitleLength {
				t.Errorf("TruncateTitle() length = %d, want <= %d", n, MaxTitleLength)
			}
		})
	}
}

func TestGroupSessions(t *testing.T) {
	now := time.Date(2024, 3, 14, 15, 0, 0, 0, time.UTC)
	at := func(d time.Duration) time.Time { return now.Add(d) }

	sessions := []Session{
		{ID: "today-early", Timestamp: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)},
		{ID: "today-late", Timestamp: at(-time.Minute)},
		{ID: "yesterday", Timestamp: time.Date(2024, 3, 13, 23, 59, 0, 0, time.UTC)},
		{ID: "six-days", Timestamp: at(-6 * 24 * time.Hour)},
		{ID: "exactly-seven-days", Timestamp: at(-7 * 24 * time.Hour)},
		{ID: "eight-days", Timestamp: at(-8 * 24 * time.Hour)},
		{ID: "tomorrow", Timestamp: at(24 * time.Hour)},
	}

	groups := GroupSessions(sessions, now)

	ids := func(list []Session) []string {
		out := make([]string, len(list))
		for i, s := range list {
			out[i] = s.ID
		}
		return out
	}

	wantToday := []string{"today-late", "today-early"}
	if got := ids(groups.Today); strings.Join(got, ",") != strings.Join(wantToday, ",") {
		t.Errorf("Today = %v, want %v", got, wantToday)
	}

	wantPrevious := []string{"yesterday", "six-days", "exactly-seven-days"}
	if got := ids(groups.Previous7Days); strings.Join(got, ",") != strings.Join(wantPrevious, ",") {
		t.Errorf("Previous7Days = %v, want %v", got, wantPrevious)
	}
}

func TestGroupSessions_Empty(t *testing.T) {
	groups := GroupSessions(nil, time.Now())
	if len(groups.Today) != 0 || len(groups.Previous7Days) != 0 {
		t.Errorf("GroupSessions(nil) = %+v, want empty groups", groups)
	}
}

func TestSession_Clone(t *testing.T) {
	s := *CreateTestSession("s1")
	c := s.Clone()
	c.Messages[0] = NewUserMessage("changed", TestTime)
	c.Messages = append(c.Messages, NewUserMessage("extra", TestTime))

	if s.Messages[0].Text() != "Hello, how are you?" || len(s.Messages) != 2 {
		t.Error("Clone() should not share messages with the original")
	}

	empty := Session{ID: "e"}.Clone()
	if empty.Messages == nil {
		t.Error("Clone() of a session without messages should have an empty, non-nil slice")
	}
}

func TestSession_LastBotMessage(t *testing.T) {
	s := CreateTestSessionWithMessages("s", []Message{
		NewUserMessage("a", TestTime),
		CreateTestBotMessage("b"),
		NewUserMessage("c", TestTime),
	})
	if got := s.LastBotMessage(); got != 1 {
		t.Errorf("LastBotMessage() = %d, want 1", got)
	}

	if got := (Session{}).LastBotMessage(); got != -1 {
		t.Errorf("LastBotMessage() on empty session = %d, want -1", got)
	}
}
