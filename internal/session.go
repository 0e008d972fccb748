package internal

import (
	"sort"
	"strings"
	"time"
)

const (
	// MaxTitleLength is the longest title kept, counted in runes
	MaxTitleLength = 30
	titleEllipsis  = "..."
)

// Session is one conversation thread
type Session struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Messages  []Message `json:"messages" yaml:"messages"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// Clone returns a copy that shares no message slice with s
func (s Session) Clone() Session {
	c := s
	c.Messages = append([]Message(nil), s.Messages...)
	if c.Messages == nil {
		c.Messages = []Message{}
	}
	return c
}

// LastBotMessage returns the index of the most recent bot message, or -1
func (s Session) LastBotMessage() int {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Sender == SenderBot {
			return i
		}
	}
	return -1
}

// TruncateTitle trims a title and shortens it to MaxTitleLength runes,
// ending in "..." when it was longer.
func TruncateTitle(title string) string {
	title = strings.TrimSpace(title)
	runes := []rune(title)
	if len(runes) <= MaxTitleLength {
		return title
	}
	keep := MaxTitleLength - len([]rune(titleEllipsis))
	return string(runes[:keep]) + titleEllipsis
}

// SidebarGroups partitions sessions the way the sidebar shows them
type SidebarGroups struct {
	Today         []Session
	Previous7Days []Session
}

// GroupSessions splits sessions into Today and Previous 7 Days relative to
// now. Sessions older than seven days are not part of either group. Both
// groups are ordered newest first.
func GroupSessions(sessions []Session, now time.Time) SidebarGroups {
	year, month, day := now.Date()
	startOfToday := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	startOfTomorrow := startOfToday.AddDate(0, 0, 1)
	weekAgo := now.Add(-7 * 24 * time.Hour)

	var groups SidebarGroups
	for _, s := range sessions {
		ts := s.Timestamp.In(now.Location())
		switch {
		case !ts.Before(startOfToday) && ts.Before(startOfTomorrow):
			groups.Today = append(groups.Today, s)
		case !ts.Before(weekAgo) && ts.Before(startOfToday):
			groups.Previous7Days = append(groups.Previous7Days, s)
		}
	}

	newestFirst := func(list []Session) {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Timestamp.After(list[j].Timestamp)
		})
	}
	newestFirst(groups.Today)
	newestFirst(groups.Previous7Days)
	return groups
}
