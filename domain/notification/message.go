package notification

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Color is a 24-bit RGB accent color for a chat embed
type Color int

// Accent colors for upload outcomes
const (
	ColorSuccess Color = 0x00FF00
	ColorFailure Color = 0xFF0000
)

// Hex returns the color as #RRGGBB
func (c Color) Hex() string {
	return fmt.Sprintf("#%06X", int(c))
}

// Field is a single labeled line of a message body
type Field struct {
	Label string
	Value string
}

// Message is a chat notification with a title, labeled body and optional link
type Message struct {
	Author string  // Shown above the title, e.g. "Steam Builder"
	Title  string  // Headline
	Fields []Field // Ordered body lines
	URL    string  // Optional link attached to the title
	Color  Color   // Accent color
}

// Validate checks that the message has a title and labeled fields
func (m *Message) Validate() error {
	if m.Title == "" {
		return ErrNoTitle
	}
	for _, f := range m.Fields {
		if f.Label == "" {
			return ErrInvalidField
		}
	}
	return nil
}

// Field returns the value of the first field with the given label
func (m *Message) Field(label string) (string, bool) {
	for _, f := range m.Fields {
		if f.Label == label {
			return f.Value, true
		}
	}
	return "", false
}

// Sender defines the interface for delivering a message to a webhook
type Sender interface {
	Send(ctx context.Context, webhookURL string, msg *Message) error
}

// YesNo formats a flag the way build reports show it
func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// DiscordTimestamp formats t as a Discord short-date timestamp, e.g. <t:1700000000:d>
func DiscordTimestamp(t time.Time) string {
	return "<t:" + strconv.FormatInt(t.Unix(), 10) + ":d>"
}
