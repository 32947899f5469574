// Package domain defines the core domain models for the chat backend.
package domain

import (
	"fmt"
	"time"
)

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultTitle is the title given to a freshly created session.
const DefaultTitle = "New Chat"

// Session represents a chat session owned by a single user.
type Session struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Deleted   bool      `json:"-"`
}

// Message represents a single message in a session. Messages are totally
// ordered by CreatedAt within their session; that ordering is the canonical
// conversation order replayed to clients.
type Message struct {
	MessageID string    `json:"message_id"`
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Attachment is a file submitted with a turn. It is transient request data;
// the pipeline never persists the bytes themselves.
type Attachment struct {
	Name string
	Data []byte
}

// TextUnit is one (label, text) pair derived from either the raw submitted
// message (empty label) or a successfully extracted attachment.
type TextUnit struct {
	Label string
	Text  string
}

// Content returns the label-prefixed text persisted as the user message.
func (u TextUnit) Content() string {
	if u.Label == "" {
		return u.Text
	}
	return u.Label + "\n" + u.Text
}

// UnitLabel builds the label for an attachment-derived text unit.
func UnitLabel(filename string) string {
	return fmt.Sprintf("[File Upload: %s]", filename)
}

// TurnRequest is one client submission: optional raw text plus zero or more
// attachments, all addressed to an existing session.
type TurnRequest struct {
	UserID      string
	SessionID   string
	Message     string
	Attachments []Attachment
}
