// Package store defines the storage interface and implementations.
package store

import (
	"context"

	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/domain"
)

// Store defines the interface for data persistence.
//
// Session reads are explicit about delete visibility: every method whose name
// says Active filters soft-deleted rows, and there is no implicit default
// doing so behind the caller's back.
type Store interface {
	// Session operations
	CreateSession(ctx context.Context, session *domain.Session) error
	// GetActiveSession returns the session only if it exists, belongs to
	// userID, and is not soft-deleted. Returns (nil, nil) otherwise.
	GetActiveSession(ctx context.Context, sessionID, userID string) (*domain.Session, error)
	ListActiveSessions(ctx context.Context, userID string) ([]domain.Session, error)
	SearchActiveSessions(ctx context.Context, userID, query string) ([]domain.Session, error)
	// RenameSession and SoftDeleteSession report domain.ErrNotFound when no
	// active session matched (sessionID, userID).
	RenameSession(ctx context.Context, sessionID, userID, title string) error
	SoftDeleteSession(ctx context.Context, sessionID, userID string) error
	// TouchSession bumps the session's updated_at timestamp.
	TouchSession(ctx context.Context, sessionID string) error

	// Message operations
	CreateMessage(ctx context.Context, message *domain.Message) error
	// GetMessages returns the session's messages ordered oldest first.
	GetMessages(ctx context.Context, sessionID string) ([]domain.Message, error)

	// Lifecycle
	Close() error
}
