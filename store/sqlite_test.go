package store

import (
	"context"
	"testing"
	"time"

	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func mustCreateSession(t *testing.T, s *SQLiteStore, sessionID, userID, title string) {
	t.Helper()
	now := time.Now()
	session := &domain.Session{
		SessionID: sessionID,
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.CreateSession(context.Background(), session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
}

func TestSQLiteStoreSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mustCreateSession(t, s, "s1", "u1", domain.DefaultTitle)

	got, err := s.GetActiveSession(ctx, "s1", "u1")
	if err != nil {
		t.Fatalf("GetActiveSession failed: %v", err)
	}
	if got == nil || got.Title != domain.DefaultTitle {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := s.RenameSession(ctx, "s1", "u1", "Trip planning"); err != nil {
		t.Fatalf("RenameSession failed: %v", err)
	}
	got, err = s.GetActiveSession(ctx, "s1", "u1")
	if err != nil {
		t.Fatalf("GetActiveSession failed: %v", err)
	}
	if got == nil || got.Title != "Trip planning" {
		t.Fatalf("rename not visible: %+v", got)
	}

	if err := s.SoftDeleteSession(ctx, "s1", "u1"); err != nil {
		t.Fatalf("SoftDeleteSession failed: %v", err)
	}
	got, err = s.GetActiveSession(ctx, "s1", "u1")
	if err != nil {
		t.Fatalf("GetActiveSession failed: %v", err)
	}
	if got != nil {
		t.Fatalf("soft-deleted session should be invisible, got %+v", got)
	}
}

func TestSQLiteStoreOwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mustCreateSession(t, s, "s1", "u1", "Mine")

	got, err := s.GetActiveSession(ctx, "s1", "u2")
	if err != nil {
		t.Fatalf("GetActiveSession failed: %v", err)
	}
	if got != nil {
		t.Fatalf("foreign session should be invisible, got %+v", got)
	}

	if err := s.RenameSession(ctx, "s1", "u2", "Stolen"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound renaming foreign session, got %v", err)
	}
	if err := s.SoftDeleteSession(ctx, "s1", "u2"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound deleting foreign session, got %v", err)
	}

	// The owner's view is untouched.
	got, err = s.GetActiveSession(ctx, "s1", "u1")
	if err != nil {
		t.Fatalf("GetActiveSession failed: %v", err)
	}
	if got == nil || got.Title != "Mine" {
		t.Fatalf("owner session corrupted: %+v", got)
	}
}

func TestSQLiteStoreListExcludesDeleted(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mustCreateSession(t, s, "s1", "u1", "Alpha")
	mustCreateSession(t, s, "s2", "u1", "Beta")
	mustCreateSession(t, s, "s3", "u2", "Other user")

	if err := s.SoftDeleteSession(ctx, "s2", "u1"); err != nil {
		t.Fatalf("SoftDeleteSession failed: %v", err)
	}

	sessions, err := s.ListActiveSessions(ctx, "u1")
	if err != nil {
		t.Fatalf("ListActiveSessions failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if sessions[0].SessionID != "s1" {
		t.Fatalf("unexpected session: %+v", sessions[0])
	}
}

func TestSQLiteStoreSearch(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mustCreateSession(t, s, "s1", "u1", "Trip to Goa")
	mustCreateSession(t, s, "s2", "u1", "Grocery list")
	mustCreateSession(t, s, "s3", "u1", "Another trip idea")
	mustCreateSession(t, s, "s4", "u2", "Trip notes")

	if err := s.SoftDeleteSession(ctx, "s3", "u1"); err != nil {
		t.Fatalf("SoftDeleteSession failed: %v", err)
	}

	results, err := s.SearchActiveSessions(ctx, "u1", "TRIP")
	if err != nil {
		t.Fatalf("SearchActiveSessions failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].SessionID != "s1" {
		t.Fatalf("unexpected result: %+v", results[0])
	}
}

func TestSQLiteStoreRenameNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.RenameSession(ctx, "missing", "u1", "x"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	mustCreateSession(t, s, "s1", "u1", "t")
	if err := s.SoftDeleteSession(ctx, "s1", "u1"); err != nil {
		t.Fatalf("SoftDeleteSession failed: %v", err)
	}
	if err := s.RenameSession(ctx, "s1", "u1", "x"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound for deleted session, got %v", err)
	}
	if err := s.SoftDeleteSession(ctx, "s1", "u1"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound for already deleted session, got %v", err)
	}
}

func TestSQLiteStoreMessageOrdering(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mustCreateSession(t, s, "s1", "u1", domain.DefaultTitle)

	base := time.Now()
	contents := []struct {
		id      string
		role    domain.Role
		content string
		offset  time.Duration
	}{
		{"m1", domain.RoleUser, "first question", 0},
		{"m2", domain.RoleAssistant, "first answer", time.Second},
		{"m3", domain.RoleUser, "second question", 2 * time.Second},
	}
	for _, c := range contents {
		msg := &domain.Message{
			MessageID: c.id,
			SessionID: "s1",
			Role:      c.role,
			Content:   c.content,
			CreatedAt: base.Add(c.offset),
		}
		if err := s.CreateMessage(ctx, msg); err != nil {
			t.Fatalf("CreateMessage failed: %v", err)
		}
	}

	messages, err := s.GetMessages(ctx, "s1")
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	for i, want := range []string{"first question", "first answer", "second question"} {
		if messages[i].Content != want {
			t.Fatalf("message %d: got %q, want %q", i, messages[i].Content, want)
		}
	}
	if messages[0].Role != domain.RoleUser || messages[1].Role != domain.RoleAssistant {
		t.Fatalf("unexpected roles: %+v", messages)
	}
}

func TestSQLiteStoreTouchSession(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mustCreateSession(t, s, "s1", "u1", domain.DefaultTitle)
	before, err := s.GetActiveSession(ctx, "s1", "u1")
	if err != nil || before == nil {
		t.Fatalf("GetActiveSession failed: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	if err := s.TouchSession(ctx, "s1"); err != nil {
		t.Fatalf("TouchSession failed: %v", err)
	}

	after, err := s.GetActiveSession(ctx, "s1", "u1")
	if err != nil || after == nil {
		t.Fatalf("GetActiveSession failed: %v", err)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Fatalf("updated_at not bumped: before=%v after=%v", before.UpdatedAt, after.UpdatedAt)
	}
}
