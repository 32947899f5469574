package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/domain"
)

type sessionResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toSessionResponses(sessions []domain.Session) []sessionResponse {
	out := make([]sessionResponse, len(sessions))
	for i, s := range sessions {
		out[i] = sessionResponse{
			ID:        s.SessionID,
			Title:     s.Title,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		}
	}
	return out
}

// CreateSession starts a new, empty chat session.
// POST /api/sessions
func (h *Handler) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()

	now := time.Now()
	session := &domain.Session{
		SessionID: "sess_" + uuid.New().String(),
		UserID:    currentUser(c),
		Title:     domain.DefaultTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.CreateSession(ctx, session); err != nil {
		h.log.Error("failed to create session", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create session"})
	}

	return c.JSON(http.StatusCreated, map[string]string{"session_id": session.SessionID})
}

// ListSessions returns the caller's active sessions, newest updated first.
// GET /api/sessions
func (h *Handler) ListSessions(c echo.Context) error {
	ctx := c.Request().Context()

	sessions, err := h.store.ListActiveSessions(ctx, currentUser(c))
	if err != nil {
		h.log.Error("failed to list sessions", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list sessions"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"sessions": toSessionResponses(sessions),
	})
}

// SearchSessions finds the caller's active sessions by title substring.
// GET /api/sessions/search?q=
func (h *Handler) SearchSessions(c echo.Context) error {
	ctx := c.Request().Context()

	sessions, err := h.store.SearchActiveSessions(ctx, currentUser(c), c.QueryParam("q"))
	if err != nil {
		h.log.Error("failed to search sessions", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to search sessions"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"results": toSessionResponses(sessions),
	})
}

type messageResponse struct {
	Role      domain.Role `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// GetSessionMessages returns a session's messages, oldest first.
// GET /api/sessions/:session_id/messages
func (h *Handler) GetSessionMessages(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	session, err := h.store.GetActiveSession(ctx, sessionID, currentUser(c))
	if err != nil {
		h.log.Error("failed to get session", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get session"})
	}
	if session == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}

	messages, err := h.cache.GetMessages(ctx, sessionID)
	if err != nil {
		h.log.Warn("message cache read failed", "session_id", sessionID, "error", err)
		messages = nil
	}
	if messages == nil {
		messages, err = h.store.GetMessages(ctx, sessionID)
		if err != nil {
			h.log.Error("failed to get messages", "error", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get messages"})
		}
		if err := h.cache.SetMessages(ctx, sessionID, messages); err != nil {
			h.log.Warn("message cache write failed", "session_id", sessionID, "error", err)
		}
	}

	out := make([]messageResponse, len(messages))
	for i, msg := range messages {
		out[i] = messageResponse{Role: msg.Role, Content: msg.Content, Timestamp: msg.CreatedAt}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"messages": out})
}

// RenameSession sets a new title on a session.
// POST /api/sessions/:session_id/rename
func (h *Handler) RenameSession(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	var req struct {
		Title string `json:"title"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing session ID or new title"})
	}

	if err := h.store.RenameSession(ctx, sessionID, currentUser(c), req.Title); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
		}
		h.log.Error("failed to rename session", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to rename session"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "new_title": req.Title})
}

// DeleteSession soft-deletes a session; its rows stay in storage.
// DELETE /api/sessions/:session_id
func (h *Handler) DeleteSession(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("session_id")

	if err := h.store.SoftDeleteSession(ctx, sessionID, currentUser(c)); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
		}
		h.log.Error("failed to delete session", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete session"})
	}

	if err := h.cache.Invalidate(ctx, sessionID); err != nil {
		h.log.Warn("message cache invalidation failed", "session_id", sessionID, "error", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}
