// Package api provides HTTP handlers for the chat backend.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/cache"
	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/config"
	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/logger"
	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/store"
	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/turn"
)

// Handler handles HTTP requests.
type Handler struct {
	store        store.Store
	cache        *cache.Cache
	orchestrator *turn.Orchestrator
	config       *config.Config
	log          *logger.Logger
}

// NewHandler creates a new handler.
func NewHandler(st store.Store, c *cache.Cache, orchestrator *turn.Orchestrator, cfg *config.Config, log *logger.Logger) *Handler {
	return &Handler{
		store:        st,
		cache:        c,
		orchestrator: orchestrator,
		config:       cfg,
		log:          log.With("component", "api"),
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	api := e.Group("/api", Auth(h.config.JWTSecret))

	// Session lifecycle
	api.POST("/sessions", h.CreateSession)
	api.GET("/sessions", h.ListSessions)
	api.GET("/sessions/search", h.SearchSessions)
	api.GET("/sessions/:session_id/messages", h.GetSessionMessages)
	api.POST("/sessions/:session_id/rename", h.RenameSession)
	api.DELETE("/sessions/:session_id", h.DeleteSession)

	// Turn submission (streamed)
	api.POST("/messages", h.SendMessage)

	// Document generation
	api.POST("/generate/pdf", h.GeneratePDF)
	api.POST("/generate/pptx", h.GeneratePPTX)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}
