package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/domain"
)

// SendMessage submits one turn and streams the assistant output back as a
// continuous plain-text body. Validation failures are returned as a single
// JSON error before any streaming begins.
// POST /api/messages (multipart form: message, session_id, file...)
func (h *Handler) SendMessage(c echo.Context) error {
	ctx := c.Request().Context()

	req := domain.TurnRequest{
		UserID:    currentUser(c),
		SessionID: c.FormValue("session_id"),
		Message:   c.FormValue("message"),
	}

	if form, err := c.MultipartForm(); err == nil {
		for _, fh := range form.File["file"] {
			data, err := readUpload(fh)
			if err != nil {
				h.log.Warn("failed to read upload", "filename", fh.Filename, "error", err)
				continue
			}
			req.Attachments = append(req.Attachments, domain.Attachment{Name: fh.Filename, Data: data})
		}
	}

	// Headers are only sent once streaming starts; a validation failure
	// below still produces a plain JSON response.
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
	c.Response().Header().Set("Cache-Control", "no-cache")

	err := h.orchestrator.Run(ctx, req, c.Response())
	if err != nil {
		if c.Response().Committed {
			// Bytes already went out; all we can do is log.
			h.log.Warn("turn aborted mid-stream", "session_id", req.SessionID, "error", err)
			return nil
		}
		// The streaming content type was set optimistically above; the
		// error responses below are JSON.
		c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
		switch {
		case errors.Is(err, domain.ErrInvalidRequest):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing message or file"})
		case errors.Is(err, domain.ErrNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Session not found"})
		default:
			h.log.Error("turn failed", "session_id", req.SessionID, "error", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to process message"})
		}
	}

	return nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
