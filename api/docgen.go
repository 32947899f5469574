package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/docgen"
)

const pptxContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

type generateRequest struct {
	Content string `json:"content" form:"content"`
}

// GeneratePDF renders the submitted text as a downloadable PDF.
func (h *Handler) GeneratePDF(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No content provided"})
	}

	data, err := docgen.PDF(content)
	if err != nil {
		h.log.Error("pdf generation failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate PDF"})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "generated.pdf"))
	return c.Blob(http.StatusOK, "application/pdf", data)
}

// GeneratePPTX renders the submitted text as a downloadable slide deck,
// one slide per non-empty line.
func (h *Handler) GeneratePPTX(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No content provided"})
	}

	data, err := docgen.PPTX(content)
	if err != nil {
		h.log.Error("pptx generation failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate PPTX"})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "generated.pptx"))
	return c.Blob(http.StatusOK, pptxContentType, data)
}
