package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/logger"
	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/ollama"
	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/tests/helpers"
	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/turn"
)

type scriptedCompleter struct {
	fragments []string
}

func (s *scriptedCompleter) Stream(ctx context.Context, text string, fn ollama.FragmentFunc) (string, error) {
	var assembled strings.Builder
	for _, fragment := range s.fragments {
		assembled.WriteString(fragment)
		if err := fn(fragment); err != nil {
			return assembled.String(), err
		}
	}
	return assembled.String(), nil
}

func newTurnHandler(t *testing.T, fragments []string) *Handler {
	t.Helper()
	st := helpers.NewTestSQLiteStore(t)
	log := logger.NewNop()
	orchestrator := turn.New(st, &scriptedCompleter{fragments: fragments}, nil, nil, 1<<20, log)
	return &Handler{
		store:        st,
		orchestrator: orchestrator,
		log:          log,
	}
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for name, data := range files {
		fw, err := mw.CreateFormFile("file", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestSendMessageStreams(t *testing.T) {
	e := echo.New()
	h := newTurnHandler(t, []string{"Hi ", "there"})
	seedSession(t, h, "s1", "u1", "New Chat")

	body, contentType := multipartBody(t, map[string]string{
		"message":    "hello",
		"session_id": "s1",
	}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/messages", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := newAuthedContext(e, req, rec, "u1")

	if err := h.SendMessage(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "Hi there\n" {
		t.Fatalf("unexpected body: %q", got)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("unexpected content type: %q", ct)
	}

	messages, err := h.store.GetMessages(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
}

func TestSendMessageWithAttachment(t *testing.T) {
	e := echo.New()
	h := newTurnHandler(t, []string{"Summarized."})
	seedSession(t, h, "s1", "u1", "New Chat")

	body, contentType := multipartBody(t, map[string]string{
		"session_id": "s1",
	}, map[string][]byte{
		"notes.txt": []byte("remember the milk"),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/messages", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := newAuthedContext(e, req, rec, "u1")

	if err := h.SendMessage(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "Summarized.\n" {
		t.Fatalf("unexpected body: %q", got)
	}

	messages, err := h.store.GetMessages(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Content != "[File Upload: notes.txt]\nremember the milk" {
		t.Fatalf("unexpected user message: %q", messages[0].Content)
	}
}

func TestSendMessageMissingInput(t *testing.T) {
	e := echo.New()
	h := newTurnHandler(t, nil)
	seedSession(t, h, "s1", "u1", "New Chat")

	body, contentType := multipartBody(t, map[string]string{
		"message":    "   ",
		"session_id": "s1",
	}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/messages", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := newAuthedContext(e, req, rec, "u1")

	if err := h.SendMessage(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["error"] != "Missing message or file" {
		t.Fatalf("unexpected error body: %+v", resp)
	}
}

func TestSendMessageUnknownSession(t *testing.T) {
	e := echo.New()
	h := newTurnHandler(t, []string{"x"})

	body, contentType := multipartBody(t, map[string]string{
		"message":    "hello",
		"session_id": "missing",
	}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/messages", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := newAuthedContext(e, req, rec, "u1")

	if err := h.SendMessage(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["error"] != "Session not found" {
		t.Fatalf("unexpected error body: %+v", resp)
	}
}
