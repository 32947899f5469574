// Package turn drives one chat turn end to end: session validation,
// attachment extraction, inference streaming, and message persistence.
package turn

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/cache"
	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/domain"
	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/extract"
	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/logger"
	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/ollama"
	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/policy"
	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/store"
)

// Separator terminates each text unit's slice of the output stream.
const Separator = "\n"

// Completer is the streaming inference backend consumed by the orchestrator.
type Completer interface {
	Stream(ctx context.Context, text string, fn ollama.FragmentFunc) (string, error)
}

// ExtractFunc maps an attachment's bytes and name to extracted text, or
// reports that the file has no usable text.
type ExtractFunc func(data []byte, filename string) (string, bool)

// FlushWriter receives output fragments as they are produced. Flush must push
// buffered bytes toward the client so the stream stays incremental.
type FlushWriter interface {
	io.Writer
	Flush()
}

// Orchestrator processes turns. Each call to Run is an independent,
// request-scoped flow; orchestrators share nothing across turns except the
// durable store.
type Orchestrator struct {
	store          store.Store
	llm            Completer
	cache          *cache.Cache
	policy         *policy.Engine
	extract        ExtractFunc
	maxUploadBytes int64
	log            *logger.Logger
}

// New creates an orchestrator backed by the given collaborators.
func New(st store.Store, llm Completer, c *cache.Cache, p *policy.Engine, maxUploadBytes int64, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		store:          st,
		llm:            llm,
		cache:          c,
		policy:         p,
		extract:        extract.Text,
		maxUploadBytes: maxUploadBytes,
		log:            log.With("component", "orchestrator"),
	}
}

// Run processes one turn, writing the multiplexed output stream to w.
//
// Validation errors (domain.ErrInvalidRequest, domain.ErrNotFound) are
// returned before any byte is written, so the caller can still send a
// structured error response. Once streaming has begun, extraction and
// backend failures degrade to inline annotations and Run keeps going; the
// only errors returned after that point are client write failures.
func (o *Orchestrator) Run(ctx context.Context, req domain.TurnRequest, w FlushWriter) error {
	text := strings.TrimSpace(req.Message)
	if text == "" && len(req.Attachments) == 0 {
		return domain.ErrInvalidRequest
	}
	if req.SessionID == "" {
		return domain.ErrInvalidRequest
	}

	session, err := o.store.GetActiveSession(ctx, req.SessionID, req.UserID)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return domain.ErrNotFound
	}

	// The timestamp touch must survive both degraded turns and client
	// disconnects, hence the detached context.
	defer func() {
		if err := o.store.TouchSession(context.WithoutCancel(ctx), session.SessionID); err != nil {
			o.log.Error("failed to touch session", "session_id", session.SessionID, "error", err)
		}
	}()

	if text != "" {
		if err := o.processUnit(ctx, session.SessionID, domain.TextUnit{Text: text}, w); err != nil {
			return err
		}
	}

	for _, att := range req.Attachments {
		unit, usable := o.attachmentUnit(ctx, att)
		if !usable {
			if err := writeAll(w, fmt.Sprintf("[Skipped file: %s]", att.Name)+Separator); err != nil {
				return err
			}
			continue
		}
		if err := o.processUnit(ctx, session.SessionID, unit, w); err != nil {
			return err
		}
	}

	return nil
}

// attachmentUnit turns one attachment into a text unit, or reports it
// unusable. Policy denials and extraction failures are deliberately
// indistinguishable to the client.
func (o *Orchestrator) attachmentUnit(ctx context.Context, att domain.Attachment) (domain.TextUnit, bool) {
	if o.policy != nil {
		decision, err := o.policy.Evaluate(ctx, policy.UploadInput{
			Filename:  att.Name,
			SizeBytes: int64(len(att.Data)),
			MaxBytes:  o.maxUploadBytes,
		})
		if err != nil {
			o.log.Error("upload policy evaluation failed", "filename", att.Name, "error", err)
			return domain.TextUnit{}, false
		}
		if decision != "allow" {
			o.log.Info("upload denied by policy", "filename", att.Name)
			return domain.TextUnit{}, false
		}
	}

	text, ok := o.extract(att.Data, att.Name)
	if !ok {
		return domain.TextUnit{}, false
	}
	return domain.TextUnit{Label: domain.UnitLabel(att.Name), Text: text}, true
}

// processUnit runs one text unit through the persist/stream/persist sequence.
func (o *Orchestrator) processUnit(ctx context.Context, sessionID string, unit domain.TextUnit, w FlushWriter) error {
	content := unit.Content()
	o.persistMessage(ctx, sessionID, domain.RoleUser, content)

	var writeErr error
	assembled, llmErr := o.llm.Stream(ctx, content, func(fragment string) error {
		if fragment == "" {
			return nil
		}
		if _, err := w.Write([]byte(fragment)); err != nil {
			writeErr = err
			return err
		}
		w.Flush()
		return nil
	})
	if writeErr != nil {
		// Client is gone; the backend request is abandoned and nothing
		// more is persisted for this unit.
		return writeErr
	}

	if llmErr != nil {
		if err := writeAll(w, fmt.Sprintf("[Assistant request error: %v]", llmErr)); err != nil {
			return err
		}
	}

	// The assembled reply may be partial or empty when the backend failed;
	// partial progress is durable and visible.
	o.persistMessage(ctx, sessionID, domain.RoleAssistant, assembled)

	return writeAll(w, Separator)
}

// persistMessage writes one message. Storage failure degrades the turn but
// does not abort the stream.
func (o *Orchestrator) persistMessage(ctx context.Context, sessionID string, role domain.Role, content string) {
	msg := domain.Message{
		MessageID: "msg_" + uuid.New().String(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := o.store.CreateMessage(ctx, &msg); err != nil {
		o.log.Error("failed to save message", "session_id", sessionID, "role", role, "error", err)
		return
	}
	if err := o.cache.AppendMessage(ctx, msg); err != nil {
		o.log.Warn("failed to cache message", "session_id", sessionID, "error", err)
	}
}

func writeAll(w FlushWriter, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return err
	}
	w.Flush()
	return nil
}
