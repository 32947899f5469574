// Package ollama provides a streaming client for a local Ollama-compatible
// completion backend.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is the Ollama backend client.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient creates a new Ollama client.
func NewClient(baseURL, model string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ChatMessage represents a chat message sent to the backend.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents the streaming chat request body.
type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

// chunk is one newline-delimited record of the streamed response.
type chunk struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

// FragmentFunc is called for each content fragment as it is parsed. Returning
// an error aborts the stream; that error is returned verbatim from Stream.
type FragmentFunc func(fragment string) error

// Stream issues a single-turn streaming completion for text and forwards each
// fragment to fn as it arrives. It returns the concatenation of all fragments
// received so far, plus a non-nil error on transport failure (connection
// error, non-success status, read error). The backend sees exactly one user
// message; no conversation history is sent. A single attempt is made, with no
// retries. Records that fail to parse are skipped.
func (c *Client) Stream(ctx context.Context, text string, fn FragmentFunc) (string, error) {
	body, err := json.Marshal(ChatRequest{
		Model:    c.model,
		Messages: []ChatMessage{{Role: "user", Content: text}},
		Stream:   true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("backend returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var assembled strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var ch chunk
		if err := json.Unmarshal(line, &ch); err != nil {
			// Skip malformed records
			continue
		}

		assembled.WriteString(ch.Message.Content)
		if err := fn(ch.Message.Content); err != nil {
			return assembled.String(), err
		}
	}

	if err := scanner.Err(); err != nil {
		return assembled.String(), fmt.Errorf("failed to read stream: %w", err)
	}

	return assembled.String(), nil
}
