// Package llm provides the client for the on-prem inference endpoint and
// the extraction helpers that recover structured payloads from model
// prose.
//
// The endpoint is called statelessly: every request carries an explicit
// empty context, so no conversational memory accumulates between turns.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/c360/graphgate/errors"
)

// Completer is the single-shot completion contract the pipeline depends
// on. Implemented by Client; tests substitute fakes.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Client issues non-streaming completion requests over HTTP.
type Client struct {
	host    string
	model   string
	timeout time.Duration
	httpc   *http.Client
	logger  *slog.Logger
}

// NewClient creates a completion client for the given endpoint. timeout
// is the per-call default; callers may pass a tighter deadline through
// the context.
func NewClient(host, model string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		host:    strings.TrimRight(host, "/"),
		model:   model,
		timeout: timeout,
		httpc:   &http.Client{},
		logger:  logger.With("component", "llm"),
	}
}

type generateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Context []int64 `json:"context"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Complete sends one prompt and returns the model's text reply. No
// retries happen at this layer; retry, if any, is the supervisor's
// decision. Any transport failure, non-200 status, or malformed body
// classifies as LLMUnavailable.
func (c *Client) Complete(ctx context.Context, promptText string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  promptText,
		Stream:  false,
		Context: []int64{},
	})
	if err != nil {
		return "", errors.WrapKind(errors.KindInternal, err, "llm", "Complete", "request encoding")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", errors.WrapKind(errors.KindInternal, err, "llm", "Complete", "request construction")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", errors.WrapKind(errors.KindLLMUnavailable,
				fmt.Errorf("completion timed out after %s", c.timeout),
				"llm", "Complete", "inference call")
		}
		return "", errors.WrapKind(errors.KindLLMUnavailable, err, "llm", "Complete", "inference call")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		// Read a bounded slice of the body for the log line only.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("inference endpoint returned error",
			"status", resp.StatusCode, "detail", string(detail))
		return "", errors.WrapKind(errors.KindLLMUnavailable,
			fmt.Errorf("inference endpoint returned status %d", resp.StatusCode),
			"llm", "Complete", "inference call")
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", errors.WrapKind(errors.KindLLMUnavailable, err, "llm", "Complete", "response decoding")
	}

	c.logger.Debug("completion finished",
		"elapsed", time.Since(start), "prompt_bytes", len(promptText), "reply_bytes", len(decoded.Response))
	return decoded.Response, nil
}
