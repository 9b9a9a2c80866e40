package format

import (
	"context"
	"log/slog"
	"strings"

	"github.com/c360/graphgate/graph"
	"github.com/c360/graphgate/llm"
	"github.com/c360/graphgate/prompt"
)

// summarizeRowCap bounds how many rows are shown to the model. The
// full table is still what the user falls back to.
const summarizeRowCap = 20

// Summarizer turns a result table into a short natural-language
// answer. Summarization is best effort: any failure falls back to the
// rendered table so the user always gets their data.
type Summarizer struct {
	completer llm.Completer
	logger    *slog.Logger
}

// NewSummarizer creates a summarizer backed by the given completer.
func NewSummarizer(completer llm.Completer, logger *slog.Logger) *Summarizer {
	return &Summarizer{
		completer: completer,
		logger:    logger.With("component", "format"),
	}
}

// Summarize answers the user's question from the result. On any model
// failure the plain table is returned instead.
func (s *Summarizer) Summarize(ctx context.Context, userMessage string, result graph.Result) string {
	table := Table(result)
	if s.completer == nil || result.Empty() {
		return table
	}

	capped := result
	if len(capped.Rows) > summarizeRowCap {
		capped.Rows = capped.Rows[:summarizeRowCap]
	}

	rendered, err := prompt.Render(prompt.FormatResults, map[string]any{
		"UserMessage": userMessage,
		"Count":       len(result.Rows),
		"Results":     Table(capped),
	})
	if err != nil {
		s.logger.Warn("summary prompt failed", "error", err)
		return table
	}

	answer, err := s.completer.Complete(ctx, rendered)
	if err != nil {
		s.logger.Warn("summary completion failed", "error", err)
		return table
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return table
	}
	return answer
}
