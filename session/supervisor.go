package session

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/c360/graphgate/errors"
	"github.com/c360/graphgate/format"
	"github.com/c360/graphgate/graph"
	"github.com/c360/graphgate/llm"
	"github.com/c360/graphgate/metric"
	"github.com/c360/graphgate/pattern"
	"github.com/c360/graphgate/prompt"
	"github.com/c360/graphgate/query"
)

// Services bundles the pipeline collaborators. One Services value is
// constructed at process start and shared by every session; it holds no
// per-session state.
type Services struct {
	Completer  llm.Completer
	Executor   graph.Executor
	Prober     *graph.Prober
	Searcher   *graph.Searcher
	Matcher    *pattern.Matcher
	Summarizer *format.Summarizer
	Metrics    *metric.Metrics

	TurnTimeout time.Duration
	DebugErrors bool
}

// Supervisor drives the pipeline for one session: it receives user
// messages, runs at most one turn at a time, and emits ordered events
// through the session's send path.
type Supervisor struct {
	svc     *Services
	emit    func(Event) error
	onFatal func()
	logger  *slog.Logger
	busy    atomic.Bool
}

// NewSupervisor creates a supervisor. emit delivers events to the
// client in order; onFatal is invoked after an unrecoverable failure and
// should close the session.
func NewSupervisor(svc *Services, emit func(Event) error, onFatal func(), logger *slog.Logger) *Supervisor {
	return &Supervisor{svc: svc, emit: emit, onFatal: onFatal, logger: logger}
}

// Busy reports whether a turn is currently in flight.
func (s *Supervisor) Busy() bool {
	return s.busy.Load()
}

// HandleMessage starts a turn for one user message. Messages arriving
// while a turn is in flight are rejected with a busy notice; the
// in-flight turn is unaffected. The turn runs on its own goroutine so
// the caller's read loop keeps servicing control frames.
func (s *Supervisor) HandleMessage(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	if !s.busy.CompareAndSwap(false, true) {
		s.send(Error(errors.ErrSessionBusy.Error()+". Please wait for the current answer.", nil, ""))
		return
	}

	go func() {
		defer s.busy.Store(false)
		s.runTurn(ctx, text)
	}()
}

// turn carries the state of one message's processing.
type turn struct {
	s      *Supervisor
	ctx    context.Context
	text   string
	logger *slog.Logger

	degraded    bool
	llmFailures int

	echoed      string
	queryResult *graph.Result
	searchHits  *graph.Result
}

func (s *Supervisor) runTurn(ctx context.Context, text string) {
	turnID := uuid.NewString()
	logger := s.logger.With("turn_id", turnID)
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.svc.TurnTimeout)
	defer cancel()

	t := &turn{s: s, ctx: ctx, text: text, logger: logger}
	logger.Info("turn started", "message_bytes", len(text))

	plan := t.analyze()

	for _, tool := range plan.Tools {
		var err error
		switch tool {
		case ToolCustomQuery:
			err = t.runCustomQuery(plan)
		case ToolSearch:
			err = t.runSearch()
		case ToolEcho:
			t.echoed = pigLatin(text)
		case ToolStoreMessage:
			t.storeMessage()
		}
		if err != nil {
			kind := t.fail(err)
			s.svc.Metrics.RecordTurn(kind.String(), time.Since(start))
			logger.Warn("turn failed", "kind", kind.String(), "error", err)
			return
		}
	}

	formatStart := time.Now()
	answer := t.finalAnswer(plan)
	s.svc.Metrics.RecordStage("format", time.Since(formatStart))

	s.send(Final(answer))
	s.svc.Metrics.RecordTurn("success", time.Since(start))
	logger.Info("turn delivered", "elapsed", time.Since(start))
}

// analyze runs the schema probe and the analyze prompt, returning the
// turn's plan. Any failure degrades to the echo plan instead of failing
// the turn, so the session always produces some output.
func (t *turn) analyze() Plan {
	svc := t.s.svc
	start := time.Now()
	defer func() { svc.Metrics.RecordStage("analyze", time.Since(start)) }()

	t.s.send(Info("Analyzing request to determine the best approach..."))

	snapshot := svc.Prober.Probe(t.ctx)

	rendered, err := prompt.Render(prompt.AnalyzeMessage, analyzeVars{
		Schema:      snapshot,
		UserMessage: t.text,
	})
	if err != nil {
		t.logger.Error("analyze prompt render failed", "error", err)
		return t.degrade()
	}

	llmStart := time.Now()
	reply, err := svc.Completer.Complete(t.ctx, rendered)
	if err != nil {
		svc.Metrics.RecordLLMRequest("error", time.Since(llmStart))
		t.logger.Warn("analyze completion failed", "error", err)
		if errors.KindOf(err) == errors.KindLLMUnavailable {
			t.llmFailures++
		}
		return t.degrade()
	}
	svc.Metrics.RecordLLMRequest("ok", time.Since(llmStart))

	payload, err := llm.ExtractJSON(reply)
	if err != nil {
		t.logger.Warn("analyze reply unparseable", "error", err)
		return t.degrade()
	}

	plan, err := decodePlan(payload)
	if err != nil {
		t.logger.Warn("analyze plan malformed", "error", err)
		return t.degrade()
	}

	t.logger.Debug("plan decided",
		"tools", strings.Join(plan.Tools, ","),
		"response_type", plan.ResponseType)
	return plan
}

func (t *turn) degrade() Plan {
	t.degraded = true
	t.s.send(Info("The AI is taking longer than usual. Answering locally instead."))
	return defaultPlan()
}

// runCustomQuery synthesizes, validates, and executes one statement,
// with a single broader retry when the primary returns zero rows.
func (t *turn) runCustomQuery(plan Plan) error {
	svc := t.s.svc
	start := time.Now()
	defer func() { svc.Metrics.RecordStage("execute", time.Since(start)) }()

	raw, matched := svc.Matcher.Match(t.text)
	if matched {
		t.s.send(Info("Using an optimized query pattern for this question."))
	} else {
		note := "Crafting database query..."
		if plan.Reasoning != "" {
			note = "Crafting database query: " + plan.Reasoning
		}
		t.s.send(Info(note))

		var err error
		raw, err = t.generate(prompt.GenerateQuery, generateVars{UserMessage: t.text}, query.OriginLLMPrimary)
		if err != nil {
			return err
		}
	}

	processed := query.Sanitize(raw)
	svc.Metrics.RecordQueryFixes(processed.Fixes)

	report := query.Validate(processed.Text)
	if !report.Valid() {
		svc.Metrics.RecordValidationRejection()
		svc.Metrics.RecordQuery(string(raw.Origin), "rejected")
		return errors.New(errors.KindValidationRejected, "session", "runCustomQuery",
			strings.Join(report.Errors, "; "))
	}
	for _, warning := range report.Warnings {
		t.logger.Debug("validation warning", "warning", warning)
	}

	t.s.send(QueryDisclosure(processed.Text))

	result, err := svc.Executor.Execute(t.ctx, processed.Text)
	if err != nil {
		svc.Metrics.RecordQuery(string(raw.Origin), "error")
		return err
	}
	svc.Metrics.RecordQuery(string(raw.Origin), "ok")

	if result.Empty() {
		if fallback, ok := t.runFallback(processed.Text); ok {
			result = fallback
		}
	}

	t.s.send(Results(format.Table(result)))
	t.queryResult = &result
	return nil
}

// runFallback makes the turn's single broader retry after an empty
// result. Every failure along the way keeps the original empty result;
// the fallback can only improve the answer, never fail the turn.
func (t *turn) runFallback(previous string) (graph.Result, bool) {
	svc := t.s.svc
	t.s.send(Info("No results found. Trying a broader search..."))

	raw, err := t.generate(prompt.FallbackQuery,
		fallbackVars{UserMessage: t.text, PreviousQuery: previous}, query.OriginLLMFallback)
	if err != nil {
		t.logger.Warn("fallback generation failed", "error", err)
		return graph.Result{}, false
	}

	processed := query.Sanitize(raw)
	svc.Metrics.RecordQueryFixes(processed.Fixes)

	if report := query.Validate(processed.Text); !report.Valid() {
		svc.Metrics.RecordValidationRejection()
		svc.Metrics.RecordQuery(string(raw.Origin), "rejected")
		t.logger.Warn("fallback statement rejected", "errors", strings.Join(report.Errors, "; "))
		return graph.Result{}, false
	}

	t.s.send(QueryDisclosure(processed.Text))

	result, err := svc.Executor.Execute(t.ctx, processed.Text)
	if err != nil {
		svc.Metrics.RecordQuery(string(raw.Origin), "error")
		t.logger.Warn("fallback execution failed", "error", err)
		return graph.Result{}, false
	}
	svc.Metrics.RecordQuery(string(raw.Origin), "ok")

	if result.Empty() {
		return graph.Result{}, false
	}
	return result, true
}

// generate renders a template, calls the model, and recovers the
// statement from the reply.
func (t *turn) generate(template string, vars any, origin query.Origin) (query.RawQuery, error) {
	svc := t.s.svc

	rendered, err := prompt.Render(template, vars)
	if err != nil {
		return query.RawQuery{}, err
	}

	start := time.Now()
	reply, err := svc.Completer.Complete(t.ctx, rendered)
	if err != nil {
		svc.Metrics.RecordLLMRequest("error", time.Since(start))
		if errors.KindOf(err) == errors.KindLLMUnavailable {
			t.llmFailures++
		}
		return query.RawQuery{}, err
	}
	svc.Metrics.RecordLLMRequest("ok", time.Since(start))

	text := llm.ExtractCode(reply)
	if text == "" {
		return query.RawQuery{}, errors.New(errors.KindLLMUnparseable, "session", "generate",
			"model reply contained no statement")
	}
	return query.RawQuery{Text: text, Origin: origin}, nil
}

func (t *turn) runSearch() error {
	result, err := t.s.svc.Searcher.Search(t.ctx, t.text)
	if err != nil {
		return err
	}
	t.s.send(Results(format.Table(result)))
	t.searchHits = &result
	return nil
}

// storeMessage persists the message and its echo transform. Storage is
// best effort: failure surfaces an error event but never fails the turn.
func (t *turn) storeMessage() {
	if t.echoed == "" {
		t.echoed = pigLatin(t.text)
	}

	statement := graph.WithParams(
		"CREATE (m:Message {original: $original, echoed: $echoed, timestamp: $timestamp})",
		map[string]string{
			"original":  t.text,
			"echoed":    t.echoed,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})

	if _, err := t.s.svc.Executor.Execute(t.ctx, statement); err != nil {
		t.logger.Warn("message storage failed", "error", err)
		t.s.send(Error("Your message could not be stored.", nil, t.debugDetail(err)))
		return
	}
	t.logger.Debug("message stored")
}

// finalAnswer renders the turn's closing prose from whatever the tools
// produced. Summarization is best effort; the summarizer degrades to the
// table on its own.
func (t *turn) finalAnswer(plan Plan) string {
	svc := t.s.svc

	switch plan.ResponseType {
	case ResponseCustom:
		if t.queryResult != nil {
			return svc.Summarizer.Summarize(t.ctx, t.text, *t.queryResult)
		}
	case ResponseSearch:
		if t.searchHits != nil {
			return svc.Summarizer.Summarize(t.ctx, t.text, *t.searchHits)
		}
	case ResponseDirect:
		if t.queryResult != nil {
			return svc.Summarizer.Summarize(t.ctx, t.text, *t.queryResult)
		}
		if t.searchHits != nil {
			return svc.Summarizer.Summarize(t.ctx, t.text, *t.searchHits)
		}
	}

	if t.echoed == "" {
		t.echoed = pigLatin(t.text)
	}
	return "**Pig Latin Translation:**\n\n" + t.echoed
}

// fail emits the single error event for a terminal turn failure and
// escalates unrecoverable conditions to the session. Returns the kind
// for metrics.
func (t *turn) fail(err error) errors.Kind {
	kind := errors.KindOf(err)
	t.s.svc.Metrics.RecordError("session", kind.String())

	var help []string
	switch kind {
	case errors.KindSyntax, errors.KindSchemaUnknown, errors.KindValidationRejected,
		errors.KindTimeout, errors.KindExecutorUnavailable:
		help = pattern.Hints(3)
	}

	t.s.send(Error(errors.UserMessage(kind), help, t.debugDetail(err)))

	if kind == errors.KindInternal || t.llmFailures >= 2 {
		t.logger.Error("unrecoverable failure, closing session", "kind", kind.String())
		if t.s.onFatal != nil {
			t.s.onFatal()
		}
	}
	return kind
}

func (t *turn) debugDetail(err error) string {
	if !t.s.svc.DebugErrors || err == nil {
		return ""
	}
	return err.Error()
}

// send delivers one event, logging delivery failures. A failed send
// means the session is gone; the turn context will be cancelled by the
// connection teardown.
func (s *Supervisor) send(ev Event) {
	if err := s.emit(ev); err != nil {
		s.logger.Debug("event delivery failed", "type", string(ev.Type), "error", err)
	}
}

type analyzeVars struct {
	Schema      graph.Schema
	UserMessage string
}

type generateVars struct {
	UserMessage string
}

type fallbackVars struct {
	UserMessage   string
	PreviousQuery string
}
