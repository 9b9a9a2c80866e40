package graph

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/c360/graphgate/errors"
)

// Client executes statements against one named graph on a FalkorDB
// server.
type Client struct {
	rdb         *redis.Client
	graphName   string
	execTimeout time.Duration
	logger      *slog.Logger
}

// NewClient creates a client for the graph at addr. The execTimeout is
// applied per statement, both client-side and server-side.
func NewClient(addr, graphName string, execTimeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		rdb: redis.NewClient(&redis.Options{
			Addr:         addr,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  execTimeout + 5*time.Second,
			WriteTimeout: 5 * time.Second,
		}),
		graphName:   graphName,
		execTimeout: execTimeout,
		logger:      logger.With("component", "graph"),
	}
}

// GraphName returns the name of the graph this client targets.
func (c *Client) GraphName() string {
	return c.graphName
}

// Ping verifies the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return errors.WrapKind(errors.KindExecutorUnavailable, err, "graph", "Ping", "reach graph store")
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Execute runs one statement with the configured execution deadline.
// Failures carry a Kind so callers can route them: syntax and schema
// errors feed repair, timeouts and transport errors end the turn.
func (c *Client) Execute(ctx context.Context, statement string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.execTimeout)
	defer cancel()

	start := time.Now()
	raw, err := c.rdb.Do(ctx,
		"GRAPH.QUERY", c.graphName, statement,
		"TIMEOUT", strconv.FormatInt(c.execTimeout.Milliseconds(), 10),
	).Result()
	elapsed := time.Since(start)

	if err != nil {
		kindErr := c.classify(err)
		c.logger.Warn("statement failed",
			"kind", errors.KindOf(kindErr).String(),
			"elapsed", elapsed,
			"error", err)
		return Result{}, kindErr
	}

	result, err := parseReply(raw)
	if err != nil {
		return Result{}, err
	}
	result.Elapsed = elapsed

	c.logger.Debug("statement executed",
		"rows", len(result.Rows),
		"columns", len(result.Columns),
		"elapsed", elapsed)
	return result, nil
}

// classify maps an execution error to a ClassifiedError. Server-side
// errors are classified by message; everything else goes through the
// generic mapping.
func (c *Client) classify(err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.WrapKind(errors.KindTimeout, err, "graph", "Execute", "run statement")
	}

	var serverErr redis.Error
	if stderrors.As(err, &serverErr) {
		msg := serverErr.Error()
		if strings.Contains(strings.ToLower(msg), "timed out") {
			return errors.WrapKind(errors.KindTimeout, err, "graph", "Execute", "run statement")
		}
		return errors.WrapKind(errors.ClassifyServerError(msg), err, "graph", "Execute", "run statement")
	}

	return errors.WrapKind(errors.KindOf(err), err, "graph", "Execute", "run statement")
}
