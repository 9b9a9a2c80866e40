package graph

import (
	"context"
	"log/slog"
	"strconv"
	"time"
)

// Schema summarizes the graph contents for prompt grounding. A probe
// that partially fails still returns whatever it gathered; the zero
// value is usable.
type Schema struct {
	PeopleCount       int
	TeamsCount        int
	GroupsCount       int
	PoliciesCount     int
	SampleDepartments []string
	SampleTeams       []TeamSample
	SampleGroups      []GroupSample
	ProbedAt          time.Time
}

// TeamSample is one sampled team with its department.
type TeamSample struct {
	Name       string
	Department string
}

// GroupSample is one sampled group with its type.
type GroupSample struct {
	Name string
	Type string
}

// Prober gathers schema summaries on a fixed sub-deadline per
// statement, so one slow count cannot consume the whole probe budget.
// Every Probe call hits the store; callers wanting a stable snapshot
// hold the returned value for the duration of their work.
type Prober struct {
	exec         Executor
	probeTimeout time.Duration
	stmtTimeout  time.Duration
	logger       *slog.Logger
}

// NewProber creates a prober. probeTimeout bounds the whole probe,
// stmtTimeout each statement within it.
func NewProber(exec Executor, probeTimeout, stmtTimeout time.Duration, logger *slog.Logger) *Prober {
	return &Prober{
		exec:         exec,
		probeTimeout: probeTimeout,
		stmtTimeout:  stmtTimeout,
		logger:       logger.With("component", "schema_probe"),
	}
}

// Probe gathers counts and samples. It never fails: statements that
// error or time out leave their fields at zero and are logged.
func (p *Prober) Probe(ctx context.Context) Schema {
	ctx, cancel := context.WithTimeout(ctx, p.probeTimeout)
	defer cancel()

	schema := Schema{ProbedAt: time.Now()}

	schema.PeopleCount = p.count(ctx, "MATCH (p:Person) RETURN count(p)")
	schema.TeamsCount = p.count(ctx, "MATCH (t:Team) RETURN count(t)")
	schema.GroupsCount = p.count(ctx, "MATCH (g:Group) RETURN count(g)")
	schema.PoliciesCount = p.count(ctx, "MATCH (pol:Policy) RETURN count(pol)")

	for _, row := range p.rows(ctx, "MATCH (p:Person) RETURN DISTINCT p.department ORDER BY p.department LIMIT 10") {
		if len(row) > 0 && row[0] != "" && row[0] != "NULL" {
			schema.SampleDepartments = append(schema.SampleDepartments, row[0])
		}
	}

	for _, row := range p.rows(ctx, "MATCH (t:Team) RETURN t.name, t.department ORDER BY t.name LIMIT 5") {
		if len(row) >= 2 {
			schema.SampleTeams = append(schema.SampleTeams, TeamSample{Name: row[0], Department: row[1]})
		}
	}

	for _, row := range p.rows(ctx, "MATCH (g:Group) RETURN g.name, g.type ORDER BY g.name LIMIT 5") {
		if len(row) >= 2 {
			schema.SampleGroups = append(schema.SampleGroups, GroupSample{Name: row[0], Type: row[1]})
		}
	}

	return schema
}

func (p *Prober) count(ctx context.Context, statement string) int {
	rows := p.rows(ctx, statement)
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0
	}
	n, err := strconv.Atoi(rows[0][0])
	if err != nil {
		return 0
	}
	return n
}

func (p *Prober) rows(ctx context.Context, statement string) [][]string {
	if ctx.Err() != nil {
		return nil
	}

	stmtCtx, cancel := context.WithTimeout(ctx, p.stmtTimeout)
	defer cancel()

	result, err := p.exec.Execute(stmtCtx, statement)
	if err != nil {
		p.logger.Warn("probe statement failed", "statement", statement, "error", err)
		return nil
	}
	return result.Rows
}
