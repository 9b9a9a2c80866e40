package graph

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/c360/graphgate/errors"
)

type fakeExecutor struct {
	fn func(ctx context.Context, statement string) (Result, error)
}

func (f *fakeExecutor) Execute(ctx context.Context, statement string) (Result, error) {
	return f.fn(ctx, statement)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProberGathersCountsAndSamples(t *testing.T) {
	exec := &fakeExecutor{fn: func(_ context.Context, statement string) (Result, error) {
		switch {
		case strings.Contains(statement, "(p:Person) RETURN count"):
			return Result{Columns: []string{"count(p)"}, Rows: [][]string{{"120"}}}, nil
		case strings.Contains(statement, "(t:Team) RETURN count"):
			return Result{Rows: [][]string{{"14"}}}, nil
		case strings.Contains(statement, "(g:Group) RETURN count"):
			return Result{Rows: [][]string{{"6"}}}, nil
		case strings.Contains(statement, "(pol:Policy) RETURN count"):
			return Result{Rows: [][]string{{"9"}}}, nil
		case strings.Contains(statement, "p.department"):
			return Result{Rows: [][]string{{"Engineering"}, {"Sales"}, {"NULL"}}}, nil
		case strings.Contains(statement, "t.name, t.department"):
			return Result{Rows: [][]string{{"Core Platform", "Engineering"}}}, nil
		case strings.Contains(statement, "g.name, g.type"):
			return Result{Rows: [][]string{{"Security Council", "governance"}}}, nil
		}
		return Result{}, nil
	}}

	prober := NewProber(exec, 10*time.Second, 5*time.Second, discardLogger())
	schema := prober.Probe(context.Background())

	assert.Equal(t, 120, schema.PeopleCount)
	assert.Equal(t, 14, schema.TeamsCount)
	assert.Equal(t, 6, schema.GroupsCount)
	assert.Equal(t, 9, schema.PoliciesCount)
	assert.Equal(t, []string{"Engineering", "Sales"}, schema.SampleDepartments)
	assert.Equal(t, []TeamSample{{Name: "Core Platform", Department: "Engineering"}}, schema.SampleTeams)
	assert.Equal(t, []GroupSample{{Name: "Security Council", Type: "governance"}}, schema.SampleGroups)
	assert.False(t, schema.ProbedAt.IsZero())
}

func TestProberToleratesFailures(t *testing.T) {
	exec := &fakeExecutor{fn: func(_ context.Context, statement string) (Result, error) {
		if strings.Contains(statement, "(p:Person) RETURN count") {
			return Result{Rows: [][]string{{"50"}}}, nil
		}
		return Result{}, errors.New(errors.KindTimeout, "graph", "Execute", "probe timed out")
	}}

	prober := NewProber(exec, 10*time.Second, 5*time.Second, discardLogger())
	schema := prober.Probe(context.Background())

	assert.Equal(t, 50, schema.PeopleCount)
	assert.Equal(t, 0, schema.TeamsCount)
	assert.Empty(t, schema.SampleTeams)
}

func TestProberStopsAfterDeadline(t *testing.T) {
	calls := 0
	exec := &fakeExecutor{fn: func(ctx context.Context, _ string) (Result, error) {
		calls++
		<-ctx.Done()
		return Result{}, ctx.Err()
	}}

	prober := NewProber(exec, 50*time.Millisecond, 20*time.Millisecond, discardLogger())
	start := time.Now()
	schema := prober.Probe(context.Background())

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, 0, schema.PeopleCount)
	// Once the probe deadline passes, remaining statements are skipped.
	assert.Less(t, calls, 7)
}

func TestProberProbesStoreOnEveryCall(t *testing.T) {
	count := "5"
	calls := 0
	exec := &fakeExecutor{fn: func(_ context.Context, _ string) (Result, error) {
		calls++
		return Result{Rows: [][]string{{count}}}, nil
	}}

	prober := NewProber(exec, time.Second, time.Second, discardLogger())
	first := prober.Probe(context.Background())
	probed := calls
	assert.Equal(t, 5, first.PeopleCount)

	// A second call goes back to the store and sees fresh data, even
	// moments after the first.
	count = "6"
	second := prober.Probe(context.Background())
	assert.Equal(t, probed*2, calls)
	assert.Equal(t, 6, second.PeopleCount)
}

func TestProberMalformedCount(t *testing.T) {
	exec := &fakeExecutor{fn: func(_ context.Context, _ string) (Result, error) {
		return Result{Rows: [][]string{{"not a number"}}}, nil
	}}

	prober := NewProber(exec, time.Second, time.Second, discardLogger())
	schema := prober.Probe(context.Background())
	assert.Equal(t, 0, schema.PeopleCount)
}
