package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gateerrors "github.com/c360/graphgate/errors"
)

func TestRenderAllTemplatesResolve(t *testing.T) {
	vars := map[string]any{
		"UserMessage":   "who's on the Core Platform team?",
		"PreviousQuery": "MATCH (p:Person) RETURN p LIMIT 5",
		"Count":         0,
		"Results":       "",
		"Schema": map[string]any{
			"PeopleCount":       int64(10),
			"TeamsCount":        int64(2),
			"GroupsCount":       int64(1),
			"PoliciesCount":     int64(3),
			"SampleDepartments": []string{"Engineering"},
			"SampleTeams":       []map[string]string{{"Name": "Core Platform", "Department": "Engineering"}},
			"SampleGroups":      []map[string]string{{"Name": "Security Council", "Type": "governance"}},
		},
	}

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			out, err := Render(name, vars)
			require.NoError(t, err)
			assert.NotEmpty(t, out)
		})
	}
}

func TestRenderInterpolatesUserMessage(t *testing.T) {
	out, err := Render(GenerateQuery, map[string]any{"UserMessage": "find people named Zzyzx"})
	require.NoError(t, err)
	assert.Contains(t, out, "find people named Zzyzx")
}

func TestRenderFallbackIncludesPreviousQuery(t *testing.T) {
	out, err := Render(FallbackQuery, map[string]any{
		"UserMessage":   "find people named Zzyzx",
		"PreviousQuery": "MATCH (p:Person {name: 'Zzyzx'}) RETURN p",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "MATCH (p:Person {name: 'Zzyzx'}) RETURN p")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render("nonexistent", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, gateerrors.ErrPromptNotFound)
	assert.Equal(t, gateerrors.KindInternal, gateerrors.KindOf(err))
}

func TestRenderDeterministic(t *testing.T) {
	vars := map[string]any{"UserMessage": "show me people in Engineering"}
	a, err := Render(GenerateQuerySimple, vars)
	require.NoError(t, err)
	b, err := Render(GenerateQuerySimple, vars)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
