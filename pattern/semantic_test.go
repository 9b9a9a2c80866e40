package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupSemanticSingularRetry(t *testing.T) {
	_, ok := lookupSemantic("developer")
	assert.False(t, ok)

	m, ok := lookupSemantic("Developers")
	require.True(t, ok)
	assert.Equal(t, roleCategory, m.kind)

	_, ok = lookupSemantic("frobnicators")
	assert.False(t, ok)
}

func TestConditionsRoleCategory(t *testing.T) {
	m := semanticMapping{
		kind:    roleCategory,
		roles:   []string{"Engineer", "Developer"},
		exclude: []string{"Manager"},
	}

	cond := m.conditions()
	assert.Equal(t,
		"(p.role CONTAINS 'Engineer' OR p.role CONTAINS 'Developer') AND NOT p.role CONTAINS 'Manager'",
		cond)
}

func TestConditionsDepartmentCategory(t *testing.T) {
	m := semanticMapping{kind: departmentCategory, departments: []string{"Sales"}}
	assert.Equal(t, "(p.department CONTAINS 'Sales')", m.conditions())
}

func TestConditionsAllPeople(t *testing.T) {
	assert.Empty(t, semanticMapping{kind: allPeople}.conditions())
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Data Platform", titleCase("data platform"))
	assert.Equal(t, "O'brien", titleCase("o'brien"))
	assert.Equal(t, "Žofia Östliche", titleCase("žofia östliche"))
	assert.Empty(t, titleCase("  "))
}
