package pattern

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/c360/graphgate/graph"
)

// semanticKind distinguishes how a generic term maps onto the graph.
type semanticKind int

const (
	allPeople semanticKind = iota
	roleCategory
	departmentCategory
)

type semanticMapping struct {
	kind        semanticKind
	roles       []string
	exclude     []string
	departments []string
}

// semanticMappings resolves generic workforce terms to concrete role or
// department filters.
var semanticMappings = map[string]semanticMapping{
	// Generic terms for all people
	"employees":                     {kind: allPeople},
	"staff":                         {kind: allPeople},
	"people":                        {kind: allPeople},
	"workforce":                     {kind: allPeople},
	"personnel":                     {kind: allPeople},
	"team members":                  {kind: allPeople},
	"colleagues":                    {kind: allPeople},
	"employees work for the company": {kind: allPeople},
	"staff members":                 {kind: allPeople},

	// Role categories
	"developers": {kind: roleCategory, roles: []string{"Engineer", "Developer", "Architect"}, exclude: []string{"Manager", "Director", "VP"}},
	"engineers":  {kind: roleCategory, roles: []string{"Engineer"}, exclude: []string{"Manager", "Director", "VP", "Sales"}},
	"managers":   {kind: roleCategory, roles: []string{"Manager", "Lead", "Head", "Director", "VP", "Chief"}},
	"executives": {kind: roleCategory, roles: []string{"VP", "Vice President", "Chief", "CTO", "CEO", "CFO", "CRO", "CISO", "Director"}},
	"leaders":    {kind: roleCategory, roles: []string{"Manager", "Lead", "Head", "Director", "VP", "Chief", "Supervisor"}},
	"analysts":   {kind: roleCategory, roles: []string{"Analyst", "Scientist"}, exclude: []string{"Manager", "Director"}},
	"consultants": {kind: roleCategory, roles: []string{"Consultant", "Advisor", "Specialist"}},
	"sales team":  {kind: roleCategory, roles: []string{"Sales", "Account Executive", "AE", "SDR"}},

	// Department categories
	"engineering team":   {kind: departmentCategory, departments: []string{"Engineering", "Data Platform", "Infrastructure", "DevOps", "Analytics Engineering"}},
	"product team":       {kind: departmentCategory, departments: []string{"Product"}},
	"sales organization": {kind: departmentCategory, departments: []string{"Sales"}},
	"support team":       {kind: departmentCategory, departments: []string{"Customer Success", "Professional Services", "Support"}},
	"operations":         {kind: departmentCategory, departments: []string{"Operations", "People Operations", "Finance", "Legal"}},
}

// lookupSemantic resolves a term, also trying its singular form.
func lookupSemantic(term string) (semanticMapping, bool) {
	term = strings.ToLower(strings.TrimSpace(term))
	if m, ok := semanticMappings[term]; ok {
		return m, true
	}
	if strings.HasSuffix(term, "s") {
		if m, ok := semanticMappings[strings.TrimSuffix(term, "s")]; ok {
			return m, true
		}
	}
	return semanticMapping{}, false
}

// conditions renders the mapping as a WHERE fragment over binding p.
// Returns "" for allPeople.
func (m semanticMapping) conditions() string {
	switch m.kind {
	case roleCategory:
		includes := make([]string, 0, len(m.roles))
		for _, role := range m.roles {
			includes = append(includes, "p.role CONTAINS "+graph.Quote(role))
		}
		clause := "(" + strings.Join(includes, " OR ") + ")"
		if len(m.exclude) > 0 {
			excludes := make([]string, 0, len(m.exclude))
			for _, role := range m.exclude {
				excludes = append(excludes, "NOT p.role CONTAINS "+graph.Quote(role))
			}
			clause += " AND " + strings.Join(excludes, " AND ")
		}
		return clause
	case departmentCategory:
		includes := make([]string, 0, len(m.departments))
		for _, dept := range m.departments {
			includes = append(includes, "p.department CONTAINS "+graph.Quote(dept))
		}
		return "(" + strings.Join(includes, " OR ") + ")"
	default:
		return ""
	}
}

const personColumns = "p.id, p.name, p.email, p.department, p.role"

// semanticCount builds a count statement for a workforce term. It
// declines when the term does not resolve.
func semanticCount(term string) (string, bool) {
	mapping, ok := lookupSemantic(term)
	if !ok {
		return "", false
	}
	cond := mapping.conditions()
	if cond == "" {
		return "MATCH (p:Person) RETURN count(p) AS total", true
	}
	return fmt.Sprintf("MATCH (p:Person) WHERE %s RETURN count(p) AS total", cond), true
}

// semanticList builds a listing statement for a workforce term. It
// declines when the term does not resolve.
func semanticList(term string) (string, bool) {
	mapping, ok := lookupSemantic(term)
	if !ok {
		return "", false
	}
	cond := mapping.conditions()
	if cond == "" {
		return fmt.Sprintf("MATCH (p:Person) RETURN %s LIMIT 100", personColumns), true
	}
	return fmt.Sprintf("MATCH (p:Person) WHERE %s RETURN %s LIMIT 100", cond, personColumns), true
}

// semanticRoleDept builds a statement combining a workforce term with a
// department filter. The department is free text; the role term must
// resolve.
func semanticRoleDept(roleTerm, dept string) (string, bool) {
	mapping, ok := lookupSemantic(roleTerm)
	if !ok {
		return "", false
	}

	deptCond := fmt.Sprintf("p.department CONTAINS %s OR p.department CONTAINS %s",
		graph.Quote(dept), graph.Quote(titleCase(dept)))

	cond := mapping.conditions()
	if cond == "" {
		return fmt.Sprintf("MATCH (p:Person) WHERE (%s) RETURN %s LIMIT 50", deptCond, personColumns), true
	}
	return fmt.Sprintf("MATCH (p:Person) WHERE (%s) AND (%s) RETURN %s LIMIT 50", cond, deptCond, personColumns), true
}

// titleCase capitalizes the first rune of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(r)) + word[size:]
	}
	return strings.Join(words, " ")
}
