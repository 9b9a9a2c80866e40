// Package pattern maps recognizable question shapes to pre-authored
// graph statements. A pattern hit skips query generation entirely,
// which is both faster and immune to model failure modes. Coverage is
// intentionally small; everything else falls through to generation.
package pattern

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/c360/graphgate/graph"
	"github.com/c360/graphgate/pkg/cache"
	"github.com/c360/graphgate/query"
)

type queryPattern struct {
	name     string
	priority int
	regexes  []*regexp.Regexp
	build    func(groups []string) (string, bool)
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		out = append(out, regexp.MustCompile("(?i)^"+expr))
	}
	return out
}

// patterns are matched in priority order against the lowercased
// question. Semantic patterns decline when the captured term does not
// resolve, so unrecognized questions fall through to generation.
// Every template must pass query.Validate; the matcher tests enforce
// that.
var patterns = []queryPattern{
	{
		name:     "count_semantic",
		priority: 20,
		regexes: compile(
			`how many (.+?)(?:\s+work(?:s)? for the (?:company|organization))?(?:\s+are there)?(?:\s+in the (?:company|organization))?(?:\?|$)`,
			`(?:what is the )?(?:total )?(?:number|count) of (.+?)(?:\s+in the (?:company|organization))?(?:\?|$)`,
			`count (?:all )?(?:the )?(.+?)(?:\s+in the (?:company|organization))?(?:\?|$)`,
			`how many (.+?) do we have(?:\?|$)`,
			`how many (.+?) are (?:there|employed)(?:\?|$)`,
		),
		build: func(groups []string) (string, bool) {
			return semanticCount(groups[0])
		},
	},
	{
		name:     "list_semantic",
		priority: 18,
		regexes: compile(
			`(?:show|list|find|get) (?:me )?(?:all )?(?:the )?(.+?)(?:\?|$)`,
			`who are (?:all )?(?:the |our )?(.+?)(?:\?|$)`,
			`(?:give me|i need) (?:a list of )?(?:all )?(?:the )?(.+?)(?:\?|$)`,
		),
		build: func(groups []string) (string, bool) {
			return semanticList(groups[0])
		},
	},
	{
		name:     "role_in_department",
		priority: 15,
		regexes: compile(
			`(?:show|find|list) (?:all )?(?:the )?(.+?) in (?:the )?(.+?)(?:\s+department)?(?:\?|$)`,
			`(.+?) (?:who work in|from) (?:the )?(.+?)(?:\s+department)?(?:\?|$)`,
			`which (.+?) are in (?:the )?(.+?)(?:\?|$)`,
		),
		build: func(groups []string) (string, bool) {
			return semanticRoleDept(groups[0], groups[1])
		},
	},
	{
		name:     "specific_person",
		priority: 12,
		regexes: compile(
			`(?:who is|tell me about) (.+?)(?:\?|$)`,
			`(?:information about|details for) (.+?)(?:\?|$)`,
		),
		build: func(groups []string) (string, bool) {
			// "who is ..." also opens team and manager questions; let
			// those patterns claim their shapes.
			lower := groups[0]
			if lower == "" {
				return "", false
			}
			if strings.HasPrefix(lower, "on ") || strings.HasPrefix(lower, "in ") ||
				strings.HasPrefix(lower, "member of ") || strings.HasSuffix(lower, " manager") ||
				strings.HasPrefix(lower, "responsible for ") {
				return "", false
			}
			name := titleCase(lower)
			return fmt.Sprintf(
				"MATCH (p:Person) WHERE p.name CONTAINS %s RETURN %s",
				graph.Quote(name), personColumns), true
		},
	},
	{
		name:     "team_members",
		priority: 10,
		regexes: compile(
			`who(?:'s| is| are)? (?:on|in|member of) (?:the )?(.+?)(?:\s+team)?(?:\?|$)`,
			`members? of (?:the )?(.+?)(?:\s+team)?(?:\?|$)`,
		),
		build: func(groups []string) (string, bool) {
			if groups[0] == "" {
				return "", false
			}
			team := strings.TrimSuffix(groups[0], " team")
			return fmt.Sprintf(
				"MATCH (p:Person)-[:MEMBER_OF]->(t:Team) WHERE t.name CONTAINS %s OR t.name CONTAINS %s RETURN %s LIMIT 50",
				graph.Quote(team), graph.Quote(titleCase(team)), personColumns), true
		},
	},
	{
		name:     "manager_queries",
		priority: 10,
		regexes: compile(
			`who(?:'s| is) (.+?)(?:'s)? manager(?:\?|$)`,
			`who does (.+?) report to(?:\?|$)`,
			`(?:find|show) (?:the )?manager (?:of|for) (.+?)(?:\?|$)`,
		),
		build: func(groups []string) (string, bool) {
			if groups[0] == "" {
				return "", false
			}
			person := titleCase(groups[0])
			return fmt.Sprintf(
				"MATCH (p:Person)-[:REPORTS_TO]->(m:Person) WHERE p.name CONTAINS %s RETURN m.id, m.name, m.email, m.department, m.role",
				graph.Quote(person)), true
		},
	},
	{
		name:     "policy_queries",
		priority: 9,
		regexes: compile(
			`who(?:'s| is)? (?:responsible for|owns?) (?:the )?(.+?)(?:\s+policy)?(?:\?|$)`,
			`(?:show|find|list) (?:all )?(.+?) policies?(?:\?|$)`,
			`policies? (?:for|about|related to) (.+?)(?:\?|$)`,
		),
		build: func(groups []string) (string, bool) {
			if groups[0] == "" {
				return "", false
			}
			policy := strings.TrimSuffix(groups[0], " policy")
			quoted := graph.Quote(policy)
			return fmt.Sprintf(
				"MATCH (owner)-[:RESPONSIBLE_FOR]->(pol:Policy) WHERE pol.name CONTAINS %s OR pol.category CONTAINS %s OR pol.description CONTAINS %s RETURN owner.id, owner.name, pol.id, pol.name, pol.category, pol.severity LIMIT 25",
				quoted, quoted, quoted), true
		},
	},
	{
		name:     "org_hierarchy",
		priority: 8,
		regexes: compile(
			`(?:show|display) (?:the )?(?:org|organization|organizational) (?:chart|hierarchy|structure)(?:\?|$)`,
			`who reports to whom(?:\?|$)`,
			`(?:management|reporting) (?:structure|hierarchy)(?:\?|$)`,
		),
		build: func(_ []string) (string, bool) {
			return "MATCH (p:Person)-[:REPORTS_TO]->(m:Person) RETURN p.id, p.name, p.role, p.department, m.id AS manager_id, m.name AS manager_name, m.role AS manager_role LIMIT 100", true
		},
	},
	{
		name:     "experience_queries",
		priority: 7,
		regexes: compile(
			`(?:find|show|list) (?:all )?(senior|junior|staff|principal|lead) (.+?)(?:\s+in (?:the )?(.+?))?(?:\?|$)`,
		),
		build: func(groups []string) (string, bool) {
			if groups[1] == "" {
				return "", false
			}
			level := titleCase(groups[0])
			role := titleCase(strings.TrimSuffix(groups[1], "s"))
			clause := fmt.Sprintf("p.role CONTAINS %s AND p.role CONTAINS %s",
				graph.Quote(level), graph.Quote(role))
			if dept := groups[2]; dept != "" {
				clause += fmt.Sprintf(" AND (p.department CONTAINS %s OR p.department CONTAINS %s)",
					graph.Quote(dept), graph.Quote(titleCase(dept)))
			}
			return fmt.Sprintf("MATCH (p:Person) WHERE %s RETURN %s LIMIT 50",
				clause, personColumns), true
		},
	},
}

// memoTTL bounds how long a matched statement is remembered for a
// repeated question. The catalog is static, so entries never go stale;
// the TTL only caps memory on long-lived processes.
const memoTTL = 5 * time.Minute

// Matcher matches user questions against the pattern catalog. Matching
// is deterministic, so results are memoized per normalized question.
type Matcher struct {
	logger *slog.Logger
	memo   *cache.TTL[query.RawQuery]
}

// NewMatcher creates a matcher.
func NewMatcher(logger *slog.Logger) *Matcher {
	return &Matcher{
		logger: logger.With("component", "pattern"),
		memo:   cache.NewTTL[query.RawQuery](memoTTL, 0),
	}
}

// Match tries the catalog in priority order and returns the first
// pattern's statement. The boolean reports whether anything matched.
func (m *Matcher) Match(text string) (query.RawQuery, bool) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return query.RawQuery{}, false
	}

	if raw, ok := m.memo.Get(normalized); ok {
		return raw, true
	}

	for _, p := range patterns {
		for _, re := range p.regexes {
			match := re.FindStringSubmatch(normalized)
			if match == nil {
				continue
			}

			groups := make([]string, 0, len(match)-1)
			for _, g := range match[1:] {
				groups = append(groups, strings.TrimSpace(strings.Trim(g, `'"`)))
			}

			statement, ok := p.build(groups)
			if !ok {
				// The shape matched but the term did not resolve; let
				// lower-priority patterns or the model handle it.
				continue
			}

			m.logger.Info("pattern matched", "pattern", p.name)
			raw := query.RawQuery{Text: statement, Origin: query.OriginPattern}
			m.memo.Set(normalized, raw)
			return raw, true
		}
	}

	return query.RawQuery{}, false
}

// Suggestions returns example questions the catalog supports, used for
// remediation hints and the debug tooling.
func Suggestions() []string {
	return []string{
		"How many employees are there?",
		"Show me all staff members",
		"List all developers",
		"How many managers do we have?",
		"Find all engineers in the Data Platform department",
		"Count the executives",
		"Who is Sarah Chen?",
		"Who is on the Analytics team?",
		"Who does Michael Rodriguez report to?",
		"Who owns the data retention policy?",
		"Show the org chart",
		"Find senior engineers in Infrastructure",
		"List principal engineers",
	}
}

// Hints returns up to n suggested questions for error remediation.
func Hints(n int) []string {
	all := Suggestions()
	if n > len(all) {
		n = len(all)
	}
	return all[:n]
}
