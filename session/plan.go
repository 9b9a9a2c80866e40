package session

import (
	"encoding/json"
	"strings"
)

// Tool names the analyze step may request, dispatched in declaration
// order.
const (
	ToolCustomQuery  = "custom_query"
	ToolSearch       = "search_database"
	ToolEcho         = "echo"
	ToolStoreMessage = "store_message"
)

// Response types the analyze step may declare.
const (
	ResponseDirect = "direct"
	ResponseSearch = "search"
	ResponseCustom = "custom"
	ResponseEcho   = "echo"
)

// Plan is the classification decided after the analyze step. Immutable
// for the remainder of the turn.
type Plan struct {
	Reasoning    string   `json:"reasoning"`
	Tools        []string `json:"tools"`
	ResponseType string   `json:"response_type"`
}

// toolAliases folds model-invented tool spellings onto the canonical
// names.
var toolAliases = map[string]string{
	"custom_query":       ToolCustomQuery,
	"query":              ToolCustomQuery,
	"search_database":    ToolSearch,
	"search":             ToolSearch,
	"echo":               ToolEcho,
	"pig_latin":          ToolEcho,
	"convert_pig_latin":  ToolEcho,
	"store_message":      ToolStoreMessage,
	"store":              ToolStoreMessage,
}

// decodePlan parses the analyze step's JSON payload into a Plan,
// coercing unknown tools out and unknown response types to echo. Fields
// beyond the three known ones are advisory and ignored.
func decodePlan(payload string) (Plan, error) {
	var plan Plan
	if err := json.Unmarshal([]byte(payload), &plan); err != nil {
		return Plan{}, err
	}

	tools := make([]string, 0, len(plan.Tools))
	seen := map[string]bool{}
	for _, tool := range plan.Tools {
		canonical, ok := toolAliases[strings.ToLower(strings.TrimSpace(tool))]
		if !ok || seen[canonical] {
			continue
		}
		seen[canonical] = true
		tools = append(tools, canonical)
	}
	plan.Tools = tools

	switch strings.ToLower(strings.TrimSpace(plan.ResponseType)) {
	case ResponseDirect:
		plan.ResponseType = ResponseDirect
	case ResponseSearch:
		plan.ResponseType = ResponseSearch
	case ResponseCustom:
		plan.ResponseType = ResponseCustom
	default:
		plan.ResponseType = ResponseEcho
	}
	return plan, nil
}

// defaultPlan is the degraded plan used when the analyze step fails or
// times out: echo the message locally and store it, so the session
// always produces some output.
func defaultPlan() Plan {
	return Plan{
		Reasoning:    "analysis unavailable, echoing locally",
		Tools:        []string{ToolEcho, ToolStoreMessage},
		ResponseType: ResponseEcho,
	}
}
