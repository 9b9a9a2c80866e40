// Package prompt resolves named prompt templates and renders them with a
// bag of variables. Templates are static assets baked into the binary;
// rendering is deterministic and side-effect free.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/c360/graphgate/errors"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Template names recognized by the pipeline.
const (
	AnalyzeMessage      = "analyze_message"
	GenerateQuery       = "generate_query"
	GenerateQuerySimple = "generate_query_simple"
	FallbackQuery       = "fallback_query"
	FormatResults       = "format_results"
)

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Render resolves a template by name and renders it with vars. A missing
// template is a bug in the caller and reports as Internal.
func Render(name string, vars any) (string, error) {
	tmpl := templates.Lookup(name + ".tmpl")
	if tmpl == nil {
		return "", errors.WrapKind(errors.KindInternal,
			fmt.Errorf("%w: %s", errors.ErrPromptNotFound, name),
			"prompt", "Render", "template lookup")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", errors.WrapKind(errors.KindInternal, err, "prompt", "Render", "template execution")
	}
	return buf.String(), nil
}

// Names returns the known template names, for the debug CLI self-test.
func Names() []string {
	return []string{AnalyzeMessage, GenerateQuery, GenerateQuerySimple, FallbackQuery, FormatResults}
}
