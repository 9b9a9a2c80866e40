package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360/graphgate/pattern"
	"github.com/c360/graphgate/query"
)

func newDebugCmd() *cobra.Command {
	debug := &cobra.Command{
		Use:   "debug",
		Short: "Inspect the query pipeline without a running gateway",
	}
	debug.AddCommand(newDebugQueryCmd())
	debug.AddCommand(newDebugValidateCmd())
	debug.AddCommand(newDebugPatternsCmd())
	return debug
}

// newDebugQueryCmd runs a question through the pattern matcher and the
// sanitize and validate stages, showing what the pipeline would execute.
func newDebugQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <question>",
		Short: "Match a question against the pattern catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))

			raw, ok := pattern.NewMatcher(logger).Match(question)
			if !ok {
				cmd.Println("no pattern match; this question would go to the model")
				return nil
			}

			processed := query.Sanitize(raw)
			report := query.Validate(processed.Text)

			cmd.Printf("origin:    %s\n", raw.Origin)
			cmd.Printf("statement: %s\n", processed.Text)
			printOutcome(cmd, processed, report)
			return nil
		},
	}
}

// newDebugValidateCmd runs a raw statement through sanitize and validate.
func newDebugValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <statement>",
		Short: "Sanitize and validate a statement",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := query.RawQuery{
				Text:   strings.Join(args, " "),
				Origin: query.OriginLLMPrimary,
			}

			processed := query.Sanitize(raw)
			report := query.Validate(processed.Text)

			cmd.Printf("statement: %s\n", processed.Text)
			printOutcome(cmd, processed, report)
			if !report.Valid() {
				return fmt.Errorf("statement rejected")
			}
			return nil
		},
	}
}

func newDebugPatternsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "List questions the pattern catalog answers without a model",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, suggestion := range pattern.Suggestions() {
				cmd.Println(suggestion)
			}
		},
	}
}

func printOutcome(cmd *cobra.Command, processed query.ProcessedQuery, report query.Report) {
	for _, fix := range processed.Fixes {
		cmd.Printf("fix:       %s\n", fix)
	}
	if report.Valid() {
		cmd.Println("valid:     yes")
		return
	}
	cmd.Println("valid:     no")
	for _, e := range report.Errors {
		cmd.Printf("error:     %s\n", e)
	}
}
