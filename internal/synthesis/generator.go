// Package synthesis turns a statement analysis into candidate parser code
// via a generative model, and repairs candidates that failed verification.
package synthesis

import (
	"context"
	"fmt"
	"strings"

	"parsegen/internal/analyzer"
	"parsegen/internal/logging"
)

// requiredImports are guaranteed to be present in every candidate,
// regardless of whether the model remembered them. "statement" is the
// sandboxed read API over the PDF; "strings" is needed by essentially every
// line-oriented parser the model writes.
var requiredImports = []string{"statement", "strings"}

// SynthesisError wraps a fault from the generative service. It is
// retryable: the controller counts it as a failed iteration rather than
// aborting the run.
type SynthesisError struct {
	TargetID string
	Err      error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis failed for %s: %v", e.TargetID, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// Generator produces candidate parser code for one target.
type Generator struct {
	client LLMClient
}

// NewGenerator creates a Generator backed by the given model client.
func NewGenerator(client LLMClient) *Generator {
	return &Generator{client: client}
}

const systemPrompt = `You are an expert Go programmer specializing in extracting
transaction tables from bank statement text.

Requirements:
1. Define exactly: func ParseStatement(pdfPath string) ([][]string, error)
2. The first returned row is the header and must match the expected columns exactly, in order
3. Every following row is one transaction, one cell per column
4. Represent missing numeric cells (e.g. an empty Debit or Credit) as "" - never "NaN", "null" or "None"
5. Read the document with the statement package:
     statement.Pages(pdfPath) returns ([]string, error), the plain text of each page
     statement.RowLines(pdfPath) returns ([]string, error), every visual text row across all pages
6. Handle multi-page statements: transactions continue across pages
7. Only import from: statement, strings, strconv, fmt, regexp, sort, time, unicode, errors, bytes
8. Use package main

Return ONLY the complete Go code, no explanations.`

// Generate builds a first-attempt candidate from the analysis alone.
func (g *Generator) Generate(ctx context.Context, a *analyzer.Analysis) (string, error) {
	timer := logging.StartTimer(logging.CategorySynthesis, "Generate")
	defer timer.Stop()

	logging.Synthesis("Generating parser for %s", a.TargetID)

	userPrompt := fmt.Sprintf(`%s

Write a complete Go parser that:
1. Reads the statement via the statement package
2. Extracts all transaction rows
3. Returns [][]string with the header row first, matching the expected schema exactly
4. Handles all edge cases (multi-page, missing values, continuation lines)

Write the complete parser code:`, a.Render())

	raw, err := g.client.CompleteWithSystem(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", &SynthesisError{TargetID: a.TargetID, Err: err}
	}

	code := postProcess(raw)
	logging.SynthesisDebug("Generated candidate: %d bytes", len(code))
	return code, nil
}

// Repair builds a corrected candidate from the previous attempt's code and
// failure report. The model is asked for a full rewrite, not a diff.
func (g *Generator) Repair(ctx context.Context, a *analyzer.Analysis, previousCode, previousError string) (string, error) {
	timer := logging.StartTimer(logging.CategorySynthesis, "Repair")
	defer timer.Stop()

	logging.Synthesis("Repairing parser for %s (previous error: %d bytes)", a.TargetID, len(previousError))

	userPrompt := fmt.Sprintf(`The previous attempt failed verification:
%s

Previous code:
`+"```go\n%s\n```"+`

Write IMPROVED code that fixes these issues. Rewrite the whole parser; do not produce a diff.

%s

Write the complete parser code:`, previousError, previousCode, a.Render())

	raw, err := g.client.CompleteWithSystem(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", &SynthesisError{TargetID: a.TargetID, Err: err}
	}

	code := postProcess(raw)
	logging.SynthesisDebug("Repaired candidate: %d bytes", len(code))
	return code, nil
}

// postProcess normalizes raw model output into loadable candidate code.
// This is deterministic repair, independent of the model's compliance.
func postProcess(raw string) string {
	code := extractCodeBlock(raw, "go")
	code = ensurePackageMain(code)
	code = ensureImports(code)
	return code
}

// extractCodeBlock extracts a code block from a markdown-style response.
func extractCodeBlock(text, lang string) string {
	patterns := []string{
		"```" + lang + "\n",
		"```" + lang + "\r\n",
		"```\n",
	}

	for _, pattern := range patterns {
		if idx := strings.Index(text, pattern); idx != -1 {
			start := idx + len(pattern)
			end := strings.Index(text[start:], "```")
			if end != -1 {
				return strings.TrimSpace(text[start : start+end])
			}
		}
	}

	// No code block found; the response may be raw code already
	return strings.TrimSpace(text)
}

// ensurePackageMain prepends the package clause if the model omitted it.
func ensurePackageMain(code string) string {
	if strings.Contains(code, "package main") {
		return code
	}
	return "package main\n\n" + code
}

// ensureImports prepends single-line import declarations for any required
// import the candidate is missing. Inserting extra import statements after
// the package clause is always legal, so this never breaks compliant code.
func ensureImports(code string) string {
	var missing []string
	for _, imp := range requiredImports {
		if !strings.Contains(code, `"`+imp+`"`) {
			missing = append(missing, fmt.Sprintf("import %q", imp))
		}
	}
	if len(missing) == 0 {
		return code
	}

	block := strings.Join(missing, "\n")
	idx := strings.Index(code, "package main")
	if idx == -1 {
		return block + "\n\n" + code
	}
	lineEnd := strings.Index(code[idx:], "\n")
	if lineEnd == -1 {
		return code + "\n\n" + block + "\n"
	}
	insertAt := idx + lineEnd + 1
	return code[:insertAt] + "\n" + block + "\n" + code[insertAt:]
}
