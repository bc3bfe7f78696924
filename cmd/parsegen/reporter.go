package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"parsegen/internal/agent"
)

var (
	bannerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4db6ac"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e53935"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#808a99"))
)

// consoleReporter renders run progress for a human watching the terminal.
type consoleReporter struct {
	out io.Writer
}

func newConsoleReporter(out io.Writer) *consoleReporter {
	return &consoleReporter{out: out}
}

// Banner prints the run header.
func (r *consoleReporter) Banner(spec agent.RunSpec) {
	rule := strings.Repeat("=", 64)
	fmt.Fprintln(r.out, mutedStyle.Render(rule))
	fmt.Fprintln(r.out, bannerStyle.Render("parsegen - bank statement parser generator"))
	fmt.Fprintf(r.out, "Target:         %s\n", strings.ToUpper(spec.TargetID))
	fmt.Fprintf(r.out, "Statement:      %s\n", spec.PDFPath)
	fmt.Fprintf(r.out, "Ground truth:   %s\n", spec.CSVPath)
	fmt.Fprintf(r.out, "Parser output:  %s\n", spec.ArtifactPath)
	fmt.Fprintf(r.out, "Max iterations: %d\n", spec.MaxIterations)
	fmt.Fprintln(r.out, mutedStyle.Render(rule))
}

func (r *consoleReporter) Analyzing(st *agent.State) {
	fmt.Fprintln(r.out, stepStyle.Render(fmt.Sprintf("[1/4] Analyzing statement structure for %s...", st.TargetID)))
}

func (r *consoleReporter) Generating(st *agent.State) {
	fmt.Fprintln(r.out, stepStyle.Render(fmt.Sprintf("[2/4] Generating parser code (attempt %d/%d)...", st.Iteration, st.MaxIterations)))
}

func (r *consoleReporter) Verifying(st *agent.State) {
	fmt.Fprintln(r.out, stepStyle.Render("[3/4] Verifying candidate parser..."))
}

func (r *consoleReporter) Repairing(st *agent.State) {
	fmt.Fprintln(r.out, stepStyle.Render("[4/4] Attempt failed, preparing retry with failure feedback..."))
	if st.ErrorContext != "" {
		fmt.Fprintln(r.out, mutedStyle.Render(indent(st.ErrorContext, "      ")))
	}
}

func (r *consoleReporter) Done(st *agent.State) {
	rule := strings.Repeat("=", 64)
	fmt.Fprintln(r.out, mutedStyle.Render(rule))
	if st.Phase == agent.PhaseSucceeded {
		fmt.Fprintln(r.out, successStyle.Render("SUCCESS - parser generated and verified"))
		fmt.Fprintf(r.out, "Parser saved to: %s\n", st.ArtifactPath)
		fmt.Fprintf(r.out, "Iterations used: %d\n", st.Iteration)
	} else {
		fmt.Fprintln(r.out, failStyle.Render("FAILED - no working parser produced"))
		if st.ErrorContext != "" {
			fmt.Fprintln(r.out, mutedStyle.Render(indent(st.ErrorContext, "  ")))
		}
	}
	fmt.Fprintln(r.out, mutedStyle.Render(rule))
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
