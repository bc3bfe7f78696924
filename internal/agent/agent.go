package agent

import (
	"context"
	"fmt"

	"parsegen/internal/analyzer"
	"parsegen/internal/logging"
	"parsegen/internal/verifier"
)

// Analyzer describes the statement analysis stage.
type Analyzer interface {
	Analyze(pdfPath, csvPath, targetID string) (*analyzer.Analysis, error)
}

// Synthesizer describes the code generation stage.
type Synthesizer interface {
	Generate(ctx context.Context, a *analyzer.Analysis) (string, error)
	Repair(ctx context.Context, a *analyzer.Analysis, previousCode, previousError string) (string, error)
}

// Verifier describes the execution and scoring stage.
type Verifier interface {
	Verify(ctx context.Context, code, pdfPath, csvPath string) (*verifier.Report, error)
}

// Reporter receives progress notifications as the run moves through its
// stages. The CLI renders them; tests pass a NopReporter.
type Reporter interface {
	Analyzing(st *State)
	Generating(st *State)
	Verifying(st *State)
	Repairing(st *State)
	Done(st *State)
}

// NopReporter discards all progress notifications.
type NopReporter struct{}

func (NopReporter) Analyzing(*State)  {}
func (NopReporter) Generating(*State) {}
func (NopReporter) Verifying(*State)  {}
func (NopReporter) Repairing(*State)  {}
func (NopReporter) Done(*State)       {}

// Agent runs the full workflow for one target.
type Agent struct {
	analyzer    Analyzer
	synthesizer Synthesizer
	verifier    Verifier
	reporter    Reporter
}

// New wires the workflow stages together.
func New(an Analyzer, syn Synthesizer, ver Verifier, rep Reporter) *Agent {
	if rep == nil {
		rep = NopReporter{}
	}
	return &Agent{analyzer: an, synthesizer: syn, verifier: ver, reporter: rep}
}

// Run executes analyze once, then loops generate, verify, decide until the
// candidate passes or the budget is exhausted. The returned state is final:
// Phase is Succeeded or Failed. A non-nil error is returned only for
// terminal faults (analysis failure, artifact persistence failure); a run
// that merely exhausts its budget returns the failed state and a nil error.
func (ag *Agent) Run(ctx context.Context, spec RunSpec) (*State, error) {
	st := NewState(spec)
	logging.Agent("Run started: target=%s budget=%d", spec.TargetID, st.MaxIterations)

	ag.reporter.Analyzing(st)
	analysis, err := ag.analyzer.Analyze(spec.PDFPath, spec.CSVPath, spec.TargetID)
	if err != nil {
		// Not retryable: the sample pair itself is unusable.
		st.Phase = PhaseFailed
		st.ErrorContext = err.Error()
		ag.reporter.Done(st)
		return st, err
	}
	st.Analysis = analysis

	for {
		st.Phase = PhaseGenerating
		ag.reporter.Generating(st)
		st.Report = nil

		code, err := ag.synthesize(ctx, st)
		if err != nil {
			st.ErrorContext = err.Error()
			logging.Agent("Attempt %d/%d: synthesis fault: %v", st.Iteration, st.MaxIterations, err)
		} else {
			st.CandidateCode = code

			st.Phase = PhaseVerifying
			ag.reporter.Verifying(st)

			report, verr := ag.verifier.Verify(ctx, code, spec.PDFPath, spec.CSVPath)
			if verr != nil {
				st.ErrorContext = verr.Error()
				logging.Agent("Attempt %d/%d: execution fault: %v", st.Iteration, st.MaxIterations, verr)
			} else {
				st.Report = report
				if report.Passed {
					st.ErrorContext = ""
				} else {
					st.ErrorContext = report.Render()
				}
				logging.Agent("Attempt %d/%d: passed=%v", st.Iteration, st.MaxIterations, report.Passed)
			}
		}

		switch Decide(st) {
		case StopSuccess:
			if err := persistArtifact(spec.ArtifactPath, st.CandidateCode); err != nil {
				st.Phase = PhaseFailed
				st.ErrorContext = err.Error()
				ag.reporter.Done(st)
				return st, err
			}
			st.Phase = PhaseSucceeded
			ag.reporter.Done(st)
			return st, nil

		case StopFailure:
			st.Phase = PhaseFailed
			if st.ErrorContext == "" {
				st.ErrorContext = fmt.Sprintf("no passing candidate within %d iterations", st.MaxIterations)
			}
			ag.reporter.Done(st)
			return st, nil

		case Retry:
			st.Phase = PhaseRepairing
			ag.reporter.Repairing(st)
			st.Iteration++
		}
	}
}

// synthesize picks first-attempt generation or feedback-driven repair.
// Repair uses only the immediately preceding attempt's code and error.
func (ag *Agent) synthesize(ctx context.Context, st *State) (string, error) {
	if st.Iteration > 1 && st.ErrorContext != "" {
		return ag.synthesizer.Repair(ctx, st.Analysis, st.CandidateCode, st.ErrorContext)
	}
	return ag.synthesizer.Generate(ctx, st.Analysis)
}
