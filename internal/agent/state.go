// Package agent owns the generate, verify, repair workflow for one target:
// the mutable run state, the retry controller and the orchestrator that
// wires the analyzer, synthesizer and verifier together.
package agent

import (
	"parsegen/internal/analyzer"
	"parsegen/internal/verifier"
)

// Phase drives the workflow's single conditional branch.
type Phase int

const (
	PhaseAnalyzing Phase = iota
	PhaseGenerating
	PhaseVerifying
	PhaseRepairing
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseAnalyzing:
		return "analyzing"
	case PhaseGenerating:
		return "generating"
	case PhaseVerifying:
		return "verifying"
	case PhaseRepairing:
		return "repairing"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RunSpec identifies one target and its sample pair.
type RunSpec struct {
	TargetID      string
	PDFPath       string // sample statement
	CSVPath       string // ground-truth table
	ArtifactPath  string // where the accepted parser is persisted
	MaxIterations int    // retry budget, immutable for the run
}

// State is the single record threaded through every stage. It is created
// once per run and discarded at the end; only the artifact survives a
// successful run.
type State struct {
	RunSpec

	Analysis      *analyzer.Analysis
	CandidateCode string           // overwritten each attempt
	Report        *verifier.Report // most recent verification, nil after an execution fault
	ErrorContext  string           // failure summary of the most recent attempt only

	Iteration int // 1-based count of synthesis attempts
	Phase     Phase
}

// NewState initializes the run state for a target.
func NewState(spec RunSpec) *State {
	if spec.MaxIterations <= 0 {
		spec.MaxIterations = 3
	}
	return &State{
		RunSpec:   spec,
		Iteration: 1,
		Phase:     PhaseAnalyzing,
	}
}
