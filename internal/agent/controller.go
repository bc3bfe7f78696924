package agent

import (
	"fmt"
	"os"
	"path/filepath"

	"parsegen/internal/logging"
)

// Decision is the retry controller's verdict after one attempt.
type Decision int

const (
	// Retry loops back to synthesis with the latest error context.
	Retry Decision = iota
	// StopSuccess ends the run and persists the candidate.
	StopSuccess
	// StopFailure ends the run with the budget exhausted. Terminal; the
	// controller never silently retries past it.
	StopFailure
)

func (d Decision) String() string {
	switch d {
	case Retry:
		return "retry"
	case StopSuccess:
		return "stop_success"
	case StopFailure:
		return "stop_failure"
	default:
		return "unknown"
	}
}

// Decide is the controller's transition function. The attempt passed iff
// the latest report exists and passed; execution faults leave Report nil
// and are treated like any other failing attempt.
func Decide(st *State) Decision {
	if st.Report != nil && st.Report.Passed {
		return StopSuccess
	}
	if st.Iteration >= st.MaxIterations {
		logging.Agent("Budget exhausted for %s: %d/%d iterations", st.TargetID, st.Iteration, st.MaxIterations)
		return StopFailure
	}
	return Retry
}

// persistArtifact writes the accepted candidate atomically: a failing run
// must never leave a half-written or broken parser at the artifact path.
func persistArtifact(path, code string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".parser-*.go.tmp")
	if err != nil {
		return fmt.Errorf("stage artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(code); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write artifact: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish artifact: %w", err)
	}

	logging.Agent("Artifact persisted: %s (%d bytes)", path, len(code))
	return nil
}
