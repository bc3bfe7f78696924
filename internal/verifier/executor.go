// Package verifier executes candidate parser code in isolation and scores
// its output against the expected transaction table.
package verifier

import (
	"context"
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"parsegen/internal/logging"
	"parsegen/internal/statement"
)

// EntryPoint is the function every candidate parser must define.
const EntryPoint = "ParseStatement"

// Candidates are interpreted with yaegi rather than compiled with go build.
// A fresh interpreter is created per attempt, so no bindings from a previous
// candidate can leak into the next one even though every candidate defines
// the same entry point name.

// ExecutionError wraps any fault while loading or running a candidate:
// parse failure, forbidden import, missing entry point, wrong signature,
// runtime panic. All of them are retryable.
type ExecutionError struct {
	Stage string // "validate", "load", "lookup", "run"
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("candidate execution failed (%s): %v", e.Stage, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Executor runs candidate parsers in a sandboxed interpreter.
type Executor struct {
	allowedImports map[string]bool
}

// NewExecutor creates an executor with the candidate import whitelist.
func NewExecutor() *Executor {
	return &Executor{
		allowedImports: map[string]bool{
			"statement": true, // sandboxed statement read API

			"strings": true,
			"strconv": true,
			"fmt":     true,
			"regexp":  true,
			"sort":    true,
			"time":    true,
			"unicode": true,
			"errors":  true,
			"bytes":   true,

			// Deliberately absent: os, os/exec, net, net/http, syscall,
			// unsafe, plugin. Candidates read the statement only through
			// the exposed API.
		},
	}
}

// Run loads candidate code into a fresh interpreter and invokes its entry
// point with the statement path. The returned rows have the header first.
func (e *Executor) Run(ctx context.Context, code, pdfPath string) ([][]string, error) {
	attemptID := uuid.NewString()
	logging.VerifierDebug("Executing candidate attempt=%s code=%d bytes", attemptID, len(code))

	if err := e.validateImports(code); err != nil {
		return nil, &ExecutionError{Stage: "validate", Err: err}
	}

	// Stage the candidate to disk for post-mortem inspection. The staging
	// directory is removed on every exit path.
	stageDir, err := os.MkdirTemp("", "parsegen-attempt-*")
	if err != nil {
		return nil, &ExecutionError{Stage: "load", Err: fmt.Errorf("stage candidate: %w", err)}
	}
	defer os.RemoveAll(stageDir)

	stagePath := filepath.Join(stageDir, "candidate_"+attemptID+".go")
	if err := os.WriteFile(stagePath, []byte(code), 0644); err != nil {
		return nil, &ExecutionError{Stage: "load", Err: fmt.Errorf("stage candidate: %w", err)}
	}

	// Fresh interpreter per attempt
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, &ExecutionError{Stage: "load", Err: fmt.Errorf("load stdlib: %w", err)}
	}
	if err := i.Use(statementSymbols()); err != nil {
		return nil, &ExecutionError{Stage: "load", Err: fmt.Errorf("load statement API: %w", err)}
	}

	if _, err := i.Eval(code); err != nil {
		return nil, &ExecutionError{Stage: "load", Err: err}
	}

	entry, err := i.Eval("main." + EntryPoint)
	if err != nil {
		return nil, &ExecutionError{Stage: "lookup", Err: fmt.Errorf("%s not found: %w", EntryPoint, err)}
	}

	parseFn, ok := entry.Interface().(func(string) ([][]string, error))
	if !ok {
		return nil, &ExecutionError{
			Stage: "lookup",
			Err:   fmt.Errorf("%s has wrong signature (want func(string) ([][]string, error))", EntryPoint),
		}
	}

	rowsChan := make(chan [][]string, 1)
	errChan := make(chan error, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				errChan <- fmt.Errorf("candidate panicked: %v", r)
			}
		}()
		rows, err := parseFn(pdfPath)
		if err != nil {
			errChan <- err
			return
		}
		rowsChan <- rows
	}()

	select {
	case rows := <-rowsChan:
		logging.VerifierDebug("Candidate attempt=%s returned %d rows", attemptID, len(rows))
		return rows, nil
	case err := <-errChan:
		return nil, &ExecutionError{Stage: "run", Err: err}
	case <-ctx.Done():
		return nil, &ExecutionError{Stage: "run", Err: fmt.Errorf("candidate execution timed out: %w", ctx.Err())}
	}
}

// validateImports rejects candidates importing outside the whitelist before
// any code runs.
func (e *Executor) validateImports(code string) error {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "candidate.go", code, parser.ImportsOnly)
	if err != nil {
		return fmt.Errorf("parse candidate: %w", err)
	}

	var forbidden []string
	for _, imp := range file.Imports {
		path := strings.Trim(imp.Path.Value, `"`)
		if !e.allowedImports[path] {
			forbidden = append(forbidden, path)
		}
	}
	if len(forbidden) > 0 {
		return fmt.Errorf("forbidden imports: %v", forbidden)
	}
	return nil
}

// statementSymbols exposes the statement read API to interpreted candidates
// as the importable "statement" package.
func statementSymbols() interp.Exports {
	return interp.Exports{
		"statement/statement": {
			"Pages":    reflect.ValueOf(statement.Pages),
			"RowLines": reflect.ValueOf(statement.RowLines),
		},
	}
}
