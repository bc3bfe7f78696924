// parsegen generates bank-statement parsers: it analyzes a sample statement
// PDF plus its expected transaction table, asks a generative model for
// parser code, verifies the candidate against the ground truth and repairs
// it from its own failure report, within a bounded retry budget.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"parsegen/internal/agent"
	"parsegen/internal/analyzer"
	"parsegen/internal/config"
	"parsegen/internal/logging"
	"parsegen/internal/synthesis"
	"parsegen/internal/verifier"
)

var (
	// Global flags
	verbose       bool
	target        string
	maxIterations int
	dataDir       string
	outDir        string

	// Logger
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "parsegen",
	Short: "parsegen - self-correcting bank statement parser generator",
	Long: `parsegen synthesizes a dedicated parser for one bank's statement layout.

Given a sample statement PDF and the table it should parse into
(data/<target>/*.pdf and data/<target>/result.csv), it generates candidate
parser code with a generative model, executes the candidate in a sandboxed
interpreter, compares the output cell by cell against the ground truth, and
feeds failures back into the next generation attempt until the parser passes
or the retry budget runs out.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapConfig := zap.NewProductionConfig()
		if verbose {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if cwd, err := os.Getwd(); err == nil {
			if lerr := logging.Initialize(cwd); lerr != nil {
				logger.Warn("file logging disabled", zap.Error(lerr))
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.Close()
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate and verify a parser for one target",
	Long: `Runs the full workflow for --target:
  1. Analyze the sample PDF and expected CSV
  2. Generate candidate parser code
  3. Execute the candidate and compare against the ground truth
  4. On failure, regenerate with the failure report, up to --max-iterations

The accepted parser is written to <out-dir>/<target>_parser.go only when
verification passes.`,
	RunE: runGenerate,
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Re-verify a previously generated parser",
	Long: `Loads <out-dir>/<target>_parser.go and runs it against the target's
sample pair again, printing the verification report. Useful to confirm an
accepted parser still passes.`,
	RunE: runVerify,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "data", "directory holding <target>/ sample pairs")
	rootCmd.PersistentFlags().StringVar(&outDir, "out-dir", "custom_parsers", "directory for accepted parsers")

	for _, cmd := range []*cobra.Command{generateCmd, verifyCmd} {
		cmd.Flags().StringVar(&target, "target", "", "target bank name (e.g. icici, sbi, hdfc)")
		_ = cmd.MarkFlagRequired("target")
	}
	generateCmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "maximum self-correction attempts (default from config, 3)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(verifyCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		logger.Warn("config load failed, using defaults", zap.Error(err))
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("no API key configured: set GEMINI_API_KEY or api_key in .parsegen/config.json")
	}

	budget := maxIterations
	if budget <= 0 {
		budget = cfg.MaxIterations
	}

	spec, err := buildRunSpec(strings.ToLower(target), budget)
	if err != nil {
		return err
	}

	logger.Info("starting generation run",
		zap.String("target", spec.TargetID),
		zap.String("pdf", spec.PDFPath),
		zap.String("csv", spec.CSVPath),
		zap.Int("max_iterations", spec.MaxIterations))

	client := synthesis.NewGeminiClientWithConfig(synthesis.GeminiConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	})

	reporter := newConsoleReporter(cmd.OutOrStdout())
	reporter.Banner(spec)

	ag := agent.New(analyzer.New(), synthesis.NewGenerator(client), verifier.New(), reporter)

	st, err := ag.Run(cmd.Context(), spec)
	if err != nil {
		return err
	}
	if st.Phase != agent.PhaseSucceeded {
		return fmt.Errorf("failed to generate a working parser: %s", st.ErrorContext)
	}
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	targetID := strings.ToLower(target)
	spec, err := buildRunSpec(targetID, 1)
	if err != nil {
		return err
	}

	code, err := os.ReadFile(spec.ArtifactPath)
	if err != nil {
		return fmt.Errorf("no parser artifact for %s: %w", targetID, err)
	}

	report, err := verifier.New().Verify(cmd.Context(), string(code), spec.PDFPath, spec.CSVPath)
	if err != nil {
		return fmt.Errorf("parser execution failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if report.Passed {
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("Parser %s passes: %d rows, %d columns",
			spec.ArtifactPath, report.ExpectedRows, len(report.ExpectedColumns))))
		return nil
	}
	fmt.Fprintln(out, failStyle.Render("Parser no longer passes:"))
	fmt.Fprintln(out, report.Render())
	return fmt.Errorf("verification failed: %s", report.Message)
}

// buildRunSpec locates the sample pair for a target and derives the
// artifact path. Missing inputs fail here, before any pipeline work.
func buildRunSpec(targetID string, budget int) (agent.RunSpec, error) {
	if targetID == "" {
		return agent.RunSpec{}, fmt.Errorf("target must not be empty")
	}

	targetDir := filepath.Join(dataDir, targetID)
	pdfPath, err := findStatementPDF(targetDir)
	if err != nil {
		return agent.RunSpec{}, err
	}

	csvPath := filepath.Join(targetDir, "result.csv")
	if _, err := os.Stat(csvPath); err != nil {
		return agent.RunSpec{}, fmt.Errorf("expected CSV not found at %s", csvPath)
	}

	return agent.RunSpec{
		TargetID:      targetID,
		PDFPath:       pdfPath,
		CSVPath:       csvPath,
		ArtifactPath:  filepath.Join(outDir, targetID+"_parser.go"),
		MaxIterations: budget,
	}, nil
}

// findStatementPDF returns the sample statement in a target directory.
// With several PDFs present the lexicographically first one is used, so
// runs are reproducible.
func findStatementPDF(targetDir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(targetDir, "*.pdf"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no PDF found in %s", targetDir)
	}
	sort.Strings(matches)
	return matches[0], nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, failStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
