// Package logging provides config-driven categorized file-based logging for parsegen.
// Logs are written to .parsegen/logs/ with a separate file per category.
// Logging is controlled by debug_mode in .parsegen/config.json - when false, no logs are written.
package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category represents a log category/system
type Category string

const (
	CategoryAgent     Category = "agent"     // Workflow orchestration, retry decisions
	CategoryAnalyzer  Category = "analyzer"  // Statement/CSV analysis
	CategorySynthesis Category = "synthesis" // Parser code generation
	CategoryVerifier  Category = "verifier"  // Candidate execution and comparison
	CategoryAPI       Category = "api"       // LLM API calls
)

// loggingConfig mirrors the relevant parts of config.LoggingConfig
// to avoid circular imports
type loggingConfig struct {
	DebugMode  bool            `json:"debug_mode"`
	Categories map[string]bool `json:"categories"`
	Level      string          `json:"level"`
}

// configFile structure for reading .parsegen/config.json
type configFile struct {
	Logging loggingConfig `json:"logging"`
}

// Logger wraps a standard logger with category and file output
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers      = make(map[Category]*Logger)
	loggersMu    sync.RWMutex
	logsDir      string
	workspace    string
	config       loggingConfig
	configLoaded bool
	configMu     sync.RWMutex
	logLevel     int
)

// Log levels
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Initialize sets up the logging directory and loads config.
// Should be called once at startup with the workspace path.
func Initialize(ws string) error {
	if ws == "" {
		return fmt.Errorf("workspace path required")
	}

	workspace = ws
	logsDir = filepath.Join(workspace, ".parsegen", "logs")

	if err := loadConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not load config: %v\n", err)
		config.DebugMode = false
	}

	// Only create logs directory if debug mode is enabled
	if !config.DebugMode {
		return nil // Silent no-op in production mode
	}

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	agentLogger := Get(CategoryAgent)
	agentLogger.Info("=== parsegen logging initialized ===")
	agentLogger.Info("Workspace: %s", workspace)
	agentLogger.Info("Log level: %s", config.Level)

	return nil
}

// loadConfig reads the logging section of .parsegen/config.json.
func loadConfig() error {
	configMu.Lock()
	defer configMu.Unlock()

	path := filepath.Join(workspace, ".parsegen", "config.json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		config = loggingConfig{}
		configLoaded = true
		return nil
	}
	if err != nil {
		return err
	}

	var cf configFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return fmt.Errorf("invalid config file: %w", err)
	}

	config = cf.Logging
	configLoaded = true

	switch config.Level {
	case "debug":
		logLevel = LevelDebug
	case "warn":
		logLevel = LevelWarn
	case "error":
		logLevel = LevelError
	default:
		logLevel = LevelInfo
	}
	return nil
}

// enabled reports whether a category should emit logs at all.
func enabled(cat Category) bool {
	configMu.RLock()
	defer configMu.RUnlock()

	if !config.DebugMode {
		return false
	}
	if len(config.Categories) == 0 {
		return true // All categories on by default in debug mode
	}
	on, present := config.Categories[string(cat)]
	return !present || on
}

// Get returns the logger for a category, creating it on first use.
func Get(cat Category) *Logger {
	loggersMu.RLock()
	if l, ok := loggers[cat]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[cat]; ok {
		return l
	}

	l := &Logger{category: cat}
	if enabled(cat) && logsDir != "" {
		path := filepath.Join(logsDir, string(cat)+".log")
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
			l.file = f
			l.logger = log.New(f, "", 0)
		}
	}
	loggers[cat] = l
	return l
}

func (l *Logger) write(level int, levelName, format string, args ...interface{}) {
	if l.logger == nil || !enabled(l.category) || level < logLevel {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05.000")
	l.logger.Printf("%s [%s] %s", ts, levelName, fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.write(LevelDebug, "DEBUG", format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.write(LevelInfo, "INFO", format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.write(LevelWarn, "WARN", format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.write(LevelError, "ERROR", format, args...)
}

// Close closes all open log files.
func Close() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
			l.file = nil
			l.logger = nil
		}
	}
	loggers = make(map[Category]*Logger)
}

// Convenience helpers, one pair per category.

func Agent(format string, args ...interface{})          { Get(CategoryAgent).Info(format, args...) }
func AgentDebug(format string, args ...interface{})     { Get(CategoryAgent).Debug(format, args...) }
func Analyzer(format string, args ...interface{})       { Get(CategoryAnalyzer).Info(format, args...) }
func AnalyzerDebug(format string, args ...interface{})  { Get(CategoryAnalyzer).Debug(format, args...) }
func Synthesis(format string, args ...interface{})      { Get(CategorySynthesis).Info(format, args...) }
func SynthesisDebug(format string, args ...interface{}) { Get(CategorySynthesis).Debug(format, args...) }
func Verifier(format string, args ...interface{})       { Get(CategoryVerifier).Info(format, args...) }
func VerifierDebug(format string, args ...interface{})  { Get(CategoryVerifier).Debug(format, args...) }
func API(format string, args ...interface{})            { Get(CategoryAPI).Info(format, args...) }
func APIDebug(format string, args ...interface{})       { Get(CategoryAPI).Debug(format, args...) }

// Timer measures the duration of an operation and logs it on Stop.
type Timer struct {
	category Category
	name     string
	start    time.Time
}

// StartTimer begins timing an operation.
func StartTimer(cat Category, name string) *Timer {
	return &Timer{category: cat, name: name, start: time.Now()}
}

// Stop logs the elapsed time.
func (t *Timer) Stop() {
	Get(t.category).Debug("%s took %v", t.name, time.Since(t.start))
}
