package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/npsmodel/projection/internal/domain"
)

// Formatter defines a pluggable output formatter that returns a byte slice.
// Implementations should be pure (no side effects besides deterministic formatting).
type Formatter interface {
	Format(result *domain.ProjectionResult) ([]byte, error)
	// Name returns a short identifier for logging / debugging.
	Name() string
}

// FormatterFunc adapter to allow ordinary functions to act as a Formatter.
type FormatterFunc struct {
	ID string
	F  func(*domain.ProjectionResult) ([]byte, error)
}

func (ff FormatterFunc) Format(r *domain.ProjectionResult) ([]byte, error) { return ff.F(r) }
func (ff FormatterFunc) Name() string                                      { return ff.ID }

// nowFunc stamps report file names (override in tests).
var nowFunc = time.Now

// WriteFormatted runs a formatter and writes output to a timestamped file in dir.
func WriteFormatted(f Formatter, result *domain.ProjectionResult, dir, ext string) (string, error) {
	data, err := f.Format(result)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	name := fmt.Sprintf("projection_%s_%s.%s", f.Name(), nowFunc().Format("20060102_150405"), ext)
	filename := filepath.Join(dir, name)
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return "", err
	}
	return filename, nil
}

// builtInFormatters stores available formatters.
var builtInFormatters = []Formatter{
	ConsoleVerboseFormatter{},
	CSVSummarizer{},
	CSVDetailedExporter{},
	ConsoleFormatter{},
	JSONFormatter{},
}

// GetFormatterByName fetches a registered formatter.
func GetFormatterByName(name string) Formatter {
	n := NormalizeFormatName(name)
	for _, f := range builtInFormatters {
		if f.Name() == name || f.Name() == n {
			return f
		}
	}
	return nil
}

// aliasMap provides user-friendly synonyms for format names.
var aliasMap = map[string]string{
	"console-verbose": "console",
	"verbose":         "console",
	"text":            "console-lite",
	"csv-detailed":    "detailed-csv",
	"demographic-csv": "detailed-csv",
	"csv-summary":     "csv",
	"financial-csv":   "csv",
	"json-pretty":     "json",
}

// NormalizeFormatName lowers and resolves aliases.
func NormalizeFormatName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if mapped, ok := aliasMap[n]; ok {
		return mapped
	}
	return n
}

// AvailableFormatterNames returns the canonical formatter names.
func AvailableFormatterNames() []string {
	names := make([]string, 0, len(builtInFormatters))
	for _, f := range builtInFormatters {
		names = append(names, f.Name())
	}
	sort.Strings(names)
	return names
}

// AvailableFormatAliases returns the supported alias keys.
func AvailableFormatAliases() []string {
	keys := make([]string, 0, len(aliasMap))
	for k := range aliasMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// extensionFor maps a canonical formatter name to a file extension.
func extensionFor(name string) string {
	switch {
	case strings.Contains(name, "csv"):
		return "csv"
	case name == "json":
		return "json"
	default:
		return "txt"
	}
}
