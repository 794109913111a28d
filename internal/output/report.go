package output

import (
	"errors"
	"fmt"
	"strings"

	"github.com/npsmodel/projection/internal/domain"
)

// ErrUnsupportedFormat is returned for format names no formatter handles.
var ErrUnsupportedFormat = errors.New("unsupported report format")

// allFormats are written by the "all" pseudo format.
var allFormats = []string{"console", "csv", "detailed-csv", "json"}

// GenerateReport writes result in the named format to dir and returns the
// written paths. "all" writes the verbose console report, both CSVs and JSON.
func GenerateReport(result *domain.ProjectionResult, format, dir string) ([]string, error) {
	name := NormalizeFormatName(format)
	if name == "all" {
		paths := make([]string, 0, len(allFormats))
		for _, n := range allFormats {
			p, err := WriteFormatted(GetFormatterByName(n), result, dir, extensionFor(n))
			if err != nil {
				return paths, err
			}
			paths = append(paths, p)
		}
		return paths, nil
	}
	f := GetFormatterByName(name)
	if f == nil {
		return nil, fmt.Errorf("%w: %q. Try one of: %s (aliases: %s)", ErrUnsupportedFormat, format,
			strings.Join(AvailableFormatterNames(), ", "), strings.Join(AvailableFormatAliases(), ", "))
	}
	p, err := WriteFormatted(f, result, dir, extensionFor(f.Name()))
	if err != nil {
		return nil, err
	}
	return []string{p}, nil
}
