// Package engine is the host-facing surface: one entry point per
// operation, dispatching to the per-format packages. All edits are
// byte splices, so every byte outside the edited value survives a
// write untouched.
package engine

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/confkit/confkit/pkg/diag"
	"github.com/confkit/confkit/pkg/envtext"
	"github.com/confkit/confkit/pkg/jsontext"
	"github.com/confkit/confkit/pkg/textspan"
	"github.com/confkit/confkit/pkg/xmltext"
	"github.com/confkit/confkit/pkg/yamltext"
)

// Format identifies a supported file format.
type Format string

const (
	JSON Format = "json"
	ENV  Format = "env"
	XML  Format = "xml"
	YAML Format = "yaml"
)

// ErrUnsupportedFormat is wrapped by every operation handed a format
// it does not know.
var ErrUnsupportedFormat = errors.New("unsupported file type")

// DetectFormat maps a filename to its format. The empty Format and
// false mean the extension is not recognized.
func DetectFormat(filename string) (Format, bool) {
	base := filepath.Base(filename)
	if base == ".env" || strings.HasPrefix(base, ".env.") {
		return ENV, true
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".json":
		return JSON, true
	case ".env":
		return ENV, true
	case ".xml":
		return XML, true
	case ".yaml", ".yml":
		return YAML, true
	default:
		return "", false
	}
}

// ValidateSyntax checks content strictly and returns the first error,
// positioned when the format engine can attribute one.
func ValidateSyntax(format Format, content string) error {
	switch format {
	case JSON:
		return jsontext.ValidateSyntax(content)
	case ENV:
		return envtext.ValidateSyntax(content)
	case XML:
		return xmltext.ValidateSyntax(content)
	case YAML:
		return yamltext.ValidateSyntax(content)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// FindValueSpan resolves path to the byte span of the addressed value.
// Segment semantics are per format: JSON and YAML treat an all-digit
// segment without leading zeros as an array index, ENV takes exactly
// one key, XML takes element names with an optional trailing "@attr".
func FindValueSpan(format Format, content string, path []string) (textspan.Span, error) {
	switch format {
	case JSON:
		return jsontext.FindValueSpan(content, path)
	case ENV:
		return envtext.FindValueSpan(content, path)
	case XML:
		return xmltext.FindValueSpan(content, path)
	case YAML:
		return yamltext.FindValueSpan(content, path)
	default:
		return textspan.Span{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// UpdateValue replaces the value at path with newVal, formatted per
// the target format, and returns the whole updated document. The
// content must be valid before the edit; everything outside the
// value's span is preserved byte for byte.
func UpdateValue(format Format, content string, path []string, newVal string) (string, error) {
	if err := ValidateSyntax(format, content); err != nil {
		return "", fmt.Errorf("refusing to edit invalid document: %w", err)
	}
	span, err := FindValueSpan(format, content, path)
	if err != nil {
		return "", err
	}
	return textspan.Replace(content, span, formatValue(format, newVal)), nil
}

// formatValue renders newVal as the bytes to splice into the value span.
func formatValue(format Format, newVal string) string {
	switch format {
	case JSON:
		if jsontext.IsLiteral(newVal) {
			return newVal
		}
		return jsontext.Quote(newVal)
	case XML:
		return xmltext.Escape(newVal)
	case ENV:
		// a quoted value's span includes its quotes, so re-quoting
		// decides fresh from the new value
		if envtext.NeedsQuoting(newVal) {
			return envtext.Quote(newVal)
		}
		return newVal
	default: // YAML spans address the bare scalar
		return newVal
	}
}

// ValidateMulti runs lenient validation, collecting up to maxErrors
// classified diagnostics where the format engine supports it.
func ValidateMulti(format Format, content string, maxErrors int) diag.MultiValidationResult {
	switch format {
	case JSON:
		return jsontext.ValidateMulti(content, maxErrors)
	case ENV:
		return envtext.ValidateMulti(content)
	case XML:
		return xmltext.ValidateMulti(content, maxErrors)
	case YAML:
		return yamltext.ValidateMulti(content, maxErrors)
	default:
		return diag.Invalid(diag.DetailedError{
			Message: fmt.Sprintf("Unsupported file type: %s", format),
		}, nil)
	}
}
