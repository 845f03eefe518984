// Package console renders diagnostics and status messages for the CLI.
// Styling is applied only when stdout is a terminal, so piped output
// stays byte-clean and IDE-parseable.
package console

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/confkit/confkit/pkg/diag"
)

var (
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5555"))

	warningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFB86C"))

	infoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8BE9FD"))

	filePathStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#BD93F9"))

	lineNumberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	contextLineStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F8F8F2"))

	codeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#50FA7B"))
)

// isTTY checks if stdout is a terminal
func isTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

// applyStyle conditionally applies styling based on TTY status
func applyStyle(style lipgloss.Style, text string) string {
	if isTTY() {
		return style.Render(text)
	}
	return text
}

// ToRelativePath converts an absolute path to a path relative to the
// current working directory, falling back to the input on any failure.
func ToRelativePath(path string) string {
	if !filepath.IsAbs(path) {
		return path
	}
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	relPath, err := filepath.Rel(wd, path)
	if err != nil {
		return path
	}
	return relPath
}

// FormatDiagnostic renders one classified diagnostic against its
// source text: an IDE-parseable "file:line:col: error: message" head,
// the offending line, and a caret run under the error span.
func FormatDiagnostic(file, content string, d diag.DetailedError) string {
	var output strings.Builder

	if file != "" {
		location := fmt.Sprintf("%s:%d:%d:", ToRelativePath(file), d.Line, d.Column)
		output.WriteString(applyStyle(filePathStyle, location))
		output.WriteString(" ")
	}
	output.WriteString(applyStyle(errorStyle, "error:"))
	output.WriteString(" ")
	output.WriteString(d.Message)
	if d.Code != "" {
		output.WriteString(" ")
		output.WriteString(applyStyle(codeStyle, "["+d.Code+"]"))
	}
	output.WriteString("\n")

	if d.Line > 0 && content != "" {
		output.WriteString(renderContext(content, d))
	}
	return output.String()
}

// FormatPositioned renders a strict-mode single error.
func FormatPositioned(file, content string, pe *diag.PositionedError) string {
	return FormatDiagnostic(file, content, diag.DetailedError{
		Message: pe.Message,
		Line:    pe.Line,
		Column:  pe.Column,
		Span:    pe.Span,
	})
}

// renderContext prints the error line with its number and a caret run
// as wide as the error span, clamped to the line end.
func renderContext(content string, d diag.DetailedError) string {
	lines := strings.Split(content, "\n")
	if d.Line > len(lines) {
		return ""
	}
	line := strings.TrimRight(lines[d.Line-1], "\r")

	var output strings.Builder
	lineNumStr := fmt.Sprintf("%d", d.Line)
	output.WriteString(applyStyle(lineNumberStyle, lineNumStr))
	output.WriteString(" | ")
	output.WriteString(applyStyle(contextLineStyle, line))
	output.WriteString("\n")

	if d.Column > 0 && d.Column <= len(line)+1 {
		width := d.Span.Len()
		if max := len(line) - d.Column + 1; width > max {
			width = max
		}
		if width < 1 {
			width = 1
		}
		output.WriteString(strings.Repeat(" ", len(lineNumStr)+3+d.Column-1))
		output.WriteString(applyStyle(errorStyle, strings.Repeat("^", width)))
		output.WriteString("\n")
	}
	return output.String()
}

// FormatSuccessMessage formats a success message with styling
func FormatSuccessMessage(message string) string {
	return applyStyle(successStyle, "✓ ") + message
}

// FormatErrorMessage formats a simple error message (for stderr output)
func FormatErrorMessage(message string) string {
	return applyStyle(errorStyle, "✗ ") + message
}

// FormatWarningMessage formats a warning message
func FormatWarningMessage(message string) string {
	return applyStyle(warningStyle, "⚠ ") + message
}

// FormatInfoMessage formats an informational message
func FormatInfoMessage(message string) string {
	return applyStyle(infoStyle, "ℹ ") + message
}

// Table rendering styles
var (
	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#BD93F9"))

	tableCellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8F8F2"))

	tableBorderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6272A4"))
)

// TableConfig represents a table to render
type TableConfig struct {
	Headers []string
	Rows    [][]string
	Title   string
}

// RenderTable renders a formatted table using lipgloss
func RenderTable(config TableConfig) string {
	if len(config.Headers) == 0 {
		return ""
	}

	var output strings.Builder
	if config.Title != "" {
		output.WriteString(applyStyle(successStyle, config.Title))
		output.WriteString("\n")
	}

	colWidths := make([]int, len(config.Headers))
	for i, header := range config.Headers {
		colWidths[i] = len(header)
	}
	for _, row := range config.Rows {
		for i, cell := range row {
			if i < len(colWidths) && len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}

	output.WriteString(renderTableRow(config.Headers, colWidths, tableHeaderStyle))
	output.WriteString("\n")

	separatorChars := make([]string, len(config.Headers))
	for i, width := range colWidths {
		separatorChars[i] = strings.Repeat("-", width)
	}
	output.WriteString(renderTableRow(separatorChars, colWidths, tableBorderStyle))
	output.WriteString("\n")

	for _, row := range config.Rows {
		output.WriteString(renderTableRow(row, colWidths, tableCellStyle))
		output.WriteString("\n")
	}
	return output.String()
}

// renderTableRow renders a single table row with proper spacing
func renderTableRow(cells []string, colWidths []int, style lipgloss.Style) string {
	var row strings.Builder
	for i, cell := range cells {
		if i < len(colWidths) {
			paddedCell := fmt.Sprintf("%-*s", colWidths[i], cell)
			row.WriteString(applyStyle(style, paddedCell))
			if i < len(cells)-1 {
				row.WriteString(applyStyle(tableBorderStyle, " | "))
			}
		}
	}
	return row.String()
}
