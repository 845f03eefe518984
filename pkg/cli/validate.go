// Package cli implements the confkit commands. Commands read files,
// call the engine, and render results through pkg/console; cobra
// wiring lives in cmd/confkit.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/sourcegraph/conc/pool"

	"github.com/confkit/confkit/pkg/console"
	"github.com/confkit/confkit/pkg/diag"
	"github.com/confkit/confkit/pkg/engine"
)

// MaxConcurrentValidations bounds the worker pool for multi-file runs.
const MaxConcurrentValidations = 8

// ErrValidationFailed is returned when at least one file is invalid,
// so main can exit nonzero without double-printing diagnostics.
var ErrValidationFailed = errors.New("validation failed")

type fileResult struct {
	file   string
	result diag.MultiValidationResult
	err    error // read or format detection failure
}

// ValidateFiles validates each file and prints its diagnostics.
// formatOverride forces a format for every file; empty means detect
// from the filename. maxErrors <= 1 collects a single error per file.
func ValidateFiles(files []string, formatOverride string, maxErrors int) error {
	p := pool.NewWithResults[fileResult]().WithMaxGoroutines(MaxConcurrentValidations)
	for _, file := range files {
		p.Go(func() fileResult {
			return validateOne(file, formatOverride, maxErrors)
		})
	}
	results := p.Wait()

	// pool results arrive in completion order; report in input order
	byFile := make(map[string]fileResult, len(results))
	for _, r := range results {
		byFile[r.file] = r
	}

	failed := 0
	var rows [][]string
	for _, file := range files {
		r := byFile[file]
		switch {
		case r.err != nil:
			failed++
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(fmt.Sprintf("%s: %v", file, r.err)))
			rows = append(rows, []string{file, "error"})
		case r.result.Valid:
			fmt.Println(console.FormatSuccessMessage(file))
			rows = append(rows, []string{file, "ok"})
		default:
			failed++
			content := readForContext(file)
			for _, d := range r.result.Errors {
				fmt.Print(console.FormatDiagnostic(file, content, d))
			}
			rows = append(rows, []string{file, fmt.Sprintf("%d error(s)", len(r.result.Errors))})
		}
	}

	if len(files) > 1 {
		fmt.Print(console.RenderTable(console.TableConfig{
			Headers: []string{"FILE", "STATUS"},
			Rows:    rows,
		}))
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d file(s)", ErrValidationFailed, failed, len(files))
	}
	return nil
}

func validateOne(file, formatOverride string, maxErrors int) fileResult {
	format, err := resolveFormat(file, formatOverride)
	if err != nil {
		return fileResult{file: file, err: err}
	}
	content, err := os.ReadFile(file)
	if err != nil {
		return fileResult{file: file, err: err}
	}
	return fileResult{
		file:   file,
		result: engine.ValidateMulti(format, string(content), maxErrors),
	}
}

// resolveFormat applies the --format override or detects from the
// filename.
func resolveFormat(file, override string) (engine.Format, error) {
	if override != "" {
		switch f := engine.Format(override); f {
		case engine.JSON, engine.ENV, engine.XML, engine.YAML:
			return f, nil
		default:
			return "", fmt.Errorf("unknown format %q (want json, env, xml or yaml)", override)
		}
	}
	format, ok := engine.DetectFormat(file)
	if !ok {
		return "", fmt.Errorf("cannot detect format of %q, pass --format", file)
	}
	return format, nil
}

// readForContext re-reads a file for diagnostic rendering; on failure
// diagnostics print without source context.
func readForContext(file string) string {
	content, err := os.ReadFile(file)
	if err != nil {
		return ""
	}
	return string(content)
}
