package cli

import (
	"fmt"
	"os"

	"github.com/confkit/confkit/pkg/console"
	"github.com/confkit/confkit/pkg/diag"
	"github.com/confkit/confkit/pkg/schema"
	"github.com/confkit/confkit/pkg/textspan"
)

// SchemaOptions carries the schema command's flags.
type SchemaOptions struct {
	SchemaFile  string
	Draft       string
	MaxErrors   int
	NoPositions bool
}

// ValidateSchema validates a JSON document against a JSON Schema and
// prints each error with its source position.
func ValidateSchema(file string, opts SchemaOptions) error {
	schemaText, err := os.ReadFile(opts.SchemaFile)
	if err != nil {
		return fmt.Errorf("reading schema: %w", err)
	}
	content, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	sopts := schema.DefaultOptions()
	sopts.MaxErrors = opts.MaxErrors
	sopts.CollectPositions = !opts.NoPositions
	sopts.Draft = opts.Draft

	out := schema.ValidateInline(string(content), string(schemaText), sopts)
	if out.Valid {
		fmt.Println(console.FormatSuccessMessage(file))
		return nil
	}
	for _, e := range out.Errors {
		d := diag.DetailedError{Message: e.Message, Code: keywordTag(e)}
		if e.Position != nil {
			d.Line = e.Position.Line
			d.Column = e.Position.Column
			d.Span = textspan.NewSpan(e.Position.Start, e.Position.End)
		}
		fmt.Print(console.FormatDiagnostic(file, string(content), d))
	}
	return fmt.Errorf("%w: %d schema error(s)", ErrValidationFailed, len(out.Errors))
}

// keywordTag renders an error's keyword and instance pointer as the
// diagnostic code tag.
func keywordTag(e schema.ErrorDescriptor) string {
	if e.InstancePath == "" {
		return e.Keyword
	}
	return e.Keyword + " at " + e.InstancePath
}
