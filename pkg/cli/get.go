package cli

import (
	"fmt"
	"os"

	"github.com/confkit/confkit/pkg/engine"
)

// GetValue prints the raw bytes of the value at path, exactly as they
// appear in the file.
func GetValue(file string, path []string, formatOverride string) error {
	format, err := resolveFormat(file, formatOverride)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	span, err := engine.FindValueSpan(format, string(content), path)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	fmt.Println(span.Slice(string(content)))
	return nil
}
