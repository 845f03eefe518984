package cli

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/confkit/confkit/pkg/console"
	"github.com/confkit/confkit/pkg/engine"
)

// SetValue replaces the value at path with newVal. The updated
// document goes to stdout unless write is set, in which case the file
// is rewritten in place with its permissions preserved. Only the
// value's bytes change either way.
func SetValue(file string, path []string, newVal, formatOverride string, write bool) error {
	format, err := resolveFormat(file, formatOverride)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	updated, err := engine.UpdateValue(format, string(content), path, newVal)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	if !write {
		fmt.Print(updated)
		return nil
	}
	perm := fs.FileMode(0o644)
	if info, err := os.Stat(file); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.WriteFile(file, []byte(updated), perm); err != nil {
		return err
	}
	fmt.Println(console.FormatSuccessMessage(fmt.Sprintf("updated %s", file)))
	return nil
}
