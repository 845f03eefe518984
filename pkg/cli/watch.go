package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/confkit/confkit/pkg/console"
)

const debounceDelay = 300 * time.Millisecond

// WatchFiles revalidates the given files whenever they change. Write
// bursts are debounced so editors that write in several syscalls
// trigger one validation. Blocks until SIGINT or SIGTERM.
func WatchFiles(files []string, formatOverride string, maxErrors int) error {
	if len(files) == 0 {
		return fmt.Errorf("nothing to watch")
	}
	watched := make(map[string]struct{}, len(files))
	for i, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return err
		}
		if _, err := os.Stat(abs); err != nil {
			return fmt.Errorf("cannot watch %s: %w", file, err)
		}
		files[i] = abs
		watched[abs] = struct{}{}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// watch directories, not files: editors often replace the file,
	// and the watch dies with the old inode
	dirs := make(map[string]struct{})
	for _, file := range files {
		dirs[filepath.Dir(file)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	fmt.Println(console.FormatInfoMessage(fmt.Sprintf("watching %d file(s), Ctrl+C to stop", len(files))))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// initial pass
	runValidation(files, formatOverride, maxErrors)

	var debounceTimer *time.Timer
	modified := make(map[string]struct{})

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher channel closed")
			}
			name, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if _, ours := watched[name]; !ours {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			modified[name] = struct{}{}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				toCheck := make([]string, 0, len(modified))
				for file := range modified {
					toCheck = append(toCheck, file)
				}
				modified = make(map[string]struct{})
				runValidation(toCheck, formatOverride, maxErrors)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			fmt.Fprintln(os.Stderr, console.FormatWarningMessage(fmt.Sprintf("watcher error: %v", err)))

		case <-sigChan:
			fmt.Println(console.FormatInfoMessage("stopped"))
			return nil
		}
	}
}

func runValidation(files []string, formatOverride string, maxErrors int) {
	if len(files) == 0 {
		return
	}
	if err := ValidateFiles(files, formatOverride, maxErrors); err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
	}
}
