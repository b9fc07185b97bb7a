// Package fitlog appends fit reports to plain-text log files.
//
// Each entry starts with a blank line and a heading, optionally followed by
// the run identifier, then the report text. Existing content is never
// rewritten, so one log accumulates reports across runs.
package fitlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Entry is one appended report.
type Entry struct {
	Heading string
	RunID   string
	Report  string
}

// String renders the entry as it is written to the log.
func (e Entry) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", e.Heading)
	if e.RunID != "" {
		fmt.Fprintf(&b, "run_id: %s\n", e.RunID)
	}
	b.WriteString(e.Report)
	if !strings.HasSuffix(e.Report, "\n") {
		b.WriteByte('\n')
	}
	return b.String()
}

// Append writes e to the end of the log at path, creating the file and its
// directory when needed.
func Append(path string, e Entry) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("fitlog: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("fitlog: %w", err)
	}
	if _, err := f.WriteString(e.String()); err != nil {
		f.Close()
		return fmt.Errorf("fitlog: write %s: %w", path, err)
	}
	return f.Close()
}
