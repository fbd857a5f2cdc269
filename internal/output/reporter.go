// Package output writes progress reporting for generation runs. All writes go
// through an io.Writer so commands stay quiet by default and tests can
// capture what was printed.
package output

import (
	"fmt"
	"io"
)

// Reporter prints a compact progress log of a generation run.
type Reporter struct {
	out io.Writer
}

// NewReporter creates a Reporter writing to out. A nil writer discards
// everything.
func NewReporter(out io.Writer) *Reporter {
	if out == nil {
		out = io.Discard
	}
	return &Reporter{out: out}
}

// Section prints a titled section header.
func (r *Reporter) Section(title string) {
	fmt.Fprintf(r.out, "\n=== %s ===\n", title)
}

// Action prints the start of a multi-step action.
func (r *Reporter) Action(format string, args ...any) {
	fmt.Fprintf(r.out, format+"...\n", args...)
}

// Item prints one indented progress line.
func (r *Reporter) Item(format string, args ...any) {
	fmt.Fprintf(r.out, "  "+format+"\n", args...)
}

// Generated prints the path of a produced file.
func (r *Reporter) Generated(path string) {
	fmt.Fprintf(r.out, "  generated %s\n", path)
}

// Done prints the end of an action.
func (r *Reporter) Done() {
	fmt.Fprintln(r.out, "done")
}
