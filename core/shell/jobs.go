package shell

import (
	"strings"

	"rush/core/hos"
)

// Job is one backgrounded pipeline: a handle per launched stage plus the
// normalized text it was launched with. The table is append-only; `jobs`
// probes the handles rather than pruning the table.
type Job struct {
	Procs []hos.Proc
	Text  string
}

// jobText normalizes a line for the job table: background markers dropped,
// whitespace collapsed to single spaces.
func jobText(line string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(line, "&", "")), " ")
}
