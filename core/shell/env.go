// Package shell implements the rush command interpreter: the line parser,
// the pipeline launcher and the read-eval loop, with per-session history
// and background job tracking.
package shell

import (
	"errors"
	"io"

	"rush/core/hos"
)

// Env is the world one builtin invocation sees: its wired standard streams,
// the primitive service, the session state it may read, and an Exit scoped
// to whoever runs it. A builtin run directly by the session gets the live
// state and a process-wide Exit; one run as a pipeline stage gets snapshots
// and an Exit that only ends the stage.
type Env struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	OS hos.OS

	History []string
	Jobs    []Job

	Exit func(code int)
}

// errCause unwraps err to its innermost error so diagnostics carry the bare
// OS message rather than repeating paths the caller already printed.
func errCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
