package shell

import (
	"fmt"
	"os"

	"rush/core/hos"
)

// Pipeline is the parsed form of one input line: the stages in order, the
// optional redirection paths bound to the first and last stage, and whether
// the line runs in the background.
type Pipeline struct {
	cmds       []*Command
	inFile     string
	outFile    string
	background bool
}

// Stages returns the number of commands in the pipeline.
func (p *Pipeline) Stages() int {
	return len(p.cmds)
}

// Background reports whether the line ended with &.
func (p *Pipeline) Background() bool {
	return p.background
}

// Execute launches every stage of the pipeline and returns one handle per
// launched stage, in pipeline order. It does not wait: the caller decides
// between waiting (foreground) and recording the handles (background).
//
// A single builtin runs directly in the session, mutating live state, with
// redirections ignored; that is what lets cd and exit act on the shell
// itself. Everything else becomes a child process, or a stage task when a
// builtin sits inside a multi-stage pipeline.
//
// Stages that fail to launch are skipped with a diagnostic; the rest of the
// pipeline still runs. Descriptor bookkeeping survives such failures: every
// pipe end is closed by the parent exactly once, right after the stage that
// consumes it has launched or been skipped. Readers of a skipped stage's
// pipe see end-of-stream and writers see a broken pipe.
func (p *Pipeline) Execute(s *Session) []hos.Proc {
	if len(p.cmds) == 0 {
		return nil
	}
	if len(p.cmds) == 1 && p.cmds[0].IsBuiltin() {
		runBuiltin(p.cmds[0], s.parentEnv())
		return nil
	}

	n := len(p.cmds)

	// All pipes exist before the first stage launches, exactly one pair per
	// adjacent stage boundary.
	pipes := make([]pipePair, n-1)
	for i := range pipes {
		r, w, err := s.os.Pipe()
		if err != nil {
			fmt.Fprintf(s.os.Stderr(), "I/O Error: pipe: %v\n", errCause(err))
			closePipes(pipes[:i])
			return nil
		}
		pipes[i] = pipePair{r: r, w: w}
	}

	procs := make([]hos.Proc, 0, n)
	for i, cmd := range p.cmds {
		var (
			stdin  = s.os.Stdin()
			stdout = s.os.Stdout()
			// Descriptors whose lifetime is bound to this stage: the pipe
			// ends it consumes plus any redirection files opened for it.
			owned []*os.File
		)
		failed := false

		if i > 0 {
			stdin = pipes[i-1].r
			owned = append(owned, pipes[i-1].r)
		} else if p.inFile != "" {
			f, err := s.os.OpenRead(p.inFile)
			if err != nil {
				fmt.Fprintf(s.os.Stderr(), "I/O Error: %s: %v\n", p.inFile, errCause(err))
				failed = true
			} else {
				stdin = f
				owned = append(owned, f)
			}
		}

		if i < n-1 {
			stdout = pipes[i].w
			owned = append(owned, pipes[i].w)
		} else if p.outFile != "" && !failed {
			f, err := s.os.OpenWrite(p.outFile)
			if err != nil {
				fmt.Fprintf(s.os.Stderr(), "I/O Error: %s: %v\n", p.outFile, errCause(err))
				failed = true
			} else {
				stdout = f
				owned = append(owned, f)
			}
		}

		switch {
		case failed:
			closeFiles(owned)
		case cmd.IsBuiltin():
			// The stage runs inside the shell. It takes the owned
			// descriptors with it and closes them when it finishes, which
			// is the moment downstream readers see end-of-stream.
			procs = append(procs, s.startTask(cmd, stdin, stdout, owned))
		default:
			proc, err := s.spawnStage(cmd, stdin, stdout)
			closeFiles(owned)
			if err != nil {
				fmt.Fprintf(s.os.Stderr(), "%s: %v\n", cmd.Name(), errCause(err))
			} else {
				procs = append(procs, proc)
			}
		}
	}
	return procs
}

// spawnStage resolves one external command and starts it with the given
// descriptor wiring. Standard error always stays on the console.
func (s *Session) spawnStage(cmd *Command, stdin, stdout *os.File) (hos.Proc, error) {
	path, err := s.os.LookPath(cmd.Name())
	if err != nil {
		return nil, err
	}
	return s.os.StartProcess(path, cmd.Args(), []*os.File{stdin, stdout, s.os.Stderr()})
}

type pipePair struct {
	r, w *os.File
}

func closePipes(pipes []pipePair) {
	for _, pp := range pipes {
		pp.r.Close()
		pp.w.Close()
	}
}

func closeFiles(files []*os.File) {
	for _, f := range files {
		f.Close()
	}
}
