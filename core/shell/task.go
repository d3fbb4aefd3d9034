package shell

import (
	"io"
	"os"
	"path"
	"sync"

	"golang.org/x/sys/unix"

	"rush/core/hos"
)

// task runs one builtin as a pipeline stage without leaving the shell
// process. It stands in for the forked child a traditional shell would use:
// it sees point-in-time copies of the session state, its exit ends only the
// stage, its working directory is private, and it reports pid 0 so liveness
// probes treat it as finished once done.
type task struct {
	done chan struct{}
}

var _ hos.Proc = (*task)(nil)

func (t *task) Pid() int { return 0 }

func (t *task) Wait() error {
	<-t.done
	return nil
}

func (t *task) Running() bool {
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

// startTask launches cmd as an in-shell pipeline stage. The stage owns the
// given descriptors and closes them when it completes, at which point
// downstream readers of its pipe see end-of-stream.
func (s *Session) startTask(cmd *Command, in io.Reader, out io.Writer, owned []*os.File) hos.Proc {
	env := &Env{
		In:      in,
		Out:     out,
		Err:     s.os.Stderr(),
		OS:      newTaskOS(s.os),
		History: append([]string(nil), s.history...),
		Jobs:    append([]Job(nil), s.jobs...),
		Exit:    func(code int) {}, // scoped to the stage; returning ends it
	}
	t := &task{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		defer closeFiles(owned)
		runBuiltin(cmd, env)
	}()
	return t
}

// taskOS overlays a private working directory on the real service so a cd
// inside a pipeline behaves like it would in a forked child: validated
// against the host, visible to its own stage, invisible to the session.
type taskOS struct {
	hos.OS

	mu  sync.Mutex
	cwd string
}

func newTaskOS(base hos.OS) *taskOS {
	wd, err := base.Getwd()
	if err != nil {
		wd = "/"
	}
	return &taskOS{OS: base, cwd: wd}
}

func (t *taskOS) Getwd() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cwd, nil
}

func (t *taskOS) Chdir(dir string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !path.IsAbs(dir) {
		dir = path.Clean(path.Join(t.cwd, dir))
	}

	stat, err := t.OS.Stat(dir)
	switch {
	case err != nil:
		return err
	case !stat.IsDir():
		return &os.PathError{Op: "chdir", Path: dir, Err: unix.ENOTDIR}
	default:
		t.cwd = dir
		return nil
	}
}
