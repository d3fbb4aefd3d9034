package hos

import (
	"sync"

	"golang.org/x/sys/unix"
)

// proc is a handle to a real child process, reaped through waitpid. The
// shell both blocks on foreground stages and probes background ones, so the
// handle remembers once a child has been collected.
type proc struct {
	pid int

	mu   sync.Mutex
	done bool
}

var _ Proc = (*proc)(nil)

func (p *proc) Pid() int { return p.pid }

func (p *proc) Wait() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return nil
	}

	var status unix.WaitStatus
	for {
		wpid, err := unix.Wait4(p.pid, &status, 0, nil)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.ECHILD:
			// Collected elsewhere; nothing left to reap.
			p.done = true
			return nil
		case err != nil:
			return err
		case wpid == p.pid:
			p.done = true
			return nil
		}
	}
}

func (p *proc) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return false
	}

	var status unix.WaitStatus
	for {
		wpid, err := unix.Wait4(p.pid, &status, unix.WNOHANG, nil)
		switch {
		case err == unix.EINTR:
			continue
		case err != nil:
			// No child to probe; treat it as exited.
			p.done = true
			return false
		case wpid == 0:
			return true
		default:
			p.done = true
			return false
		}
	}
}
