// Package hos is a thin boundary over the host operating system primitives
// the shell needs: spawning programs with wired descriptors, pipes,
// redirection files, signals, waits, and the working directory.
//
// Every unsafe crossing into process or descriptor state happens here, so
// the core never touches the host directly and tests can substitute a fake
// (see hostest).
package hos

import (
	"io/fs"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"
)

// ErrNotFound is the error resulting if a path search failed to find an
// executable file.
var ErrNotFound = exec.ErrNotFound

// OS exposes the host primitives consumed by the shell core.
type OS interface {
	// Stdin returns the console input descriptor stages inherit by default.
	Stdin() *os.File

	// Stdout returns the console output descriptor stages inherit by default.
	Stdout() *os.File

	// Stderr returns the console error descriptor stages inherit by default.
	Stderr() *os.File

	// LookPath resolves a program name against PATH, with execvp semantics:
	// names containing a slash are tried directly.
	LookPath(name string) (string, error)

	// StartProcess runs the program at path with the given argv. files is
	// the descriptor wiring applied in the child before the program runs:
	// files[0] becomes standard input, files[1] standard output and
	// files[2] standard error. The parent keeps its own copies.
	StartProcess(path string, argv []string, files []*os.File) (Proc, error)

	// Pipe returns a connected pair of descriptors; data written to w is
	// read from r.
	Pipe() (r, w *os.File, err error)

	// OpenRead opens path read-only.
	OpenRead(path string) (*os.File, error)

	// OpenWrite opens path for writing, truncating or creating it.
	OpenWrite(path string) (*os.File, error)

	// Stat returns the FileInfo for path.
	Stat(path string) (fs.FileInfo, error)

	// Kill sends SIGTERM to the process with the given id.
	Kill(pid int) error

	// Getwd returns the current working directory.
	Getwd() (string, error)

	// Chdir changes the working directory.
	Chdir(dir string) error

	// Exit terminates the program with the given status code.
	Exit(code int)
}

// Proc is a handle to one launched pipeline stage.
type Proc interface {
	// Pid returns the operating system process id, or 0 for stages that ran
	// inside the shell.
	Pid() int

	// Wait blocks until the stage terminates and reaps it.
	Wait() error

	// Running reports, without blocking, whether the stage is still alive.
	// Once a stage has been reaped it permanently reports false.
	Running() bool
}

// New returns the OS implementation backed by the real host.
func New() OS {
	return &hostOS{}
}

type hostOS struct{}

var _ OS = (*hostOS)(nil)

func (*hostOS) Stdin() *os.File  { return os.Stdin }
func (*hostOS) Stdout() *os.File { return os.Stdout }
func (*hostOS) Stderr() *os.File { return os.Stderr }

func (*hostOS) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (*hostOS) StartProcess(path string, argv []string, files []*os.File) (Proc, error) {
	p, err := os.StartProcess(path, argv, &os.ProcAttr{Files: files})
	if err != nil {
		return nil, err
	}
	pid := p.Pid

	// The handle reaps through waitpid itself; release the runtime's copy so
	// the two never race over the same child.
	_ = p.Release()

	return &proc{pid: pid}, nil
}

func (*hostOS) Pipe() (*os.File, *os.File, error) {
	return os.Pipe()
}

func (*hostOS) OpenRead(path string) (*os.File, error) {
	return os.Open(path)
}

func (*hostOS) OpenWrite(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
}

func (*hostOS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

func (*hostOS) Kill(pid int) error {
	return unix.Kill(pid, unix.SIGTERM)
}

func (*hostOS) Getwd() (string, error) {
	return os.Getwd()
}

func (*hostOS) Chdir(dir string) error {
	return os.Chdir(dir)
}

func (*hostOS) Exit(code int) {
	os.Exit(code)
}
