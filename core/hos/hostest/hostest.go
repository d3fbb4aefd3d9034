// Package hostest provides a scripted, hermetic implementation of hos.OS
// for tests. Programs are Go functions run on goroutines against duplicated
// descriptors, mirroring how a forked child keeps its own copies, the
// working directory is virtual, and every descriptor handed to the shell is
// tracked so tests can assert none leak.
package hostest

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"rush/core/hos"
)

// ProgramFunc is the body of a scripted external program. It runs with its
// own copies of the wired descriptors and returns the exit code.
type ProgramFunc func(stdin io.Reader, stdout, stderr io.Writer, argv []string) int

// Spawn records one StartProcess call.
type Spawn struct {
	Path string
	Argv []string
	Pid  int
}

// FakeOS implements hos.OS without touching real processes. Console
// standard streams are backed by temp files so output can be inspected
// after a run. Redirection and pipe descriptors are real, letting the
// close discipline under test carry real end-of-stream semantics.
type FakeOS struct {
	// Programs maps program names to their scripted bodies. LookPath
	// resolves exactly these names.
	Programs map[string]ProgramFunc

	// KillErr, when set, is returned by Kill instead of recording the pid.
	KillErr error

	stdin  *os.File
	stdout *os.File
	stderr *os.File

	mu      sync.Mutex
	cwd     string
	dirs    map[string]bool
	nextPid int
	pipeSeq int
	spawns  []Spawn
	kills   []int
	exits   []int
	tracked []trackedFile
}

type trackedFile struct {
	file *os.File
	name string
}

var _ hos.OS = (*FakeOS)(nil)

// New returns a FakeOS rooted at a virtual "/" with console streams backed
// by files under t.TempDir().
func New(t *testing.T) *FakeOS {
	t.Helper()

	dir := t.TempDir()
	open := func(name string) *os.File {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("creating console %s: %v", name, err)
		}
		t.Cleanup(func() { f.Close() })
		return f
	}

	return &FakeOS{
		Programs: make(map[string]ProgramFunc),
		stdin:    open("stdin"),
		stdout:   open("stdout"),
		stderr:   open("stderr"),
		cwd:      "/",
		dirs:     map[string]bool{"/": true},
		nextPid:  100,
	}
}

func (f *FakeOS) Stdin() *os.File  { return f.stdin }
func (f *FakeOS) Stdout() *os.File { return f.stdout }
func (f *FakeOS) Stderr() *os.File { return f.stderr }

func (f *FakeOS) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Programs[name]; ok {
		return path.Join("/bin", name), nil
	}
	return "", &exec.Error{Name: name, Err: hos.ErrNotFound}
}

func (f *FakeOS) StartProcess(path string, argv []string, files []*os.File) (hos.Proc, error) {
	f.mu.Lock()
	prog, ok := f.Programs[filepath.Base(path)]
	if !ok {
		f.mu.Unlock()
		return nil, &os.PathError{Op: "fork/exec", Path: path, Err: unix.ENOENT}
	}

	// The child gets duplicates, exactly like fork. Closing the parent's
	// copies afterwards must not cut the program off.
	dups := make([]*os.File, len(files))
	for i, file := range files {
		d, err := dupFile(file)
		if err != nil {
			f.mu.Unlock()
			closeAll(dups[:i])
			return nil, err
		}
		dups[i] = d
	}

	f.nextPid++
	p := &fakeProc{pid: f.nextPid, done: make(chan struct{})}
	f.spawns = append(f.spawns, Spawn{
		Path: path,
		Argv: append([]string(nil), argv...),
		Pid:  p.pid,
	})
	f.mu.Unlock()

	go func() {
		defer close(p.done)
		defer closeAll(dups)
		p.code = prog(dups[0], dups[1], dups[2], argv)
	}()
	return p, nil
}

func (f *FakeOS) Pipe() (*os.File, *os.File, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, nil, err
	}
	f.mu.Lock()
	f.pipeSeq++
	seq := f.pipeSeq
	f.mu.Unlock()
	f.track(r, fmt.Sprintf("pipe[%d] read end", seq))
	f.track(w, fmt.Sprintf("pipe[%d] write end", seq))
	return r, w, nil
}

// OpenRead opens a real file; tests pass absolute temp paths.
func (f *FakeOS) OpenRead(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	f.track(file, path)
	return file, nil
}

func (f *FakeOS) OpenWrite(path string) (*os.File, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	f.track(file, path)
	return file, nil
}

func (f *FakeOS) Stat(name string) (fs.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	clean := path.Clean(name)
	if f.dirs[clean] {
		return dirInfo(clean), nil
	}
	return nil, &os.PathError{Op: "stat", Path: name, Err: unix.ENOENT}
}

func (f *FakeOS) Kill(pid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.KillErr != nil {
		return f.KillErr
	}
	f.kills = append(f.kills, pid)
	return nil
}

func (f *FakeOS) Getwd() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cwd, nil
}

func (f *FakeOS) Chdir(dir string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !path.IsAbs(dir) {
		dir = path.Join(f.cwd, dir)
	}
	dir = path.Clean(dir)
	if !f.dirs[dir] {
		return &os.PathError{Op: "chdir", Path: dir, Err: unix.ENOENT}
	}
	f.cwd = dir
	return nil
}

func (f *FakeOS) Exit(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exits = append(f.exits, code)
}

// AddDir makes an absolute path a valid Chdir target.
func (f *FakeOS) AddDir(dir string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dirs[path.Clean(dir)] = true
}

// Spawns returns every StartProcess call in launch order.
func (f *FakeOS) Spawns() []Spawn {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Spawn(nil), f.spawns...)
}

// Kills returns the pids passed to Kill.
func (f *FakeOS) Kills() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.kills...)
}

// ExitCodes returns the codes passed to Exit.
func (f *FakeOS) ExitCodes() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.exits...)
}

// Output returns everything written to the console's standard output.
func (f *FakeOS) Output(t *testing.T) string {
	t.Helper()
	return readBack(t, f.stdout)
}

// ErrOutput returns everything written to the console's standard error.
func (f *FakeOS) ErrOutput(t *testing.T) string {
	t.Helper()
	return readBack(t, f.stderr)
}

// CheckDescriptors fails the test if any pipe or redirection descriptor
// handed to the shell is still open.
func (f *FakeOS) CheckDescriptors(t *testing.T) {
	t.Helper()
	for _, name := range f.leakedDescriptors() {
		t.Errorf("descriptor leaked: %s", name)
	}
}

// leakedDescriptors returns the names of tracked descriptors that are
// still open. Stat on a closed *os.File fails, so a nil error means the
// descriptor was never closed.
func (f *FakeOS) leakedDescriptors() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var leaked []string
	for _, tf := range f.tracked {
		if _, err := tf.file.Stat(); err == nil {
			leaked = append(leaked, tf.name)
		}
	}
	return leaked
}

func (f *FakeOS) track(file *os.File, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tracked = append(f.tracked, trackedFile{file: file, name: name})
}

func readBack(t *testing.T, f *os.File) string {
	t.Helper()
	contents, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatalf("reading console file back: %v", err)
	}
	return string(contents)
}

func dupFile(f *os.File) (*os.File, error) {
	fd, err := unix.Dup(int(f.Fd()))
	if err != nil {
		return nil, err
	}
	return os.NewFile(uintptr(fd), f.Name()), nil
}

func closeAll(files []*os.File) {
	for _, f := range files {
		if f != nil {
			f.Close()
		}
	}
}

// Hang returns a program that blocks until release is closed, for
// exercising liveness probes and background jobs.
func Hang(release <-chan struct{}) ProgramFunc {
	return func(stdin io.Reader, stdout, stderr io.Writer, argv []string) int {
		<-release
		return 0
	}
}

// Echo returns a program that writes text to its standard output.
func Echo(text string) ProgramFunc {
	return func(stdin io.Reader, stdout, stderr io.Writer, argv []string) int {
		io.WriteString(stdout, text)
		return 0
	}
}

// Pass copies standard input to standard output until end of stream, like
// a bare cat.
func Pass(stdin io.Reader, stdout, stderr io.Writer, argv []string) int {
	io.Copy(stdout, stdin)
	return 0
}

// dirInfo is the FileInfo for a virtual directory.
type dirInfo string

func (d dirInfo) Name() string       { return path.Base(string(d)) }
func (d dirInfo) Size() int64        { return 0 }
func (d dirInfo) Mode() fs.FileMode  { return fs.ModeDir | 0755 }
func (d dirInfo) ModTime() time.Time { return time.Time{} }
func (d dirInfo) IsDir() bool        { return true }
func (d dirInfo) Sys() interface{}   { return nil }

// fakeProc is the handle for a scripted program.
type fakeProc struct {
	pid  int
	code int
	done chan struct{}
}

var _ hos.Proc = (*fakeProc)(nil)

func (p *fakeProc) Pid() int { return p.pid }

func (p *fakeProc) Wait() error {
	<-p.done
	return nil
}

func (p *fakeProc) Running() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// StubProc is a hand-driven hos.Proc for tests that assemble job tables
// directly. Probes are counted so tests can assert how far a scan went.
type StubProc struct {
	ID     int
	Live   bool
	Probes int
}

var _ hos.Proc = (*StubProc)(nil)

func (p *StubProc) Pid() int { return p.ID }

func (p *StubProc) Wait() error {
	p.Live = false
	return nil
}

func (p *StubProc) Running() bool {
	p.Probes++
	return p.Live
}
