package shell

import (
	"io"
	"os"

	"github.com/abiosoft/readline"
	"github.com/mattn/go-isatty"
)

// Console is the line-oriented face of the shell: it shows the prompt and
// yields one input line at a time.
type Console interface {
	// SetPrompt changes the prompt written before each read.
	SetPrompt(prompt string)

	// ReadLine returns the next input line without its trailing newline.
	// It returns io.EOF once input is exhausted and readline.ErrInterrupt
	// for a line abandoned at the prompt.
	ReadLine() (string, error)

	io.Closer
}

// NewConsole builds the readline-backed console over the given streams.
// Line editing engages only when stdin is a terminal; piped input is read
// plainly.
func NewConsole(stdin io.ReadCloser, stdout, stderr io.Writer) (Console, error) {
	cfg := &readline.Config{
		Stdin:  readline.NewCancelableStdin(stdin),
		Stdout: stdout,
		Stderr: stderr,

		FuncIsTerminal: func() bool {
			return isTerminal(stdin)
		},
	}
	if err := cfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}
	return &readlineConsole{rl: rl}, nil
}

type readlineConsole struct {
	rl *readline.Instance
}

var _ Console = (*readlineConsole)(nil)

func (c *readlineConsole) SetPrompt(prompt string) {
	c.rl.SetPrompt(prompt)
}

func (c *readlineConsole) ReadLine() (string, error) {
	return c.rl.Readline()
}

func (c *readlineConsole) Close() error {
	return c.rl.Close()
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
