package shell

import (
	"fmt"
	"io"
	"strings"

	"github.com/abiosoft/readline"
	"go.uber.org/zap"

	"rush/core/config"
	"rush/core/hos"
)

// Session is the shell's read-eval loop and the state that survives it: the
// command history and the background job table, both append-only for the
// session's life. The loop is single-threaded; pipeline stages run as child
// processes or short-lived in-shell tasks that only ever see snapshots.
type Session struct {
	os      hos.OS
	console Console
	log     *zap.Logger
	prompt  string

	history []string
	jobs    []Job
}

// New assembles a session. A nil config means stock settings; a nil logger
// disables event logging.
func New(osys hos.OS, console Console, cfg *config.Config, log *zap.Logger) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{
		os:      osys,
		console: console,
		log:     log,
		prompt:  cfg.RenderPrompt(),
	}
}

// Run drives the loop until exit, end of input, or a console failure. With
// the real primitive service it never returns; the fake service used in
// tests records the exit instead of terminating.
func (s *Session) Run() {
	s.console.SetPrompt(s.prompt)
	s.log.Info("session started")

	for {
		line, err := s.console.ReadLine()
		switch {
		case err == io.EOF:
			s.log.Info("session ended", zap.String("reason", "end of input"))
			s.os.Exit(0)
			return

		case err == readline.ErrInterrupt:
			continue // line abandoned at the prompt

		case err != nil:
			fmt.Fprintf(s.os.Stderr(), "I/O Error: %v\n", err)
			s.log.Error("console failure", zap.Error(err))
			s.os.Exit(1)
			return

		default:
			s.eval(line)
		}
	}
}

// eval takes one line through parse, execute and wait-or-record, then
// appends it to history. Parse failures are recorded too; only lines
// rejected for NUL bytes are not.
func (s *Session) eval(line string) {
	if strings.ContainsRune(line, 0) {
		fmt.Fprintln(s.os.Stderr(), "nul byte found in the input")
		s.log.Warn("nul byte in input")
		return
	}

	pipeline, err := Parse(line)
	if err != nil {
		fmt.Fprintf(s.os.Stderr(), "Parsing Error: %v\n", err)
		s.log.Warn("parse failure", zap.String("line", line), zap.Error(err))
	} else {
		procs := pipeline.Execute(s)
		if pipeline.Background() {
			job := Job{Procs: procs, Text: jobText(line)}
			s.jobs = append(s.jobs, job)
			s.log.Info("job recorded",
				zap.String("text", job.Text),
				zap.Int("stages", len(procs)))
		} else {
			for _, p := range procs {
				p.Wait()
			}
			s.log.Info("line executed",
				zap.Int("stages", pipeline.Stages()),
				zap.Int("launched", len(procs)))
		}
	}

	s.history = append(s.history, line)
}

// parentEnv is the environment for a builtin run directly by the session:
// live state, console streams, process-wide exit.
func (s *Session) parentEnv() *Env {
	return &Env{
		In:      s.os.Stdin(),
		Out:     s.os.Stdout(),
		Err:     s.os.Stderr(),
		OS:      s.os,
		History: s.history,
		Jobs:    s.jobs,
		Exit:    s.os.Exit,
	}
}

// History returns a copy of the recorded input lines, oldest first.
func (s *Session) History() []string {
	return append([]string(nil), s.history...)
}

// Jobs returns a copy of the background job table in launch order.
func (s *Session) Jobs() []Job {
	return append([]Job(nil), s.jobs...)
}
