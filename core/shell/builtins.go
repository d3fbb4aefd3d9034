package shell

import (
	"fmt"
	"strconv"
)

// AllBuiltins holds every registered shell builtin, keyed by name. The set
// is fixed at init time; names found here never reach the path search.
var AllBuiltins = make(map[string]Builtin)

type Builtin interface {
	Main(env *Env, args []string) int
}

type BuiltinFunc func(env *Env, args []string) int

func (f BuiltinFunc) Main(env *Env, args []string) int {
	return f(env, args)
}

var _ Builtin = (BuiltinFunc)(nil)

// runBuiltin dispatches cmd to its builtin. Callers gate on IsBuiltin.
func runBuiltin(cmd *Command, env *Env) int {
	b, ok := AllBuiltins[cmd.Name()]
	if !ok {
		return 1
	}
	return b.Main(env, cmd.Args())
}

// wantArgs checks a builtin's fixed argument count, reporting a mismatch
// on the error stream. Arity failures never abort anything beyond the one
// builtin invocation.
func wantArgs(env *Env, args []string, num int) bool {
	if len(args)-1 != num {
		fmt.Fprintf(env.Err, "%s: Expect %d arguments, found %d\n", args[0], num, len(args)-1)
		return false
	}
	return true
}

// Cd changes the working directory of whoever runs it: the session when
// invoked alone, a single stage when invoked inside a pipeline.
func Cd(env *Env, args []string) int {
	if !wantArgs(env, args, 1) {
		return 1
	}
	if err := env.OS.Chdir(args[1]); err != nil {
		fmt.Fprintf(env.Err, "cd: %s: %v\n", args[1], errCause(err))
		return 1
	}
	return 0
}

// Exit terminates the enclosing scope with status 0.
func Exit(env *Env, args []string) int {
	if !wantArgs(env, args, 0) {
		return 1
	}
	env.Exit(0)
	return 0
}

// History prints every recorded input line, oldest first, numbered from 1.
func History(env *Env, args []string) int {
	if !wantArgs(env, args, 0) {
		return 1
	}
	for i, line := range env.History {
		fmt.Fprintf(env.Out, "%5d  %s\n", i+1, line)
	}
	return 0
}

// Jobs prints the launch text of every job with at least one live stage.
// The scan stops probing a job at its first live process, so liveness is
// approximate for multi-stage jobs.
func Jobs(env *Env, args []string) int {
	if !wantArgs(env, args, 0) {
		return 1
	}
	for _, job := range env.Jobs {
		for _, p := range job.Procs {
			if p.Running() {
				fmt.Fprintln(env.Out, job.Text)
				break
			}
		}
	}
	return 0
}

// Kill sends the termination signal to a process by id.
func Kill(env *Env, args []string) int {
	if !wantArgs(env, args, 1) {
		return 1
	}
	pid, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintf(env.Err, "kill: %s isn't an integer\n", args[1])
		return 1
	}
	if err := env.OS.Kill(pid); err != nil {
		fmt.Fprintf(env.Err, "kill: %v\n", errCause(err))
		return 1
	}
	return 0
}

// Pwd prints the working directory.
func Pwd(env *Env, args []string) int {
	if !wantArgs(env, args, 0) {
		return 1
	}
	wd, err := env.OS.Getwd()
	if err != nil {
		fmt.Fprintf(env.Err, "pwd: %v\n", errCause(err))
		return 1
	}
	fmt.Fprintln(env.Out, wd)
	return 0
}

func init() {
	AllBuiltins["cd"] = BuiltinFunc(Cd)
	AllBuiltins["exit"] = BuiltinFunc(Exit)
	AllBuiltins["history"] = BuiltinFunc(History)
	AllBuiltins["jobs"] = BuiltinFunc(Jobs)
	AllBuiltins["kill"] = BuiltinFunc(Kill)
	AllBuiltins["pwd"] = BuiltinFunc(Pwd)
}
