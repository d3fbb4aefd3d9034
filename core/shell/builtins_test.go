package shell

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"rush/core/hos"
	"rush/core/hos/hostest"
)

func newEnv(t *testing.T) (*Env, *hostest.FakeOS, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	fake := hostest.New(t)
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	env := &Env{
		In:   strings.NewReader(""),
		Out:  out,
		Err:  errOut,
		OS:   fake,
		Exit: func(code int) {},
	}
	return env, fake, out, errOut
}

func TestBuiltinArity(t *testing.T) {
	cases := []struct {
		args    []string
		wantErr string
	}{
		{[]string{"cd"}, "cd: Expect 1 arguments, found 0\n"},
		{[]string{"cd", "/a", "/b"}, "cd: Expect 1 arguments, found 2\n"},
		{[]string{"exit", "0"}, "exit: Expect 0 arguments, found 1\n"},
		{[]string{"history", "-c"}, "history: Expect 0 arguments, found 1\n"},
		{[]string{"jobs", "-l"}, "jobs: Expect 0 arguments, found 1\n"},
		{[]string{"kill"}, "kill: Expect 1 arguments, found 0\n"},
		{[]string{"kill", "1", "2"}, "kill: Expect 1 arguments, found 2\n"},
		{[]string{"pwd", "-P"}, "pwd: Expect 0 arguments, found 1\n"},
	}

	for _, tc := range cases {
		t.Run(strings.Join(tc.args, " "), func(t *testing.T) {
			env, _, out, errOut := newEnv(t)
			cmd := &Command{tokens: tc.args}

			code := runBuiltin(cmd, env)

			assert.Equal(t, 1, code)
			assert.Equal(t, tc.wantErr, errOut.String())
			assert.Empty(t, out.String())
		})
	}
}

func TestCd(t *testing.T) {
	env, fake, out, errOut := newEnv(t)
	fake.AddDir("/elsewhere")

	code := Cd(env, []string{"cd", "/elsewhere"})

	assert.Equal(t, 0, code)
	assert.Empty(t, out.String())
	assert.Empty(t, errOut.String())
	wd, err := fake.Getwd()
	require.NoError(t, err)
	assert.Equal(t, "/elsewhere", wd)
}

func TestCdFailure(t *testing.T) {
	env, fake, _, errOut := newEnv(t)

	code := Cd(env, []string{"cd", "/nope"})

	assert.Equal(t, 1, code)
	assert.Equal(t, "cd: /nope: no such file or directory\n", errOut.String())
	wd, err := fake.Getwd()
	require.NoError(t, err)
	assert.Equal(t, "/", wd)
}

func TestPwd(t *testing.T) {
	env, fake, out, _ := newEnv(t)
	fake.AddDir("/elsewhere")
	require.NoError(t, fake.Chdir("/elsewhere"))

	code := Pwd(env, []string{"pwd"})

	assert.Equal(t, 0, code)
	assert.Equal(t, "/elsewhere\n", out.String())
}

func TestExit(t *testing.T) {
	env, _, _, _ := newEnv(t)
	var codes []int
	env.Exit = func(code int) { codes = append(codes, code) }

	code := Exit(env, []string{"exit"})

	assert.Equal(t, 0, code)
	assert.Equal(t, []int{0}, codes)
}

func TestHistoryGolden(t *testing.T) {
	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
		goldie.WithTestNameForDir(true),
	)

	// Alignment holds across index widths.
	wide := make([]string, 1000)
	for i := range wide {
		wide[i] = fmt.Sprintf("echo %d", i+1)
	}

	cases := map[string][]string{
		"empty": nil,
		"basic": {
			"ls -l /tmp",
			"cat notes.txt | sort > sorted.txt",
			"sleep 100 &",
			"cat a | | b",
		},
		"wide": wide,
	}

	for tn, history := range cases {
		t.Run(tn, func(t *testing.T) {
			env, _, out, errOut := newEnv(t)
			env.History = history

			code := History(env, []string{"history"})

			assert.Equal(t, 0, code)
			assert.Empty(t, errOut.String())
			g.Assert(t, tn, out.Bytes())
		})
	}
}

func TestJobsProbesUntilFirstLive(t *testing.T) {
	env, _, out, _ := newEnv(t)

	deadFirst := &hostest.StubProc{ID: 201}
	live := &hostest.StubProc{ID: 202, Live: true}
	unprobed := &hostest.StubProc{ID: 203, Live: true}
	env.Jobs = []Job{
		{Procs: []hos.Proc{deadFirst, live, unprobed}, Text: "sleep 100"},
		{Procs: []hos.Proc{&hostest.StubProc{ID: 204}}, Text: "finished job"},
	}

	code := Jobs(env, []string{"jobs"})

	assert.Equal(t, 0, code)
	assert.Equal(t, "sleep 100\n", out.String())
	assert.Equal(t, 1, deadFirst.Probes)
	assert.Equal(t, 1, live.Probes)
	assert.Equal(t, 0, unprobed.Probes)
}

func TestJobsSkipsFinishedAndEmptyJobs(t *testing.T) {
	env, _, out, _ := newEnv(t)
	env.Jobs = []Job{
		{Procs: []hos.Proc{&hostest.StubProc{ID: 301}}, Text: "all dead"},
		{Procs: nil, Text: "builtin job"},
		{Procs: []hos.Proc{&hostest.StubProc{ID: 302, Live: true}}, Text: "still going"},
	}

	code := Jobs(env, []string{"jobs"})

	assert.Equal(t, 0, code)
	assert.Equal(t, "still going\n", out.String())
}

func TestKill(t *testing.T) {
	env, fake, _, errOut := newEnv(t)

	code := Kill(env, []string{"kill", "4242"})

	assert.Equal(t, 0, code)
	assert.Empty(t, errOut.String())
	assert.Equal(t, []int{4242}, fake.Kills())
}

func TestKillRejectsNonInteger(t *testing.T) {
	env, fake, _, errOut := newEnv(t)

	code := Kill(env, []string{"kill", "12x"})

	assert.Equal(t, 1, code)
	assert.Equal(t, "kill: 12x isn't an integer\n", errOut.String())
	assert.Empty(t, fake.Kills())
}

func TestKillReportsOSFailure(t *testing.T) {
	env, fake, _, errOut := newEnv(t)
	fake.KillErr = unix.ESRCH

	code := Kill(env, []string{"kill", "4242"})

	assert.Equal(t, 1, code)
	assert.Equal(t, "kill: no such process\n", errOut.String())
}
