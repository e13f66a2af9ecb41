package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	err      error

	calls    []string
	LastArgs []string
}

func (f *fakeExec) record(name string, args ...string) error {
	f.calls = append(f.calls, name)
	f.LastArgs = args
	return f.err
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) Status(context.Context) error  { return f.record("status") }
func (f *fakeExec) Whoami(context.Context) error  { return f.record("whoami") }
func (f *fakeExec) Profile(context.Context) error { return f.record("profile") }
func (f *fakeExec) Passwd(context.Context) error  { return f.record("passwd") }
func (f *fakeExec) Settings(_ context.Context, args []string) error {
	return f.record("settings", args...)
}
func (f *fakeExec) Get(_ context.Context, args []string) error { return f.record("get", args...) }
func (f *fakeExec) Ping(context.Context) error                 { return f.record("ping") }
func (f *fakeExec) Health(_ context.Context, args []string) error {
	return f.record("health", args...)
}
func (f *fakeExec) Sweep(context.Context) error { return f.record("sweep") }

func TestRunREPL_Dispatch(t *testing.T) {
	f := &fakeExec{}
	var out bytes.Buffer

	input := "help\nlogin\nhelp\n\nwhoami\nprofile\npasswd\nsettings set theme dark\nget reports\nping\nhealth dashboard\nsweep\nstatus\nfrobnicate\nlogout\nexit\nwhoami\n"
	runREPL(context.Background(), f, func() string { return "(me)" }, rdr(input), &out)

	assert.Equal(t, []string{"login", "whoami", "profile", "passwd", "settings", "get", "ping", "health", "sweep", "status", "logout"}, f.calls)
	assert.Contains(t, out.String(), helpSignedOut)
	assert.Contains(t, out.String(), helpSignedIn)
	assert.Contains(t, out.String(), "gd (me)> ")
	assert.Contains(t, out.String(), "Unknown command: frobnicate")
	assert.Contains(t, out.String(), "Bye!")
}

func TestRunREPL_ArgsAndErrors(t *testing.T) {
	f := &fakeExec{err: errors.New("kaboom")}
	var out bytes.Buffer

	runREPL(context.Background(), f, func() string { return "" }, rdr("settings set period 7d"), &out)

	assert.Equal(t, []string{"settings"}, f.calls)
	assert.Equal(t, []string{"set", "period", "7d"}, f.LastArgs)
	assert.Contains(t, out.String(), "Error: kaboom")
}

func TestRunREPL_StopsOnEOFAndCancel(t *testing.T) {
	f := &fakeExec{}
	var out bytes.Buffer
	runREPL(context.Background(), f, func() string { return "" }, rdr(""), &out)
	assert.Empty(t, f.calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runREPL(ctx, f, func() string { return "" }, rdr("login\n"), &out)
	assert.Empty(t, f.calls)
}
