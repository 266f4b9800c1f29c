package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
}

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	return nil
}

func (f *fakeExec) isLoggedIn() bool                    { return f.loggedIn }
func (f *fakeExec) Register(context.Context) error      { return f.record("register") }
func (f *fakeExec) Login(context.Context) error         { f.loggedIn = true; return f.record("login") }
func (f *fakeExec) Logout(context.Context) error        { f.loggedIn = false; return f.record("logout") }
func (f *fakeExec) Add(context.Context) error           { return f.record("add") }
func (f *fakeExec) List(context.Context) error          { return f.record("list") }
func (f *fakeExec) Search(context.Context) error        { return f.record("search") }
func (f *fakeExec) Reveal(context.Context) error        { return f.record("reveal") }
func (f *fakeExec) Delete(context.Context) error        { return f.record("delete") }
func (f *fakeExec) DeleteSite(context.Context) error    { return f.record("deletesite") }
func (f *fakeExec) Generate(context.Context) error      { return f.record("generate") }
func (f *fakeExec) Strength(context.Context) error      { return f.record("strength") }
func (f *fakeExec) Backup(context.Context) error        { return f.record("backup") }

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	input := strings.Join([]string{
		"register",
		"login",
		"add",
		"l",
		"list",
		"search",
		"reveal",
		"delete",
		"deletesite",
		"generate",
		"strength",
		"backup",
		"logout",
		"exit",
		"list", // never reached
	}, "\n") + "\n"

	f := &fakeExec{}
	runREPL(context.Background(), f, func() string { return "" }, rdr(input), io.Discard)

	assert.Equal(t, []string{
		"register", "login", "add", "list", "list", "search", "reveal",
		"delete", "deletesite", "generate", "strength", "backup", "logout",
	}, f.calls)
}

func TestRunREPL_RequiresLogin(t *testing.T) {
	var out bytes.Buffer
	f := &fakeExec{}
	runREPL(context.Background(), f, func() string { return "" }, rdr("list\nadd\ngenerate\nquit\n"), &out)

	assert.Equal(t, []string{"generate"}, f.calls)
	assert.Equal(t, 2, strings.Count(out.String(), "Please log in first.\n"))
	assert.Contains(t, out.String(), "Bye!")
}

func TestRunREPL_HelpUnknownAndEOF(t *testing.T) {
	var buf bytes.Buffer
	f := &fakeExec{}
	runREPL(context.Background(), f, func() string { return "(bob)" }, rdr("help\n\nfrobnicate\nhelp"), &buf)

	out := buf.String()
	assert.Contains(t, out, "openpass (bob)> ")
	assert.Contains(t, out, "Available commands: register, login")
	assert.Contains(t, out, "Unknown command: frobnicate")
	assert.Empty(t, f.calls)
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &fakeExec{}
	runREPL(ctx, f, func() string { return "" }, rdr("register\n"), io.Discard)
	assert.Empty(t, f.calls)
}

func TestRunREPL_CancelWhileWaitingForInput(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	f := &fakeExec{}
	go func() {
		defer close(done)
		runREPL(ctx, f, func() string { return "" }, bufio.NewReader(pr), io.Discard)
	}()

	// the pipe never delivers a line, so the loop is parked on the read
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runREPL did not return after cancel")
	}
	assert.Empty(t, f.calls)
}

func TestReadLine(t *testing.T) {
	line, err := readLine(context.Background(), rdr("hello\nworld\n"))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", line)

	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = readLine(ctx, bufio.NewReader(pr))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
