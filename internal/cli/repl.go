package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Add(ctx context.Context) error
	List(ctx context.Context) error
	Search(ctx context.Context) error
	Reveal(ctx context.Context) error
	Delete(ctx context.Context) error
	DeleteSite(ctx context.Context) error
	Generate(ctx context.Context) error
	Strength(ctx context.Context) error
	Backup(ctx context.Context) error
}

// commands that need a live session
var needsLogin = map[string]bool{
	"add":        true,
	"l":          true,
	"list":       true,
	"search":     true,
	"reveal":     true,
	"delete":     true,
	"deletesite": true,
	"backup":     true,
	"logout":     true,
}

// runREPL starts a simple read-eval-print loop.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on a. The loop exits on EOF or when the user types
// "exit" or "quit".
//
//	Not logged in:
//	  help, register, login, generate, strength, exit | quit
//
//	Logged in, additionally:
//	  add, (l)ist, search, reveal, delete, deletesite, backup, logout
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors. Cancelling ctx ends the loop even while it waits for
// input.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}

		fmt.Fprintf(w, "openpass %s> \n", statusFn())
		line, err := readLine(ctx, reader)
		if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := strings.ToLower(parts[0])

		if needsLogin[cmd] && !a.isLoggedIn() {
			fmt.Fprintln(w, "Please log in first.")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, "Available commands: add, (l)ist, search, reveal, delete, deletesite, generate, strength, backup, logout, exit")
			} else {
				fmt.Fprintln(w, "Available commands: register, login, generate, strength, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "add":
			_ = a.Add(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "search":
			_ = a.Search(ctx)

		case "reveal":
			_ = a.Reveal(ctx)

		case "delete":
			_ = a.Delete(ctx)

		case "deletesite":
			_ = a.DeleteSite(ctx)

		case "generate":
			_ = a.Generate(ctx)

		case "strength":
			_ = a.Strength(ctx)

		case "backup":
			_ = a.Backup(ctx)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}

type lineResult struct {
	line string
	err  error
}

// readLine reads one line from reader, giving up when ctx is done. The
// abandoned read keeps the reader busy, so the caller must not use it again
// after a context error.
func readLine(ctx context.Context, reader *bufio.Reader) (string, error) {
	ch := make(chan lineResult, 1)
	go func() {
		line, err := reader.ReadString('\n')
		ch <- lineResult{line: line, err: err}
	}()

	select {
	case r := <-ch:
		return r.line, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
