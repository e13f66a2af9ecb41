package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. App implements
// it; tests substitute a recorder.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) error
	Whoami(ctx context.Context) error
	Profile(ctx context.Context) error
	Passwd(ctx context.Context) error
	Settings(ctx context.Context, args []string) error
	Get(ctx context.Context, args []string) error
	Ping(ctx context.Context) error
	Health(ctx context.Context, args []string) error
	Sweep(ctx context.Context) error
}

const (
	helpSignedOut = "Available commands: login, status, ping, health, settings, sweep, help, exit"
	helpSignedIn  = "Available commands: whoami, profile, passwd, get <dashboard|contents|reports>, settings [set <key> <value>|reset], status, ping, health [service], sweep, logout, help, exit"
)

// runREPL reads commands from reader until EOF, "exit"/"quit" or ctx
// cancellation. Command errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}

		fmt.Fprintf(out, "gd %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			fmt.Fprintln(out)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(out, helpSignedIn)
			} else {
				fmt.Fprintln(out, helpSignedOut)
			}
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "status":
			cmdErr = a.Status(ctx)
		case "whoami":
			cmdErr = a.Whoami(ctx)
		case "profile":
			cmdErr = a.Profile(ctx)
		case "passwd":
			cmdErr = a.Passwd(ctx)
		case "settings":
			cmdErr = a.Settings(ctx, args)
		case "get":
			cmdErr = a.Get(ctx, args)
		case "ping":
			cmdErr = a.Ping(ctx)
		case "health":
			cmdErr = a.Health(ctx, args)
		case "sweep":
			cmdErr = a.Sweep(ctx)
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			failure(out, cmdErr)
		}
		if err != nil {
			return
		}
	}
}
