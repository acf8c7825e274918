package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Confirm(ctx context.Context, args []string) error
	Reset(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Unread(ctx context.Context) error
	History(ctx context.Context, args []string) error
	Board(ctx context.Context, args []string) error
	Chat(ctx context.Context, args []string) error
	Project(ctx context.Context, args []string) error
	Notifications(ctx context.Context) error
}

// sessionCommands need a logged in user.
var sessionCommands = map[string]bool{
	"logout": true, "unread": true, "history": true, "board": true,
	"chat": true, "project": true, "notifications": true,
}

// runREPL reads one command per line from reader and dispatches it to a
// until end of input or "exit"/"quit".
//
//	Not logged in: help, register, confirm <token>, reset, login, exit
//	Logged in:     help, unread, history <userId> [limit], board <projectId> [limit],
//	               chat <userId>, project <projectId>, notifications, logout, exit
//
// Command errors are reported by the commands themselves and do not stop
// the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "taskhub %s> ", statusFn())
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if sessionCommands[cmd] && !a.isLoggedIn() {
			fmt.Fprintln(w, "Please log in first")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, "Available commands: unread, history <userId> [limit], board <projectId> [limit], chat <userId>, project <projectId>, notifications, logout, exit")
			} else {
				fmt.Fprintln(w, "Available commands: register, confirm <token>, reset, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "confirm":
			_ = a.Confirm(ctx, args)

		case "reset":
			_ = a.Reset(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "unread":
			_ = a.Unread(ctx)

		case "history":
			_ = a.History(ctx, args)

		case "board":
			_ = a.Board(ctx, args)

		case "chat":
			_ = a.Chat(ctx, args)

		case "project":
			_ = a.Project(ctx, args)

		case "notifications":
			_ = a.Notifications(ctx)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}
