package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Users(ctx context.Context) error
	History(ctx context.Context, peerID string) error
	Send(ctx context.Context, peerID, text string) error
	Avatar(ctx context.Context, path string) error
	Logout(ctx context.Context) error
}

// runREPL reads commands line by line and dispatches them to a until EOF,
// "exit" or "quit".
//
//	Not logged in:
//	  - help, register, login, exit | quit
//
//	Logged in:
//	  - help
//	  - users                 list everyone else
//	  - history <peerId>      conversation with a user
//	  - send <peerId> <text>  send a message
//	  - avatar <file>         upload a profile picture
//	  - logout
//	  - exit | quit
//
// Command errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("chat %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: users, history <peerId>, send <peerId> <text>, avatar <file>, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			err = a.Register(ctx)

		case "login":
			err = a.Login(ctx)

		case "users":
			err = a.Users(ctx)

		case "history":
			if len(args) != 1 {
				printlnFn("Usage: history <peerId>")
				continue
			}
			err = a.History(ctx, args[0])

		case "send":
			if len(args) < 2 {
				printlnFn("Usage: send <peerId> <text>")
				continue
			}
			text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(strings.TrimPrefix(line, cmd)), args[0]))
			err = a.Send(ctx, args[0], text)

		case "avatar":
			if len(args) != 1 {
				printlnFn("Usage: avatar <file>")
				continue
			}
			err = a.Avatar(ctx, args[0])

		case "logout":
			err = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}
