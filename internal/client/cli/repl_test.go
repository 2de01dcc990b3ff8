package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	failWith error

	calls []string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(context.Context) error {
	f.calls = append(f.calls, "register")
	return f.failWith
}
func (f *fakeExec) Login(context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Users(context.Context) error {
	f.calls = append(f.calls, "users")
	return nil
}
func (f *fakeExec) History(_ context.Context, peerID string) error {
	f.calls = append(f.calls, "history "+peerID)
	return nil
}
func (f *fakeExec) Send(_ context.Context, peerID, text string) error {
	f.calls = append(f.calls, "send "+peerID+"|"+text)
	return nil
}
func (f *fakeExec) Avatar(_ context.Context, path string) error {
	f.calls = append(f.calls, "avatar "+path)
	return nil
}
func (f *fakeExec) Logout(context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}

func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_Commands(t *testing.T) {
	lines := capturePrintln(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"",
		"users",
		"history bob-id",
		"send bob-id hello   there bob",
		"avatar ./me.png",
		"logout",
		"foobar",
		"exit",
		"users",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "alice" }, bufio.NewScanner(input))

	assert.Equal(t, []string{
		"login",
		"users",
		"history bob-id",
		"send bob-id|hello   there bob",
		"avatar ./me.png",
		"logout",
	}, exec.calls)
	assert.Contains(t, *lines, "chat alice> ")
	assert.Contains(t, *lines, "Available commands: register, login, exit")
	assert.Contains(t, *lines, "Unknown command: foobar")
	assert.Contains(t, *lines, "Bye!")
}

func TestRunREPL_UsageErrors(t *testing.T) {
	lines := capturePrintln(t)

	input := strings.NewReader("history\nsend bob-id\navatar\nquit\n")
	exec := &fakeExec{loggedIn: true}

	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	assert.Empty(t, exec.calls)
	assert.Contains(t, *lines, "Usage: history <peerId>")
	assert.Contains(t, *lines, "Usage: send <peerId> <text>")
	assert.Contains(t, *lines, "Usage: avatar <file>")
}

func TestRunREPL_PrintsCommandErrors(t *testing.T) {
	lines := capturePrintln(t)

	exec := &fakeExec{failWith: errors.New("already exists: User already exists")}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("register\n")))

	assert.Contains(t, *lines, "Error: already exists: User already exists")
}

func TestRunREPL_HelpWhenLoggedIn(t *testing.T) {
	lines := capturePrintln(t)

	runREPL(context.Background(), &fakeExec{loggedIn: true}, func() string { return "" }, bufio.NewScanner(strings.NewReader("help\n")))

	assert.Contains(t, *lines, "Available commands: users, history <peerId>, send <peerId> <text>, avatar <file>, logout, exit")
}
