package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophchat/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for the account fields and creates the account.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.reader, "Enter phone", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.chat.Register(ctx, name, email, phone, password); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Registered, you can login now")
	return nil
}

// Login prompts for credentials, authenticates and starts printing incoming
// messages.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.chat.Login(ctx, email, password)
	if err != nil {
		return err
	}

	if events := a.chat.Events(); events != nil && events != a.listening {
		a.listening = events
		go a.listen(ctx, events)
	}

	fmt.Fprintf(a.out, "Logged in as %s (id %s)\n", user.Name, user.ID)
	return nil
}

// Logout revokes the token and closes the live connection.
func (a *App) Logout(ctx context.Context) error {
	a.listening = nil
	if err := a.chat.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
