package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// Users prints everyone except the current user as a table.
func (a *App) Users(ctx context.Context) error {
	users, err := a.chat.Users(ctx)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(a.out)
	table.SetHeader([]string{"ID", "Name", "Email", "Phone"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.AppendBulk(lo.Map(users, func(u models.User, _ int) []string {
		return []string{u.ID, u.Name, u.Email, u.Phone}
	}))
	table.Render()
	return nil
}

// History prints the conversation with peerID, oldest first.
func (a *App) History(ctx context.Context, peerID string) error {
	msgs, err := a.chat.History(ctx, peerID)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		fmt.Fprintln(a.out, "No messages yet")
		return nil
	}

	me := a.chat.CurrentUser()
	for _, m := range msgs {
		from := m.SenderID
		if me != nil && from == me.ID {
			from = "me"
		}
		fmt.Fprintf(a.out, "%s [%s] %s\n", m.Timestamp.Local().Format("2006-01-02 15:04"), from, m.Text)
	}
	return nil
}

func (a *App) Send(_ context.Context, peerID, text string) error {
	if text == "" {
		return errors.New("empty message")
	}
	return a.chat.Send(peerID, text)
}

// Avatar uploads the image at path as the current user's avatar.
func (a *App) Avatar(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	key, err := a.chat.UploadAvatar(ctx, data, http.DetectContentType(data))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Avatar uploaded (%s)\n", key)
	return nil
}
