package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gophchat/internal/client/client"
	"github.com/dmitrijs2005/gophchat/internal/client/config"
	"github.com/dmitrijs2005/gophchat/internal/client/services"
)

type App struct {
	config *config.Config
	chat   services.ChatService
	reader *bufio.Reader
	out    io.Writer
	// listening guards against starting two event printers for one stream
	listening <-chan client.Event
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	if err != nil {
		return nil, err
	}

	return &App{
		config: c,
		chat:   services.NewChatService(apiClient),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.chat.Close(ctx)

	fmt.Fprintf(a.out, "Welcome to gophchat (%s), type 'help' for commands\n", a.config.ServerURL)
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

func (a *App) isLoggedIn() bool {
	return a.chat.CurrentUser() != nil
}

func (a *App) getStatus() string {
	if u := a.chat.CurrentUser(); u != nil {
		return u.Name
	}
	return ""
}

// listen prints live events until the stream closes.
func (a *App) listen(ctx context.Context, events <-chan client.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch {
			case ev.Message != nil:
				printlnFn(fmt.Sprintf("\n[%s] %s", ev.Message.From, ev.Message.Text))
			case ev.Error != nil:
				printlnFn(fmt.Sprintf("\n! %s: %s", ev.Error.Event, ev.Error.Error))
			}
		}
	}
}
