package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskhub/internal/client/client"
)

const quitChat = "/quit"

func (a *App) Chat(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: chat <userId>")
		return nil
	}
	token, _ := a.api.Session()
	return a.openChannel(ctx, client.DirectURL(a.config.WebSocketURL, token, args[0]), true)
}

func (a *App) Project(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: project <projectId>")
		return nil
	}
	token, _ := a.api.Session()
	return a.openChannel(ctx, client.ProjectURL(a.config.WebSocketURL, token, args[0]), false)
}

func (a *App) Notifications(ctx context.Context) error {
	token, _ := a.api.Session()
	return a.openChannel(ctx, client.NotificationsURL(a.config.WebSocketURL, token), false)
}

// openChannel prints incoming messages while sending every typed line.
// On direct channels a line of the form "subject: text" sets the subject.
// The session ends on /quit, at end of input or, with the next line typed,
// once the server has closed the connection.
func (a *App) openChannel(ctx context.Context, url string, withSubject bool) error {
	conn, err := a.dial(ctx, url)
	if err != nil {
		return a.report("Connect", err)
	}
	defer conn.Close()

	fmt.Fprintf(a.out, "Connected, type %s to leave\n", quitChat)

	closed := make(chan error, 1)
	go func() {
		for {
			m, err := conn.Receive()
			if err != nil {
				if errors.Is(err, client.ErrUnauthorized) {
					fmt.Fprintln(a.out, "Connection refused: session is not valid")
				}
				closed <- err
				return
			}
			printLive(a.out, m)
		}
	}()

	for {
		line, err := readLine(a.reader)
		if err != nil || line == quitChat {
			return nil
		}

		select {
		case err := <-closed:
			fmt.Fprintln(a.out, "Connection closed")
			if errors.Is(err, client.ErrUnauthorized) {
				return err
			}
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if line == "" {
			continue
		}
		subject, content := "", line
		if withSubject {
			subject, content = splitSubject(line)
		}
		if err := conn.Send(subject, content); err != nil {
			return a.report("Send", err)
		}
	}
}

func splitSubject(line string) (string, string) {
	subject, content, found := strings.Cut(line, ": ")
	if !found || strings.ContainsAny(subject, " \t") {
		return "", line
	}
	return subject, content
}

func printLive(w io.Writer, m *client.Message) {
	prefix := m.SenderID
	if m.ProjectID != "" {
		prefix = m.ProjectID + "/" + prefix
	}
	if m.Subject != "" {
		prefix += " (" + m.Subject + ")"
	}
	fmt.Fprintf(w, "[%s] %s: %s\n", m.CreatedAt.Local().Format(time.TimeOnly), prefix, m.Content)
}
