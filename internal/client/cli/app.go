package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskhub/internal/client/client"
	"github.com/dmitrijs2005/taskhub/internal/client/config"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
	ModeExpired Mode = "expired"
)

// chatConn is the part of client.ChatConn the chat commands use.
type chatConn interface {
	Send(subject, content string) error
	Receive() (*client.Message, error)
	Close() error
}

type App struct {
	config   *config.Config
	api      client.Client
	dial     func(ctx context.Context, url string) (chatConn, error)
	userName string

	mu   sync.Mutex
	Mode Mode

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {

	apiClient, err := client.NewTaskhubClientService(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	return &App{
		config: c,
		api:    apiClient,
		dial: func(ctx context.Context, url string) (chatConn, error) {
			return client.DialChat(ctx, url)
		},
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) isLoggedIn() bool {
	token, _ := a.api.Session()
	return token != ""
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.userName
	if a.Mode != "" {
		if s != "" {
			s += " "
		}
		s += string(a.Mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) Run(ctx context.Context) {
	defer a.api.Close()

	fmt.Fprintln(a.out, "Welcome to taskhub CLI (type 'help' for commands)")

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

// StartOnlineStatusWatcher pings the server while a session is open and
// tracks whether it is reachable and the session still valid.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !a.isLoggedIn() {
				continue
			}
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.api.Ping(pctx)
			cancel()

			switch {
			case err == nil:
				a.setMode(ModeOnline)
			case errors.Is(err, client.ErrUnauthorized):
				a.setMode(ModeExpired)
			default:
				a.setMode(ModeOffline)
			}

		case <-ctx.Done():
			return
		}
	}
}
