package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	pb "github.com/dmitrijs2005/taskhub/internal/proto"
)

const historyLimit = 20

func (a *App) Unread(ctx context.Context) error {
	n, err := a.api.UnreadCount(ctx)
	if err != nil {
		return a.report("Unread", err)
	}
	fmt.Fprintf(a.out, "%d unread message(s)\n", n)
	return nil
}

// History prints the latest direct messages with a user, oldest first, and
// marks the ones received from them as read.
func (a *App) History(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(a.out, "Usage: history <userId> [limit]")
		return nil
	}
	limit, ok := a.parseLimit(args)
	if !ok {
		return nil
	}

	msgs, err := a.api.History(ctx, args[0], limit)
	if err != nil {
		return a.report("History", err)
	}
	printHistory(a.out, msgs)

	if _, err := a.api.MarkRead(ctx, args[0]); err != nil {
		return a.report("Mark read", err)
	}
	return nil
}

// Board prints the latest messages posted to a project.
func (a *App) Board(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(a.out, "Usage: board <projectId> [limit]")
		return nil
	}
	limit, ok := a.parseLimit(args)
	if !ok {
		return nil
	}

	msgs, err := a.api.ProjectHistory(ctx, args[0], limit)
	if err != nil {
		return a.report("Board", err)
	}
	printHistory(a.out, msgs)
	return nil
}

func (a *App) parseLimit(args []string) (int, bool) {
	if len(args) < 2 {
		return historyLimit, true
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n <= 0 {
		fmt.Fprintln(a.out, "limit must be a positive number")
		return 0, false
	}
	return n, true
}

func printHistory(w io.Writer, msgs []*pb.Message) {
	if len(msgs) == 0 {
		fmt.Fprintln(w, "no messages")
		return
	}
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		line := fmt.Sprintf("[%s] %s", m.CreatedAt.Local().Format(time.DateTime), m.SenderID)
		if m.Subject != "" {
			line += " (" + m.Subject + ")"
		}
		fmt.Fprintf(w, "%s: %s\n", line, m.Content)
	}
}
