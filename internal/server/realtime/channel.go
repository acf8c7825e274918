package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/server/models"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/messages"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/projects"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/users"
)

// Frame is a decoded inbound message body.
type Frame struct {
	Subject string `json:"subject,omitempty"`
	Content string `json:"content"`
}

// Channel supplies the kind-specific steps of routing one frame.
type Channel interface {
	Kind() Kind
	// ResolveTarget checks that the addressed recipient exists.
	ResolveTarget(ctx context.Context, senderID, target string) error
	// Decode parses and validates a frame body.
	Decode(data []byte) (Frame, error)
	// Persist stores the frame and returns the canonical record.
	Persist(ctx context.Context, senderID, target string, f Frame) (*models.Message, error)
	// Audience lists the presence keys that should receive msg.
	Audience(ctx context.Context, msg *models.Message) ([]Key, error)
}

// Stores groups the collaborators the channels read and write.
type Stores struct {
	Users    users.Repository
	Projects projects.Repository
	Messages messages.Repository
	Tokens   tokens.Repository
}

// NewChannels builds the three channel variants over st.
func NewChannels(st Stores) map[Kind]Channel {
	return map[Kind]Channel{
		Direct:       &directChannel{st: st},
		Group:        &groupChannel{st: st},
		Notification: &notificationChannel{st: st},
	}
}

func decodeFrame(data []byte, allowSubject bool) (Frame, error) {
	var f Frame
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if dec.More() {
		return Frame{}, fmt.Errorf("%w: trailing data", common.ErrValidation)
	}
	if !allowSubject && f.Subject != "" {
		return Frame{}, fmt.Errorf("%w: subject is only accepted on direct messages", common.ErrValidation)
	}
	if strings.TrimSpace(f.Content) == "" {
		return Frame{}, fmt.Errorf("%w: empty content", common.ErrValidation)
	}
	return f, nil
}

func sessionKeys(ctx context.Context, st tokens.Repository, scope string, userIDs ...string) ([]Key, error) {
	refs, err := st.ActiveSessionTokens(ctx, userIDs...)
	if err != nil {
		return nil, err
	}
	keys := make([]Key, 0, len(refs))
	for _, ref := range refs {
		keys = append(keys, Key{Token: ref.Value, Scope: scope})
	}
	return keys, nil
}

func resolveErr(what string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("%w: %s not found", common.ErrResolution, what)
	}
	return fmt.Errorf("%w: %s lookup: %v", common.ErrResolution, what, err)
}

type directChannel struct{ st Stores }

func (c *directChannel) Kind() Kind { return Direct }

func (c *directChannel) ResolveTarget(ctx context.Context, _ string, target string) error {
	if _, err := c.st.Users.FindByID(ctx, target); err != nil {
		return resolveErr("recipient", err)
	}
	return nil
}

func (c *directChannel) Decode(data []byte) (Frame, error) { return decodeFrame(data, true) }

func (c *directChannel) Persist(ctx context.Context, senderID, target string, f Frame) (*models.Message, error) {
	return c.st.Messages.Persist(ctx, models.NewMessage{
		Kind:            models.MessageDirect,
		SenderID:        senderID,
		RecipientUserID: target,
		Subject:         f.Subject,
		Content:         f.Content,
	})
}

func (c *directChannel) Audience(ctx context.Context, msg *models.Message) ([]Key, error) {
	return sessionKeys(ctx, c.st.Tokens, "", msg.SenderID, msg.RecipientUserID)
}

type groupChannel struct{ st Stores }

func (c *groupChannel) Kind() Kind { return Group }

func (c *groupChannel) ResolveTarget(ctx context.Context, _ string, target string) error {
	if _, err := c.st.Projects.FindByID(ctx, target); err != nil {
		return resolveErr("project", err)
	}
	return nil
}

func (c *groupChannel) Decode(data []byte) (Frame, error) { return decodeFrame(data, false) }

func (c *groupChannel) Persist(ctx context.Context, senderID, target string, f Frame) (*models.Message, error) {
	return c.st.Messages.Persist(ctx, models.NewMessage{
		Kind:      models.MessageProject,
		SenderID:  senderID,
		ProjectID: target,
		Content:   f.Content,
	})
}

func (c *groupChannel) Audience(ctx context.Context, msg *models.Message) ([]Key, error) {
	members, err := c.st.Projects.Members(ctx, msg.ProjectID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}
	return sessionKeys(ctx, c.st.Tokens, msg.ProjectID, members...)
}

// notificationChannel stores notifications addressed to the sending user
// and fans them out to every notification connection of that user.
type notificationChannel struct{ st Stores }

func (c *notificationChannel) Kind() Kind { return Notification }

func (c *notificationChannel) ResolveTarget(ctx context.Context, senderID, _ string) error {
	if _, err := c.st.Users.FindByID(ctx, senderID); err != nil {
		return resolveErr("user", err)
	}
	return nil
}

func (c *notificationChannel) Decode(data []byte) (Frame, error) { return decodeFrame(data, false) }

func (c *notificationChannel) Persist(ctx context.Context, senderID, _ string, f Frame) (*models.Message, error) {
	return c.st.Messages.Persist(ctx, models.NewMessage{
		Kind:            models.MessageNotification,
		SenderID:        senderID,
		RecipientUserID: senderID,
		Content:         f.Content,
	})
}

func (c *notificationChannel) Audience(ctx context.Context, msg *models.Message) ([]Key, error) {
	return sessionKeys(ctx, c.st.Tokens, "", msg.RecipientUserID)
}
