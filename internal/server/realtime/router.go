package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/logging"
	"github.com/dmitrijs2005/taskhub/internal/server/models"
)

// SessionTracker attributes frames to the owner of their session and
// records the activity on it.
type SessionTracker interface {
	OwnerResolver
	Touch(ctx context.Context, value string, now time.Time) (bool, error)
}

// Router routes inbound frames of every channel kind: it attributes the
// frame, persists it and then fans the stored record out to live
// connections. Persistence always completes before any delivery.
type Router struct {
	sessions   SessionTracker
	channels   map[Kind]Channel
	registries map[Kind]*Registry
	log        logging.Logger
	now        func() time.Time
}

func NewRouter(sessions SessionTracker, channels map[Kind]Channel, l logging.Logger) *Router {
	r := &Router{
		sessions:   sessions,
		channels:   channels,
		registries: make(map[Kind]*Registry, len(channels)),
		log:        l.With("module", "router"),
		now:        time.Now,
	}
	for kind := range channels {
		r.registries[kind] = NewRegistry(kind, l)
	}
	return r
}

func (r *Router) Registry(kind Kind) *Registry { return r.registries[kind] }

func (r *Router) Register(s *Session) {
	r.registries[s.Kind].Put(s.Key(), s.Conn)
}

func (r *Router) Unregister(s *Session) {
	r.registries[s.Kind].Remove(s.Conn)
}

// HandleFrame processes one inbound frame on s. A returned error wraps one
// of common.ErrResolution, common.ErrValidation or common.ErrPersistence;
// the frame was dropped and the connection stays usable.
func (r *Router) HandleFrame(ctx context.Context, s *Session, data []byte) error {
	ch, ok := r.channels[s.Kind]
	if !ok {
		return fmt.Errorf("%w: unknown channel %s", common.ErrValidation, s.Kind)
	}

	sender, err := r.sessions.ResolveOwner(ctx, s.Token)
	if err != nil {
		return fmt.Errorf("%w: sender: %v", common.ErrResolution, err)
	}
	// Each attributed frame refreshes the session's last access.
	touched, err := r.sessions.Touch(ctx, s.Token, r.now())
	if err != nil {
		return fmt.Errorf("%w: sender session: %v", common.ErrResolution, err)
	}
	if !touched {
		return fmt.Errorf("%w: sender session no longer active", common.ErrResolution)
	}
	if err := ch.ResolveTarget(ctx, sender, s.Target); err != nil {
		return err
	}

	frame, err := ch.Decode(data)
	if err != nil {
		return err
	}

	msg, err := ch.Persist(ctx, sender, s.Target, frame)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}

	r.deliver(ctx, ch, s.Key(), msg)
	return nil
}

// Notify persists a server-originated notification for userID and pushes
// it to the user's notification connections.
func (r *Router) Notify(ctx context.Context, userID, content string) error {
	ch, ok := r.channels[Notification]
	if !ok {
		return fmt.Errorf("notification channel not configured")
	}
	msg, err := ch.Persist(ctx, userID, "", Frame{Content: content})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}
	r.deliver(ctx, ch, Key{}, msg)
	return nil
}

// deliver serializes msg once and queues it on origin (when set) and on
// every audience key. Audience lookup failures only lose live delivery.
func (r *Router) deliver(ctx context.Context, ch Channel, origin Key, msg *models.Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		r.log.Error(ctx, "message encode failed", "message_id", msg.ID, "error", err)
		return
	}
	reg := r.registries[ch.Kind()]

	delivered := 0
	if origin.Token != "" && reg.SendIfPresent(origin, payload) {
		delivered++
	}

	audience, err := ch.Audience(ctx, msg)
	if err != nil {
		r.log.Warn(ctx, "audience lookup failed", "kind", ch.Kind().String(), "message_id", msg.ID, "error", err)
	}
	seen := map[Key]struct{}{origin: {}}
	for _, k := range audience {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if reg.SendIfPresent(k, payload) {
			delivered++
		}
	}
	r.log.Debug(ctx, "message routed", "kind", ch.Kind().String(), "message_id", msg.ID, "delivered", delivered)
}

// Shutdown closes every live connection of every kind.
func (r *Router) Shutdown() {
	for _, reg := range r.registries {
		reg.CloseAll(CloseGoingAway, "server shutting down")
	}
}
