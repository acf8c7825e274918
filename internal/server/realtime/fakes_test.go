package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/server/models"
)

// fakeConn records what the registry and router do to it.
type fakeConn struct {
	id string

	mu       sync.Mutex
	frames   [][]byte
	closed   bool
	code     int
	reason   string
	capacity int // 0 means unlimited
}

func newFakeConn(id string) *fakeConn { return &fakeConn{id: id} }

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(p []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || (c.capacity > 0 && len(c.frames) >= c.capacity) {
		return false
	}
	c.frames = append(c.frames, p)
	return true
}

func (c *fakeConn) Close(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed, c.code, c.reason = true, code, reason
}

func (c *fakeConn) received() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.frames...)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// memStore backs every repository the channels need.
type memStore struct {
	mu       sync.Mutex
	users    map[string]bool
	projects map[string][]string
	sessions map[string]string // token -> user
	messages []*models.Message

	touches map[string][]time.Time

	persistErr  error
	ownerErr    error
	touchErr    error
	audienceErr error
	nextID      int
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]bool{},
		projects: map[string][]string{},
		sessions: map[string]string{},
		touches:  map[string][]time.Time{},
	}
}

func (m *memStore) stores() Stores {
	return Stores{Users: memUsers{m}, Projects: memProjects{m}, Messages: memMessages{m}, Tokens: memTokens{m}}
}

func (m *memStore) addUser(id string, tokens ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id] = true
	for _, t := range tokens {
		m.sessions[t] = id
	}
}

func (m *memStore) logout(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

func (m *memStore) stored() []*models.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.Message(nil), m.messages...)
}

func (m *memStore) unread(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, msg := range m.messages {
		if msg.RecipientUserID == userID && msg.ReadAt == nil {
			n++
		}
	}
	return n
}

func (m *memStore) ResolveOwner(_ context.Context, value string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ownerErr != nil {
		return "", m.ownerErr
	}
	if u, ok := m.sessions[value]; ok {
		return u, nil
	}
	return "", common.ErrorNotFound
}

func (m *memStore) Touch(_ context.Context, value string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.touchErr != nil {
		return false, m.touchErr
	}
	if _, ok := m.sessions[value]; !ok {
		return false, nil
	}
	m.touches[value] = append(m.touches[value], now)
	return true, nil
}

func (m *memStore) touchesOf(value string) []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Time(nil), m.touches[value]...)
}

type memUsers struct{ m *memStore }

func (u memUsers) Create(context.Context, *models.User) (*models.User, error) { return nil, nil }
func (u memUsers) GetUserByLogin(context.Context, string) (*models.User, error) {
	return nil, common.ErrorNotFound
}
func (u memUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	if !u.m.users[id] {
		return nil, common.ErrorNotFound
	}
	return &models.User{ID: id}, nil
}
func (u memUsers) MarkConfirmed(context.Context, string) error              { return nil }
func (u memUsers) UpdatePasswordHash(context.Context, string, []byte) error { return nil }

type memProjects struct{ m *memStore }

func (p memProjects) FindByID(_ context.Context, id string) (*models.Project, error) {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	if _, ok := p.m.projects[id]; !ok {
		return nil, common.ErrorNotFound
	}
	return &models.Project{ID: id}, nil
}

func (p memProjects) Members(_ context.Context, id string) ([]string, error) {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	if p.m.audienceErr != nil {
		return nil, p.m.audienceErr
	}
	return p.m.projects[id], nil
}

type memMessages struct{ m *memStore }

func (s memMessages) Persist(_ context.Context, nm models.NewMessage) (*models.Message, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.m.persistErr != nil {
		return nil, s.m.persistErr
	}
	s.m.nextID++
	msg := &models.Message{
		ID:              fmt.Sprintf("msg-%d", s.m.nextID),
		Kind:            nm.Kind,
		SenderID:        nm.SenderID,
		RecipientUserID: nm.RecipientUserID,
		ProjectID:       nm.ProjectID,
		Subject:         nm.Subject,
		Content:         nm.Content,
		CreatedAt:       time.Now().UTC(),
	}
	s.m.messages = append(s.m.messages, msg)
	return msg, nil
}
func (s memMessages) UnreadCount(_ context.Context, userID string) (int64, error) {
	return int64(s.m.unread(userID)), nil
}
func (s memMessages) History(context.Context, string, string, int) ([]*models.Message, error) {
	return nil, nil
}
func (s memMessages) MarkRead(context.Context, string, string) (int64, error) { return 0, nil }
func (s memMessages) ProjectHistory(context.Context, string, int) ([]*models.Message, error) {
	return nil, nil
}

type memTokens struct{ m *memStore }

func (t memTokens) CreateValidation(context.Context, *models.ValidationToken) error { return nil }
func (t memTokens) CreateSession(context.Context, *models.SessionToken) error       { return nil }
func (t memTokens) IsActiveForUser(_ context.Context, value, userID string, _ time.Time) (bool, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	return t.m.sessions[value] == userID && userID != "", nil
}
func (t memTokens) Deactivate(_ context.Context, value string) (bool, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	_, ok := t.m.sessions[value]
	delete(t.m.sessions, value)
	return ok, nil
}
func (t memTokens) DeactivateIdle(ctx context.Context, value string, _ time.Time) (bool, error) {
	return t.Deactivate(ctx, value)
}
func (t memTokens) RecordLogout(ctx context.Context, value string, _ time.Time) (bool, error) {
	return t.Deactivate(ctx, value)
}
func (t memTokens) Touch(ctx context.Context, value string, now time.Time) (bool, error) {
	return t.m.Touch(ctx, value, now)
}
func (t memTokens) FindIdleSessions(context.Context, time.Duration, time.Time) ([]*models.SessionToken, error) {
	return nil, nil
}
func (t memTokens) ResolveOwner(ctx context.Context, value string) (string, error) {
	return t.m.ResolveOwner(ctx, value)
}
func (t memTokens) FindValidation(context.Context, string) (*models.ValidationToken, error) {
	return nil, common.ErrorNotFound
}
func (t memTokens) ActiveSessionTokens(_ context.Context, userIDs ...string) ([]models.SessionRef, error) {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	var refs []models.SessionRef
	for _, id := range userIDs {
		for token, owner := range t.m.sessions {
			if owner == id {
				refs = append(refs, models.SessionRef{UserID: id, Value: token})
			}
		}
	}
	return refs, nil
}
func (t memTokens) DeactivateUserSessions(context.Context, string, time.Time) (int64, error) {
	return 0, nil
}

// storeAuth adapts memStore to AuthCheck.
type storeAuth struct {
	m   *memStore
	err error
}

func (a storeAuth) Authenticate(ctx context.Context, token, userID string) error {
	if a.err != nil {
		return a.err
	}
	ok, _ := memTokens{a.m}.IsActiveForUser(ctx, token, userID, time.Now())
	if !ok {
		return common.ErrorUnauthorized
	}
	return nil
}
