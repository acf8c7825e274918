package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/dbx"
	"github.com/dmitrijs2005/taskhub/internal/server/models"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/messages"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/projects"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// memTokens is an in-memory tokens.Repository. The active flag follows the
// same true to false rule as the SQL implementation.
type memTokens struct {
	mu         sync.Mutex
	validation map[string]*models.ValidationToken
	sessions   map[string]*models.SessionToken

	createErr error
	checkErr  error
	touchErr  error
	findErr   error
	deactErr  map[string]error
	touched   []string
}

func newMemTokens() *memTokens {
	return &memTokens{
		validation: map[string]*models.ValidationToken{},
		sessions:   map[string]*models.SessionToken{},
		deactErr:   map[string]error{},
	}
}

func (m *memTokens) exists(value string) bool {
	_, v := m.validation[value]
	_, s := m.sessions[value]
	return v || s
}

func (m *memTokens) CreateValidation(_ context.Context, t *models.ValidationToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if m.exists(t.Value) {
		return common.ErrAlreadyExists
	}
	t.ID = int64(len(m.validation) + len(m.sessions) + 1)
	t.Active = true
	cp := *t
	m.validation[t.Value] = &cp
	return nil
}

func (m *memTokens) CreateSession(_ context.Context, t *models.SessionToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if m.exists(t.Value) {
		return common.ErrAlreadyExists
	}
	t.ID = int64(len(m.validation) + len(m.sessions) + 1)
	t.Active = true
	cp := *t
	m.sessions[t.Value] = &cp
	return nil
}

func (m *memTokens) IsActiveForUser(_ context.Context, value, userID string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.checkErr != nil {
		return false, m.checkErr
	}
	if v, ok := m.validation[value]; ok {
		exp := v.ExpirationTime
		st := models.TokenState{UserID: v.UserID, Kind: models.TokenKindValidation, Active: v.Active, ExpirationTime: &exp}
		return st.ActiveFor(userID, now), nil
	}
	if s, ok := m.sessions[value]; ok {
		st := models.TokenState{UserID: s.UserID, Kind: models.TokenKindSession, Active: s.Active}
		return st.ActiveFor(userID, now), nil
	}
	return false, nil
}

func (m *memTokens) Deactivate(_ context.Context, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.deactErr[value]; err != nil {
		return false, err
	}
	if v, ok := m.validation[value]; ok && v.Active {
		v.Active = false
		return true, nil
	}
	if s, ok := m.sessions[value]; ok && s.Active {
		s.Active = false
		return true, nil
	}
	return false, nil
}

func (m *memTokens) DeactivateIdle(_ context.Context, value string, cutoff time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.deactErr[value]; err != nil {
		return false, err
	}
	s, ok := m.sessions[value]
	if !ok || !s.Active || !s.LastAccessTime.Before(cutoff) {
		return false, nil
	}
	s.Active = false
	return true, nil
}

func (m *memTokens) RecordLogout(_ context.Context, value string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[value]
	if !ok || !s.Active {
		return false, nil
	}
	s.Active = false
	s.LogoutTime = &now
	return true, nil
}

func (m *memTokens) Touch(_ context.Context, value string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.touchErr != nil {
		return false, m.touchErr
	}
	s, ok := m.sessions[value]
	if !ok || !s.Active {
		return false, nil
	}
	s.LastAccessTime = now
	m.touched = append(m.touched, value)
	return true, nil
}

func (m *memTokens) FindIdleSessions(_ context.Context, timeout time.Duration, now time.Time) ([]*models.SessionToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	var out []*models.SessionToken
	for _, s := range m.sessions {
		if s.Active && s.IdleAt(timeout, now) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memTokens) ResolveOwner(_ context.Context, value string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[value]; ok && s.Active {
		return s.UserID, nil
	}
	return "", common.ErrorNotFound
}

func (m *memTokens) FindValidation(_ context.Context, value string) (*models.ValidationToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	v, ok := m.validation[value]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *v
	return &cp, nil
}

func (m *memTokens) ActiveSessionTokens(_ context.Context, userIDs ...string) ([]models.SessionRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SessionRef
	for _, id := range userIDs {
		for _, s := range m.sessions {
			if s.Active && s.UserID == id {
				out = append(out, models.SessionRef{UserID: id, Value: s.Value})
			}
		}
	}
	return out, nil
}

func (m *memTokens) DeactivateUserSessions(_ context.Context, userID string, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.sessions {
		if s.Active && s.UserID == userID {
			s.Active = false
			s.LogoutTime = &now
			n++
		}
	}
	return n, nil
}

// session returns a snapshot of the stored session or nil.
func (m *memTokens) session(value string) *models.SessionToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[value]
	if !ok {
		return nil
	}
	cp := *s
	return &cp
}

type memUsers struct {
	mu        sync.Mutex
	byID      map[string]*models.User
	createErr error
	getErr    error
	updateErr error
}

func newMemUsers(us ...*models.User) *memUsers {
	m := &memUsers{byID: map[string]*models.User{}}
	for _, u := range us {
		m.byID[u.ID] = u
	}
	return m
}

func (m *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	for _, existing := range m.byID {
		if existing.UserName == u.UserName {
			return nil, common.ErrAlreadyExists
		}
	}
	u.ID = "user-" + u.UserName
	u.CreatedAt = time.Now()
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUsers) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.byID {
		if u.UserName == login {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (m *memUsers) MarkConfirmed(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.Confirmed = true
	return nil
}

func (m *memUsers) UpdatePasswordHash(_ context.Context, id string, hash []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	u, ok := m.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	return nil
}

type fakeRepoManager struct {
	u    *memUsers
	t    tokens.Repository
	p    projects.Repository
	msgs messages.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.u }
func (m *fakeRepoManager) Tokens(dbx.DBTX) tokens.Repository            { return m.t }
func (m *fakeRepoManager) Projects(dbx.DBTX) projects.Repository        { return m.p }
func (m *fakeRepoManager) Messages(dbx.DBTX) messages.Repository        { return m.msgs }

// plainHasher stores passwords as-is so tests stay fast.
type plainHasher struct{ err error }

func (h plainHasher) Hash(p string) ([]byte, error) {
	if h.err != nil {
		return nil, h.err
	}
	return []byte("h:" + p), nil
}

func (h plainHasher) Compare(hash []byte, p string) error {
	if h.err != nil {
		return h.err
	}
	if string(hash) != "h:"+p {
		return common.ErrorUnauthorized
	}
	return nil
}

type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time          { return c.t }
func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }
