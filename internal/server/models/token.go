package models

import "time"

// TokenKind discriminates the two token variants stored in one table.
type TokenKind string

const (
	TokenKindValidation TokenKind = "validation"
	TokenKindSession    TokenKind = "session"
)

// TokenPurpose names the one action a validation token authorizes.
type TokenPurpose string

const (
	PurposeConfirmAccount TokenPurpose = "confirm_account"
	PurposeResetPassword  TokenPurpose = "reset_password"
)

// Token holds the fields shared by every token variant. Active only ever
// moves from true to false.
type Token struct {
	ID     int64
	Value  string
	UserID string
	Active bool
}

// ValidationToken is a single-use, time-boxed token.
type ValidationToken struct {
	Token
	Purpose        TokenPurpose
	CreationTime   time.Time
	ExpirationTime time.Time
}

// Expired reports whether now is past the expiration time.
func (t *ValidationToken) Expired(now time.Time) bool {
	return now.After(t.ExpirationTime)
}

// SessionToken is a login session whose lifetime is bounded by idle time.
// LogoutTime is nil while the session is open.
type SessionToken struct {
	Token
	LoginTime      time.Time
	LogoutTime     *time.Time
	LastAccessTime time.Time
	OriginAddress  string
}

// IdleAt reports whether the session has not been used for longer than
// timeout as of now.
func (t *SessionToken) IdleAt(timeout time.Duration, now time.Time) bool {
	return t.LastAccessTime.Before(now.Add(-timeout))
}

// TokenState is the minimal projection needed to answer "is this token
// currently usable by this user".
type TokenState struct {
	UserID         string
	Kind           TokenKind
	Active         bool
	ExpirationTime *time.Time
}

// ActiveFor reports whether the token is active, owned by userID and, for
// validation tokens, not yet past its expiration at now.
func (s *TokenState) ActiveFor(userID string, now time.Time) bool {
	if !s.Active || s.UserID != userID {
		return false
	}
	if s.Kind == TokenKindValidation {
		return s.ExpirationTime != nil && !now.After(*s.ExpirationTime)
	}
	return true
}

// SessionRef pairs a live session token with its owner.
type SessionRef struct {
	UserID string
	Value  string
}
