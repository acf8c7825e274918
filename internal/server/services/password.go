package services

import (
	"errors"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hides the adaptive hash used for stored credentials.
type PasswordHasher interface {
	Hash(password string) ([]byte, error)
	// Compare returns common.ErrorUnauthorized when password does not match.
	Compare(hash []byte, password string) error
}

type BcryptHasher struct {
	Cost int
}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{Cost: bcrypt.DefaultCost}
}

func (b *BcryptHasher) Hash(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), b.Cost)
}

func (b *BcryptHasher) Compare(hash []byte, password string) error {
	err := bcrypt.CompareHashAndPassword(hash, []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return common.ErrorUnauthorized
	}
	return err
}
