package auth

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/ppestock/internal/model"
)

// ErrBadPassword is returned for a wrong shared password.
var ErrBadPassword = errors.New("invalid credentials")

// HashPassword hashes the shared login password after checking its policy.
func HashPassword(password string) (string, error) {
	if err := model.ValidatePassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares password with the stored hash.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrBadPassword
	}
	return nil
}

// Password holds the shared login password hash. The hash can be replaced
// while the server runs; logins after Set check against the new one.
type Password struct {
	mu   sync.RWMutex
	hash string
}

// NewPassword returns a holder for hash.
func NewPassword(hash string) *Password {
	return &Password{hash: hash}
}

// Check compares password with the current hash.
func (p *Password) Check(password string) error {
	p.mu.RLock()
	hash := p.hash
	p.mu.RUnlock()
	return CheckPassword(hash, password)
}

// Set replaces the current hash.
func (p *Password) Set(hash string) {
	p.mu.Lock()
	p.hash = hash
	p.mu.Unlock()
}
