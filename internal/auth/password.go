package auth

import (
	"golang.org/x/crypto/bcrypt"

	"landrecords/internal/config"
)

// PasswordHasher hashes credentials with bcrypt (salted, adaptive cost).
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher clamps the configured cost into bcrypt's valid range.
func NewPasswordHasher(cfg config.PasswordConfig) *PasswordHasher {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Compare returns nil when password matches hash.
func (h *PasswordHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
