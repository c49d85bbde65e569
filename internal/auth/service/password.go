package service

//go:generate mockgen -destination=../../mocks/mock_password_hasher.go -package=mocks github.com/IVYLIFE/Authly/internal/auth/service PasswordHasher

import "golang.org/x/crypto/bcrypt"

const DefaultPasswordCost = 10

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// BcryptHasher salts and hashes with bcrypt. The salt and cost are embedded in
// the returned string, so Verify needs nothing but the stored hash.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultPasswordCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether plain matches hash. bcrypt compares in constant time.
func (h *BcryptHasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
