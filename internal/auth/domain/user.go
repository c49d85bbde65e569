package domain

import (
	"strings"
	"time"
)

type User struct {
	ID             string
	Name           string
	Email          string
	PasswordHash   string
	Address        string
	Bio            string
	ProfilePicture string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UserUpdate is a partial profile update. A nil field is left untouched.
type UserUpdate struct {
	Name           *string
	Email          *string
	Address        *string
	Bio            *string
	ProfilePicture *string
	// PasswordHash is filled by the service after hashing a new password.
	PasswordHash *string
}

// Apply merges the provided fields into u.
func (u *User) Apply(upd UserUpdate) {
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = NormalizeEmail(*upd.Email)
	}
	if upd.Address != nil {
		u.Address = *upd.Address
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.ProfilePicture != nil {
		u.ProfilePicture = *upd.ProfilePicture
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
