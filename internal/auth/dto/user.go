package dto

import (
	"time"

	"github.com/IVYLIFE/Authly/internal/auth/domain"
)

type UserOutput struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Address        string    `json:"address"`
	Bio            string    `json:"bio,omitempty"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func NewUserOutput(u *domain.User) UserOutput {
	return UserOutput{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Address:        u.Address,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// UpdateProfileInput carries only the fields present in the request body.
type UpdateProfileInput struct {
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	Password       *string `json:"password"`
	Address        *string `json:"address"`
	Bio            *string `json:"bio"`
	ProfilePicture *string `json:"profilePicture"`
}

type UpdateProfileOutput struct {
	Message string     `json:"message"`
	User    UserOutput `json:"user"`
}
