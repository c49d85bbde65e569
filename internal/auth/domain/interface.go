package domain

//go:generate mockgen -destination=../../mocks/mock_user_repository.go -package=mocks github.com/IVYLIFE/Authly/internal/auth/domain UserRepository

import "context"

// UserRepository is the credential store. GetByEmail and GetByID return
// (nil, nil) when no user matches. Create and Update return
// errors.ErrEmailAlreadyInUse on a unique email violation, and Update returns
// errors.ErrUserNotFound when the record is gone.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Ping(ctx context.Context) error
}
