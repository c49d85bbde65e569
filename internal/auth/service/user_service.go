package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/IVYLIFE/Authly/internal/auth/domain"
	"github.com/IVYLIFE/Authly/internal/auth/dto"
	autherror "github.com/IVYLIFE/Authly/internal/errors"
	"github.com/google/uuid"
)

type UserService struct {
	repo         domain.UserRepository
	tokenService TokenGenerator
	hasher       PasswordHasher
}

// AuthResult is what register and login hand back to the transport layer.
type AuthResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

func NewUserService(repo domain.UserRepository, tokenService TokenGenerator, hasher PasswordHasher) *UserService {
	return &UserService{
		repo:         repo,
		tokenService: tokenService,
		hasher:       hasher,
	}
}

func (s *UserService) Register(ctx context.Context, input dto.RegisterInput) (*AuthResult, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = domain.NormalizeEmail(input.Email)
	input.Password = strings.TrimSpace(input.Password)
	input.Address = strings.TrimSpace(input.Address)

	required := []struct{ field, value string }{
		{"name", input.Name},
		{"email", input.Email},
		{"password", input.Password},
		{"address", input.Address},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, autherror.MissingField(r.field)
		}
	}

	existingUser, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existingUser != nil {
		return nil, autherror.ErrEmailAlreadyInUse
	}

	hashedPassword, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:             uuid.New().String(),
		Name:           input.Name,
		Email:          input.Email,
		PasswordHash:   hashedPassword,
		Address:        input.Address,
		Bio:            input.Bio,
		ProfilePicture: input.ProfilePicture,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issueTokens(user)
}

func (s *UserService) Login(ctx context.Context, input dto.LoginInput) (*AuthResult, error) {
	email := domain.NormalizeEmail(input.Email)
	password := strings.TrimSpace(input.Password)
	if email == "" {
		return nil, autherror.MissingField("email")
	}
	if password == "" {
		return nil, autherror.MissingField("password")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, autherror.ErrUserNotFound
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, autherror.ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

func (s *UserService) issueTokens(user *domain.User) (*AuthResult, error) {
	accessToken, err := s.tokenService.IssueAccess(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refreshToken, err := s.tokenService.IssueRefresh(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	return &AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh mints a new access token for the subject of a valid refresh token.
// The refresh token itself is left as is.
func (s *UserService) Refresh(refreshToken string) (string, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return "", autherror.ErrRefreshTokenMissing
	}

	claims, err := s.tokenService.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", autherror.ErrInvalidRefreshToken, err)
	}

	accessToken, err := s.tokenService.IssueAccess(claims.Subject)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}

	return accessToken, nil
}

// Authenticate resolves a bearer access token to its stored user.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.tokenService.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, autherror.ErrUserNotFound
	}

	return user, nil
}

func (s *UserService) GetProfile(user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, autherror.ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, user *domain.User, input dto.UpdateProfileInput) (*domain.User, error) {
	if user == nil {
		return nil, autherror.ErrUserNotFound
	}

	upd := domain.UserUpdate{
		Bio:            input.Bio,
		ProfilePicture: input.ProfilePicture,
	}

	required := []struct {
		field string
		in    *string
		out   **string
	}{
		{"name", input.Name, &upd.Name},
		{"email", input.Email, &upd.Email},
		{"address", input.Address, &upd.Address},
	}
	for _, r := range required {
		if r.in == nil {
			continue
		}
		v := strings.TrimSpace(*r.in)
		if v == "" {
			return nil, autherror.InvalidField(r.field)
		}
		*r.out = &v
	}

	if input.Password != nil {
		if password := strings.TrimSpace(*input.Password); password != "" {
			hashed, err := s.hasher.Hash(password)
			if err != nil {
				return nil, fmt.Errorf("hash password: %w", err)
			}
			upd.PasswordHash = &hashed
		}
	}

	updated := *user
	updated.Apply(upd)

	if updated.Email != user.Email {
		existing, err := s.repo.GetByEmail(ctx, updated.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != user.ID {
			return nil, autherror.ErrEmailAlreadyInUse
		}
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	return &updated, nil
}
