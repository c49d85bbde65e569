package service

//go:generate mockgen -destination=../../mocks/mock_token_generator.go -package=mocks github.com/IVYLIFE/Authly/internal/auth/service TokenGenerator

import (
	"errors"
	"fmt"
	"time"

	autherror "github.com/IVYLIFE/Authly/internal/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenGenerator interface {
	IssueAccess(userID string) (string, error)
	IssueRefresh(userID string) (string, error)
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	VerifyAccessToken(tokenString string) (*JWTCustomClaims, error)
	VerifyRefreshToken(tokenString string) (*JWTCustomClaims, error)
}

type TokenService struct {
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration

	now func() time.Time
}

// JWTCustomClaims carries the user id in the standard "sub" claim.
type JWTCustomClaims struct {
	jwt.RegisteredClaims
}

func NewTokenService(accessSecret, refreshSecret string, accessMinutes, refreshMinutes int) *TokenService {
	return &TokenService{
		AccessTokenSecret:  accessSecret,
		RefreshTokenSecret: refreshSecret,
		AccessTokenExpiry:  time.Duration(accessMinutes) * time.Minute,
		RefreshTokenExpiry: time.Duration(refreshMinutes) * time.Minute,
		now:                time.Now,
	}
}

func (ts *TokenService) IssueAccess(userID string) (string, error) {
	return ts.sign(userID, ts.AccessTokenSecret, ts.AccessTokenExpiry)
}

func (ts *TokenService) IssueRefresh(userID string) (string, error) {
	return ts.sign(userID, ts.RefreshTokenSecret, ts.RefreshTokenExpiry)
}

func (ts *TokenService) sign(userID, secret string, ttl time.Duration) (string, error) {
	now := ts.now()
	claims := JWTCustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (ts *TokenService) GetAccessTokenExpiry() time.Duration {
	return ts.AccessTokenExpiry
}

func (ts *TokenService) GetRefreshTokenExpiry() time.Duration {
	return ts.RefreshTokenExpiry
}

// VerifyAccessToken parses and validates the given access token string.
func (ts *TokenService) VerifyAccessToken(tokenString string) (*JWTCustomClaims, error) {
	return ts.Verify(tokenString, ts.AccessTokenSecret)
}

// VerifyRefreshToken parses and validates the given refresh token string.
func (ts *TokenService) VerifyRefreshToken(tokenString string) (*JWTCustomClaims, error) {
	return ts.Verify(tokenString, ts.RefreshTokenSecret)
}

// Verify checks the signature against secret and the expiry against the
// current time. It returns autherror.ErrTokenExpired once now >= exp and
// autherror.ErrTokenInvalid for every other failure.
func (ts *TokenService) Verify(tokenString, secret string) (*JWTCustomClaims, error) {
	claims := &JWTCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, autherror.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", autherror.ErrTokenInvalid, err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, autherror.ErrTokenInvalid
	}

	return claims, nil
}
