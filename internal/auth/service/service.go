package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mehdirazajaffri/leads-management-system/internal/auth/password"
	"github.com/mehdirazajaffri/leads-management-system/internal/auth/repository"
	"github.com/mehdirazajaffri/leads-management-system/internal/auth/token"
	"github.com/mehdirazajaffri/leads-management-system/platform/apperr"
	"github.com/mehdirazajaffri/leads-management-system/platform/config"
	"github.com/mehdirazajaffri/leads-management-system/platform/httpkit"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgTokenInvalid       = "token invalid"
	msgTokenExpired       = "token expired"
)

const (
	CodeInvalidCredentials = "invalid_credentials"
	CodeTokenInvalid       = "token_invalid"
	CodeTokenExpired       = "token_expired"
)

// Profile is a user without credentials.
type Profile struct {
	ID        uuid.UUID
	Email     string
	Name      string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session is the result of a successful sign-in or refresh.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         Profile
}

type Service struct {
	repo repository.AuthRepository
	cfg  config.AuthServiceConfig
	log  *logger.Logger
	now  func() time.Time
}

func New(repo repository.AuthRepository, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log, now: time.Now}
}

func (s *Service) SignIn(ctx context.Context, email, plainPassword string) (Session, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.AuthEvent("sign_in", email, false, "unknown email")
		return Session{}, invalidCredentials()
	}
	if err != nil {
		return Session{}, err
	}

	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		s.log.AuthEvent("sign_in", email, false, "wrong password")
		return Session{}, invalidCredentials()
	}

	session, err := s.issue(ctx, user)
	if err != nil {
		return Session{}, err
	}
	s.log.AuthEvent("sign_in", user.Email, true, "")
	return session, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// revoked whether or not it has expired.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	userID, expiresAt, err := s.repo.ConsumeRefreshToken(ctx, token.HashSHA256(refreshToken))
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, apperr.Unauthorized(msgTokenInvalid).WithCode(CodeTokenInvalid)
	}
	if err != nil {
		return Session{}, err
	}
	if s.now().After(expiresAt) {
		return Session{}, apperr.Unauthorized(msgTokenExpired).WithCode(CodeTokenExpired)
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, apperr.Unauthorized(msgTokenInvalid).WithCode(CodeTokenInvalid)
	}
	if err != nil {
		return Session{}, err
	}
	return s.issue(ctx, user)
}

func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	return s.repo.RevokeRefreshToken(ctx, token.HashSHA256(refreshToken))
}

func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (Profile, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return Profile{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return Profile{}, err
	}
	return ToProfile(user), nil
}

func (s *Service) issue(ctx context.Context, user repository.User) (Session, error) {
	accessToken, err := s.signJWT(user.ID, user.Role)
	if err != nil {
		return Session{}, err
	}

	refresh, err := token.NewRefresh()
	if err != nil {
		return Session{}, err
	}

	expiresAt := s.now().Add(s.cfg.GetRefreshTokenTTL())
	if err := s.repo.CreateRefreshToken(ctx, user.ID, refresh.Hash, expiresAt); err != nil {
		return Session{}, err
	}

	return Session{AccessToken: accessToken, RefreshToken: refresh.Raw, User: ToProfile(user)}, nil
}

func (s *Service) signJWT(userID uuid.UUID, role string) (string, error) {
	now := s.now()
	claims := httpkit.AccessClaims{
		Role: role,
		Type: httpkit.AccessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.GetAccessTokenTTL())),
		},
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

func invalidCredentials() error {
	return apperr.Unauthorized(msgInvalidCredentials).WithCode(CodeInvalidCredentials)
}

// ToProfile drops the password hash.
func ToProfile(user repository.User) Profile {
	return Profile{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
