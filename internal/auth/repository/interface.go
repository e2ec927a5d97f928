package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserReader is the read-only user surface other packages may depend on.
type UserReader interface {
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (User, error)
}

// TokenStore persists refresh token digests.
type TokenStore interface {
	CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ConsumeRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, time.Time, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, userID uuid.UUID) error
}

// AuthRepository defines the interface for authentication data operations.
type AuthRepository interface {
	UserReader
	TokenStore
}

// Ensure Repository implements AuthRepository
var _ AuthRepository = (*Repository)(nil)
