package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehdirazajaffri/leads-management-system/internal/auth/password"
	"github.com/mehdirazajaffri/leads-management-system/internal/auth/repository"
	"github.com/mehdirazajaffri/leads-management-system/internal/auth/token"
	"github.com/mehdirazajaffri/leads-management-system/platform/apperr"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
)

const secret = "test-secret"

type testConfig struct{}

func (testConfig) GetJWTAccessSecret() string        { return secret }
func (testConfig) GetAccessTokenTTL() time.Duration  { return 15 * time.Minute }
func (testConfig) GetRefreshTokenTTL() time.Duration { return 24 * time.Hour }

var userColumns = []string{"id", "email", "password_hash", "name", "role", "created_at", "updated_at"}

func newService(t *testing.T) (*Service, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	svc := New(repository.New(mock), testConfig{}, logger.NewWriter("production", io.Discard))
	return svc, mock
}

func userRow(id uuid.UUID, hash, role string) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(userColumns).AddRow(id, "jane@example.com", hash, "Jane", role, now, now)
}

func TestSignInIssuesTokens(t *testing.T) {
	svc, mock := newService(t)
	userID := uuid.New()
	hash, err := password.Hash("correct-horse")
	require.NoError(t, err)

	mock.ExpectQuery("FROM users WHERE lower\\(email\\)").WithArgs("jane@example.com").
		WillReturnRows(userRow(userID, hash, "AGENT"))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(userID, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	session, err := svc.SignIn(context.Background(), " Jane@Example.com", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, session.RefreshToken)
	assert.Equal(t, "AGENT", session.User.Role)

	parsed, err := jwt.Parse(session.AccessToken, func(*jwt.Token) (interface{}, error) { return []byte(secret), nil })
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, userID.String(), claims["sub"])
	assert.Equal(t, "AGENT", claims["role"])
	assert.Equal(t, "access", claims["type"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	svc, mock := newService(t)
	hash, err := password.Hash("correct-horse")
	require.NoError(t, err)

	mock.ExpectQuery("FROM users").WithArgs("jane@example.com").
		WillReturnRows(userRow(uuid.New(), hash, "AGENT"))
	_, err = svc.SignIn(context.Background(), "jane@example.com", "wrong")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	assert.True(t, apperr.HasCode(err, CodeInvalidCredentials))

	mock.ExpectQuery("FROM users").WithArgs("ghost@example.com").
		WillReturnRows(pgxmock.NewRows(userColumns))
	_, err = svc.SignIn(context.Background(), "ghost@example.com", "whatever")
	assert.True(t, apperr.HasCode(err, CodeInvalidCredentials))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, mock := newService(t)
	userID := uuid.New()
	raw := "presented-token"

	mock.ExpectQuery("UPDATE refresh_tokens SET revoked_at").WithArgs(token.HashSHA256(raw)).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "expires_at"}).AddRow(userID, time.Now().Add(time.Hour)))
	mock.ExpectQuery("FROM users WHERE id").WithArgs(userID).
		WillReturnRows(userRow(userID, "x", "ADMIN"))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(userID, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	session, err := svc.Refresh(context.Background(), raw)
	require.NoError(t, err)
	assert.NotEqual(t, raw, session.RefreshToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshFailures(t *testing.T) {
	t.Run("reused token", func(t *testing.T) {
		svc, mock := newService(t)
		mock.ExpectQuery("UPDATE refresh_tokens").WithArgs(pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"user_id", "expires_at"}))

		_, err := svc.Refresh(context.Background(), "used")
		assert.True(t, apperr.HasCode(err, CodeTokenInvalid))
	})

	t.Run("expired token", func(t *testing.T) {
		svc, mock := newService(t)
		mock.ExpectQuery("UPDATE refresh_tokens").WithArgs(pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"user_id", "expires_at"}).AddRow(uuid.New(), time.Now().Add(-time.Minute)))

		_, err := svc.Refresh(context.Background(), "old")
		assert.True(t, apperr.HasCode(err, CodeTokenExpired))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetMeNotFound(t *testing.T) {
	svc, mock := newService(t)
	id := uuid.New()
	mock.ExpectQuery("FROM users WHERE id").WithArgs(id).WillReturnRows(pgxmock.NewRows(userColumns))

	_, err := svc.GetMe(context.Background(), id)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
