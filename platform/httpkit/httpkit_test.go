package httpkit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehdirazajaffri/leads-management-system/platform/apperr"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
)

type jwtConfig string

func (s jwtConfig) GetJWTAccessSecret() string { return string(s) }

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"not found", apperr.NotFound("lead not found").WithCode("lead_not_found"), http.StatusNotFound, "lead_not_found", "lead not found"},
		{"wrapped validation", fmt.Errorf("op: %w", apperr.Validation("cannot leave a final status").WithCode("invalid_transition")), http.StatusBadRequest, "invalid_transition", "cannot leave a final status"},
		{"timeout", apperr.Timeout("try again").WithCode("transition_timeout"), http.StatusServiceUnavailable, "transition_timeout", "try again"},
		{"untyped", errors.New("pq: connection reset"), http.StatusInternalServerError, "", "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			assert.True(t, HandleError(c, tt.err))
			assert.Equal(t, tt.wantStatus, w.Code)

			body := decodeError(t, w)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantMsg, body.Error)
		})
	}

	t.Run("nil", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		assert.False(t, HandleError(c, nil))
	})

	t.Run("retry after on timeout", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		HandleError(c, apperr.Timeout("busy"))
		assert.Equal(t, "2", w.Header().Get("Retry-After"))
	})
}

func TestAuthRequired(t *testing.T) {
	const secret = "test-secret"
	userID := uuid.New()

	router := gin.New()
	router.GET("/me", AuthRequired(jwtConfig(secret)), func(c *gin.Context) {
		id := MustGetIdentity(c)
		c.JSON(http.StatusOK, gin.H{"id": id.UserID().String(), "admin": id.IsAdmin(), "role": id.Role()})
	})
	router.GET("/admin", AuthRequired(jwtConfig(secret)), RequireRole(RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	valid := func(role, typ string) string {
		return signToken(t, secret, jwt.MapClaims{
			"sub":  userID.String(),
			"role": role,
			"type": typ,
			"exp":  time.Now().Add(time.Minute).Unix(),
		})
	}

	do := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("admin token", func(t *testing.T) {
		w := do("/me", valid(RoleAdmin, "access"))
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, fmt.Sprintf(`{"id":%q,"admin":true,"role":"ADMIN"}`, userID), w.Body.String())
	})

	t.Run("missing token", func(t *testing.T) {
		w := do("/me", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, errMissingToken, decodeError(t, w).Error)
	})

	t.Run("refresh token type rejected", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do("/me", valid(RoleAgent, "refresh")).Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signToken(t, "other", jwt.MapClaims{"sub": userID.String(), "role": RoleAdmin, "type": "access"})
		assert.Equal(t, http.StatusUnauthorized, do("/me", token).Code)
	})

	t.Run("expired", func(t *testing.T) {
		token := signToken(t, secret, jwt.MapClaims{
			"sub": userID.String(), "role": RoleAdmin, "type": "access",
			"exp": time.Now().Add(-time.Minute).Unix(),
		})
		assert.Equal(t, http.StatusUnauthorized, do("/me", token).Code)
	})

	t.Run("no expiry", func(t *testing.T) {
		token := signToken(t, secret, jwt.MapClaims{"sub": userID.String(), "role": RoleAdmin, "type": "access"})
		assert.Equal(t, http.StatusUnauthorized, do("/me", token).Code)
	})

	t.Run("agent forbidden on admin route", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, do("/admin", valid(RoleAgent, "access")).Code)
		assert.Equal(t, http.StatusNoContent, do("/admin", valid(RoleAdmin, "access")).Code)
	})
}

func TestRateLimit(t *testing.T) {
	limiter := NewIPRateLimiter(0, 2, nil)
	router := gin.New()
	router.POST("/sign-in", limiter.RateLimit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for range 3 {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sign-in", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRequestLoggerRecordsServerErrors(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWriter("production", &buf)

	router := gin.New()
	router.Use(RequestID(), RequestLogger(log))
	router.GET("/boom", func(c *gin.Context) { HandleError(c, errors.New("db down")) })

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))
	assert.Contains(t, buf.String(), `"msg":"http_error"`)
	assert.Contains(t, buf.String(), `"error":"db down"`)
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
}

func TestBindListState(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/leads?q=+jane+&sort=name&dir=desc&page=3&pageSize=25&selected=a&selected=b", nil)

	state := BindListState(c)
	assert.Equal(t, "jane", state.Query)
	assert.Equal(t, "name", state.SortColumn)
	assert.Equal(t, "desc", state.SortDir)
	assert.Equal(t, 2, state.PageIndex())
	assert.Equal(t, 25, state.PageSize)
	assert.Equal(t, []string{"a", "b"}, state.Selected)

	c.Request = httptest.NewRequest(http.MethodGet, "/leads?page=abc&q=x", nil)
	state = BindListState(c)
	assert.Equal(t, "x", state.Query)
	assert.Equal(t, 0, state.PageIndex())
}

func TestOptionalDateQuery(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?from=2025-06-01&bad=06/01/2025", nil)

	from, err := OptionalDateQuery(c, "from", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), *from)

	to, err := OptionalDateQuery(c, "from", true)
	require.NoError(t, err)
	assert.Equal(t, 2025, to.Year())
	assert.Equal(t, 23, to.Hour())

	missing, err := OptionalDateQuery(c, "to", false)
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = OptionalDateQuery(c, "bad", false)
	assert.True(t, apperr.Is(err, apperr.KindBadRequest))
}
