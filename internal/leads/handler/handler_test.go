package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehdirazajaffri/leads-management-system/internal/leads/importer"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads/lifecycle"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads/management"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads/repository"
	"github.com/mehdirazajaffri/leads-management-system/platform/httpkit"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
	"github.com/mehdirazajaffri/leads-management-system/platform/validator"
)

type testConfig struct{}

func (testConfig) GetPhoneDefaultRegion() string           { return "US" }
func (testConfig) GetTransitionWaitTimeout() time.Duration { return 10 * time.Second }
func (testConfig) GetTransitionExecTimeout() time.Duration { return 15 * time.Second }

type server struct {
	engine *gin.Engine
	mock   pgxmock.PgxPoolIface
	userID uuid.UUID
}

func newServer(t *testing.T, role string) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	log := logger.NewWriter("production", io.Discard)
	repo := repository.New(mock)
	transitions := lifecycle.New(repo, nil, testConfig{}, nil, log)
	mgmt := management.New(repo, transitions, testConfig{})
	imports := importer.New(repo, nil, nil, testConfig{}, nil, log)

	s := &server{mock: mock, userID: uuid.New()}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, s.userID)
		c.Set(httpkit.ContextRoleKey, role)
		c.Next()
	})

	h := New(mgmt, validator.New())
	h.RegisterRoutes(r.Group("/leads"))
	admin := r.Group("/admin/leads")
	h.RegisterAdminRoutes(admin)
	NewImportHandler(imports, 1<<20).RegisterRoutes(admin)

	s.engine = r
	return s
}

func (s *server) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) httpkit.ErrorResponse {
	t.Helper()
	var resp httpkit.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreateValidationFailure(t *testing.T) {
	s := newServer(t, httpkit.RoleAdmin)

	w := s.do(http.MethodPost, "/admin/leads", strings.NewReader(`{"name":"Jane"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgValidationFailed, decode(t, w).Error)

	w = s.do(http.MethodPost, "/admin/leads", strings.NewReader(`{`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgInvalidRequest, decode(t, w).Error)
}

func TestGetRejectsBadID(t *testing.T) {
	s := newServer(t, httpkit.RoleAgent)

	w := s.do(http.MethodGet, "/leads/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAgentCannotReadForeignLead(t *testing.T) {
	s := newServer(t, httpkit.RoleAgent)
	leadID, statusID, owner := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()

	s.mock.ExpectQuery("FROM leads l").WithArgs(leadID).WillReturnRows(pgxmock.NewRows([]string{
		"id", "name", "phone", "email", "source_platform", "campaign_name",
		"current_status_id", "assigned_to_id", "is_archived", "created_at", "updated_at", "last_contacted_at",
		"status_name", "is_final", "agent_name", "agent_email",
	}).AddRow(
		leadID, "Jane", "+16502530000", "", "", "",
		statusID, &owner, false, now, now, (*time.Time)(nil),
		"Busy", false, (*string)(nil), (*string)(nil),
	))

	w := s.do(http.MethodGet, "/leads/"+leadID.String(), nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestUpdateStatusFromFinalIsRejected(t *testing.T) {
	s := newServer(t, httpkit.RoleAdmin)
	leadID, converted, busy := uuid.New(), uuid.New(), uuid.New()

	s.mock.ExpectQuery("FROM leads l").WithArgs(leadID).WillReturnRows(
		pgxmock.NewRows([]string{"id", "status_id", "name", "is_final", "assigned_to_id", "is_archived"}).
			AddRow(leadID, converted, "Converted", true, (*uuid.UUID)(nil), false))
	s.mock.ExpectQuery("FROM statuses").WithArgs(busy).WillReturnRows(
		pgxmock.NewRows([]string{"id", "name", "is_final"}).AddRow(busy, "Busy", false))

	body := `{"statusId":"` + busy.String() + `","note":"retry"}`
	w := s.do(http.MethodPatch, "/admin/leads/"+leadID.String(), strings.NewReader(body), "application/json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Equal(t, lifecycle.CodeInvalidTransition, resp.Code)
	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestUpdateStatusRejectsMalformedCallbackTime(t *testing.T) {
	s := newServer(t, httpkit.RoleAgent)

	body := `{"statusId":"` + uuid.NewString() + `","callbackDate":"2025-06-01","callbackTime":"25:00"}`
	w := s.do(http.MethodPatch, "/leads/"+uuid.NewString()+"/status", strings.NewReader(body), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgValidationFailed, decode(t, w).Error)
}

func multipartBody(t *testing.T, fields map[string]string, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadPreview(t *testing.T) {
	s := newServer(t, httpkit.RoleAdmin)
	s.mock.ExpectQuery("FROM statuses ORDER BY name").WillReturnRows(
		pgxmock.NewRows([]string{"id", "name", "is_final"}).AddRow(uuid.New(), "Need to Contact", false))

	body, ct := multipartBody(t, map[string]string{"preview": "true"}, "leads.csv",
		"Name,Phone,Email\nJane,(650) 253-0000,jane@example.com\n,6502530001,\n")
	w := s.do(http.MethodPost, "/admin/leads/upload", body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Valid      int `json:"valid"`
		ErrorCount int `json:"errorCount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Valid)
	assert.Equal(t, 1, resp.ErrorCount)
}

func TestUploadWithoutFile(t *testing.T) {
	s := newServer(t, httpkit.RoleAdmin)

	body, ct := multipartBody(t, map[string]string{"preview": "true"}, "", "")
	w := s.do(http.MethodPost, "/admin/leads/upload", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No file provided", decode(t, w).Error)
}

func TestUploadTooLarge(t *testing.T) {
	s := newServer(t, httpkit.RoleAdmin)

	body, ct := multipartBody(t, nil, "big.csv", "Name,Phone\n"+strings.Repeat("x", 1<<20))
	w := s.do(http.MethodPost, "/admin/leads/upload", body, ct)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Error, "File size exceeds 1MB limit")
}
