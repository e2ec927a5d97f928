package exports

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	activityhandler "github.com/mehdirazajaffri/leads-management-system/internal/activity/handler"
	activitytransport "github.com/mehdirazajaffri/leads-management-system/internal/activity/transport"
	leadshandler "github.com/mehdirazajaffri/leads-management-system/internal/leads/handler"
	leadstransport "github.com/mehdirazajaffri/leads-management-system/internal/leads/transport"
	"github.com/mehdirazajaffri/leads-management-system/platform/apperr"
	"github.com/mehdirazajaffri/leads-management-system/platform/httpkit"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
	"github.com/mehdirazajaffri/leads-management-system/platform/validator"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportKeyIDKey  = "exportKeyID"
)

var leadHeaders = []string{
	"ID", "Name", "Email", "Phone", "Source Platform", "Campaign Name",
	"Assigned To", "Status", "Created At", "Last Contacted",
}

var activityHeaders = []string{
	"Timestamp", "Lead", "Agent", "Old Status", "New Status", "Note",
}

// LeadRows lists every lead matching the admin filters.
type LeadRows interface {
	Rows(ctx context.Context, filters leadstransport.ListFilters) ([]leadstransport.LeadResponse, error)
}

// ActivityExporter lists the public activity matching a search.
type ActivityExporter interface {
	Export(ctx context.Context, q activitytransport.Query) ([]activitytransport.EntryResponse, error)
}

// Handler handles export requests and API key management.
type Handler struct {
	repo     *Repository
	leads    LeadRows
	activity ActivityExporter
	val      *validator.Validator
	log      *logger.Logger
	now      func() time.Time
}

// NewHandler creates a new export handler.
func NewHandler(repo *Repository, leads LeadRows, activity ActivityExporter, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{repo: repo, leads: leads, activity: activity, val: val, log: log, now: time.Now}
}

// ---- Admin API Key Management (JWT authenticated) ----

type CreateAPIKeyRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type APIKeyResponse struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	KeyPrefix  string     `json:"keyPrefix"`
	IsActive   bool       `json:"isActive"`
	CreatedAt  string     `json:"createdAt"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
}

type CreateAPIKeyResponse struct {
	APIKeyResponse
	Key string `json:"key"`
}

func (h *Handler) HandleCreateAPIKey(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	plaintext, hash, prefix, err := GenerateAPIKey()
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to generate API key", nil)
		return
	}

	createdBy := identity.UserID()
	key, err := h.repo.CreateAPIKey(c.Request.Context(), strings.TrimSpace(req.Name), hash, prefix, &createdBy)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, CreateAPIKeyResponse{
		APIKeyResponse: toAPIKeyResponse(key),
		Key:            plaintext,
	})
}

func (h *Handler) HandleListAPIKeys(c *gin.Context) {
	keys, err := h.repo.ListAPIKeys(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	result := make([]APIKeyResponse, len(keys))
	for i, k := range keys {
		result[i] = toAPIKeyResponse(k)
	}

	httpkit.OK(c, result)
}

func (h *Handler) HandleRevokeAPIKey(c *gin.Context) {
	keyID, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	err = h.repo.RevokeAPIKey(c.Request.Context(), keyID)
	if errors.Is(err, ErrAPIKeyNotFound) {
		err = apperr.NotFound("API key not found")
	}
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"message": "API key revoked"})
}

// ---- Lead export (admin JWT or export API key) ----

// ExportLeads writes the filtered lead table as CSV, or as a workbook when
// format=xlsx. history=true appends the activity and callback trail.
func (h *Handler) ExportLeads(c *gin.Context) {
	h.exportLeads(c, c.DefaultQuery("format", "csv"))
}

// ExportLeadsCSV is the machine endpoint; it always answers CSV.
func (h *Handler) ExportLeadsCSV(c *gin.Context) {
	if keyID, ok := c.Get(exportKeyIDKey); ok {
		if id, ok := keyID.(uuid.UUID); ok {
			h.repo.TouchAPIKey(c.Request.Context(), id)
		}
	}
	h.exportLeads(c, "csv")
}

func (h *Handler) exportLeads(c *gin.Context, format string) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "csv" && format != "xlsx" {
		httpkit.Error(c, http.StatusBadRequest, "invalid format", "format must be csv or xlsx")
		return
	}
	withHistory, _ := strconv.ParseBool(c.DefaultQuery("history", "false"))

	filters, err := leadshandler.BindListFilters(c)
	if httpkit.HandleError(c, err) {
		return
	}

	ctx := c.Request.Context()
	rows, err := h.leads.Rows(ctx, filters)
	if httpkit.HandleError(c, err) {
		return
	}

	var history map[uuid.UUID]*History
	if withHistory {
		ids := make([]uuid.UUID, len(rows))
		for i, r := range rows {
			ids[i] = r.ID
		}
		if history, err = h.repo.LeadHistory(ctx, ids); httpkit.HandleError(c, err) {
			return
		}
	}

	records := buildLeadRecords(rows, history, withHistory)
	filename := "leads-export-" + h.now().UTC().Format("2006-01-02")

	if format == "xlsx" {
		startDownload(c, contentTypeXLSX, filename+".xlsx")
		if err := writeXLSX(c.Writer, leadsSheet, records); err != nil {
			h.log.Error("lead xlsx export failed", "error", err)
		}
		return
	}

	startDownload(c, contentTypeCSV, filename+".csv")
	if err := writeQuotedCSV(c.Writer, records); err != nil {
		h.log.Error("lead csv export failed", "error", err)
	}
}

// ExportActivity writes the public activity matching the admin search as CSV.
func (h *Handler) ExportActivity(c *gin.Context) {
	q, err := activityhandler.BindQuery(c)
	if httpkit.HandleError(c, err) {
		return
	}

	entries, err := h.activity.Export(c.Request.Context(), q)
	if httpkit.HandleError(c, err) {
		return
	}

	startDownload(c, contentTypeCSV, "activity-export-"+h.now().UTC().Format("2006-01-02")+".csv")
	writer := csv.NewWriter(c.Writer)
	if err := writer.Write(activityHeaders); err != nil {
		h.log.Error("activity csv export failed", "error", err)
		return
	}
	for _, e := range entries {
		if err := writer.Write(activityRecord(e)); err != nil {
			h.log.Error("activity csv export failed", "error", err)
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		h.log.Error("activity csv export failed", "error", err)
	}
}

func startDownload(c *gin.Context, contentType, filename string) {
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
}

func buildLeadRecords(rows []leadstransport.LeadResponse, history map[uuid.UUID]*History, withHistory bool) [][]string {
	header := leadHeaders
	if withHistory {
		header = append(append([]string{}, leadHeaders...), "Activity", "Callbacks")
	}

	records := make([][]string, 0, len(rows)+1)
	records = append(records, header)
	for _, lead := range rows {
		record := leadRecord(lead)
		if withHistory {
			var activity, callbacks string
			if h, ok := history[lead.ID]; ok {
				activity = strings.Join(h.Activity, historySep)
				callbacks = strings.Join(h.Callbacks, historySep)
			}
			record = append(record, activity, callbacks)
		}
		records = append(records, record)
	}
	return records
}

func leadRecord(lead leadstransport.LeadResponse) []string {
	assigned := "Unassigned"
	if lead.AssignedTo != nil && lead.AssignedTo.Name != "" {
		assigned = lead.AssignedTo.Name
	}
	lastContacted := ""
	if lead.LastContactedAt != nil {
		lastContacted = lead.LastContactedAt.UTC().Format(isoTimeLayout)
	}
	return []string{
		lead.ID.String(),
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.SourcePlatform,
		lead.CampaignName,
		assigned,
		lead.Status.Name,
		lead.CreatedAt.UTC().Format(isoTimeLayout),
		lastContacted,
	}
}

func activityRecord(e activitytransport.EntryResponse) []string {
	var agent, oldStatus, newStatus, note string
	if e.Agent != nil {
		agent = e.Agent.Name
	}
	if e.OldStatus != nil {
		oldStatus = e.OldStatus.Name
	}
	if e.NewStatus != nil {
		newStatus = e.NewStatus.Name
	}
	if e.Note != nil {
		note = *e.Note
	}
	return []string{
		e.Timestamp.UTC().Format(isoTimeLayout),
		e.Lead.Name,
		agent,
		oldStatus,
		newStatus,
		note,
	}
}

func toAPIKeyResponse(key APIKey) APIKeyResponse {
	return APIKeyResponse{
		ID:         key.ID,
		Name:       key.Name,
		KeyPrefix:  key.KeyPrefix,
		IsActive:   key.IsActive,
		CreatedAt:  key.CreatedAt.Format(time.RFC3339),
		LastUsedAt: key.LastUsedAt,
	}
}
