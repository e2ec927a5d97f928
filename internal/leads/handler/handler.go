package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mehdirazajaffri/leads-management-system/internal/leads/lifecycle"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads/management"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads/transport"
	"github.com/mehdirazajaffri/leads-management-system/platform/httpkit"
	"github.com/mehdirazajaffri/leads-management-system/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *management.Service
	val *validator.Validator
}

func New(svc *management.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the routes every authenticated user may call.
// Agents only reach their own leads.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListMine)
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id/status", h.UpdateStatus)
	rg.POST("/:id/notes", h.AddNote)
}

// RegisterAdminRoutes mounts the admin lead routes.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.PATCH("/bulk", h.BulkUpdate)
	rg.DELETE("/bulk", h.BulkArchive)
	rg.POST("/assign", h.BulkAssign)
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id", h.UpdateStatus)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if !h.bind(c, &req) {
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, lead)
}

func (h *Handler) List(c *gin.Context) {
	filters, err := BindListFilters(c)
	if httpkit.HandleError(c, err) {
		return
	}

	page, err := h.svc.List(c.Request.Context(), filters, httpkit.BindListState(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, page)
}

// ListMine lists the caller's leads. Admins get the full list.
func (h *Handler) ListMine(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	if id.IsAdmin() {
		h.List(c)
		return
	}

	filters, err := BindListFilters(c)
	if httpkit.HandleError(c, err) {
		return
	}

	page, err := h.svc.ListForAgent(c.Request.Context(), id.UserID(), filters, httpkit.BindListState(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, page)
}

func (h *Handler) Get(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	leadID, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	lead, err := h.svc.Get(c.Request.Context(), actor, leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	leadID, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	var req transport.UpdateLeadStatusRequest
	if !h.bind(c, &req) {
		return
	}

	res, err := h.svc.UpdateStatus(c.Request.Context(), actor, leadID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

func (h *Handler) AddNote(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	leadID, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	var req transport.AddNoteRequest
	if !h.bind(c, &req) {
		return
	}

	note, err := h.svc.AddNote(c.Request.Context(), actor, leadID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, note)
}

func (h *Handler) BulkUpdate(c *gin.Context) {
	actor, ok := actorOf(c)
	if !ok {
		return
	}
	var req transport.BulkUpdateRequest
	if !h.bind(c, &req) {
		return
	}

	res, err := h.svc.BulkUpdate(c.Request.Context(), actor, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

func (h *Handler) BulkAssign(c *gin.Context) {
	var req transport.BulkAssignRequest
	if !h.bind(c, &req) {
		return
	}

	res, err := h.svc.BulkAssign(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

func (h *Handler) BulkArchive(c *gin.Context) {
	var req transport.BulkArchiveRequest
	if !h.bind(c, &req) {
		return
	}

	res, err := h.svc.BulkArchive(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

// bind decodes and validates a JSON body, writing the 400 itself on failure.
func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}

func actorOf(c *gin.Context) (lifecycle.Actor, bool) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return lifecycle.Actor{}, false
	}
	return lifecycle.Actor{ID: id.UserID(), Role: id.Role()}, true
}

// BindListFilters reads the lead list filters from the query string.
func BindListFilters(c *gin.Context) (transport.ListFilters, error) {
	var (
		f   transport.ListFilters
		err error
	)
	if f.AgentID, err = httpkit.OptionalUUIDQuery(c, "agentId"); err != nil {
		return f, err
	}
	if f.StatusID, err = httpkit.OptionalUUIDQuery(c, "statusId"); err != nil {
		return f, err
	}
	if f.StartDate, err = httpkit.OptionalDateQuery(c, "startDate", false); err != nil {
		return f, err
	}
	if f.EndDate, err = httpkit.OptionalDateQuery(c, "endDate", true); err != nil {
		return f, err
	}
	f.SourcePlatform = strings.TrimSpace(c.Query("sourcePlatform"))
	f.CampaignName = strings.TrimSpace(c.Query("campaignName"))
	f.Search = strings.TrimSpace(c.Query("search"))
	f.IsArchived, _ = strconv.ParseBool(c.DefaultQuery("isArchived", "false"))
	return f, nil
}
