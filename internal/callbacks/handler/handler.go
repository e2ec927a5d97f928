package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mehdirazajaffri/leads-management-system/internal/callbacks/service"
	"github.com/mehdirazajaffri/leads-management-system/internal/callbacks/transport"
	"github.com/mehdirazajaffri/leads-management-system/platform/httpkit"
	"github.com/mehdirazajaffri/leads-management-system/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	agentID, err := httpkit.OptionalUUIDQuery(c, "agentId")
	if httpkit.HandleError(c, err) {
		return
	}
	page, err := h.svc.List(c.Request.Context(), identity, service.ListQuery{
		Filter:  c.Query("filter"),
		AgentID: agentID,
	}, httpkit.BindListState(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, page)
}

func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	var req transport.CreateCallbackRequest
	if !h.bind(c, &req) {
		return
	}
	cb, err := h.svc.Create(c.Request.Context(), identity, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, cb)
}

func (h *Handler) Update(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}
	var req transport.UpdateCallbackRequest
	if !h.bind(c, &req) {
		return
	}
	if req.ScheduledTime != nil && strings.TrimSpace(*req.ScheduledTime) != "" {
		if err := h.val.Var(strings.TrimSpace(*req.ScheduledTime), "timeofday"); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, "scheduledTime must be HH:MM")
			return
		}
	}
	cb, err := h.svc.Update(c.Request.Context(), identity, id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, cb)
}

func (h *Handler) Delete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}
	res, err := h.svc.Delete(c.Request.Context(), identity, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

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
