package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mehdirazajaffri/leads-management-system/internal/agents/service"
	"github.com/mehdirazajaffri/leads-management-system/internal/agents/transport"
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
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), httpkit.BindListState(c))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, page)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}
	agent, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, agent)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateAgentRequest
	if !h.bind(c, &req) {
		return
	}
	agent, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, agent)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}
	var req transport.UpdateAgentRequest
	if !h.bind(c, &req) {
		return
	}
	agent, err := h.svc.Update(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, agent)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}
	res, err := h.svc.Delete(c.Request.Context(), id)
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
