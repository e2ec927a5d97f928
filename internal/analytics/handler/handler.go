package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/mehdirazajaffri/leads-management-system/internal/analytics/service"
	"github.com/mehdirazajaffri/leads-management-system/platform/httpkit"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Dashboard)
	rg.GET("/trends", h.Trends)
}

func (h *Handler) Dashboard(c *gin.Context) {
	res, err := h.svc.Dashboard(c.Request.Context(), c.Query("range"), c.Query("campaign"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

func (h *Handler) Trends(c *gin.Context) {
	res, err := h.svc.Trends(c.Request.Context(), c.Query("period"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}
