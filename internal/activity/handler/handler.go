package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mehdirazajaffri/leads-management-system/internal/activity/service"
	"github.com/mehdirazajaffri/leads-management-system/internal/activity/transport"
	"github.com/mehdirazajaffri/leads-management-system/platform/apperr"
	"github.com/mehdirazajaffri/leads-management-system/platform/httpkit"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Search)
}

func (h *Handler) RegisterLeadRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/activity", h.ForLead)
}

func (h *Handler) Search(c *gin.Context) {
	q, err := BindQuery(c)
	if httpkit.HandleError(c, err) {
		return
	}
	res, err := h.svc.Search(c.Request.Context(), q)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

func (h *Handler) ForLead(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}
	page, limit := pageParams(c)
	res, err := h.svc.ForLead(c.Request.Context(), identity, id, page, limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, res)
}

// BindQuery reads the activity search filters from the query string.
func BindQuery(c *gin.Context) (transport.Query, error) {
	var (
		q   transport.Query
		err error
	)
	if q.LeadID, err = httpkit.OptionalUUIDQuery(c, "leadId"); err != nil {
		return q, err
	}
	if q.AgentID, err = httpkit.OptionalUUIDQuery(c, "agentId"); err != nil {
		return q, err
	}
	if q.StartDate, err = httpkit.OptionalDateQuery(c, "startDate", false); err != nil {
		return q, err
	}
	if q.EndDate, err = httpkit.OptionalDateQuery(c, "endDate", true); err != nil {
		return q, err
	}
	if raw := strings.TrimSpace(c.Query("includePrivate")); raw != "" {
		if q.IncludePrivate, err = strconv.ParseBool(raw); err != nil {
			return q, apperr.BadRequest("invalid includePrivate")
		}
	}
	q.Page, q.Limit = pageParams(c)
	return q, nil
}

// pageParams reads page and limit; bad values fall back to the defaults.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(transport.DefaultLimit)))
	return page, limit
}
