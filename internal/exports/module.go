// Package exports serves the CSV and workbook downloads and the export API keys.
package exports

import (
	apphttp "github.com/mehdirazajaffri/leads-management-system/internal/http"
	"github.com/mehdirazajaffri/leads-management-system/platform/db"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
	"github.com/mehdirazajaffri/leads-management-system/platform/validator"
)

// Module is the exports bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	repo    *Repository
}

// NewModule creates and initializes the exports module.
func NewModule(pool db.Querier, leads LeadRows, activity ActivityExporter, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	return &Module{
		handler: NewHandler(repo, leads, activity, val, log),
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "exports"
}

// RegisterRoutes mounts export routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	publicGroup := ctx.V1.Group("/exports")
	publicGroup.Use(APIKeyAuthMiddleware(m.repo))
	publicGroup.GET("/leads.csv", m.handler.ExportLeadsCSV)

	ctx.Admin.GET("/leads/export", m.handler.ExportLeads)
	ctx.Admin.GET("/activity/export", m.handler.ExportActivity)

	keys := ctx.Admin.Group("/exports/api-keys")
	keys.POST("", m.handler.HandleCreateAPIKey)
	keys.GET("", m.handler.HandleListAPIKeys)
	keys.DELETE("/:id", m.handler.HandleRevokeAPIKey)
}

var _ apphttp.Module = (*Module)(nil)
