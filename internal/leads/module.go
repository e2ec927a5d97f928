// Package leads provides the lead management bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"github.com/mehdirazajaffri/leads-management-system/internal/events"
	apphttp "github.com/mehdirazajaffri/leads-management-system/internal/http"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads/handler"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads/importer"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads/lifecycle"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads/management"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads/repository"
	"github.com/mehdirazajaffri/leads-management-system/platform/config"
	"github.com/mehdirazajaffri/leads-management-system/platform/db"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
	"github.com/mehdirazajaffri/leads-management-system/platform/metrics"
	"github.com/mehdirazajaffri/leads-management-system/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler       *handler.Handler
	importHandler *handler.ImportHandler
	management    *management.Service
	lifecycle     *lifecycle.Service
	public        Service
}

// NewModule creates and initializes the leads module with all its dependencies.
// archiver may be nil when object storage is not configured.
func NewModule(pool db.Pool, eventBus events.Bus, val *validator.Validator, cfg *config.Config, m *metrics.Metrics, archiver importer.Archiver, log *logger.Logger) *Module {
	repo := repository.New(pool)

	// Create focused services (vertical slices)
	lifecycleSvc := lifecycle.New(repo, eventBus, cfg, m, log)
	mgmtSvc := management.New(repo, lifecycleSvc, cfg)
	importSvc := importer.New(repo, archiver, eventBus, cfg, m, log)

	return &Module{
		handler:       handler.New(mgmtSvc, val),
		importHandler: handler.NewImportHandler(importSvc, cfg.GetMaxUploadSize()),
		management:    mgmtSvc,
		lifecycle:     lifecycleSvc,
		public:        publicService{repo: repo},
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// ManagementService returns the lead management service for external use.
func (m *Module) ManagementService() *management.Service {
	return m.management
}

// LifecycleService returns the status transition service.
func (m *Module) LifecycleService() *lifecycle.Service {
	return m.lifecycle
}

// Service returns the minimal lead API for other domains.
func (m *Module) Service() Service {
	return m.public
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))

	adminLeads := ctx.Admin.Group("/leads")
	m.handler.RegisterAdminRoutes(adminLeads)
	m.importHandler.RegisterRoutes(adminLeads)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
