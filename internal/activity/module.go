// Package activity serves the lead activity log.
package activity

import (
	"github.com/mehdirazajaffri/leads-management-system/internal/activity/handler"
	"github.com/mehdirazajaffri/leads-management-system/internal/activity/repository"
	"github.com/mehdirazajaffri/leads-management-system/internal/activity/service"
	apphttp "github.com/mehdirazajaffri/leads-management-system/internal/http"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads"
	"github.com/mehdirazajaffri/leads-management-system/platform/db"
)

type Module struct {
	handler *handler.Handler
	service *service.Service
}

func NewModule(pool db.Querier, leadSvc leads.Service) *Module {
	svc := service.New(repository.New(pool), leadSvc)
	return &Module{handler: handler.New(svc), service: svc}
}

func (m *Module) Name() string {
	return "activity"
}

// Service is used by the exports module for the activity CSV.
func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterAdminRoutes(ctx.Admin.Group("/activity"))
	m.handler.RegisterLeadRoutes(ctx.Protected.Group("/leads"))
}

var _ apphttp.Module = (*Module)(nil)
