// Package analytics serves the admin dashboard aggregates.
package analytics

import (
	"github.com/mehdirazajaffri/leads-management-system/internal/analytics/handler"
	"github.com/mehdirazajaffri/leads-management-system/internal/analytics/repository"
	"github.com/mehdirazajaffri/leads-management-system/internal/analytics/service"
	apphttp "github.com/mehdirazajaffri/leads-management-system/internal/http"
	"github.com/mehdirazajaffri/leads-management-system/platform/db"
)

type Module struct {
	handler *handler.Handler
}

func NewModule(pool db.Querier) *Module {
	return &Module{handler: handler.New(service.New(repository.New(pool)))}
}

func (m *Module) Name() string {
	return "analytics"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/analytics"))
}

var _ apphttp.Module = (*Module)(nil)
