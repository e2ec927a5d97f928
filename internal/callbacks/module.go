// Package callbacks schedules follow-up calls on leads.
package callbacks

import (
	"github.com/mehdirazajaffri/leads-management-system/internal/callbacks/handler"
	"github.com/mehdirazajaffri/leads-management-system/internal/callbacks/repository"
	"github.com/mehdirazajaffri/leads-management-system/internal/callbacks/service"
	"github.com/mehdirazajaffri/leads-management-system/internal/events"
	apphttp "github.com/mehdirazajaffri/leads-management-system/internal/http"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads"
	"github.com/mehdirazajaffri/leads-management-system/platform/db"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
	"github.com/mehdirazajaffri/leads-management-system/platform/validator"
)

type Module struct {
	handler *handler.Handler
	service *service.Service
}

func NewModule(pool db.Querier, leadSvc leads.Service, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), leadSvc, eventBus, log)
	return &Module{handler: handler.New(svc, val), service: svc}
}

func (m *Module) Name() string {
	return "callbacks"
}

func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/callbacks"))
}

var _ apphttp.Module = (*Module)(nil)
