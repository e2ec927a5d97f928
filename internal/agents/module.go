// Package agents manages the call-center agent accounts (admin only).
package agents

import (
	"github.com/mehdirazajaffri/leads-management-system/internal/agents/handler"
	"github.com/mehdirazajaffri/leads-management-system/internal/agents/repository"
	"github.com/mehdirazajaffri/leads-management-system/internal/agents/service"
	"github.com/mehdirazajaffri/leads-management-system/internal/events"
	apphttp "github.com/mehdirazajaffri/leads-management-system/internal/http"
	"github.com/mehdirazajaffri/leads-management-system/platform/db"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
	"github.com/mehdirazajaffri/leads-management-system/platform/validator"
)

type Module struct {
	handler *handler.Handler
	service *service.Service
}

func NewModule(pool db.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), eventBus, log)
	return &Module{handler: handler.New(svc, val), service: svc}
}

func (m *Module) Name() string {
	return "agents"
}

func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/agents"))
}

var _ apphttp.Module = (*Module)(nil)
