// Package auth signs users in and rotates their refresh tokens.
package auth

import (
	"github.com/mehdirazajaffri/leads-management-system/internal/auth/handler"
	"github.com/mehdirazajaffri/leads-management-system/internal/auth/repository"
	"github.com/mehdirazajaffri/leads-management-system/internal/auth/service"
	apphttp "github.com/mehdirazajaffri/leads-management-system/internal/http"
	"github.com/mehdirazajaffri/leads-management-system/platform/config"
	"github.com/mehdirazajaffri/leads-management-system/platform/db"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
	"github.com/mehdirazajaffri/leads-management-system/platform/validator"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the auth module with all its dependencies.
func NewModule(pool db.Querier, cfg config.AuthServiceConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Service returns the auth service.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public auth routes with stricter rate limiting
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimit)
	m.handler.RegisterRoutes(authGroup)

	ctx.Protected.GET("/users/me", m.handler.GetMe)
}

var _ apphttp.Module = (*Module)(nil)
