// Package http assembles the gin engine from self-registering modules.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mehdirazajaffri/leads-management-system/platform/config"
)

// Module is a bounded context that mounts its own routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext hands modules the route groups they may attach to.
//
//	V1        /api/v1, no authentication
//	Protected /api/v1, any signed-in user
//	Admin     /api/v1/admin, ADMIN only
type RouterContext struct {
	Engine    *gin.Engine
	V1        *gin.RouterGroup
	Protected *gin.RouterGroup
	Admin     *gin.RouterGroup

	Config         config.JWTConfig
	AuthMiddleware gin.HandlerFunc
	// AuthRateLimit is a pass-through when RATE_LIMIT_ENABLED is off.
	AuthRateLimit gin.HandlerFunc
}
