package exports

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mehdirazajaffri/leads-management-system/platform/httpkit"
)

const apiKeyHeader = "X-Export-API-Key"

// APIKeyAuthMiddleware validates export API keys for public export endpoints.
func APIKeyAuthMiddleware(repo *Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		plaintext := strings.TrimSpace(c.GetHeader(apiKeyHeader))
		if plaintext == "" {
			httpkit.Error(c, http.StatusUnauthorized, "missing export API key", nil)
			c.Abort()
			return
		}

		key, err := repo.GetAPIKeyByHash(c.Request.Context(), HashKey(plaintext))
		if err != nil {
			httpkit.Error(c, http.StatusUnauthorized, "invalid export API key", nil)
			c.Abort()
			return
		}

		c.Set(exportKeyIDKey, key.ID)
		c.Next()
	}
}
