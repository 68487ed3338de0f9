package public

import (
	"context"
	"time"

	"github.com/secureport/internal/cache"
	"github.com/secureport/internal/constants"
	"github.com/secureport/internal/http/handlers/shared"
	"github.com/secureport/internal/http/response"

	"github.com/gin-gonic/gin"
)

const healthPingTimeout = 2 * time.Second

// Health 健康检查，启用 Redis 时探测连通性
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()
	if err := cache.Ping(ctx); err != nil {
		shared.RespondError(c, response.CodeUnavailable, constants.ErrMsgServiceUnavailable, err)
		return
	}
	response.OK(c, gin.H{"status": "ok"})
}
