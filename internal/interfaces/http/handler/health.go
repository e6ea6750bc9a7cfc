// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"e-anim-ai-api/internal/infrastructure/persistence/postgres"
	"e-anim-ai-api/internal/infrastructure/persistence/redis"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	appName string
	version string
	pg      *postgres.Client
	rdb     *redis.Client
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(appName, version string, pg *postgres.Client, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{
		appName: appName,
		version: version,
		pg:      pg,
		rdb:     rdb,
	}
}

// Health 健康检查
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"service": h.appName,
		"version": h.version,
	})
}

// Live 存活探针
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(200, gin.H{"status": "alive"})
}

// Ready 就绪探针，检查下游依赖连通性
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()
	checks := gin.H{}
	ready := true

	if h.pg != nil {
		if err := h.pg.Ping(ctx); err != nil {
			checks["postgres"] = err.Error()
			ready = false
		} else {
			checks["postgres"] = "ok"
		}
	}
	if h.rdb != nil {
		if err := h.rdb.Ping(ctx); err != nil {
			checks["redis"] = err.Error()
			ready = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := 200
	if !ready {
		status = 503
	}
	c.JSON(status, gin.H{
		"ready":  ready,
		"checks": checks,
	})
}
