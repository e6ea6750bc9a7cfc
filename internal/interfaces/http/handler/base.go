// Package handler 提供 HTTP 请求处理器
package handler

import (
	"fmt"
	"strings"

	"e-anim-ai-api/internal/config"
	apperrors "e-anim-ai-api/pkg/errors"
	"e-anim-ai-api/pkg/logger"

	"github.com/gin-gonic/gin"

	"e-anim-ai-api/internal/interfaces/http/dto"
)

// resolveProviderModel 解析 LLM Provider 和 Model
func resolveProviderModel(cfg *config.Config, provider, model string) (string, string, error) {
	if cfg == nil {
		return "", "", fmt.Errorf("server config not configured")
	}

	p := strings.TrimSpace(provider)
	if p == "" {
		p = strings.TrimSpace(cfg.LLM.DefaultProvider)
	}
	if p == "" {
		return "", "", fmt.Errorf("llm provider not specified")
	}
	if len(p) > 32 {
		return "", "", fmt.Errorf("llm provider too long")
	}

	providerCfg, ok := cfg.LLM.Providers[p]
	if !ok {
		return "", "", fmt.Errorf("llm provider not found: %s", p)
	}

	m := strings.TrimSpace(model)
	if m == "" {
		m = strings.TrimSpace(providerCfg.Model)
	}
	if len(m) > 64 {
		return "", "", fmt.Errorf("llm model too long")
	}
	return p, m, nil
}

// respondError 统一错误出口：应用错误按其 HTTP 状态码返回，其余按 500 处理
func respondError(c *gin.Context, err error, fallbackMsg string) {
	if appErr := apperrors.AsAppError(err); appErr != nil {
		dto.Error(c, appErr.HTTPStatus, appErr.Message)
		return
	}
	logger.Error(c.Request.Context(), fallbackMsg, err)
	dto.InternalError(c, fallbackMsg)
}
