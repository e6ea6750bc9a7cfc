// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"e-anim-ai-api/internal/application/generation"
	"e-anim-ai-api/internal/config"
	"e-anim-ai-api/internal/interfaces/http/dto"
)

// GenerationHandler 脚本生成任务处理器
type GenerationHandler struct {
	cfg *config.Config
	svc *generation.Service
}

// NewGenerationHandler 创建生成任务处理器
func NewGenerationHandler(cfg *config.Config, svc *generation.Service) *GenerationHandler {
	return &GenerationHandler{cfg: cfg, svc: svc}
}

// GenerateScript 提交脚本生成任务
// @Summary 提交脚本生成任务
// @Tags Generation
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Param body body dto.GenerateScriptRequest true "生成参数"
// @Success 202 {object} dto.Response[dto.JobResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/scripts/generate [post]
func (h *GenerationHandler) GenerateScript(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)

	var req dto.GenerateScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	provider, model, err := resolveProviderModel(h.cfg, req.Provider, req.Model)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	params := req.ToGenParams()
	params.Provider = provider
	params.Model = model

	job, err := h.svc.EnqueueScriptGen(ctx, projectID, params, req.IdempotencyKey)
	if err != nil {
		respondError(c, err, "failed to enqueue generation job")
		return
	}
	dto.Accepted(c, dto.ToJobResponse(job))
}

// RefineScript 提交脚本修订任务
// @Summary 提交脚本修订任务
// @Tags Generation
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Param body body dto.RefineScriptRequest true "修订参数"
// @Success 202 {object} dto.Response[dto.JobResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/scripts/refine [post]
func (h *GenerationHandler) RefineScript(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)

	var req dto.RefineScriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	provider, model, err := resolveProviderModel(h.cfg, req.Provider, req.Model)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	params := req.ToGenParams()
	params.Provider = provider
	params.Model = model

	job, err := h.svc.EnqueueScriptRefine(ctx, projectID, params, req.IdempotencyKey)
	if err != nil {
		respondError(c, err, "failed to enqueue refine job")
		return
	}
	dto.Accepted(c, dto.ToJobResponse(job))
}
