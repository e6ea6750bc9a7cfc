// Package handler 提供 HTTP 请求处理器
package handler

import (
	"errors"
	"io"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/gin-gonic/gin"

	"e-anim-ai-api/internal/application/retrieval"
	appscript "e-anim-ai-api/internal/application/script"
	"e-anim-ai-api/internal/config"
	"e-anim-ai-api/internal/domain/repository"
	"e-anim-ai-api/internal/domain/service"
	"e-anim-ai-api/internal/infrastructure/scriptstore"
	"e-anim-ai-api/internal/interfaces/http/dto"
	wfmodel "e-anim-ai-api/internal/workflow/model"
	"e-anim-ai-api/pkg/logger"
)

// StreamHandler 流式脚本预览处理器
// 预览不落库不计版本，仅透传模型输出
type StreamHandler struct {
	cfg         *config.Config
	projectRepo repository.ProjectRepository
	store       *scriptstore.Store
	generator   *appscript.Generator
	engine      *retrieval.Engine
}

// NewStreamHandler 创建流式处理器
func NewStreamHandler(
	cfg *config.Config,
	projectRepo repository.ProjectRepository,
	store *scriptstore.Store,
	generator *appscript.Generator,
	engine *retrieval.Engine,
) *StreamHandler {
	return &StreamHandler{
		cfg:         cfg,
		projectRepo: projectRepo,
		store:       store,
		generator:   generator,
		engine:      engine,
	}
}

// StreamScript 流式预览脚本生成
// @Summary 流式预览脚本生成
// @Description 通过 SSE 流式返回模型输出，不创建脚本版本
// @Tags Generation
// @Produce text/event-stream
// @Param pid path string true "项目 ID"
// @Param provider query string false "LLM Provider"
// @Param model query string false "模型名"
// @Success 200 "SSE stream"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/scripts/stream [get]
func (h *StreamHandler) StreamScript(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)

	var req dto.StreamScriptRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		dto.BadRequest(c, "invalid query params: "+err.Error())
		return
	}

	provider, model, err := resolveProviderModel(h.cfg, req.Provider, req.Model)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		respondError(c, err, "failed to get project")
		return
	}
	if project == nil {
		dto.NotFound(c, "project not found")
		return
	}
	if strings.TrimSpace(project.BriefPath) == "" {
		dto.BadRequest(c, "project has no brief, upload one first")
		return
	}

	brief, err := h.store.LoadBrief(ctx, project.BriefPath)
	if err != nil {
		logger.Error(ctx, "failed to load brief", err, "project_id", projectID)
		dto.InternalError(c, "failed to load brief")
		return
	}

	// 参考片段注入失败只降级，不阻塞预览
	retrievedContext := ""
	if h.engine != nil && h.engine.Enabled() {
		if rc, ctxErr := h.engine.BuildContext(ctx, brief, nil); ctxErr == nil {
			retrievedContext = rc
		} else {
			logger.Warn(ctx, "retrieval context degraded", "error", ctxErr, "project_id", projectID)
		}
	}

	in := &wfmodel.ScriptGenerateInput{
		ProjectTitle:     project.Title,
		Topic:            project.Topic,
		Brief:            brief,
		RetrievedContext: retrievedContext,
		Provider:         provider,
		Model:            model,
	}
	if s := project.Settings; s != nil {
		in.Audience = s.Audience
		in.Language = s.Language
		in.TargetDuration = s.TargetDuration
		if s.Temperature > 0 {
			t := float32(s.Temperature)
			in.Temperature = &t
		}
	}
	in.ApplyDefaults()

	sr, err := h.generator.Stream(service.WithProject(ctx, projectID), in)
	if err != nil {
		respondError(c, err, "failed to start stream")
		return
	}
	defer sr.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	index := 0
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			// 客户端断开
			return false
		default:
		}

		msg, recvErr := sr.Recv()
		if recvErr != nil {
			if errors.Is(recvErr, io.EOF) {
				c.SSEvent("done", gin.H{"chunks": index})
				return false
			}
			logger.Error(ctx, "stream recv failed", recvErr, "project_id", projectID)
			c.SSEvent("error", gin.H{"message": recvErr.Error()})
			return false
		}

		if msg != nil && msg.Content != "" {
			c.SSEvent("content", gin.H{
				"chunk": msg.Content,
				"index": index,
			})
			index++
		}
		if meta := streamUsage(msg); meta != nil {
			c.SSEvent("metadata", meta)
		}
		return true
	})
}

// streamUsage 提取流末尾的 token 用量块
func streamUsage(msg *schema.Message) gin.H {
	if msg == nil || msg.ResponseMeta == nil || msg.ResponseMeta.Usage == nil {
		return nil
	}
	u := msg.ResponseMeta.Usage
	return gin.H{
		"prompt_tokens":     u.PromptTokens,
		"completion_tokens": u.CompletionTokens,
		"total_tokens":      u.TotalTokens,
	}
}
