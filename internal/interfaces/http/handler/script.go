// Package handler 提供 HTTP 请求处理器
package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"e-anim-ai-api/internal/domain/entity"
	"e-anim-ai-api/internal/domain/repository"
	"e-anim-ai-api/internal/infrastructure/persistence/redis"
	"e-anim-ai-api/internal/infrastructure/scriptstore"
	"e-anim-ai-api/internal/interfaces/http/dto"
	"e-anim-ai-api/pkg/logger"
)

// currentScriptCacheTTL 当前脚本缓存时长
const currentScriptCacheTTL = 5 * time.Minute

// ScriptHandler 脚本处理器
type ScriptHandler struct {
	projectRepo repository.ProjectRepository
	scriptRepo  repository.ScriptRepository
	store       *scriptstore.Store
	cache       *redis.Cache
}

// NewScriptHandler 创建脚本处理器
func NewScriptHandler(
	projectRepo repository.ProjectRepository,
	scriptRepo repository.ScriptRepository,
	store *scriptstore.Store,
	cache *redis.Cache,
) *ScriptHandler {
	return &ScriptHandler{
		projectRepo: projectRepo,
		scriptRepo:  scriptRepo,
		store:       store,
		cache:       cache,
	}
}

// ListScripts 获取项目脚本版本列表
// @Summary 获取项目脚本版本列表
// @Tags Scripts
// @Produce json
// @Param pid path string true "项目 ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页条数" default(20)
// @Param status query string false "脚本状态过滤"
// @Success 200 {object} dto.Response[dto.ScriptListResponse]
// @Router /v1/projects/{pid}/scripts [get]
func (h *ScriptHandler) ListScripts(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)
	pageReq := dto.BindPage(c)

	var filter *repository.ScriptFilter
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		filter = &repository.ScriptFilter{Status: entity.ScriptStatus(status)}
	}

	result, err := h.scriptRepo.ListByProject(ctx, projectID, filter, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list scripts", err, "project_id", projectID)
		dto.InternalError(c, "failed to list scripts")
		return
	}

	resp := dto.ToScriptListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// GetScript 获取脚本详情（含源码）
// @Summary 获取脚本详情
// @Tags Scripts
// @Produce json
// @Param pid path string true "项目 ID"
// @Param sid path string true "脚本 ID"
// @Success 200 {object} dto.Response[dto.ScriptResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/scripts/{sid} [get]
func (h *ScriptHandler) GetScript(c *gin.Context) {
	projectID := dto.BindProjectID(c)
	scriptID := dto.BindScriptID(c)

	script, err := h.loadScript(c, projectID, scriptID)
	if err != nil || script == nil {
		return
	}
	dto.Success(c, dto.ToScriptResponse(script, true))
}

// GetCurrentScript 获取项目当前脚本（带缓存）
// @Summary 获取项目当前脚本
// @Tags Scripts
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.Response[dto.ScriptResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/scripts/current [get]
func (h *ScriptHandler) GetCurrentScript(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)

	if h.cache != nil {
		data, err := h.cache.GetOrLoadSafe(ctx, redis.BuildCurrentScriptKey(projectID), currentScriptCacheTTL, func() (interface{}, error) {
			return h.scriptRepo.GetCurrent(ctx, projectID)
		})
		if err == nil && len(data) > 0 && string(data) != "null" {
			var script entity.SceneScript
			if jsonErr := json.Unmarshal(data, &script); jsonErr == nil && script.ID != "" {
				dto.Success(c, dto.ToScriptResponse(&script, true))
				return
			}
		}
	}

	script, err := h.scriptRepo.GetCurrent(ctx, projectID)
	if err != nil {
		respondError(c, err, "failed to get current script")
		return
	}
	if script == nil {
		dto.NotFound(c, "project has no current script")
		return
	}
	dto.Success(c, dto.ToScriptResponse(script, true))
}

// GetScriptByVersion 获取项目指定版本脚本
// @Summary 获取项目指定版本脚本
// @Tags Scripts
// @Produce json
// @Param pid path string true "项目 ID"
// @Param version path int true "版本号"
// @Success 200 {object} dto.Response[dto.ScriptResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/scripts/versions/{version} [get]
func (h *ScriptHandler) GetScriptByVersion(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)
	version := dto.BindVersion(c)
	if version == 0 {
		dto.BadRequest(c, "invalid version")
		return
	}

	script, err := h.scriptRepo.GetByVersion(ctx, projectID, version)
	if err != nil {
		respondError(c, err, "failed to get script")
		return
	}
	if script == nil {
		dto.NotFound(c, "script version not found")
		return
	}
	dto.Success(c, dto.ToScriptResponse(script, true))
}

// DownloadScript 下载脚本源码文件
// @Summary 下载脚本源码文件
// @Tags Scripts
// @Produce plain
// @Param pid path string true "项目 ID"
// @Param sid path string true "脚本 ID"
// @Success 200 {string} string "Python 源码"
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/scripts/{sid}/source [get]
func (h *ScriptHandler) DownloadScript(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)
	scriptID := dto.BindScriptID(c)

	script, err := h.loadScript(c, projectID, scriptID)
	if err != nil || script == nil {
		return
	}

	source := script.SourceCode
	if source == "" && script.FilePath != "" {
		source, err = h.store.LoadScript(ctx, script.FilePath)
		if err != nil {
			logger.Error(ctx, "failed to load script file", err, "script_id", scriptID)
			dto.InternalError(c, "failed to load script file")
			return
		}
	}
	if source == "" {
		dto.NotFound(c, "script has no source")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="scene_v%d.py"`, script.Version))
	c.Data(http.StatusOK, "text/x-python; charset=utf-8", []byte(source))
}

// ActivateScript 将指定脚本设为当前版本（版本回滚）
// @Summary 设为当前版本
// @Tags Scripts
// @Produce json
// @Param pid path string true "项目 ID"
// @Param sid path string true "脚本 ID"
// @Success 200 {object} dto.Response[dto.ScriptResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/scripts/{sid}/activate [post]
func (h *ScriptHandler) ActivateScript(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)
	scriptID := dto.BindScriptID(c)

	script, err := h.loadScript(c, projectID, scriptID)
	if err != nil || script == nil {
		return
	}
	if script.Status != entity.ScriptStatusReady && script.Status != entity.ScriptStatusSuperseded {
		dto.Conflict(c, "only ready scripts can be activated")
		return
	}

	if err := h.scriptRepo.SetCurrent(ctx, projectID, scriptID); err != nil {
		logger.Error(ctx, "failed to set current script", err, "script_id", scriptID)
		dto.InternalError(c, "failed to activate script")
		return
	}

	if h.cache != nil {
		_ = h.cache.InvalidateProject(ctx, projectID)
	}

	script, err = h.scriptRepo.GetByID(ctx, scriptID)
	if err != nil || script == nil {
		respondError(c, err, "failed to reload script")
		return
	}
	dto.Success(c, dto.ToScriptResponse(script, false))
}

// DeleteScript 删除脚本版本（当前版本不可删除）
// @Summary 删除脚本版本
// @Tags Scripts
// @Param pid path string true "项目 ID"
// @Param sid path string true "脚本 ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/scripts/{sid} [delete]
func (h *ScriptHandler) DeleteScript(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)
	scriptID := dto.BindScriptID(c)

	script, err := h.loadScript(c, projectID, scriptID)
	if err != nil || script == nil {
		return
	}
	if script.Current {
		dto.Conflict(c, "current script cannot be deleted")
		return
	}

	if err := h.scriptRepo.Delete(ctx, scriptID); err != nil {
		logger.Error(ctx, "failed to delete script", err, "script_id", scriptID)
		dto.InternalError(c, "failed to delete script")
		return
	}
	dto.NoContent(c)
}

// loadScript 加载脚本并校验归属项目，失败时已写入响应
func (h *ScriptHandler) loadScript(c *gin.Context, projectID, scriptID string) (*entity.SceneScript, error) {
	ctx := c.Request.Context()
	script, err := h.scriptRepo.GetByID(ctx, scriptID)
	if err != nil {
		respondError(c, err, "failed to get script")
		return nil, err
	}
	if script == nil || script.ProjectID != projectID {
		dto.NotFound(c, "script not found")
		return nil, nil
	}
	return script, nil
}
