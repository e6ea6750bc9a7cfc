// Package handler 提供 HTTP 请求处理器
package handler

import (
	"encoding/json"
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

// projectCacheTTL 项目详情缓存时长
const projectCacheTTL = 5 * time.Minute

// ProjectHandler 项目处理器
type ProjectHandler struct {
	projectRepo repository.ProjectRepository
	store       *scriptstore.Store
	cache       *redis.Cache
}

// NewProjectHandler 创建项目处理器
func NewProjectHandler(projectRepo repository.ProjectRepository, store *scriptstore.Store, cache *redis.Cache) *ProjectHandler {
	return &ProjectHandler{
		projectRepo: projectRepo,
		store:       store,
		cache:       cache,
	}
}

// ListProjects 获取项目列表
// @Summary 获取项目列表
// @Tags Projects
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页条数" default(20)
// @Param status query string false "项目状态过滤"
// @Param search query string false "标题搜索"
// @Success 200 {object} dto.Response[dto.ProjectListResponse]
// @Router /v1/projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	ctx := c.Request.Context()
	pageReq := dto.BindPage(c)

	var filter *repository.ProjectFilter
	status := strings.TrimSpace(c.Query("status"))
	search := strings.TrimSpace(c.Query("search"))
	topic := strings.TrimSpace(c.Query("topic"))
	if status != "" || search != "" || topic != "" {
		filter = &repository.ProjectFilter{
			Status: entity.ProjectStatus(status),
			Topic:  topic,
			Search: search,
		}
	}

	result, err := h.projectRepo.List(ctx, filter, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list projects", err)
		dto.InternalError(c, "failed to list projects")
		return
	}

	resp := dto.ToProjectListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// CreateProject 创建项目
// @Summary 创建项目
// @Tags Projects
// @Accept json
// @Produce json
// @Param body body dto.CreateProjectRequest true "项目信息"
// @Success 201 {object} dto.Response[dto.ProjectResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	project := req.ToProjectEntity()
	if err := h.projectRepo.Create(ctx, project); err != nil {
		logger.Error(ctx, "failed to create project", err)
		dto.InternalError(c, "failed to create project")
		return
	}

	// 描述文本随创建提交时直接落盘
	if brief := strings.TrimSpace(req.Brief); brief != "" {
		path, err := h.store.SaveBrief(ctx, project.ID, brief)
		if err != nil {
			logger.Error(ctx, "failed to save brief", err, "project_id", project.ID)
			dto.InternalError(c, "failed to save brief")
			return
		}
		project.BriefPath = path
		if err := h.projectRepo.Update(ctx, project); err != nil {
			logger.Error(ctx, "failed to update project", err)
			dto.InternalError(c, "failed to update project")
			return
		}
	}

	dto.Created(c, dto.ToProjectResponse(project))
}

// GetProject 获取项目详情（带缓存）
// @Summary 获取项目详情
// @Tags Projects
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.Response[dto.ProjectResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)

	if h.cache != nil {
		data, err := h.cache.GetOrLoadSafe(ctx, redis.BuildProjectKey(projectID), projectCacheTTL, func() (interface{}, error) {
			return h.projectRepo.GetByID(ctx, projectID)
		})
		if err == nil && len(data) > 0 && string(data) != "null" {
			var project entity.Project
			if jsonErr := json.Unmarshal(data, &project); jsonErr == nil && project.ID != "" {
				dto.Success(c, dto.ToProjectResponse(&project))
				return
			}
		}
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
	dto.Success(c, dto.ToProjectResponse(project))
}

// UpdateProject 更新项目
// @Summary 更新项目
// @Tags Projects
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Param body body dto.UpdateProjectRequest true "更新内容"
// @Success 200 {object} dto.Response[dto.ProjectResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid} [put]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)

	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
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

	req.ApplyToProject(project)
	if err := h.projectRepo.Update(ctx, project); err != nil {
		logger.Error(ctx, "failed to update project", err)
		dto.InternalError(c, "failed to update project")
		return
	}

	if h.cache != nil {
		_ = h.cache.InvalidateProject(ctx, projectID)
	}
	dto.Success(c, dto.ToProjectResponse(project))
}

// DeleteProject 删除项目及其脚本文件
// @Summary 删除项目
// @Tags Projects
// @Param pid path string true "项目 ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid} [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)

	project, err := h.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		respondError(c, err, "failed to get project")
		return
	}
	if project == nil {
		dto.NotFound(c, "project not found")
		return
	}

	if err := h.projectRepo.Delete(ctx, projectID); err != nil {
		logger.Error(ctx, "failed to delete project", err)
		dto.InternalError(c, "failed to delete project")
		return
	}

	// 文件与缓存清理尽力而为，失败不影响删除结果
	if err := h.store.DeleteProjectScripts(ctx, projectID); err != nil {
		logger.Warn(ctx, "failed to delete project scripts", "error", err, "project_id", projectID)
	}
	if h.cache != nil {
		_ = h.cache.InvalidateProject(ctx, projectID)
	}

	dto.NoContent(c)
}

// UploadBrief 上传/替换项目动画描述
// @Summary 上传项目动画描述
// @Tags Projects
// @Accept json
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.Response[dto.ProjectResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/brief [put]
func (h *ProjectHandler) UploadBrief(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)

	var req struct {
		Brief string `json:"brief" binding:"required,max=50000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
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
	if !project.IsEditable() {
		dto.Conflict(c, "project is not editable")
		return
	}

	path, err := h.store.SaveBrief(ctx, projectID, req.Brief)
	if err != nil {
		logger.Error(ctx, "failed to save brief", err, "project_id", projectID)
		dto.InternalError(c, "failed to save brief")
		return
	}

	project.BriefPath = path
	project.UpdatedAt = time.Now()
	if err := h.projectRepo.Update(ctx, project); err != nil {
		logger.Error(ctx, "failed to update project", err)
		dto.InternalError(c, "failed to update project")
		return
	}

	if h.cache != nil {
		_ = h.cache.InvalidateProject(ctx, projectID)
	}
	dto.Success(c, dto.ToProjectResponse(project))
}

// GetBrief 读取项目动画描述
// @Summary 读取项目动画描述
// @Tags Projects
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.Response[gin.H]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/projects/{pid}/brief [get]
func (h *ProjectHandler) GetBrief(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)

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
		dto.NotFound(c, "project has no brief")
		return
	}

	brief, err := h.store.LoadBrief(ctx, project.BriefPath)
	if err != nil {
		logger.Error(ctx, "failed to load brief", err, "project_id", projectID)
		dto.InternalError(c, "failed to load brief")
		return
	}

	dto.Success(c, gin.H{
		"brief_path": project.BriefPath,
		"brief":      brief,
	})
}
