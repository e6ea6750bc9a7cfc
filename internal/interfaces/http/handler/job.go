// Package handler 提供 HTTP 请求处理器
package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"e-anim-ai-api/internal/application/generation"
	"e-anim-ai-api/internal/domain/entity"
	"e-anim-ai-api/internal/domain/repository"
	"e-anim-ai-api/internal/interfaces/http/dto"
	"e-anim-ai-api/pkg/logger"
)

// JobHandler 生成任务查询处理器
type JobHandler struct {
	jobRepo repository.JobRepository
	svc     *generation.Service
}

// NewJobHandler 创建任务处理器
func NewJobHandler(jobRepo repository.JobRepository, svc *generation.Service) *JobHandler {
	return &JobHandler{jobRepo: jobRepo, svc: svc}
}

// GetJob 获取任务详情
// @Summary 获取任务详情
// @Tags Jobs
// @Produce json
// @Param jid path string true "任务 ID"
// @Success 200 {object} dto.Response[dto.JobResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/jobs/{jid} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	ctx := c.Request.Context()
	jobID := dto.BindJobID(c)

	job, err := h.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		respondError(c, err, "failed to get job")
		return
	}
	if job == nil {
		dto.NotFound(c, "job not found")
		return
	}
	dto.Success(c, dto.ToJobResponse(job))
}

// ListProjectJobs 获取项目任务列表
// @Summary 获取项目任务列表
// @Tags Jobs
// @Produce json
// @Param pid path string true "项目 ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页条数" default(20)
// @Param job_type query string false "任务类型过滤"
// @Param status query string false "任务状态过滤"
// @Success 200 {object} dto.Response[dto.JobListResponse]
// @Router /v1/projects/{pid}/jobs [get]
func (h *JobHandler) ListProjectJobs(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)
	pageReq := dto.BindPage(c)

	var filter *repository.JobFilter
	jobType := strings.TrimSpace(c.Query("job_type"))
	status := strings.TrimSpace(c.Query("status"))
	if jobType != "" || status != "" {
		filter = &repository.JobFilter{
			JobType: entity.JobType(jobType),
			Status:  entity.JobStatus(status),
		}
	}

	result, err := h.jobRepo.ListByProject(ctx, projectID, filter, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list jobs", err, "project_id", projectID)
		dto.InternalError(c, "failed to list jobs")
		return
	}

	resp := dto.ToJobListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// GetJobStats 获取项目任务统计
// @Summary 获取项目任务统计
// @Tags Jobs
// @Produce json
// @Param pid path string true "项目 ID"
// @Success 200 {object} dto.Response[dto.JobStatsResponse]
// @Router /v1/projects/{pid}/jobs/stats [get]
func (h *JobHandler) GetJobStats(c *gin.Context) {
	ctx := c.Request.Context()
	projectID := dto.BindProjectID(c)

	stats, err := h.jobRepo.GetJobStats(ctx, projectID)
	if err != nil {
		logger.Error(ctx, "failed to get job stats", err, "project_id", projectID)
		dto.InternalError(c, "failed to get job stats")
		return
	}
	dto.Success(c, dto.ToJobStatsResponse(stats))
}

// CancelJob 取消任务
// @Summary 取消任务
// @Tags Jobs
// @Produce json
// @Param jid path string true "任务 ID"
// @Success 200 {object} dto.Response[dto.JobResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/jobs/{jid}/cancel [post]
func (h *JobHandler) CancelJob(c *gin.Context) {
	ctx := c.Request.Context()
	jobID := dto.BindJobID(c)

	job, err := h.svc.CancelJob(ctx, jobID)
	if err != nil {
		respondError(c, err, "failed to cancel job")
		return
	}
	dto.Success(c, dto.ToJobResponse(job))
}
