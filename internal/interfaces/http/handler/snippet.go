// Package handler 提供 HTTP 请求处理器
package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"e-anim-ai-api/internal/application/generation"
	"e-anim-ai-api/internal/application/retrieval"
	"e-anim-ai-api/internal/domain/entity"
	"e-anim-ai-api/internal/domain/repository"
	"e-anim-ai-api/internal/interfaces/http/dto"
	"e-anim-ai-api/pkg/logger"
)

// SnippetHandler 参考片段库处理器
type SnippetHandler struct {
	snippetRepo repository.SnippetRepository
	engine      *retrieval.Engine
	indexer     *retrieval.Indexer
	genSvc      *generation.Service
}

// NewSnippetHandler 创建片段处理器
func NewSnippetHandler(
	snippetRepo repository.SnippetRepository,
	engine *retrieval.Engine,
	indexer *retrieval.Indexer,
	genSvc *generation.Service,
) *SnippetHandler {
	return &SnippetHandler{
		snippetRepo: snippetRepo,
		engine:      engine,
		indexer:     indexer,
		genSvc:      genSvc,
	}
}

// ListSnippets 获取片段列表
// @Summary 获取片段列表
// @Tags Snippets
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页条数" default(20)
// @Param category query string false "片段分类过滤"
// @Param indexed query bool false "索引状态过滤"
// @Param search query string false "标题搜索"
// @Success 200 {object} dto.Response[dto.SnippetListResponse]
// @Router /v1/snippets [get]
func (h *SnippetHandler) ListSnippets(c *gin.Context) {
	ctx := c.Request.Context()
	pageReq := dto.BindPage(c)

	var filter *repository.SnippetFilter
	category := strings.TrimSpace(c.Query("category"))
	search := strings.TrimSpace(c.Query("search"))
	indexedStr := strings.TrimSpace(c.Query("indexed"))
	if category != "" || search != "" || indexedStr != "" {
		filter = &repository.SnippetFilter{
			Category: entity.SnippetCategory(category),
			Search:   search,
		}
		if indexedStr != "" {
			if indexed, err := strconv.ParseBool(indexedStr); err == nil {
				filter.Indexed = &indexed
			}
		}
	}

	result, err := h.snippetRepo.List(ctx, filter, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		logger.Error(ctx, "failed to list snippets", err)
		dto.InternalError(c, "failed to list snippets")
		return
	}

	resp := dto.ToSnippetListResponse(result.Items)
	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, resp, meta)
}

// CreateSnippet 创建参考片段
// @Summary 创建参考片段
// @Tags Snippets
// @Accept json
// @Produce json
// @Param body body dto.CreateSnippetRequest true "片段内容"
// @Success 201 {object} dto.Response[dto.SnippetResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/snippets [post]
func (h *SnippetHandler) CreateSnippet(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateSnippetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	snippet := req.ToSnippetEntity()
	if err := h.snippetRepo.Create(ctx, snippet); err != nil {
		logger.Error(ctx, "failed to create snippet", err)
		dto.InternalError(c, "failed to create snippet")
		return
	}
	dto.Created(c, dto.ToSnippetResponse(snippet, true))
}

// GetSnippet 获取片段详情（含源码）
// @Summary 获取片段详情
// @Tags Snippets
// @Produce json
// @Param snid path string true "片段 ID"
// @Success 200 {object} dto.Response[dto.SnippetResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/snippets/{snid} [get]
func (h *SnippetHandler) GetSnippet(c *gin.Context) {
	ctx := c.Request.Context()
	snippetID := dto.BindSnippetID(c)

	snippet, err := h.snippetRepo.GetByID(ctx, snippetID)
	if err != nil {
		respondError(c, err, "failed to get snippet")
		return
	}
	if snippet == nil {
		dto.NotFound(c, "snippet not found")
		return
	}
	dto.Success(c, dto.ToSnippetResponse(snippet, true))
}

// UpdateSnippet 更新片段，内容变更后自动取消索引标记
// @Summary 更新片段
// @Tags Snippets
// @Accept json
// @Produce json
// @Param snid path string true "片段 ID"
// @Param body body dto.UpdateSnippetRequest true "更新内容"
// @Success 200 {object} dto.Response[dto.SnippetResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/snippets/{snid} [put]
func (h *SnippetHandler) UpdateSnippet(c *gin.Context) {
	ctx := c.Request.Context()
	snippetID := dto.BindSnippetID(c)

	var req dto.UpdateSnippetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	snippet, err := h.snippetRepo.GetByID(ctx, snippetID)
	if err != nil {
		respondError(c, err, "failed to get snippet")
		return
	}
	if snippet == nil {
		dto.NotFound(c, "snippet not found")
		return
	}

	req.ApplyToSnippet(snippet)
	if err := h.snippetRepo.Update(ctx, snippet); err != nil {
		logger.Error(ctx, "failed to update snippet", err, "snippet_id", snippetID)
		dto.InternalError(c, "failed to update snippet")
		return
	}
	dto.Success(c, dto.ToSnippetResponse(snippet, true))
}

// DeleteSnippet 删除片段及其向量
// @Summary 删除片段
// @Tags Snippets
// @Param snid path string true "片段 ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/snippets/{snid} [delete]
func (h *SnippetHandler) DeleteSnippet(c *gin.Context) {
	ctx := c.Request.Context()
	snippetID := dto.BindSnippetID(c)

	snippet, err := h.snippetRepo.GetByID(ctx, snippetID)
	if err != nil {
		respondError(c, err, "failed to get snippet")
		return
	}
	if snippet == nil {
		dto.NotFound(c, "snippet not found")
		return
	}

	if err := h.snippetRepo.Delete(ctx, snippetID); err != nil {
		logger.Error(ctx, "failed to delete snippet", err, "snippet_id", snippetID)
		dto.InternalError(c, "failed to delete snippet")
		return
	}

	// 向量清理尽力而为，残留向量检索时会因片段缺失被过滤
	if h.indexer != nil && h.indexer.Enabled() {
		if err := h.indexer.RemoveSnippet(ctx, snippetID); err != nil {
			logger.Warn(ctx, "failed to remove snippet vector", "error", err, "snippet_id", snippetID)
		}
	}
	dto.NoContent(c)
}

// SearchSnippets 语义检索片段
// @Summary 语义检索片段
// @Tags Snippets
// @Accept json
// @Produce json
// @Param body body dto.SearchSnippetsRequest true "检索条件"
// @Success 200 {object} dto.Response[dto.SearchSnippetsResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/snippets/search [post]
func (h *SnippetHandler) SearchSnippets(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SearchSnippetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if h.engine == nil {
		dto.Success(c, &dto.SearchSnippetsResponse{DisabledReason: "retrieval disabled"})
		return
	}

	out, err := h.engine.Search(ctx, retrieval.SearchInput{
		Query:      req.Query,
		TopK:       req.TopK,
		Categories: req.Categories,
	})
	if err != nil {
		respondError(c, err, "failed to search snippets")
		return
	}
	dto.Success(c, dto.ToSearchSnippetsResponse(out))
}

// IndexSnippets 提交片段索引任务
// @Summary 提交片段索引任务
// @Tags Snippets
// @Accept json
// @Produce json
// @Param body body dto.IndexSnippetsRequest true "索引参数"
// @Success 202 {object} dto.Response[dto.JobResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/snippets/index [post]
func (h *SnippetHandler) IndexSnippets(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.IndexSnippetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	job, err := h.genSvc.EnqueueSnippetIndex(ctx, req.SnippetIDs, req.BatchSize)
	if err != nil {
		respondError(c, err, "failed to enqueue index job")
		return
	}
	dto.Accepted(c, dto.ToJobResponse(job))
}
