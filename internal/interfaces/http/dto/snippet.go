// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"e-anim-ai-api/internal/application/retrieval"
	"e-anim-ai-api/internal/domain/entity"
)

// CreateSnippetRequest 创建参考片段请求
type CreateSnippetRequest struct {
	Title       string   `json:"title" binding:"required,max=256"`
	Category    string   `json:"category" binding:"max=50"`
	Description string   `json:"description" binding:"max=5000"`
	SourceCode  string   `json:"source_code" binding:"required,max=50000"`
	Tags        []string `json:"tags,omitempty"`
}

// UpdateSnippetRequest 更新参考片段请求
type UpdateSnippetRequest struct {
	Title       *string  `json:"title,omitempty" binding:"omitempty,max=256"`
	Category    *string  `json:"category,omitempty" binding:"omitempty,max=50"`
	Description *string  `json:"description,omitempty" binding:"omitempty,max=5000"`
	SourceCode  *string  `json:"source_code,omitempty" binding:"omitempty,max=50000"`
	Tags        []string `json:"tags,omitempty"`
}

// SnippetResponse 参考片段响应
type SnippetResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	SourceCode  string    `json:"source_code,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Indexed     bool      `json:"indexed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SnippetListResponse 片段列表响应
type SnippetListResponse struct {
	Snippets []*SnippetResponse `json:"snippets"`
}

// SearchSnippetsRequest 片段检索请求
type SearchSnippetsRequest struct {
	Query      string   `json:"query" binding:"required,max=10000"`
	TopK       int      `json:"top_k,omitempty" binding:"gte=0,lte=20"`
	Categories []string `json:"categories,omitempty"`
}

// SnippetHitResponse 检索命中响应
type SnippetHitResponse struct {
	SnippetID   string  `json:"snippet_id"`
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	SourceCode  string  `json:"source_code,omitempty"`
	Score       float64 `json:"score"`
}

// SearchSnippetsResponse 检索结果响应
type SearchSnippetsResponse struct {
	Hits           []*SnippetHitResponse `json:"hits"`
	DisabledReason string                `json:"disabled_reason,omitempty"`
}

// IndexSnippetsRequest 片段索引请求
// snippet_ids 为空表示补齐全部未索引片段
type IndexSnippetsRequest struct {
	SnippetIDs []string `json:"snippet_ids,omitempty"`
	BatchSize  int      `json:"batch_size,omitempty" binding:"gte=0,lte=1000"`
}

// ToSnippetResponse 将领域实体转换为响应 DTO
func ToSnippetResponse(s *entity.Snippet, includeSource bool) *SnippetResponse {
	if s == nil {
		return nil
	}
	resp := &SnippetResponse{
		ID:          s.ID,
		Title:       s.Title,
		Category:    string(s.Category),
		Description: s.Description,
		Tags:        s.Tags,
		Indexed:     s.Indexed,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
	if includeSource {
		resp.SourceCode = s.SourceCode
	}
	return resp
}

// ToSnippetListResponse 将领域实体列表转换为响应 DTO
func ToSnippetListResponse(snippets []*entity.Snippet) *SnippetListResponse {
	resp := &SnippetListResponse{
		Snippets: make([]*SnippetResponse, 0, len(snippets)),
	}
	for _, s := range snippets {
		resp.Snippets = append(resp.Snippets, ToSnippetResponse(s, false))
	}
	return resp
}

// ToSearchSnippetsResponse 将检索结果转换为响应 DTO
func ToSearchSnippetsResponse(out *retrieval.SearchOutput) *SearchSnippetsResponse {
	if out == nil {
		return &SearchSnippetsResponse{}
	}
	resp := &SearchSnippetsResponse{
		Hits:           make([]*SnippetHitResponse, 0, len(out.Hits)),
		DisabledReason: out.DisabledReason,
	}
	for _, hit := range out.Hits {
		resp.Hits = append(resp.Hits, &SnippetHitResponse{
			SnippetID:   hit.SnippetID,
			Title:       hit.Title,
			Category:    hit.Category,
			Description: hit.Description,
			SourceCode:  hit.SourceCode,
			Score:       hit.Score,
		})
	}
	return resp
}

// ToSnippetEntity 将请求 DTO 转换为领域实体
func (r *CreateSnippetRequest) ToSnippetEntity() *entity.Snippet {
	snippet := entity.NewSnippet(r.Title, entity.SnippetCategory(r.Category), r.SourceCode)
	snippet.Description = r.Description
	snippet.Tags = r.Tags
	return snippet
}

// ApplyToSnippet 将更新请求应用到片段实体
// 内容变更后片段需要重新索引
func (r *UpdateSnippetRequest) ApplyToSnippet(s *entity.Snippet) {
	changed := false
	if r.Title != nil {
		s.Title = *r.Title
		changed = true
	}
	if r.Category != nil {
		s.Category = entity.SnippetCategory(*r.Category)
	}
	if r.Description != nil {
		s.Description = *r.Description
		changed = true
	}
	if r.SourceCode != nil {
		s.SourceCode = *r.SourceCode
	}
	if r.Tags != nil {
		s.Tags = r.Tags
	}
	if changed {
		s.Indexed = false
	}
	s.UpdatedAt = time.Now()
}
