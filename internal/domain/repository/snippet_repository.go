// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"e-anim-ai-api/internal/domain/entity"
)

// SnippetFilter 片段过滤条件
type SnippetFilter struct {
	Category entity.SnippetCategory
	Indexed  *bool
	Search   string
}

// SnippetRepository 参考片段仓储接口
type SnippetRepository interface {
	// Create 创建片段
	Create(ctx context.Context, snippet *entity.Snippet) error

	// GetByID 根据 ID 获取片段
	GetByID(ctx context.Context, id string) (*entity.Snippet, error)

	// GetByIDs 批量获取片段
	GetByIDs(ctx context.Context, ids []string) ([]*entity.Snippet, error)

	// Update 更新片段
	Update(ctx context.Context, snippet *entity.Snippet) error

	// Delete 删除片段
	Delete(ctx context.Context, id string) error

	// List 获取片段列表
	List(ctx context.Context, filter *SnippetFilter, pagination Pagination) (*PagedResult[*entity.Snippet], error)

	// GetUnindexed 获取尚未写入向量库的片段
	GetUnindexed(ctx context.Context, limit int) ([]*entity.Snippet, error)

	// MarkIndexed 批量标记片段已索引
	MarkIndexed(ctx context.Context, ids []string) error
}
