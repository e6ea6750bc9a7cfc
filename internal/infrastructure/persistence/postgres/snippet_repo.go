// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"e-anim-ai-api/internal/domain/entity"
	"e-anim-ai-api/internal/domain/repository"
)

// SnippetRepository 参考片段仓储实现
type SnippetRepository struct {
	client *Client
}

// NewSnippetRepository 创建参考片段仓储
func NewSnippetRepository(client *Client) *SnippetRepository {
	return &SnippetRepository{client: client}
}

// Create 创建片段
func (r *SnippetRepository) Create(ctx context.Context, snippet *entity.Snippet) error {
	ctx, span := tracer.Start(ctx, "postgres.SnippetRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(snippet).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create snippet: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取片段
func (r *SnippetRepository) GetByID(ctx context.Context, id string) (*entity.Snippet, error) {
	ctx, span := tracer.Start(ctx, "postgres.SnippetRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var snippet entity.Snippet
	if err := db.First(&snippet, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get snippet: %w", err)
	}
	return &snippet, nil
}

// GetByIDs 批量获取片段
func (r *SnippetRepository) GetByIDs(ctx context.Context, ids []string) ([]*entity.Snippet, error) {
	ctx, span := tracer.Start(ctx, "postgres.SnippetRepository.GetByIDs")
	defer span.End()

	if len(ids) == 0 {
		return nil, nil
	}

	db := getDB(ctx, r.client.db)
	var snippets []*entity.Snippet
	if err := db.Where("id IN ?", ids).Find(&snippets).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get snippets: %w", err)
	}
	return snippets, nil
}

// Update 更新片段
func (r *SnippetRepository) Update(ctx context.Context, snippet *entity.Snippet) error {
	ctx, span := tracer.Start(ctx, "postgres.SnippetRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(snippet).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update snippet: %w", err)
	}
	return nil
}

// Delete 删除片段
func (r *SnippetRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.SnippetRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Snippet{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete snippet: %w", err)
	}
	return nil
}

// List 获取片段列表
func (r *SnippetRepository) List(ctx context.Context, filter *repository.SnippetFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.Snippet], error) {
	ctx, span := tracer.Start(ctx, "postgres.SnippetRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Snippet{})

	// 应用过滤条件
	if filter != nil {
		if filter.Category != "" {
			query = query.Where("category = ?", filter.Category)
		}
		if filter.Indexed != nil {
			query = query.Where("indexed = ?", *filter.Indexed)
		}
		if filter.Search != "" {
			query = query.Where("title ILIKE ?", "%"+filter.Search+"%")
		}
	}

	// 获取总数
	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count snippets: %w", err)
	}

	// 获取列表
	var snippets []*entity.Snippet
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&snippets).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list snippets: %w", err)
	}

	return repository.NewPagedResult(snippets, total, pagination), nil
}

// GetUnindexed 获取尚未写入向量库的片段
func (r *SnippetRepository) GetUnindexed(ctx context.Context, limit int) ([]*entity.Snippet, error) {
	ctx, span := tracer.Start(ctx, "postgres.SnippetRepository.GetUnindexed")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var snippets []*entity.Snippet
	if err := db.Where("indexed = ?", false).
		Order("created_at ASC").
		Limit(limit).
		Find(&snippets).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get unindexed snippets: %w", err)
	}
	return snippets, nil
}

// MarkIndexed 批量标记片段已索引
func (r *SnippetRepository) MarkIndexed(ctx context.Context, ids []string) error {
	ctx, span := tracer.Start(ctx, "postgres.SnippetRepository.MarkIndexed")
	defer span.End()

	if len(ids) == 0 {
		return nil
	}

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.Snippet{}).Where("id IN ?", ids).Update("indexed", true).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to mark snippets indexed: %w", err)
	}
	return nil
}
