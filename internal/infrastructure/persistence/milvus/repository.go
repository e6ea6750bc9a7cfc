// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"e-anim-ai-api/pkg/metrics"
)

// Repository 向量检索仓储
type Repository struct {
	client *Client
}

// NewRepository 创建向量检索仓储
func NewRepository(client *Client) *Repository {
	return &Repository{client: client}
}

// SearchParams 检索参数
type SearchParams struct {
	QueryVector []float32
	TopK        int
	Category    string
	Categories  []string
}

// SearchResult 检索结果
type SearchResult struct {
	ID          string
	Score       float32
	SnippetID   string
	Category    string
	Title       string
	Description string
}

// CreateCollection 创建集合
func (r *Repository) CreateCollection(ctx context.Context, schema *entity.Schema) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateCollection",
		trace.WithAttributes(attribute.String("collection", schema.CollectionName)))
	defer span.End()

	collName := r.client.CollectionName(schema.CollectionName)
	schema.CollectionName = collName

	err := r.client.milvus.CreateCollection(ctx, schema, entity.DefaultShardNumber)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

// CreateIndex 创建 HNSW 索引
func (r *Repository) CreateIndex(ctx context.Context, collection string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateIndex",
		trace.WithAttributes(attribute.String("collection", collection)))
	defer span.End()

	collName := r.client.CollectionName(collection)

	idx, err := entity.NewIndexHNSW(
		entity.COSINE,
		r.client.config.HNSWM,
		r.client.config.HNSWEfConstruction,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	err = r.client.milvus.CreateIndex(ctx, collName, "vector", idx, false)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// SearchSnippets 语义检索参考片段
func (r *Repository) SearchSnippets(ctx context.Context, params *SearchParams) ([]*SearchResult, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.SearchSnippets",
		trace.WithAttributes(attribute.Int("top_k", params.TopK)))
	defer span.End()

	collName := r.client.CollectionName(CollectionSnippets)
	started := time.Now()

	// 构建过滤表达式
	var filter string
	if params.Category != "" {
		filter = fmt.Sprintf(`category == "%s"`, params.Category)
	} else if len(params.Categories) > 0 {
		// 多分类使用 OR 条件构建过滤（避免依赖 IN 语法差异）
		var parts []string
		for _, cat := range params.Categories {
			cat = strings.TrimSpace(cat)
			if cat == "" {
				continue
			}
			parts = append(parts, fmt.Sprintf(`category == "%s"`, cat))
		}
		if len(parts) > 0 {
			filter = "(" + strings.Join(parts, " || ") + ")"
		}
	}

	// 搜索参数
	sp, err := entity.NewIndexHNSWSearchParam(128)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	// 执行搜索
	results, err := r.client.milvus.Search(ctx,
		collName,
		nil,
		filter,
		[]string{"id", "snippet_id", "category", "title", "description"},
		[]entity.Vector{entity.FloatVector(params.QueryVector)},
		"vector",
		entity.COSINE,
		params.TopK,
		sp,
	)
	if err != nil {
		span.RecordError(err)
		metrics.MilvusSearchTotal.WithLabelValues(CollectionSnippets, "error").Inc()
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	metrics.MilvusSearchDuration.WithLabelValues(CollectionSnippets).Observe(time.Since(started).Seconds())
	metrics.MilvusSearchTotal.WithLabelValues(CollectionSnippets, "ok").Inc()

	// 解析结果
	var searchResults []*SearchResult
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			sr := &SearchResult{
				Score: result.Scores[i],
			}

			// 提取字段值
			if idCol, ok := result.Fields.GetColumn("id").(*entity.ColumnVarChar); ok {
				sr.ID = idCol.Data()[i]
			}
			if snippetCol, ok := result.Fields.GetColumn("snippet_id").(*entity.ColumnVarChar); ok {
				sr.SnippetID = snippetCol.Data()[i]
			}
			if catCol, ok := result.Fields.GetColumn("category").(*entity.ColumnVarChar); ok {
				sr.Category = catCol.Data()[i]
			}
			if titleCol, ok := result.Fields.GetColumn("title").(*entity.ColumnVarChar); ok {
				sr.Title = titleCol.Data()[i]
			}
			if descCol, ok := result.Fields.GetColumn("description").(*entity.ColumnVarChar); ok {
				sr.Description = descCol.Data()[i]
			}

			searchResults = append(searchResults, sr)
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(searchResults)))
	return searchResults, nil
}

// InsertSnippets 插入片段向量
func (r *Repository) InsertSnippets(ctx context.Context, vectors []*SnippetVector) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.InsertSnippets",
		trace.WithAttributes(attribute.Int("count", len(vectors))))
	defer span.End()

	if len(vectors) == 0 {
		return nil
	}

	collName := r.client.CollectionName(CollectionSnippets)

	// 准备数据
	ids := make([]string, len(vectors))
	embeds := make([][]float32, len(vectors))
	snippetIDs := make([]string, len(vectors))
	categories := make([]string, len(vectors))
	titles := make([]string, len(vectors))
	descriptions := make([]string, len(vectors))

	for i, v := range vectors {
		ids[i] = v.ID
		embeds[i] = v.Vector
		snippetIDs[i] = v.SnippetID
		categories[i] = v.Category
		titles[i] = v.Title
		descriptions[i] = v.Description
	}

	// 构建列
	idCol := entity.NewColumnVarChar("id", ids)
	vectorCol := entity.NewColumnFloatVector("vector", VectorDimension, embeds)
	snippetCol := entity.NewColumnVarChar("snippet_id", snippetIDs)
	catCol := entity.NewColumnVarChar("category", categories)
	titleCol := entity.NewColumnVarChar("title", titles)
	descCol := entity.NewColumnVarChar("description", descriptions)

	// 插入
	_, err := r.client.milvus.Insert(ctx, collName, "",
		idCol, vectorCol, snippetCol, catCol, titleCol, descCol)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to insert snippets: %w", err)
	}

	return nil
}

// DeleteSnippet 删除片段的全部向量
func (r *Repository) DeleteSnippet(ctx context.Context, snippetID string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	snippetID = strings.TrimSpace(snippetID)
	if snippetID == "" {
		return nil
	}

	ctx, span := tracer.Start(ctx, "milvus.DeleteSnippet",
		trace.WithAttributes(attribute.String("snippet_id", snippetID)))
	defer span.End()

	collName := r.client.CollectionName(CollectionSnippets)

	filter := fmt.Sprintf(`snippet_id == "%s"`, snippetID)
	if err := r.client.milvus.Delete(ctx, collName, "", filter); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete snippet vectors: %w", err)
	}
	return nil
}

// RebuildIndex 重建索引
func (r *Repository) RebuildIndex(ctx context.Context, collection string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.RebuildIndex",
		trace.WithAttributes(attribute.String("collection", collection)))
	defer span.End()

	collName := r.client.CollectionName(collection)

	// 1. 释放集合
	if err := r.client.milvus.ReleaseCollection(ctx, collName); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to release collection: %w", err)
	}

	// 2. 删除旧索引（索引不存在的错误可忽略）
	_ = r.client.milvus.DropIndex(ctx, collName, "vector")

	// 3. 创建新索引
	if err := r.CreateIndex(ctx, collection); err != nil {
		return err
	}

	// 4. 重新加载集合
	return r.client.milvus.LoadCollection(ctx, collName, false)
}

// EnsureSnippetsCollection 确保 snippets 集合与索引可用（不存在则创建）。
// 约束：不会做 drop/rebuild 等破坏性操作。
func (r *Repository) EnsureSnippetsCollection(ctx context.Context) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}

	exists, err := r.client.HasCollection(ctx, CollectionSnippets)
	if err != nil {
		return err
	}
	if !exists {
		if err := r.CreateCollection(ctx, SnippetsSchema()); err != nil {
			return err
		}
		// 新建集合时创建索引；若失败，允许后续由运维介入。
		_ = r.CreateIndex(ctx, CollectionSnippets)
	}

	// 尝试确保集合已加载（若已加载，Milvus 会返回成功）
	return r.client.LoadCollection(ctx, CollectionSnippets)
}
