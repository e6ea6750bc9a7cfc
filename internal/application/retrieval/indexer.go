package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/google/uuid"

	"e-anim-ai-api/internal/domain/entity"
	"e-anim-ai-api/internal/domain/repository"
	"e-anim-ai-api/internal/infrastructure/persistence/milvus"
)

const (
	defaultEmbeddingBatch = 32

	// snippetEmbedMaxRunes 限制单条嵌入文本长度；标题+描述通常远小于该值。
	snippetEmbedMaxRunes = 1600
)

type Indexer struct {
	embedder embedding.Embedder
	vector   *milvus.Repository
	snippets repository.SnippetRepository

	embeddingBatchSize int
}

func NewIndexer(embedder embedding.Embedder, vectorRepo *milvus.Repository, snippetRepo repository.SnippetRepository, embeddingBatchSize int) *Indexer {
	bs := embeddingBatchSize
	if bs <= 0 {
		bs = defaultEmbeddingBatch
	}
	return &Indexer{
		embedder:           embedder,
		vector:             vectorRepo,
		snippets:           snippetRepo,
		embeddingBatchSize: bs,
	}
}

func (i *Indexer) Enabled() bool {
	return i != nil && i.embedder != nil && i.vector != nil
}

func (i *Indexer) ensureReady(ctx context.Context) error {
	if i == nil || i.vector == nil {
		return ErrVectorDisabled
	}
	return i.vector.EnsureSnippetsCollection(ctx)
}

// IndexSnippets 将片段写入向量库并标记已索引。
// 重复索引安全：先删除该片段的旧向量再写入。
func (i *Indexer) IndexSnippets(ctx context.Context, snippets []*entity.Snippet) error {
	if !i.Enabled() {
		return ErrVectorDisabled
	}
	if len(snippets) == 0 {
		return nil
	}
	if err := i.ensureReady(ctx); err != nil {
		return err
	}

	embedInputs := make([]string, 0, len(snippets))
	vectors := make([]*milvus.SnippetVector, 0, len(snippets))
	indexedIDs := make([]string, 0, len(snippets))

	for _, s := range snippets {
		if s == nil || strings.TrimSpace(s.ID) == "" {
			continue
		}
		text := strings.TrimSpace(s.EmbeddingText())
		if text == "" {
			continue
		}
		chunks := splitByRunes(text, snippetEmbedMaxRunes, 0)
		if len(chunks) == 0 {
			continue
		}

		if err := i.vector.DeleteSnippet(ctx, s.ID); err != nil {
			return err
		}

		embedInputs = append(embedInputs, chunks[0])
		vectors = append(vectors, &milvus.SnippetVector{
			ID:          uuid.NewString(),
			SnippetID:   s.ID,
			Category:    string(s.Category),
			Title:       strings.TrimSpace(s.Title),
			Description: strings.TrimSpace(s.Description),
		})
		indexedIDs = append(indexedIDs, s.ID)
	}

	if len(vectors) == 0 {
		return nil
	}

	embeds, err := i.embedBatch(ctx, embedInputs)
	if err != nil {
		return err
	}
	if len(embeds) != len(vectors) {
		return fmt.Errorf("embedding count mismatch: got %d want %d", len(embeds), len(vectors))
	}
	for idx := range vectors {
		vectors[idx].Vector = embeds[idx]
	}

	if err := i.vector.InsertSnippets(ctx, vectors); err != nil {
		return err
	}

	if i.snippets != nil {
		if err := i.snippets.MarkIndexed(ctx, indexedIDs); err != nil {
			return fmt.Errorf("failed to mark snippets indexed: %w", err)
		}
	}
	return nil
}

// IndexByIDs 按 ID 批量索引；ID 不存在的片段会被跳过。
func (i *Indexer) IndexByIDs(ctx context.Context, ids []string) (int, error) {
	if i == nil || i.snippets == nil {
		return 0, fmt.Errorf("snippet repository not configured")
	}
	if len(ids) == 0 {
		return 0, nil
	}
	snippets, err := i.snippets.GetByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	if len(snippets) == 0 {
		return 0, nil
	}
	if err := i.IndexSnippets(ctx, snippets); err != nil {
		return 0, err
	}
	return len(snippets), nil
}

// IndexUnindexed 扫描尚未索引的片段并批量补齐，返回处理条数。
func (i *Indexer) IndexUnindexed(ctx context.Context, limit int) (int, error) {
	if i == nil || i.snippets == nil {
		return 0, fmt.Errorf("snippet repository not configured")
	}
	if limit <= 0 {
		limit = 100
	}
	snippets, err := i.snippets.GetUnindexed(ctx, limit)
	if err != nil {
		return 0, err
	}
	if len(snippets) == 0 {
		return 0, nil
	}
	if err := i.IndexSnippets(ctx, snippets); err != nil {
		return 0, err
	}
	return len(snippets), nil
}

// RemoveSnippet 删除片段向量（片段本身的删除由仓储层负责）。
func (i *Indexer) RemoveSnippet(ctx context.Context, snippetID string) error {
	if i == nil || i.vector == nil {
		return ErrVectorDisabled
	}
	return i.vector.DeleteSnippet(ctx, snippetID)
}

func (i *Indexer) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if i == nil || i.embedder == nil {
		return nil, ErrVectorDisabled
	}
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += i.embeddingBatchSize {
		end := start + i.embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		v64, err := i.embedder.EmbedStrings(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		for _, vec := range v64 {
			f32 := make([]float32, 0, len(vec))
			for _, x := range vec {
				f32 = append(f32, float32(x))
			}
			out = append(out, f32)
		}
	}
	return out, nil
}
