package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/embedding"

	"e-anim-ai-api/internal/domain/repository"
	"e-anim-ai-api/internal/infrastructure/persistence/milvus"
	"e-anim-ai-api/internal/workflow/node"
)

const (
	defaultTopK            = 4
	maxTopK                = 20
	defaultMaxContextRunes = 6000

	// queryMaxRunes 控制送入 Embedding 的查询长度；动画描述可能很长，只取首段。
	queryMaxRunes = 2000
)

type Engine struct {
	embedder embedding.Embedder
	vector   *milvus.Repository
	snippets repository.SnippetRepository

	topK            int
	maxContextRunes int
}

func NewEngine(embedder embedding.Embedder, vectorRepo *milvus.Repository, snippetRepo repository.SnippetRepository, topK, maxContextRunes int) *Engine {
	if topK <= 0 {
		topK = defaultTopK
	}
	if maxContextRunes <= 0 {
		maxContextRunes = defaultMaxContextRunes
	}
	return &Engine{
		embedder:        embedder,
		vector:          vectorRepo,
		snippets:        snippetRepo,
		topK:            topK,
		maxContextRunes: maxContextRunes,
	}
}

func (e *Engine) Enabled() bool {
	return e != nil && e.embedder != nil && e.vector != nil
}

func (e *Engine) ensureReady(ctx context.Context) error {
	if e == nil || e.vector == nil {
		return ErrVectorDisabled
	}
	return e.vector.EnsureSnippetsCollection(ctx)
}

// Search 对片段库做语义检索，返回带源码的命中结果。
func (e *Engine) Search(ctx context.Context, in SearchInput) (*SearchOutput, error) {
	in.Query = strings.TrimSpace(in.Query)
	if in.Query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if in.TopK <= 0 {
		in.TopK = e.topK
	}
	if in.TopK > maxTopK {
		in.TopK = maxTopK
	}

	out := &SearchOutput{}

	if !e.Enabled() {
		out.DisabledReason = ErrVectorDisabled.Error()
		return out, nil
	}
	if err := e.ensureReady(ctx); err != nil {
		out.DisabledReason = err.Error()
		return out, nil
	}

	emb, err := e.embedQuery(ctx, in.Query)
	if err != nil {
		out.DisabledReason = err.Error()
		return out, nil
	}

	results, err := e.vector.SearchSnippets(ctx, &milvus.SearchParams{
		QueryVector: emb,
		TopK:        in.TopK,
		Categories:  in.Categories,
	})
	if err != nil {
		out.DisabledReason = err.Error()
		return out, nil
	}
	if len(results) == 0 {
		return out, nil
	}

	// 向量库只存标题/描述，源码从 Postgres 批量回捞
	ids := make([]string, 0, len(results))
	for _, r := range results {
		if r == nil || strings.TrimSpace(r.SnippetID) == "" {
			continue
		}
		ids = append(ids, r.SnippetID)
	}
	sourceByID := make(map[string]string, len(ids))
	if e.snippets != nil && len(ids) > 0 {
		rows, err := e.snippets.GetByIDs(ctx, ids)
		if err == nil {
			for _, s := range rows {
				if s != nil {
					sourceByID[s.ID] = s.SourceCode
				}
			}
		}
	}

	out.Hits = buildHits(results, sourceByID)
	return out, nil
}

// buildHits 组装命中结果。
// COSINE 检索返回的 score 本身就是相似度（越大越相近），原样透传。
func buildHits(results []*milvus.SearchResult, sourceByID map[string]string) []SnippetHit {
	hits := make([]SnippetHit, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		hits = append(hits, SnippetHit{
			SnippetID:   strings.TrimSpace(r.SnippetID),
			Title:       strings.TrimSpace(r.Title),
			Category:    strings.TrimSpace(r.Category),
			Description: strings.TrimSpace(r.Description),
			SourceCode:  sourceByID[r.SnippetID],
			Score:       float64(r.Score),
		})
	}
	return hits
}

// BuildContext 将检索命中拼装为注入提示词的参考片段文本。
// 检索失败或无命中时返回空串，生成流程据此降级。
func (e *Engine) BuildContext(ctx context.Context, brief string, categories []string) (string, error) {
	out, err := e.Search(ctx, SearchInput{Query: brief, Categories: categories})
	if err != nil {
		return "", err
	}
	if out == nil || len(out.Hits) == 0 {
		return "", nil
	}

	var b strings.Builder
	for _, hit := range out.Hits {
		section := fmt.Sprintf("### %s (%s)\n%s\n```python\n%s\n```\n",
			hit.Title, hit.Category, hit.Description, strings.TrimSpace(hit.SourceCode))
		// 粗略字节上限，精确截断交给 TruncateByRunes
		if b.Len()+len(section) > e.maxContextRunes*4 {
			break
		}
		b.WriteString(section)
		b.WriteString("\n")
	}
	return node.TruncateByRunes(strings.TrimSpace(b.String()), e.maxContextRunes), nil
}

func (e *Engine) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if e == nil || e.embedder == nil {
		return nil, ErrVectorDisabled
	}
	chunks := splitByRunes(query, queryMaxRunes, 0)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("query is empty")
	}
	v64, err := e.embedder.EmbedStrings(ctx, []string{chunks[0]})
	if err != nil {
		return nil, err
	}
	if len(v64) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	vec := v64[0]
	out := make([]float32, 0, len(vec))
	for _, x := range vec {
		out = append(out, float32(x))
	}
	return out, nil
}
