// Package retrieval 提供参考片段的向量索引与语义检索
package retrieval

// SearchInput 片段检索输入。
type SearchInput struct {
	Query string
	TopK  int

	// Categories 为空表示不过滤；非空则仅检索指定分类。
	Categories []string
}

// SnippetHit 一条检索命中。
type SnippetHit struct {
	SnippetID   string
	Title       string
	Category    string
	Description string
	SourceCode  string

	// Score 相似度（COSINE: distance=1-cos，已转换为越大越相似）
	Score float64
}

// SearchOutput 检索结果。
type SearchOutput struct {
	Hits []SnippetHit

	// DisabledReason 非空表示向量检索被降级，调用方可据此记录日志。
	DisabledReason string
}
