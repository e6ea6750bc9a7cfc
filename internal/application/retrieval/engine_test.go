package retrieval

import (
	"math"
	"testing"

	"e-anim-ai-api/internal/infrastructure/persistence/milvus"
)

func TestBuildHits(t *testing.T) {
	results := []*milvus.SearchResult{
		{SnippetID: "s1", Title: " 圆的绘制 ", Category: "geometry", Score: 0.92},
		nil,
		{SnippetID: "s2", Title: "坐标系", Category: "graphing", Score: 0.31},
	}
	sourceByID := map[string]string{"s1": "class C(Scene): pass"}

	hits := buildHits(results, sourceByID)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}

	// COSINE 相似度越大越相近，不做距离换算
	if math.Abs(hits[0].Score-0.92) > 1e-6 {
		t.Fatalf("score = %v, want 0.92 as-is", hits[0].Score)
	}
	if hits[0].Score < hits[1].Score {
		t.Fatal("higher similarity should keep higher score")
	}
	if hits[0].Title != "圆的绘制" {
		t.Fatalf("title = %q, want trimmed", hits[0].Title)
	}
	if hits[0].SourceCode == "" || hits[1].SourceCode != "" {
		t.Fatalf("source mapping wrong: %q / %q", hits[0].SourceCode, hits[1].SourceCode)
	}
}
