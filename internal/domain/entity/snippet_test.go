package entity

import "testing"

func TestNewSnippetDefaultCategory(t *testing.T) {
	s := NewSnippet("圆的绘制", "", "class C(Scene): pass")
	if s.Category != SnippetCategoryGeneral {
		t.Fatalf("category = %s, want general", s.Category)
	}
	if s.Indexed {
		t.Fatal("new snippet must not be indexed")
	}
}

func TestSnippetEmbeddingText(t *testing.T) {
	s := NewSnippet("圆的绘制", SnippetCategoryGeometry, "...")
	if got := s.EmbeddingText(); got != "圆的绘制" {
		t.Fatalf("EmbeddingText = %q", got)
	}

	s.Description = "演示如何用 Create 绘制一个圆"
	want := "圆的绘制\n演示如何用 Create 绘制一个圆"
	if got := s.EmbeddingText(); got != want {
		t.Fatalf("EmbeddingText = %q, want %q", got, want)
	}
}

func TestSnippetMarkIndexed(t *testing.T) {
	s := NewSnippet("t", SnippetCategoryText, "...")
	s.MarkIndexed()
	if !s.Indexed {
		t.Fatal("MarkIndexed should set Indexed")
	}
}

func TestProjectIsEditable(t *testing.T) {
	p := NewProject("勾股定理", "geometry")
	if !p.IsEditable() {
		t.Fatal("draft project should be editable")
	}
	p.Status = ProjectStatusActive
	if !p.IsEditable() {
		t.Fatal("active project should be editable")
	}
	p.Status = ProjectStatusArchived
	if p.IsEditable() {
		t.Fatal("archived project must not be editable")
	}
}
