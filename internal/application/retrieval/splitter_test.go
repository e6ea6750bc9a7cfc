package retrieval

import (
	"strings"
	"testing"
)

func TestSplitByRunes(t *testing.T) {
	t.Run("空文本", func(t *testing.T) {
		if got := splitByRunes("   ", 10, 0); got != nil {
			t.Fatalf("expected nil, got %v", got)
		}
	})

	t.Run("短文本不切分", func(t *testing.T) {
		got := splitByRunes("short text", 100, 10)
		if len(got) != 1 || got[0] != "short text" {
			t.Fatalf("got %v", got)
		}
	})

	t.Run("maxRunes为零时整体返回", func(t *testing.T) {
		got := splitByRunes("abc", 0, 0)
		if len(got) != 1 || got[0] != "abc" {
			t.Fatalf("got %v", got)
		}
	})

	t.Run("按步长切分且不丢内容", func(t *testing.T) {
		text := strings.Repeat("a", 25)
		got := splitByRunes(text, 10, 0)
		if len(got) != 3 {
			t.Fatalf("expected 3 chunks, got %d: %v", len(got), got)
		}
		if total := len(got[0]) + len(got[1]) + len(got[2]); total != 25 {
			t.Fatalf("chunks lose content, total = %d", total)
		}
	})

	t.Run("重叠切分", func(t *testing.T) {
		text := "abcdefghij"
		got := splitByRunes(text, 6, 2)
		// 步长 4：abcdef, efghij
		if len(got) != 2 {
			t.Fatalf("expected 2 chunks, got %v", got)
		}
		if got[0] != "abcdef" || got[1] != "efghij" {
			t.Fatalf("got %v", got)
		}
	})

	t.Run("多字节字符按 rune 计数", func(t *testing.T) {
		text := strings.Repeat("数", 8)
		got := splitByRunes(text, 4, 0)
		if len(got) != 2 {
			t.Fatalf("expected 2 chunks, got %v", got)
		}
		for _, c := range got {
			if n := len([]rune(c)); n != 4 {
				t.Fatalf("chunk rune count = %d, want 4", n)
			}
		}
	})
}
