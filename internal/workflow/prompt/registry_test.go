package prompt

import (
	"context"
	"strings"
	"testing"
)

func TestRegistryChatTemplate(t *testing.T) {
	r := NewRegistry()

	for _, id := range []PromptID{PromptScriptGenV1, PromptScriptRefineV1} {
		tpl, err := r.ChatTemplate(id)
		if err != nil {
			t.Fatalf("ChatTemplate(%s) error: %v", id, err)
		}
		if tpl == nil {
			t.Fatalf("ChatTemplate(%s) returned nil template", id)
		}

		// 二次获取走缓存，应返回同一实例
		again, err := r.ChatTemplate(id)
		if err != nil {
			t.Fatalf("ChatTemplate(%s) second call error: %v", id, err)
		}
		if again != tpl {
			t.Fatalf("ChatTemplate(%s) should return cached template", id)
		}
	}
}

func TestRegistryChatTemplate_UnknownID(t *testing.T) {
	r := NewRegistry()
	if _, err := r.ChatTemplate(PromptID("nope")); err == nil {
		t.Fatal("expected error for unknown prompt id")
	}
}

func TestScriptGenTemplateFormat(t *testing.T) {
	r := NewRegistry()
	tpl, err := r.ChatTemplate(PromptScriptGenV1)
	if err != nil {
		t.Fatalf("ChatTemplate error: %v", err)
	}

	msgs, err := tpl.Format(context.Background(), map[string]any{
		"project_title":     "圆的面积",
		"topic":             "geometry",
		"audience":          "初中生",
		"language":          "zh",
		"target_duration":   60,
		"brief":             "演示圆面积公式的推导过程",
		"retrieved_context": "(none)",
	})
	if err != nil {
		t.Fatalf("Format error: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected system + user messages, got %d", len(msgs))
	}
	if !strings.Contains(msgs[1].Content, "圆的面积") {
		t.Fatalf("user message should contain project title, got: %q", msgs[1].Content)
	}
	if strings.Contains(msgs[1].Content, "{brief}") {
		t.Fatalf("placeholders should be substituted, got: %q", msgs[1].Content)
	}
}
