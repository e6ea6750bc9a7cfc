package script

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	wfmodel "e-anim-ai-api/internal/workflow/model"
)

// fakeChatModel 固定返回预设消息的 BaseChatModel
type fakeChatModel struct {
	msg *schema.Message
	err error
}

func (f *fakeChatModel) Generate(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	return f.msg, f.err
}

func (f *fakeChatModel) Stream(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	if f.err != nil {
		return nil, f.err
	}
	sr, sw := schema.Pipe[*schema.Message](1)
	sw.Send(f.msg, nil)
	sw.Close()
	return sr, nil
}

type fakeFactory struct {
	chatModel model.BaseChatModel
	err       error
}

func (f *fakeFactory) Get(ctx context.Context, name string) (model.BaseChatModel, error) {
	return f.chatModel, f.err
}

const llmReply = "Here is the script:\n\n```python\nfrom manim import *\n\n\nclass PythagoreanProof(Scene):\n    def construct(self):\n        square = Square()\n        self.play(Create(square))\n```\n"

func genInput() *wfmodel.ScriptGenerateInput {
	return &wfmodel.ScriptGenerateInput{
		ProjectTitle: "勾股定理",
		Topic:        "geometry",
		Brief:        "用面积拼接法演示勾股定理",
		Provider:     "xai",
	}
}

func TestGeneratorGenerate(t *testing.T) {
	chatModel := &fakeChatModel{
		msg: &schema.Message{
			Role:    schema.Assistant,
			Content: llmReply,
			ResponseMeta: &schema.ResponseMeta{
				Usage: &schema.TokenUsage{PromptTokens: 120, CompletionTokens: 80, TotalTokens: 200},
			},
		},
	}
	g := NewGenerator(&fakeFactory{chatModel: chatModel})

	out, err := g.Generate(context.Background(), genInput())
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if !strings.HasPrefix(out.Source, "from manim import *") {
		t.Fatalf("source should be extracted from fence, got: %q", out.Source)
	}
	if len(out.SceneClasses) != 1 || out.SceneClasses[0] != "PythagoreanProof" {
		t.Fatalf("scene classes = %v", out.SceneClasses)
	}
	if out.Meta.PromptTokens != 120 || out.Meta.CompletionTokens != 80 {
		t.Fatalf("usage meta = %+v", out.Meta)
	}
	if out.Meta.TotalTokens() != 200 {
		t.Fatalf("TotalTokens = %d, want 200", out.Meta.TotalTokens())
	}
}

func TestGeneratorGenerate_InvalidReply(t *testing.T) {
	chatModel := &fakeChatModel{
		msg: &schema.Message{Role: schema.Assistant, Content: "抱歉，我无法生成这个动画。"},
	}
	g := NewGenerator(&fakeFactory{chatModel: chatModel})

	if _, err := g.Generate(context.Background(), genInput()); err == nil {
		t.Fatal("expected validation error for non-code reply")
	}
}

func TestGeneratorGenerate_LLMError(t *testing.T) {
	llmErr := errors.New("rate limited")
	g := NewGenerator(&fakeFactory{chatModel: &fakeChatModel{err: llmErr}})

	if _, err := g.Generate(context.Background(), genInput()); !errors.Is(err, llmErr) {
		t.Fatalf("expected llm error, got %v", err)
	}
}

func TestGeneratorGenerate_MissingBrief(t *testing.T) {
	g := NewGenerator(&fakeFactory{chatModel: &fakeChatModel{msg: &schema.Message{Content: llmReply}}})

	in := genInput()
	in.Brief = "  "
	if _, err := g.Generate(context.Background(), in); err == nil {
		t.Fatal("expected error for missing brief")
	}
}

func TestGeneratorRefine(t *testing.T) {
	chatModel := &fakeChatModel{
		msg: &schema.Message{Role: schema.Assistant, Content: llmReply},
	}
	g := NewGenerator(&fakeFactory{chatModel: chatModel})

	out, err := g.Refine(context.Background(), &wfmodel.ScriptRefineInput{
		ProjectTitle:  "勾股定理",
		Brief:         "用面积拼接法演示勾股定理",
		CurrentSource: "from manim import *\n\nclass Old(Scene):\n    def construct(self):\n        pass",
		Instructions:  "把正方形换成直角三角形",
		Provider:      "xai",
	})
	if err != nil {
		t.Fatalf("Refine error: %v", err)
	}
	if len(out.SceneClasses) != 1 || out.SceneClasses[0] != "PythagoreanProof" {
		t.Fatalf("scene classes = %v", out.SceneClasses)
	}
}

func TestGeneratorStream(t *testing.T) {
	chatModel := &fakeChatModel{
		msg: &schema.Message{Role: schema.Assistant, Content: "from manim"},
	}
	g := NewGenerator(&fakeFactory{chatModel: chatModel})

	sr, err := g.Stream(context.Background(), genInput())
	if err != nil {
		t.Fatalf("Stream error: %v", err)
	}
	defer sr.Close()

	msg, err := sr.Recv()
	if err != nil {
		t.Fatalf("Recv error: %v", err)
	}
	if msg.Content != "from manim" {
		t.Fatalf("chunk = %q", msg.Content)
	}
}
