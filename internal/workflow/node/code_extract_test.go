package node

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtractPythonSource_FencedBlock(t *testing.T) {
	raw := "Here is your animation:\n\n```python\nfrom manim import *\n\n\nclass Intro(Scene):\n    def construct(self):\n        pass\n```\n\nEnjoy!"

	got := ExtractPythonSource(raw)
	if !strings.HasPrefix(got, "from manim import *") {
		t.Fatalf("expected source to start with manim import, got: %q", got)
	}
	if strings.Contains(got, "```") {
		t.Fatalf("fence markers should be stripped, got: %q", got)
	}
	if strings.Contains(got, "Enjoy") {
		t.Fatalf("trailing prose should be stripped, got: %q", got)
	}
}

func TestExtractPythonSource_PicksLongestBlock(t *testing.T) {
	// 模型有时先给一个片段示例，再给完整脚本
	raw := "```python\nprint(1)\n```\n\nFull script:\n\n```python\nfrom manim import *\n\n\nclass Full(Scene):\n    def construct(self):\n        self.wait(1)\n```"

	got := ExtractPythonSource(raw)
	if !strings.Contains(got, "class Full(Scene):") {
		t.Fatalf("expected longest block, got: %q", got)
	}
}

func TestExtractPythonSource_NoFence(t *testing.T) {
	raw := "Sure! The script below draws a circle.\nfrom manim import *\n\nclass CircleScene(Scene):\n    def construct(self):\n        self.play(Create(Circle()))"

	got := ExtractPythonSource(raw)
	if strings.Contains(got, "Sure!") {
		t.Fatalf("leading prose should be stripped, got: %q", got)
	}
	if !strings.HasPrefix(got, "from manim import *") {
		t.Fatalf("expected import as first line, got: %q", got)
	}
}

func TestExtractPythonSource_CRLF(t *testing.T) {
	raw := "Here you go:\r\n\r\n```python\r\nfrom manim import *\r\n\r\nclass A(Scene):\r\n    def construct(self):\r\n        pass\r\n```\r\n"

	got := ExtractPythonSource(raw)
	if strings.Contains(got, "```") {
		t.Fatalf("fence markers should be stripped from CRLF output, got: %q", got)
	}
	if !strings.HasPrefix(got, "from manim import *") {
		t.Fatalf("expected source to start with manim import, got: %q", got)
	}
	if strings.Contains(got, "Here you go") {
		t.Fatalf("leading prose should be stripped, got: %q", got)
	}
}

func TestExtractPythonSource_FallbackStripsTrailingFence(t *testing.T) {
	// 开栏行缺失时走逐行兜底，收尾的 ``` 不能残留在源码里
	raw := "from manim import *\n\nclass A(Scene):\n    def construct(self):\n        pass\n```"

	got := ExtractPythonSource(raw)
	if strings.Contains(got, "```") {
		t.Fatalf("trailing fence should be stripped, got: %q", got)
	}
	if !strings.HasSuffix(got, "pass") {
		t.Fatalf("source body should be kept, got: %q", got)
	}
}

func TestExtractPythonSource_Empty(t *testing.T) {
	if got := ExtractPythonSource("   \n  "); got != "" {
		t.Fatalf("expected empty result, got: %q", got)
	}
}

func TestExtractSceneClasses(t *testing.T) {
	source := strings.Join([]string{
		"from manim import *",
		"",
		"class Helper:",
		"    pass",
		"",
		"class Intro(Scene):",
		"    def construct(self):",
		"        pass",
		"",
		"class Camera3D(ThreeDScene):",
		"    def construct(self):",
		"        pass",
		"",
		"class NotAScene(object):",
		"    pass",
	}, "\n")

	got := ExtractSceneClasses(source)
	want := []string{"Intro", "Camera3D"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractSceneClasses = %v, want %v", got, want)
	}
}

func TestExtractSceneClasses_None(t *testing.T) {
	if got := ExtractSceneClasses("x = 1\n"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
