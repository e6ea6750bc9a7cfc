package node

import (
	"regexp"
	"strings"
)

var codeFenceRe = regexp.MustCompile("(?s)```(?:[Pp]ython|py)?[ \t]*\n(.*?)```")

// ExtractPythonSource 尝试从模型输出中提取 Python 源码。
// 这是一个容错逻辑：模型可能把代码包在 Markdown 代码块里，或在代码前后夹杂说明文本。
func ExtractPythonSource(s string) string {
	// 部分提供商返回 CRLF，统一为 LF 后再做围栏匹配
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
	if raw == "" {
		return raw
	}

	// 优先取围栏代码块；多个代码块时取最长的一个（正文通常是完整脚本）。
	matches := codeFenceRe.FindAllStringSubmatch(raw, -1)
	if len(matches) > 0 {
		best := ""
		for _, m := range matches {
			block := strings.TrimSpace(m[1])
			if len(block) > len(best) {
				best = block
			}
		}
		if best != "" {
			return best
		}
	}

	// 没有围栏匹配时按行兜底：去掉残缺围栏的收尾行，丢弃首个 import 之前的说明文本。
	lines := strings.Split(raw, "\n")
	for len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	start := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "from ") || strings.HasPrefix(trimmed, "import ") {
			start = i
			break
		}
	}
	if start > 0 {
		return strings.TrimSpace(strings.Join(lines[start:], "\n"))
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

var sceneClassRe = regexp.MustCompile(`(?m)^class\s+(\w+)\s*\(([^)]*)\)\s*:`)

// ExtractSceneClasses 提取源码中定义的 Scene 子类名。
// 基类名包含 Scene 即视为场景类（Scene/MovingCameraScene/ThreeDScene 等）。
func ExtractSceneClasses(source string) []string {
	var classes []string
	for _, m := range sceneClassRe.FindAllStringSubmatch(source, -1) {
		if strings.Contains(m[2], "Scene") {
			classes = append(classes, m[1])
		}
	}
	return classes
}
