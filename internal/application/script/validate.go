// Package script 负责场景脚本的生成、修订与校验
package script

import (
	"fmt"
	"regexp"
	"strings"

	"e-anim-ai-api/internal/workflow/node"
	apperrors "e-anim-ai-api/pkg/errors"
	"e-anim-ai-api/pkg/metrics"
)

var (
	manimImportRe = regexp.MustCompile(`(?m)^\s*(from\s+manim(\.\w+)*\s+import\s+|import\s+manim\b)`)
	constructRe   = regexp.MustCompile(`(?m)^[ \t]+def\s+construct\s*\(\s*self\b`)
)

// ValidateSceneSource 对生成的场景脚本做最低可渲染性校验：
//  1. 必须导入 manim；
//  2. 必须至少定义一个 Scene 子类；
//  3. 至少一个类中定义了 construct 方法。
//
// 返回脚本中的 Scene 子类名列表。校验不执行代码，渲染由外部流程负责。
func ValidateSceneSource(workflow, source string) ([]string, error) {
	src := strings.TrimSpace(source)
	if src == "" {
		metrics.ValidationTotal.WithLabelValues(workflow, "empty").Inc()
		return nil, apperrors.New(apperrors.CodeValidationFailed, "generated script is empty")
	}

	if !manimImportRe.MatchString(src) {
		metrics.ValidationTotal.WithLabelValues(workflow, "missing_import").Inc()
		return nil, apperrors.New(apperrors.CodeValidationFailed, "generated script does not import manim")
	}

	classes := node.ExtractSceneClasses(src)
	if len(classes) == 0 {
		metrics.ValidationTotal.WithLabelValues(workflow, "no_scene_class").Inc()
		return nil, apperrors.New(apperrors.CodeValidationFailed, "generated script defines no Scene subclass")
	}

	if !constructRe.MatchString(src) {
		metrics.ValidationTotal.WithLabelValues(workflow, "no_construct").Inc()
		return nil, apperrors.New(apperrors.CodeValidationFailed,
			fmt.Sprintf("scene classes %v define no construct method", classes))
	}

	metrics.ValidationTotal.WithLabelValues(workflow, "ok").Inc()
	return classes, nil
}
