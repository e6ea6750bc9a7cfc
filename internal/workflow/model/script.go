package model

import "strings"

// 提示词里的缺省画像，调用方未提供时统一填充
const (
	DefaultAudience       = "high school students"
	DefaultLanguage       = "English"
	DefaultTargetDuration = 60
)

type ScriptGenerateInput struct {
	ProjectTitle string
	Topic        string

	// Brief 教学动画的自然语言描述
	Brief string

	// RetrievedContext 注入提示词的参考片段
	RetrievedContext string

	Audience       string
	Language       string
	TargetDuration int

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}

// ApplyDefaults 补齐缺省的受众、语言与目标时长
func (in *ScriptGenerateInput) ApplyDefaults() {
	if in == nil {
		return
	}
	if strings.TrimSpace(in.Audience) == "" {
		in.Audience = DefaultAudience
	}
	if strings.TrimSpace(in.Language) == "" {
		in.Language = DefaultLanguage
	}
	if in.TargetDuration <= 0 {
		in.TargetDuration = DefaultTargetDuration
	}
}

type ScriptGenerateOutput struct {
	// Source 提取后的 Python 场景脚本
	Source string
	// SceneClasses 脚本中定义的 Scene 子类名
	SceneClasses []string
	Meta         LLMUsageMeta
}

type ScriptRefineInput struct {
	ProjectTitle string

	// Brief 原始动画描述
	Brief string
	// CurrentSource 当前版本脚本源码
	CurrentSource string
	// Instructions 修改意见
	Instructions string

	RetrievedContext string

	Provider string
	Model    string

	Temperature *float32
	MaxTokens   *int
}
