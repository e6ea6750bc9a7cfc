// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"e-anim-ai-api/internal/application/generation"
)

// GenerateScriptRequest 脚本生成请求
// brief 与 brief_path 二选一；都不传时使用项目已保存的描述文件
type GenerateScriptRequest struct {
	Brief          string   `json:"brief,omitempty" binding:"max=50000"`
	BriefPath      string   `json:"brief_path,omitempty" binding:"max=512"`
	Provider       string   `json:"provider,omitempty" binding:"max=32"`
	Model          string   `json:"model,omitempty" binding:"max=64"`
	Temperature    *float32 `json:"temperature,omitempty"`
	MaxTokens      *int     `json:"max_tokens,omitempty"`
	Audience       string   `json:"audience,omitempty" binding:"max=100"`
	Language       string   `json:"language,omitempty" binding:"max=50"`
	TargetDuration int      `json:"target_duration,omitempty" binding:"gte=0"`
	IdempotencyKey string   `json:"idempotency_key,omitempty" binding:"max=128"`
}

// RefineScriptRequest 脚本修订请求
type RefineScriptRequest struct {
	Instructions   string   `json:"instructions" binding:"required,max=10000"`
	BaseScriptID   string   `json:"base_script_id,omitempty"`
	Provider       string   `json:"provider,omitempty" binding:"max=32"`
	Model          string   `json:"model,omitempty" binding:"max=64"`
	Temperature    *float32 `json:"temperature,omitempty"`
	MaxTokens      *int     `json:"max_tokens,omitempty"`
	IdempotencyKey string   `json:"idempotency_key,omitempty" binding:"max=128"`
}

// StreamScriptRequest 流式脚本预览请求（查询参数）
type StreamScriptRequest struct {
	Provider string `form:"provider" binding:"max=32"`
	Model    string `form:"model" binding:"max=64"`
}

// ToGenParams 转换为生成任务参数
func (r *GenerateScriptRequest) ToGenParams() *generation.ScriptGenParams {
	return &generation.ScriptGenParams{
		Brief:          r.Brief,
		BriefPath:      r.BriefPath,
		Provider:       r.Provider,
		Model:          r.Model,
		Temperature:    r.Temperature,
		MaxTokens:      r.MaxTokens,
		Audience:       r.Audience,
		Language:       r.Language,
		TargetDuration: r.TargetDuration,
	}
}

// ToGenParams 转换为修订任务参数
func (r *RefineScriptRequest) ToGenParams() *generation.ScriptGenParams {
	return &generation.ScriptGenParams{
		Instructions: r.Instructions,
		BaseScriptID: r.BaseScriptID,
		Provider:     r.Provider,
		Model:        r.Model,
		Temperature:  r.Temperature,
		MaxTokens:    r.MaxTokens,
	}
}
