// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"e-anim-ai-api/internal/domain/entity"
)

// ScriptResponse 脚本版本响应
type ScriptResponse struct {
	ID           string                 `json:"id"`
	ProjectID    string                 `json:"project_id"`
	Version      int                    `json:"version"`
	Current      bool                   `json:"current"`
	SceneClasses []string               `json:"scene_classes,omitempty"`
	FilePath     string                 `json:"file_path,omitempty"`
	LineCount    int                    `json:"line_count"`
	Instructions string                 `json:"instructions,omitempty"`
	Status       string                 `json:"status"`
	SourceCode   string                 `json:"source_code,omitempty"`
	Metadata     *GenerationMetadataDTO `json:"generation_metadata,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// GenerationMetadataDTO 生成元数据
type GenerationMetadataDTO struct {
	Workflow         string  `json:"workflow,omitempty"`
	Model            string  `json:"model,omitempty"`
	Provider         string  `json:"provider,omitempty"`
	PromptTokens     int     `json:"prompt_tokens,omitempty"`
	CompletionTokens int     `json:"completion_tokens,omitempty"`
	Temperature      float64 `json:"temperature,omitempty"`
	GeneratedAt      string  `json:"generated_at,omitempty"`
}

// ScriptListResponse 脚本版本列表响应
type ScriptListResponse struct {
	Scripts []*ScriptResponse `json:"scripts"`
}

// ToScriptResponse 将领域实体转换为响应 DTO
// includeSource 控制是否返回源码（列表接口不带源码，减小响应体）
func ToScriptResponse(s *entity.SceneScript, includeSource bool) *ScriptResponse {
	if s == nil {
		return nil
	}

	resp := &ScriptResponse{
		ID:           s.ID,
		ProjectID:    s.ProjectID,
		Version:      s.Version,
		Current:      s.Current,
		SceneClasses: s.SceneClasses,
		FilePath:     s.FilePath,
		LineCount:    s.LineCount,
		Instructions: s.Instructions,
		Status:       string(s.Status),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	if includeSource {
		resp.SourceCode = s.SourceCode
	}
	if m := s.GenerationMetadata; m != nil {
		resp.Metadata = &GenerationMetadataDTO{
			Workflow:         m.Workflow,
			Model:            m.Model,
			Provider:         m.Provider,
			PromptTokens:     m.PromptTokens,
			CompletionTokens: m.CompletionTokens,
			Temperature:      m.Temperature,
			GeneratedAt:      m.GeneratedAt,
		}
	}
	return resp
}

// ToScriptListResponse 将领域实体列表转换为响应 DTO
func ToScriptListResponse(scripts []*entity.SceneScript) *ScriptListResponse {
	resp := &ScriptListResponse{
		Scripts: make([]*ScriptResponse, 0, len(scripts)),
	}
	for _, s := range scripts {
		resp.Scripts = append(resp.Scripts, ToScriptResponse(s, false))
	}
	return resp
}
