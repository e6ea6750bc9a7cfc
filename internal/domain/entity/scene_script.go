// Package entity 定义领域实体
package entity

import (
	"strings"
	"time"
)

// ScriptStatus 脚本状态
type ScriptStatus string

const (
	ScriptStatusDraft      ScriptStatus = "draft"
	ScriptStatusGenerating ScriptStatus = "generating"
	ScriptStatusReady      ScriptStatus = "ready"
	ScriptStatusSuperseded ScriptStatus = "superseded"
)

// GenerationMetadata 生成元数据
type GenerationMetadata struct {
	Workflow         string  `json:"workflow,omitempty"`
	Model            string  `json:"model,omitempty"`
	Provider         string  `json:"provider,omitempty"`
	PromptTokens     int     `json:"prompt_tokens,omitempty"`
	CompletionTokens int     `json:"completion_tokens,omitempty"`
	Temperature      float64 `json:"temperature,omitempty"`
	GeneratedAt      string  `json:"generated_at,omitempty"`
}

// SceneScript Manim 场景脚本实体
// 同一项目下脚本按版本递增，至多一个版本标记为 current
type SceneScript struct {
	ID                 string              `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectID          string              `json:"project_id" gorm:"type:uuid;index;not null"`
	Version            int                 `json:"version" gorm:"not null"`
	Current            bool                `json:"current" gorm:"default:false;index"`
	SourceCode         string              `json:"source_code,omitempty" gorm:"type:text"`
	SceneClasses       []string            `json:"scene_classes,omitempty" gorm:"type:jsonb;serializer:json"`
	FilePath           string              `json:"file_path,omitempty" gorm:"type:varchar(512)"`
	LineCount          int                 `json:"line_count" gorm:"default:0"`
	Instructions       string              `json:"instructions,omitempty" gorm:"type:text"`
	Status             ScriptStatus        `json:"status" gorm:"type:varchar(50);default:'draft'"`
	GenerationMetadata *GenerationMetadata `json:"generation_metadata,omitempty" gorm:"type:jsonb;serializer:json"`
	CreatedAt          time.Time           `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time           `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (SceneScript) TableName() string {
	return "scene_scripts"
}

// NewSceneScript 创建新脚本版本
func NewSceneScript(projectID string, version int) *SceneScript {
	now := time.Now()
	return &SceneScript{
		ProjectID: projectID,
		Version:   version,
		Status:    ScriptStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetSource 设置脚本源码并更新统计
func (s *SceneScript) SetSource(source string, sceneClasses []string) {
	s.SourceCode = source
	s.SceneClasses = sceneClasses
	s.LineCount = countLines(source)
	s.UpdatedAt = time.Now()
}

// MarkReady 脚本生成完成
func (s *SceneScript) MarkReady(filePath string) {
	s.Status = ScriptStatusReady
	s.FilePath = filePath
	s.UpdatedAt = time.Now()
}

// Supersede 被更新版本取代
func (s *SceneScript) Supersede() {
	s.Current = false
	s.Status = ScriptStatusSuperseded
	s.UpdatedAt = time.Now()
}

// countLines 统计源码行数
func countLines(source string) int {
	if source == "" {
		return 0
	}
	return strings.Count(source, "\n") + 1
}
