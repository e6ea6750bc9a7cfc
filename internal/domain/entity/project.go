// Package entity 定义领域实体
package entity

import (
	"time"
)

// ProjectStatus 项目状态
type ProjectStatus string

const (
	ProjectStatusDraft     ProjectStatus = "draft"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusArchived  ProjectStatus = "archived"
)

// RenderSettings 渲染参数（仅记录，渲染本身由外部流程执行）
type RenderSettings struct {
	Quality         string `json:"quality,omitempty"`
	FrameRate       int    `json:"frame_rate,omitempty"`
	Resolution      string `json:"resolution,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
}

// ProjectSettings 项目级生成设置
type ProjectSettings struct {
	Audience       string  `json:"audience,omitempty"`
	Subject        string  `json:"subject,omitempty"`
	Language       string  `json:"language,omitempty"`
	Temperature    float64 `json:"temperature,omitempty"`
	TargetDuration int     `json:"target_duration_seconds,omitempty"`
}

// Project 教学动画项目实体
// 一个项目对应一段教学动画：一份描述文本与若干版本的场景脚本
type Project struct {
	ID             string           `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title          string           `json:"title" gorm:"type:varchar(255);not null"`
	Description    string           `json:"description,omitempty" gorm:"type:text"`
	Topic          string           `json:"topic,omitempty" gorm:"type:varchar(100)"`
	BriefPath      string           `json:"brief_path,omitempty" gorm:"type:varchar(512)"`
	Settings       *ProjectSettings `json:"settings,omitempty" gorm:"type:jsonb;serializer:json"`
	RenderSettings *RenderSettings  `json:"render_settings,omitempty" gorm:"type:jsonb;serializer:json"`
	ScriptCount    int              `json:"script_count" gorm:"default:0"`
	Status         ProjectStatus    `json:"status" gorm:"type:varchar(50);default:'draft'"`
	CreatedAt      time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Project) TableName() string {
	return "projects"
}

// NewProject 创建新项目
func NewProject(title, topic string) *Project {
	now := time.Now()
	return &Project{
		Title:       title,
		Topic:       topic,
		ScriptCount: 0,
		Status:      ProjectStatusDraft,
		Settings:    &ProjectSettings{},
		RenderSettings: &RenderSettings{
			Quality:   "medium",
			FrameRate: 30,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsEditable 检查项目是否可编辑
func (p *Project) IsEditable() bool {
	return p.Status == ProjectStatusDraft || p.Status == ProjectStatusActive
}

// IncrementScriptCount 更新脚本计数
func (p *Project) IncrementScriptCount() {
	p.ScriptCount++
	p.UpdatedAt = time.Now()
}
