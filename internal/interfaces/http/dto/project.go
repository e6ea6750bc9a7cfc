// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"e-anim-ai-api/internal/domain/entity"
)

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Title          string                 `json:"title" binding:"required,max=255"`
	Description    string                 `json:"description" binding:"max=5000"`
	Topic          string                 `json:"topic" binding:"max=100"`
	Brief          string                 `json:"brief,omitempty" binding:"max=50000"`
	Settings       *ProjectSettingsDTO    `json:"settings,omitempty"`
	RenderSettings *RenderSettingsDTO     `json:"render_settings,omitempty"`
}

// UpdateProjectRequest 更新项目请求
type UpdateProjectRequest struct {
	Title          *string             `json:"title,omitempty" binding:"omitempty,max=255"`
	Description    *string             `json:"description,omitempty" binding:"omitempty,max=5000"`
	Topic          *string             `json:"topic,omitempty" binding:"omitempty,max=100"`
	Status         *string             `json:"status,omitempty"`
	Settings       *ProjectSettingsDTO `json:"settings,omitempty"`
	RenderSettings *RenderSettingsDTO  `json:"render_settings,omitempty"`
}

// ProjectSettingsDTO 项目生成设置
type ProjectSettingsDTO struct {
	Audience       string  `json:"audience,omitempty"`
	Subject        string  `json:"subject,omitempty"`
	Language       string  `json:"language,omitempty"`
	Temperature    float64 `json:"temperature,omitempty"`
	TargetDuration int     `json:"target_duration_seconds,omitempty"`
}

// RenderSettingsDTO 渲染参数（仅记录，渲染由外部流程执行）
type RenderSettingsDTO struct {
	Quality         string `json:"quality,omitempty"`
	FrameRate       int    `json:"frame_rate,omitempty"`
	Resolution      string `json:"resolution,omitempty"`
	BackgroundColor string `json:"background_color,omitempty"`
}

// ProjectResponse 项目响应
type ProjectResponse struct {
	ID             string              `json:"id"`
	Title          string              `json:"title"`
	Description    string              `json:"description,omitempty"`
	Topic          string              `json:"topic,omitempty"`
	BriefPath      string              `json:"brief_path,omitempty"`
	ScriptCount    int                 `json:"script_count"`
	Status         string              `json:"status"`
	Settings       *ProjectSettingsDTO `json:"settings,omitempty"`
	RenderSettings *RenderSettingsDTO  `json:"render_settings,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// ProjectListResponse 项目列表响应
type ProjectListResponse struct {
	Projects []*ProjectResponse `json:"projects"`
}

// ToProjectResponse 将领域实体转换为响应 DTO
func ToProjectResponse(p *entity.Project) *ProjectResponse {
	if p == nil {
		return nil
	}

	resp := &ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Topic:       p.Topic,
		BriefPath:   p.BriefPath,
		ScriptCount: p.ScriptCount,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}

	if p.Settings != nil {
		resp.Settings = &ProjectSettingsDTO{
			Audience:       p.Settings.Audience,
			Subject:        p.Settings.Subject,
			Language:       p.Settings.Language,
			Temperature:    p.Settings.Temperature,
			TargetDuration: p.Settings.TargetDuration,
		}
	}
	if p.RenderSettings != nil {
		resp.RenderSettings = &RenderSettingsDTO{
			Quality:         p.RenderSettings.Quality,
			FrameRate:       p.RenderSettings.FrameRate,
			Resolution:      p.RenderSettings.Resolution,
			BackgroundColor: p.RenderSettings.BackgroundColor,
		}
	}
	return resp
}

// ToProjectListResponse 将领域实体列表转换为响应 DTO
func ToProjectListResponse(projects []*entity.Project) *ProjectListResponse {
	resp := &ProjectListResponse{
		Projects: make([]*ProjectResponse, 0, len(projects)),
	}
	for _, p := range projects {
		resp.Projects = append(resp.Projects, ToProjectResponse(p))
	}
	return resp
}

// ToProjectEntity 将请求 DTO 转换为领域实体
func (r *CreateProjectRequest) ToProjectEntity() *entity.Project {
	project := entity.NewProject(r.Title, r.Topic)
	project.Description = r.Description

	if r.Settings != nil {
		project.Settings = &entity.ProjectSettings{
			Audience:       r.Settings.Audience,
			Subject:        r.Settings.Subject,
			Language:       r.Settings.Language,
			Temperature:    r.Settings.Temperature,
			TargetDuration: r.Settings.TargetDuration,
		}
	}
	if r.RenderSettings != nil {
		project.RenderSettings = &entity.RenderSettings{
			Quality:         r.RenderSettings.Quality,
			FrameRate:       r.RenderSettings.FrameRate,
			Resolution:      r.RenderSettings.Resolution,
			BackgroundColor: r.RenderSettings.BackgroundColor,
		}
	}
	return project
}

// ApplyToProject 将更新请求应用到项目实体
func (r *UpdateProjectRequest) ApplyToProject(p *entity.Project) {
	if r.Title != nil {
		p.Title = *r.Title
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Topic != nil {
		p.Topic = *r.Topic
	}
	if r.Status != nil {
		p.Status = entity.ProjectStatus(*r.Status)
	}

	if r.Settings != nil {
		if p.Settings == nil {
			p.Settings = &entity.ProjectSettings{}
		}
		if r.Settings.Audience != "" {
			p.Settings.Audience = r.Settings.Audience
		}
		if r.Settings.Subject != "" {
			p.Settings.Subject = r.Settings.Subject
		}
		if r.Settings.Language != "" {
			p.Settings.Language = r.Settings.Language
		}
		if r.Settings.Temperature > 0 {
			p.Settings.Temperature = r.Settings.Temperature
		}
		if r.Settings.TargetDuration > 0 {
			p.Settings.TargetDuration = r.Settings.TargetDuration
		}
	}

	if r.RenderSettings != nil {
		if p.RenderSettings == nil {
			p.RenderSettings = &entity.RenderSettings{}
		}
		if r.RenderSettings.Quality != "" {
			p.RenderSettings.Quality = r.RenderSettings.Quality
		}
		if r.RenderSettings.FrameRate > 0 {
			p.RenderSettings.FrameRate = r.RenderSettings.FrameRate
		}
		if r.RenderSettings.Resolution != "" {
			p.RenderSettings.Resolution = r.RenderSettings.Resolution
		}
		if r.RenderSettings.BackgroundColor != "" {
			p.RenderSettings.BackgroundColor = r.RenderSettings.BackgroundColor
		}
	}

	p.UpdatedAt = time.Now()
}
