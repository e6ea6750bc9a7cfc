// Package entity 定义领域实体
package entity

import (
	"time"
)

// SnippetCategory 片段分类
type SnippetCategory string

const (
	SnippetCategoryGeometry  SnippetCategory = "geometry"
	SnippetCategoryAlgebra   SnippetCategory = "algebra"
	SnippetCategoryGraphing  SnippetCategory = "graphing"
	SnippetCategoryText      SnippetCategory = "text"
	SnippetCategoryAnimation SnippetCategory = "animation"
	SnippetCategoryGeneral   SnippetCategory = "general"
)

// Snippet Manim 参考片段
// 片段库用于检索增强：生成时按描述语义检索相关示例注入提示词
type Snippet struct {
	ID          string          `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title       string          `json:"title" gorm:"type:varchar(255);not null"`
	Category    SnippetCategory `json:"category" gorm:"type:varchar(50);default:'general';index"`
	Description string          `json:"description,omitempty" gorm:"type:text"`
	SourceCode  string          `json:"source_code" gorm:"type:text;not null"`
	Tags        []string        `json:"tags,omitempty" gorm:"type:jsonb;serializer:json"`
	Indexed     bool            `json:"indexed" gorm:"default:false"`
	CreatedAt   time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Snippet) TableName() string {
	return "snippets"
}

// NewSnippet 创建新片段
func NewSnippet(title string, category SnippetCategory, sourceCode string) *Snippet {
	now := time.Now()
	if category == "" {
		category = SnippetCategoryGeneral
	}
	return &Snippet{
		Title:      title,
		Category:   category,
		SourceCode: sourceCode,
		Indexed:    false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// MarkIndexed 标记已写入向量库
func (s *Snippet) MarkIndexed() {
	s.Indexed = true
	s.UpdatedAt = time.Now()
}

// EmbeddingText 生成向量化输入文本
func (s *Snippet) EmbeddingText() string {
	text := s.Title
	if s.Description != "" {
		text += "\n" + s.Description
	}
	return text
}
