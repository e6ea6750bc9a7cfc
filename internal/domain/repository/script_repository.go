// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"e-anim-ai-api/internal/domain/entity"
)

// ScriptFilter 脚本过滤条件
type ScriptFilter struct {
	Status  entity.ScriptStatus
	Current *bool
}

// ScriptRepository 场景脚本仓储接口
type ScriptRepository interface {
	// Create 创建脚本版本
	Create(ctx context.Context, script *entity.SceneScript) error

	// GetByID 根据 ID 获取脚本
	GetByID(ctx context.Context, id string) (*entity.SceneScript, error)

	// Update 更新脚本
	Update(ctx context.Context, script *entity.SceneScript) error

	// Delete 删除脚本
	Delete(ctx context.Context, id string) error

	// ListByProject 获取项目脚本版本列表
	ListByProject(ctx context.Context, projectID string, filter *ScriptFilter, pagination Pagination) (*PagedResult[*entity.SceneScript], error)

	// GetCurrent 获取项目当前脚本
	GetCurrent(ctx context.Context, projectID string) (*entity.SceneScript, error)

	// GetByVersion 获取项目指定版本脚本
	GetByVersion(ctx context.Context, projectID string, version int) (*entity.SceneScript, error)

	// NextVersion 获取项目下一个版本号
	NextVersion(ctx context.Context, projectID string) (int, error)

	// SetCurrent 将指定脚本设为当前版本，同项目其它版本取消 current 标记
	SetCurrent(ctx context.Context, projectID, scriptID string) error
}
