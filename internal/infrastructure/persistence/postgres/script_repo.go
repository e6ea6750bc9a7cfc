// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"e-anim-ai-api/internal/domain/entity"
	"e-anim-ai-api/internal/domain/repository"
)

// ScriptRepository 场景脚本仓储实现
type ScriptRepository struct {
	client *Client
}

// NewScriptRepository 创建场景脚本仓储
func NewScriptRepository(client *Client) *ScriptRepository {
	return &ScriptRepository{client: client}
}

// Create 创建脚本版本
func (r *ScriptRepository) Create(ctx context.Context, script *entity.SceneScript) error {
	ctx, span := tracer.Start(ctx, "postgres.ScriptRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(script).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create script: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取脚本
func (r *ScriptRepository) GetByID(ctx context.Context, id string) (*entity.SceneScript, error) {
	ctx, span := tracer.Start(ctx, "postgres.ScriptRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var script entity.SceneScript
	if err := db.First(&script, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get script: %w", err)
	}
	return &script, nil
}

// Update 更新脚本
func (r *ScriptRepository) Update(ctx context.Context, script *entity.SceneScript) error {
	ctx, span := tracer.Start(ctx, "postgres.ScriptRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(script).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update script: %w", err)
	}
	return nil
}

// Delete 删除脚本
func (r *ScriptRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.ScriptRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.SceneScript{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete script: %w", err)
	}
	return nil
}

// ListByProject 获取项目脚本版本列表
func (r *ScriptRepository) ListByProject(ctx context.Context, projectID string, filter *repository.ScriptFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.SceneScript], error) {
	ctx, span := tracer.Start(ctx, "postgres.ScriptRepository.ListByProject")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.SceneScript{}).Where("project_id = ?", projectID)

	// 应用过滤条件
	if filter != nil {
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.Current != nil {
			query = query.Where("current = ?", *filter.Current)
		}
	}

	// 获取总数
	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count scripts: %w", err)
	}

	// 获取列表
	var scripts []*entity.SceneScript
	if err := query.Order("version DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&scripts).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list scripts: %w", err)
	}

	return repository.NewPagedResult(scripts, total, pagination), nil
}

// GetCurrent 获取项目当前脚本
func (r *ScriptRepository) GetCurrent(ctx context.Context, projectID string) (*entity.SceneScript, error) {
	ctx, span := tracer.Start(ctx, "postgres.ScriptRepository.GetCurrent")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var script entity.SceneScript
	if err := db.First(&script, "project_id = ? AND current = ?", projectID, true).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get current script: %w", err)
	}
	return &script, nil
}

// GetByVersion 获取项目指定版本脚本
func (r *ScriptRepository) GetByVersion(ctx context.Context, projectID string, version int) (*entity.SceneScript, error) {
	ctx, span := tracer.Start(ctx, "postgres.ScriptRepository.GetByVersion")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var script entity.SceneScript
	if err := db.First(&script, "project_id = ? AND version = ?", projectID, version).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get script by version: %w", err)
	}
	return &script, nil
}

// NextVersion 获取项目下一个版本号
func (r *ScriptRepository) NextVersion(ctx context.Context, projectID string) (int, error) {
	ctx, span := tracer.Start(ctx, "postgres.ScriptRepository.NextVersion")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var maxVersion *int
	if err := db.Model(&entity.SceneScript{}).
		Where("project_id = ?", projectID).
		Select("MAX(version)").
		Scan(&maxVersion).Error; err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to get max script version: %w", err)
	}
	if maxVersion == nil {
		return 1, nil
	}
	return *maxVersion + 1, nil
}

// SetCurrent 将指定脚本设为当前版本
func (r *ScriptRepository) SetCurrent(ctx context.Context, projectID, scriptID string) error {
	ctx, span := tracer.Start(ctx, "postgres.ScriptRepository.SetCurrent")
	defer span.End()

	db := getDB(ctx, r.client.db)

	// 先取消同项目其它版本的 current 标记，再设置目标版本
	if err := db.Model(&entity.SceneScript{}).
		Where("project_id = ? AND current = ?", projectID, true).
		Updates(map[string]interface{}{
			"current": false,
			"status":  entity.ScriptStatusSuperseded,
		}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to clear current script: %w", err)
	}

	if err := db.Model(&entity.SceneScript{}).
		Where("id = ? AND project_id = ?", scriptID, projectID).
		Updates(map[string]interface{}{
			"current": true,
			"status":  entity.ScriptStatusReady,
		}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to set current script: %w", err)
	}

	return nil
}
