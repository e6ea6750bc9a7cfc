// Package repository 定义数据访问层接口
package repository

import (
	"context"
	"time"

	"e-anim-ai-api/internal/domain/entity"
)

type LLMUsageEventRepository interface {
	Create(ctx context.Context, event *entity.LLMUsageEvent) error

	// GetTokenUsage 获取指定时间范围内的 Token 使用量（prompt + completion）
	GetTokenUsage(ctx context.Context, startInclusive, endExclusive time.Time) (int64, error)
}
