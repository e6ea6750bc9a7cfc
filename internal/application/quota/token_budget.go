// Package quota 提供 Token 预算相关能力
package quota

import (
	"context"
	"fmt"
	"time"

	"e-anim-ai-api/internal/domain/repository"
	"e-anim-ai-api/internal/infrastructure/persistence/redis"
)

// TokenBudgetExceededError 表示当日 Token 预算已耗尽
type TokenBudgetExceededError struct {
	Max  int64
	Used int64
}

func (e TokenBudgetExceededError) Error() string {
	return fmt.Sprintf("token budget exceeded: used=%d max=%d", e.Used, e.Max)
}

// TokenBudgetChecker 检查每日 Token 预算。
// 快路径读 Redis 日计数器，计数器缺失时回退 Postgres 流水聚合。
type TokenBudgetChecker struct {
	usageRepo repository.LLMUsageEventRepository
	cache     *redis.Client
	now       func() time.Time
}

func NewTokenBudgetChecker(usageRepo repository.LLMUsageEventRepository, cache *redis.Client) *TokenBudgetChecker {
	return &TokenBudgetChecker{
		usageRepo: usageRepo,
		cache:     cache,
		now:       time.Now,
	}
}

// BuildDailyTokenKey 构建当日 Token 计数器键
func BuildDailyTokenKey(day time.Time) string {
	return fmt.Sprintf("budget:tokens:%s", day.UTC().Format("2006-01-02"))
}

// CheckDailyTokens 检查当日是否还有 Token 预算。
// 返回：used/max（便于客户端展示），以及是否超过预算的 error。
// maxPerDay <= 0 表示不限额。
func (c *TokenBudgetChecker) CheckDailyTokens(ctx context.Context, maxPerDay int64) (used int64, max int64, err error) {
	if c == nil || maxPerDay <= 0 {
		return 0, 0, nil
	}

	now := c.now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	used, ok := c.usedFromCache(ctx, start)
	if !ok {
		if c.usageRepo == nil {
			return 0, maxPerDay, nil
		}
		used, err = c.usageRepo.GetTokenUsage(ctx, start, end)
		if err != nil {
			return 0, maxPerDay, err
		}
	}

	if used >= maxPerDay {
		return used, maxPerDay, TokenBudgetExceededError{Max: maxPerDay, Used: used}
	}
	return used, maxPerDay, nil
}

// RecordUsage 核销当日计数器（best-effort；计数器仅作快路径，权威数据在流水表）。
func (c *TokenBudgetChecker) RecordUsage(ctx context.Context, tokens int64) {
	if c == nil || c.cache == nil || tokens <= 0 {
		return
	}
	key := BuildDailyTokenKey(c.now())
	if _, err := c.cache.IncrBy(ctx, key, tokens); err != nil {
		return
	}
	// 48h 过期，跨时区请求也不会读到残留计数
	_ = c.cache.Expire(ctx, key, 48*time.Hour)
}

func (c *TokenBudgetChecker) usedFromCache(ctx context.Context, day time.Time) (int64, bool) {
	if c == nil || c.cache == nil {
		return 0, false
	}
	val, err := c.cache.Get(ctx, BuildDailyTokenKey(day))
	if err != nil || val == "" {
		return 0, false
	}
	var used int64
	if _, err := fmt.Sscanf(val, "%d", &used); err != nil {
		return 0, false
	}
	return used, true
}
