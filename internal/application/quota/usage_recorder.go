package quota

import (
	"context"
	"fmt"
	"strings"

	"e-anim-ai-api/internal/domain/entity"
	"e-anim-ai-api/internal/domain/repository"
	"e-anim-ai-api/internal/domain/service"
)

// LLMUsageRecorder 记录 LLM 使用流水并核销日预算计数器。
// 实现 service.LLMUsageRecorder；记录失败不阻塞主流程。
type LLMUsageRecorder struct {
	usageRepo repository.LLMUsageEventRepository
	budget    *TokenBudgetChecker
}

func NewLLMUsageRecorder(usageRepo repository.LLMUsageEventRepository, budget *TokenBudgetChecker) *LLMUsageRecorder {
	return &LLMUsageRecorder{
		usageRepo: usageRepo,
		budget:    budget,
	}
}

func (r *LLMUsageRecorder) Record(ctx context.Context, in service.LLMUsageInput) error {
	if r == nil || r.usageRepo == nil {
		return nil
	}
	if in.PromptTokens < 0 || in.CompletionTokens < 0 {
		return fmt.Errorf("invalid token usage")
	}

	totalTokens := int64(in.PromptTokens + in.CompletionTokens)
	if totalTokens > 0 && r.budget != nil {
		r.budget.RecordUsage(ctx, totalTokens)
	}

	evt := &entity.LLMUsageEvent{
		ProjectID:        strings.TrimSpace(in.ProjectID),
		Provider:         strings.TrimSpace(in.Provider),
		Model:            strings.TrimSpace(in.Model),
		Workflow:         strings.TrimSpace(in.Workflow),
		TokensPrompt:     in.PromptTokens,
		TokensCompletion: in.CompletionTokens,
		DurationMs:       in.DurationMs,
	}
	_ = r.usageRepo.Create(ctx, evt)
	return nil
}
