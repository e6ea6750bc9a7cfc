package quota

import (
	"context"
	"errors"
	"testing"
	"time"

	"e-anim-ai-api/internal/domain/entity"
)

type fakeUsageRepo struct {
	used int64
	err  error
}

func (f *fakeUsageRepo) Create(ctx context.Context, event *entity.LLMUsageEvent) error {
	return nil
}

func (f *fakeUsageRepo) GetTokenUsage(ctx context.Context, start, end time.Time) (int64, error) {
	return f.used, f.err
}

func TestBuildDailyTokenKey(t *testing.T) {
	day := time.Date(2026, 8, 24, 15, 30, 0, 0, time.FixedZone("CST", 8*3600))
	if got := BuildDailyTokenKey(day); got != "budget:tokens:2026-08-24" {
		t.Fatalf("key = %q", got)
	}
}

func TestCheckDailyTokens_Unlimited(t *testing.T) {
	c := NewTokenBudgetChecker(&fakeUsageRepo{used: 999999}, nil)
	if _, _, err := c.CheckDailyTokens(context.Background(), 0); err != nil {
		t.Fatalf("maxPerDay=0 should skip check, got %v", err)
	}
}

func TestCheckDailyTokens_WithinBudget(t *testing.T) {
	c := NewTokenBudgetChecker(&fakeUsageRepo{used: 400}, nil)
	used, max, err := c.CheckDailyTokens(context.Background(), 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if used != 400 || max != 1000 {
		t.Fatalf("used=%d max=%d", used, max)
	}
}

func TestCheckDailyTokens_Exceeded(t *testing.T) {
	c := NewTokenBudgetChecker(&fakeUsageRepo{used: 1200}, nil)
	used, _, err := c.CheckDailyTokens(context.Background(), 1000)

	var budgetErr TokenBudgetExceededError
	if !errors.As(err, &budgetErr) {
		t.Fatalf("expected TokenBudgetExceededError, got %v", err)
	}
	if budgetErr.Used != 1200 || budgetErr.Max != 1000 {
		t.Fatalf("error fields: %+v", budgetErr)
	}
	if used != 1200 {
		t.Fatalf("used = %d, want 1200", used)
	}
}

func TestCheckDailyTokens_RepoError(t *testing.T) {
	repoErr := errors.New("db down")
	c := NewTokenBudgetChecker(&fakeUsageRepo{err: repoErr}, nil)
	if _, _, err := c.CheckDailyTokens(context.Background(), 1000); !errors.Is(err, repoErr) {
		t.Fatalf("expected repo error, got %v", err)
	}
}

func TestTokenBudgetExceededError_Message(t *testing.T) {
	err := TokenBudgetExceededError{Max: 100, Used: 150}
	want := "token budget exceeded: used=150 max=100"
	if err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}
}
