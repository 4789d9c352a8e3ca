package verify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOrchestrator_RetriesWithFreshToken 前两次可重试失败后第三次成功，
// 三次尝试必须使用三个不同token
func TestOrchestrator_RetriesWithFreshToken(t *testing.T) {
	var tokens []string
	cycle := func(ctx context.Context, token string) (*CycleResult, error) {
		tokens = append(tokens, token)
		if len(tokens) < 3 {
			return &CycleResult{Token: token}, ErrEmissionFailed
		}
		return &CycleResult{Token: token}, nil
	}

	orchestrator := NewOrchestrator(3, time.Millisecond)
	result, err := orchestrator.RunWithRetry(context.Background(), cycle)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 3, result.Attempt)

	require.Len(t, tokens, 3)
	seen := make(map[string]bool)
	for _, token := range tokens {
		assert.False(t, seen[token], "token %s reused across attempts", token)
		seen[token] = true
	}
	assert.Equal(t, tokens[2], result.Token)
}

// TestOrchestrator_StopsOnFirstSuccess 首次成功后不再调用周期函数
func TestOrchestrator_StopsOnFirstSuccess(t *testing.T) {
	calls := 0
	cycle := func(ctx context.Context, token string) (*CycleResult, error) {
		calls++
		return &CycleResult{Token: token}, nil
	}

	orchestrator := NewOrchestrator(5, time.Millisecond)
	_, err := orchestrator.RunWithRetry(context.Background(), cycle)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

// TestOrchestrator_AbortsOnHardFailure 歧义失败立即终止，不消耗剩余预算
func TestOrchestrator_AbortsOnHardFailure(t *testing.T) {
	calls := 0
	cycle := func(ctx context.Context, token string) (*CycleResult, error) {
		calls++
		return &CycleResult{Token: token}, ErrAmbiguousMatch
	}

	orchestrator := NewOrchestrator(5, time.Millisecond)
	_, err := orchestrator.RunWithRetry(context.Background(), cycle)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAmbiguousMatch)
	assert.Equal(t, 1, calls)
}

// TestOrchestrator_ExhaustsBudget 预算耗尽时抛出最后一次失败
func TestOrchestrator_ExhaustsBudget(t *testing.T) {
	calls := 0
	cycle := func(ctx context.Context, token string) (*CycleResult, error) {
		calls++
		return &CycleResult{Token: token}, ErrNoMatchFound
	}

	orchestrator := NewOrchestrator(2, time.Millisecond)
	result, err := orchestrator.RunWithRetry(context.Background(), cycle)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoMatchFound)
	assert.Equal(t, 2, calls)
	require.NotNil(t, result, "失败时仍返回最后周期的诊断快照")
	assert.Equal(t, 2, result.Attempt)
}

// TestOrchestrator_ContextCancelledDuringWait 重试等待期内可被取消
func TestOrchestrator_ContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cycle := func(ctx context.Context, token string) (*CycleResult, error) {
		cancel()
		return nil, ErrNoActivationObserved
	}

	orchestrator := NewOrchestrator(3, time.Hour)
	_, err := orchestrator.RunWithRetry(ctx, cycle)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
