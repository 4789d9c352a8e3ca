package verify

import (
	"context"
	"time"

	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/logger"
	"go.uber.org/zap"
)

// CycleFunc 一个完整的发出→轮询→匹配周期
// token由编排器注入，每次尝试都是全新的
type CycleFunc func(ctx context.Context, token string) (*CycleResult, error)

// Orchestrator 重试编排器
// 重试不是重发同一条消息：每次尝试都用全新token走一遍独立的
// 发出→轮询→匹配周期。失败可能源于消息丢失而非投递延迟，只重试
// 轮询这一步会漏掉丢失场景
type Orchestrator struct {
	maxAttempts int
	wait        time.Duration
	logger      *zap.Logger
}

// NewOrchestrator 创建重试编排器
// wait为固定间隔，不做指数退避：被测管道的恢复时间与尝试次数无关
func NewOrchestrator(maxAttempts int, wait time.Duration) *Orchestrator {
	return &Orchestrator{
		maxAttempts: maxAttempts,
		wait:        wait,
		logger:      logger.Logger,
	}
}

// RunWithRetry 在尝试预算内执行周期函数
// 首个完整通过的周期即成功；不可重试的失败立即终止，不消耗剩余
// 预算；预算耗尽时向调用方抛出最后一次观察到的失败及其诊断快照
func (o *Orchestrator) RunWithRetry(ctx context.Context, cycle CycleFunc) (*CycleResult, error) {
	var lastResult *CycleResult
	var lastErr error

	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		token := NewCorrelationToken()
		start := time.Now()

		result, err := cycle(ctx, token)
		if result != nil {
			result.Attempt = attempt
		}
		cycleDuration.Observe(time.Since(start).Seconds())

		if err == nil {
			cyclesTotal.WithLabelValues("pass").Inc()
			o.logger.Info("Verification cycle passed",
				zap.Int("attempt", attempt),
				zap.String("token", token))
			return result, nil
		}

		cyclesTotal.WithLabelValues("fail").Inc()
		failuresTotal.WithLabelValues(failureKind(err)).Inc()
		lastResult, lastErr = result, err

		if !IsRetriable(err) {
			o.logger.Error("Verification cycle failed hard, aborting",
				zap.Int("attempt", attempt),
				zap.String("token", token),
				zap.Error(err))
			return lastResult, lastErr
		}

		o.logger.Warn("Verification cycle failed, will retry with fresh token",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", o.maxAttempts),
			zap.String("token", token),
			zap.Error(err))

		if attempt < o.maxAttempts {
			retriesTotal.Inc()
			select {
			case <-ctx.Done():
				return lastResult, ctx.Err()
			case <-time.After(o.wait):
			}
		}
	}

	o.logger.Error("Verification failed after exhausting retry budget",
		zap.Int("maxAttempts", o.maxAttempts),
		zap.Error(lastErr))
	return lastResult, lastErr
}
