package verify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ChenBigdata421/jxt-feedverify/sdk/config"
	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/logger"
	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/platform"
	"go.uber.org/zap"
)

// Runner 端到端校验运行器
// 控制流：供给 → 就绪门 → 编排器{发出 → 轮询 → 匹配}。
// 数据只向前流动：关联token与发出时间戳在上游产生、下游消费，
// 周期之间除重试计数外不共享可变状态
type Runner struct {
	client       platform.Client
	emitter      Emitter
	cfg          *config.VerifyConfig
	feedParams   map[string]interface{}
	provisioner  *Provisioner
	gate         *ReadinessGate
	poller       *Poller
	matcher      *Matcher
	orchestrator *Orchestrator
	logger       *zap.Logger
}

// NewRunner 创建校验运行器
func NewRunner(client platform.Client, emitter Emitter, cfg *config.VerifyConfig, feedParams map[string]interface{}) *Runner {
	return &Runner{
		client:       client,
		emitter:      emitter,
		cfg:          cfg,
		feedParams:   feedParams,
		provisioner:  NewProvisioner(client, client, cfg.ProvisionTimeout),
		gate:         NewReadinessGate(cfg.SettleDelay),
		poller:       NewPoller(client),
		matcher:      NewMatcher(client),
		orchestrator: NewOrchestrator(cfg.RetryAttempts, cfg.RetryDelay),
		logger:       logger.Logger,
	}
}

// Run 执行一次完整的端到端校验
// 成功返回通过周期的诊断快照；失败返回错误与最后一个周期的快照
// （可能为nil），错误中携带trigger名称与token便于定位
func (r *Runner) Run(ctx context.Context) (*CycleResult, error) {
	binding, err := r.provisioner.EnsureTrigger(ctx, r.cfg.TriggerName, r.cfg.FeedAction, r.feedParams)
	if err != nil {
		return nil, err
	}

	if err := r.gate.AwaitConsumerReady(ctx, binding.JustCreated); err != nil {
		return nil, fmt.Errorf("readiness wait interrupted: %w", err)
	}

	result, err := r.orchestrator.RunWithRetry(ctx, func(ctx context.Context, token string) (*CycleResult, error) {
		return r.runCycle(ctx, binding, token)
	})
	if err != nil {
		r.logger.Error("End-to-end verification failed",
			zap.String("trigger", binding.Name),
			zap.Error(err))
		return result, err
	}

	r.logger.Info("End-to-end verification passed",
		zap.String("trigger", binding.Name),
		zap.String("token", result.Token),
		zap.Int("attempt", result.Attempt))
	return result, nil
}

// runCycle 单个发出→轮询→匹配周期
func (r *Runner) runCycle(ctx context.Context, binding *TriggerBinding, token string) (*CycleResult, error) {
	result := &CycleResult{Token: token}

	emission, err := r.emitter.Emit(ctx, r.cfg.Topic, r.cfg.Key, token)
	if err != nil {
		return result, err
	}
	result.Emission = emission

	refs, err := r.poller.PollMatches(ctx, binding.Name, emission.EmittedAt,
		r.cfg.PollAttempts, r.cfg.PollDelay, r.cfg.ActivationLimit)
	if err != nil {
		return result, err
	}
	result.Refs = refs

	activation, message, err := r.matcher.SelectMatch(ctx, refs, token, r.cfg.Topic, r.cfg.Key)
	result.Matched = activation
	if err != nil {
		return result, err
	}
	result.Message = message

	return result, nil
}

// Cleanup 运行结束后的资源回收
// trigger在校验运行内从不删除；是否跨运行保留由配置决定
func (r *Runner) Cleanup(ctx context.Context) error {
	if !r.cfg.Cleanup {
		return nil
	}
	if err := r.client.DeleteTrigger(ctx, r.cfg.TriggerName); err != nil {
		return fmt.Errorf("cleanup of trigger %s: %w", r.cfg.TriggerName, err)
	}
	r.logger.Info("Trigger cleaned up", zap.String("trigger", r.cfg.TriggerName))
	return nil
}

// CheckTriggerVisible 简化版健康检查：确认新建的trigger对feed提供方
// 可见。供给trigger后轮询健康检查端点，直到响应体中出现trigger的
// 标识子串
func (r *Runner) CheckTriggerVisible(ctx context.Context, healthURL, ident string) error {
	binding, err := r.provisioner.EnsureTrigger(ctx, r.cfg.TriggerName, r.cfg.FeedAction, r.feedParams)
	if err != nil {
		return err
	}
	if ident == "" {
		ident = binding.Name
	}

	for attempt := 1; attempt <= r.cfg.PollAttempts; attempt++ {
		status, body, err := r.client.Probe(ctx, healthURL)
		if err != nil {
			r.logger.Warn("Health probe failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
		} else if status == 200 && strings.Contains(string(body), ident) {
			r.logger.Info("Trigger visible at health endpoint",
				zap.String("trigger", binding.Name),
				zap.Int("attempt", attempt))
			return nil
		}

		if attempt < r.cfg.PollAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.cfg.PollDelay):
			}
		}
	}

	return fmt.Errorf("trigger %s not visible at %s within %d attempts",
		r.cfg.TriggerName, healthURL, r.cfg.PollAttempts)
}
