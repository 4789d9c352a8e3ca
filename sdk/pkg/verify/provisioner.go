package verify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/logger"
	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/platform"
	"go.uber.org/zap"
)

// confirmPollInterval feed注册确认的轮询间隔
const confirmPollInterval = 1 * time.Second

// Provisioner 资源供给器
// 保证命名的trigger/feed绑定存在：已存在时直接复用（幂等快路径，
// 允许CI多次运行共享同一trigger），不存在时创建并等待feed注册
// 的异步确认
type Provisioner struct {
	client       platform.ControlClient
	store        platform.ActivationStore
	timeout      time.Duration
	pollInterval time.Duration
	logger       *zap.Logger
}

// NewProvisioner 创建资源供给器
// timeout约束feed注册确认的等待上限，feed注册涉及broker侧的远程
// 订阅建立，需要给到几十秒量级
func NewProvisioner(client platform.ControlClient, store platform.ActivationStore, timeout time.Duration) *Provisioner {
	return &Provisioner{
		client:       client,
		store:        store,
		timeout:      timeout,
		pollInterval: confirmPollInterval,
		logger:       logger.Logger,
	}
}

// EnsureTrigger 确保trigger存在
// 供给失败属于环境缺陷，调用方不应重试
func (p *Provisioner) EnsureTrigger(ctx context.Context, name string, feedRef string, params map[string]interface{}) (*TriggerBinding, error) {
	existing, err := p.client.GetTrigger(ctx, name)
	if err == nil && existing != nil {
		p.logger.Info("Trigger already exists, reusing",
			zap.String("trigger", name))
		return &TriggerBinding{
			Name:    name,
			FeedRef: feedRef,
			Params:  params,
			State:   StateReady,
		}, nil
	}
	if !errors.Is(err, platform.ErrNotFound) {
		return nil, fmt.Errorf("%w: lookup of trigger %s: %v", ErrProvisioningFailed, name, err)
	}

	p.logger.Info("Trigger absent, creating",
		zap.String("trigger", name),
		zap.String("feed", feedRef))

	activationID, err := p.client.CreateTrigger(ctx, name, feedRef, params)
	if err != nil {
		return nil, fmt.Errorf("%w: create of trigger %s: %v", ErrProvisioningFailed, name, err)
	}

	if err := p.awaitFeedConfirmation(ctx, name, activationID); err != nil {
		return nil, err
	}

	p.logger.Info("Trigger provisioned",
		zap.String("trigger", name),
		zap.Duration("confirmTimeout", p.timeout))

	return &TriggerBinding{
		Name:        name,
		FeedRef:     feedRef,
		Params:      params,
		State:       StateReady,
		JustCreated: true,
	}, nil
}

// awaitFeedConfirmation 等待feed注册动作的激活记录落库并确认成功
func (p *Provisioner) awaitFeedConfirmation(ctx context.Context, name, activationID string) error {
	if activationID == "" {
		return fmt.Errorf("%w: feed registration for trigger %s returned no activation id", ErrProvisioningFailed, name)
	}

	deadline := time.Now().Add(p.timeout)
	for {
		activation, err := p.store.GetActivation(ctx, activationID)
		if err == nil {
			if !activation.Response.Success {
				return fmt.Errorf("%w: feed registration for trigger %s reported failure: %s",
					ErrProvisioningFailed, name, activation.Response.Status)
			}
			return nil
		}
		if !errors.Is(err, platform.ErrUnresolved) {
			return fmt.Errorf("%w: fetch of feed confirmation %s: %v", ErrProvisioningFailed, activationID, err)
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("%w: feed registration for trigger %s not confirmed within %v",
				ErrProvisioningFailed, name, p.timeout)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrProvisioningFailed, ctx.Err())
		case <-time.After(p.pollInterval):
		}
	}
}
