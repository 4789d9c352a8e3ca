package verify

import (
	"context"
	"time"

	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/logger"
	"go.uber.org/zap"
)

// ReadinessGate 就绪门
// 新建feed后，下游消费端需要时间完成订阅后才能收到消息；
// 门在每次运行中最多挂起一次，复用既有trigger时不引入任何延迟
type ReadinessGate struct {
	settleDelay time.Duration
	logger      *zap.Logger
}

// NewReadinessGate 创建就绪门
func NewReadinessGate(settleDelay time.Duration) *ReadinessGate {
	return &ReadinessGate{
		settleDelay: settleDelay,
		logger:      logger.Logger,
	}
}

// AwaitConsumerReady 等待消费端就绪
// 仅在本次运行新建了trigger时挂起；定时等待可被上下文取消
func (g *ReadinessGate) AwaitConsumerReady(ctx context.Context, justCreated bool) error {
	if !justCreated {
		return nil
	}

	g.logger.Info("Waiting for consumer to settle after feed creation",
		zap.Duration("settleDelay", g.settleDelay))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(g.settleDelay):
		return nil
	}
}
