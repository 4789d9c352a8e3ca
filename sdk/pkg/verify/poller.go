package verify

import (
	"context"
	"fmt"
	"time"

	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/logger"
	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/platform"
	"go.uber.org/zap"
)

// Poller 激活记录轮询器
// 存储是最终一致的：trigger激活从消费端投递到可查询之间存在不定
// 延迟，轮询以固定间隔反复查询，首个非空批次即停。有效超时为
// attempts × delay
type Poller struct {
	store  platform.ActivationStore
	logger *zap.Logger
}

// NewPoller 创建轮询器
func NewPoller(store platform.ActivationStore) *Poller {
	return &Poller{
		store:  store,
		logger: logger.Logger,
	}
}

// PollMatches 轮询trigger的激活记录
// 只返回开始时间不早于since的记录；投递不保证有序或去重，同一批
// 次可能合法地出现多条（例如共享trigger的历史运行残留），筛选交给
// 匹配器。耗尽attempts仍一无所获时返回ErrNoActivationObserved
func (p *Poller) PollMatches(ctx context.Context, triggerName string, since time.Time, maxAttempts int, delay time.Duration, limit int) ([]platform.ActivationRef, error) {
	sinceMilli := since.UnixMilli()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		refs, err := p.store.ListActivations(ctx, platform.ListFilter{
			Name:  triggerName,
			Since: since,
			Limit: limit,
		})
		if err != nil {
			// 存储的瞬时故障按一次空批次对待，记录后继续
			p.logger.Warn("Activation listing failed",
				zap.String("trigger", triggerName),
				zap.Int("attempt", attempt),
				zap.Error(err))
		} else {
			// 存储侧的since过滤不可尽信，本地再卡一次下界
			fresh := refs[:0]
			for _, ref := range refs {
				if ref.Start >= sinceMilli {
					fresh = append(fresh, ref)
				}
			}
			if len(fresh) > 0 {
				p.logger.Info("Activations observed",
					zap.String("trigger", triggerName),
					zap.Int("count", len(fresh)),
					zap.Int("attempt", attempt))
				return fresh, nil
			}
		}

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return nil, fmt.Errorf("%w: trigger %s produced nothing within %d attempts (since %s)",
		ErrNoActivationObserved, triggerName, maxAttempts, since.Format(time.RFC3339))
}
