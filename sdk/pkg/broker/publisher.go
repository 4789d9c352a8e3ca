package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Publisher 发布器接口
// 校验器的直连发布路径：绕过平台的生产动作，把消息直接写入broker，
// 用于隔离定位是生产侧还是feed/trigger侧的问题
type Publisher interface {
	// 发布带key的消息到指定主题
	Publish(ctx context.Context, topic, key, value string) error
	// 关闭发布器
	Close() error
}

// RateLimiter 发布端流量控制器
type RateLimiter struct {
	limiter *rate.Limiter
	enabled bool
	logger  *zap.Logger
}

// RateLimitConfig 流量控制配置
type RateLimitConfig struct {
	Enabled       bool    // 是否启用流量控制
	RatePerSecond float64 // 每秒允许的发布数
	BurstSize     int     // 突发容量
}

// NewRateLimiter 创建流量控制器
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if !config.Enabled {
		return &RateLimiter{
			enabled: false,
			logger:  logger.Logger,
		}
	}

	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(config.RatePerSecond), config.BurstSize),
		enabled: true,
		logger:  logger.Logger,
	}
}

// Wait 等待令牌，实现背压机制
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil || !rl.enabled {
		return nil // 未启用流量控制，直接通过
	}

	start := time.Now()
	if err := rl.limiter.Wait(ctx); err != nil {
		rl.logger.Error("Rate limiter wait failed", zap.Error(err))
		return fmt.Errorf("rate limit error: %w", err)
	}

	waited := time.Since(start)
	if waited > 100*time.Millisecond {
		rl.logger.Debug("Publish throttled", zap.Duration("waited", waited))
	}
	return nil
}
