package broker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ChenBigdata421/jxt-feedverify/sdk/config"
	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/logger"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// natsPublisher NATS发布器实现
// key通过消息头携带（NATS主题本身没有key语义）
type natsPublisher struct {
	config *config.NATSConfig
	conn   *nats.Conn
	logger *zap.Logger
	mu     sync.RWMutex
	closed bool

	publishedMessages atomic.Int64
	errorCount        atomic.Int64
}

// KeyHeader 消息key使用的NATS头字段
const KeyHeader = "Feedverify-Key"

// NewNATSPublisher 创建NATS发布器
func NewNATSPublisher(cfg *config.NATSConfig) (Publisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nats config cannot be nil")
	}
	if len(cfg.URLs) == 0 {
		return nil, fmt.Errorf("nats URLs cannot be empty")
	}

	// 构建连接选项
	opts := []nats.Option{
		nats.Name(cfg.ClientID),
	}
	if cfg.ConnectTimeout > 0 {
		opts = append(opts, nats.Timeout(cfg.ConnectTimeout))
	}
	if cfg.MaxReconnects != 0 {
		opts = append(opts, nats.MaxReconnects(cfg.MaxReconnects))
	}
	if cfg.ReconnectWait > 0 {
		opts = append(opts, nats.ReconnectWait(cfg.ReconnectWait))
	}

	nc, err := nats.Connect(cfg.URLs[0], opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &natsPublisher{
		config: cfg,
		conn:   nc,
		logger: logger.Logger,
	}, nil
}

// Publish 发布消息
func (n *natsPublisher) Publish(ctx context.Context, topic, key, value string) error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		return fmt.Errorf("nats publisher is closed")
	}

	msg := &nats.Msg{
		Subject: topic,
		Header:  nats.Header{KeyHeader: []string{key}},
		Data:    []byte(value),
	}

	if err := n.conn.PublishMsg(msg); err != nil {
		n.errorCount.Add(1)
		n.logger.Error("Failed to publish message",
			zap.String("topic", topic),
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("failed to publish message: %w", err)
	}

	// 确保消息刷出到服务端，发布路径保持同步语义
	if err := n.conn.FlushWithContext(ctx); err != nil {
		n.errorCount.Add(1)
		return fmt.Errorf("failed to flush message: %w", err)
	}

	n.publishedMessages.Add(1)
	n.logger.Debug("Message published successfully",
		zap.String("topic", topic),
		zap.String("key", key))

	return nil
}

// Close 关闭发布器
func (n *natsPublisher) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}
	n.closed = true

	n.conn.Close()
	return nil
}
