package broker

import (
	"context"
	"fmt"
	"sync"

	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/logger"
)

// MessageHandler 内存发布器的消息处理函数
type MessageHandler func(ctx context.Context, topic, key, value string) error

// memoryPublisher 内存发布器实现（用于测试和开发）
type memoryPublisher struct {
	subscribers map[string][]MessageHandler
	mu          sync.RWMutex
	closed      bool
}

// MemoryPublisher 内存发布器，额外暴露Subscribe供测试注册观察者
type MemoryPublisher interface {
	Publisher
	Subscribe(topic string, handler MessageHandler)
}

// NewMemoryPublisher 创建内存发布器
func NewMemoryPublisher() MemoryPublisher {
	return &memoryPublisher{
		subscribers: make(map[string][]MessageHandler),
	}
}

// Publish 发布消息
func (m *memoryPublisher) Publish(ctx context.Context, topic, key, value string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return fmt.Errorf("memory publisher is closed")
	}

	handlers := m.subscribers[topic]
	if len(handlers) == 0 {
		logger.Debug("No subscribers for topic", "topic", topic)
		return nil
	}

	for _, handler := range handlers {
		if err := handler(ctx, topic, key, value); err != nil {
			logger.Error("Message handler failed", "topic", topic, "error", err)
			return err
		}
	}
	return nil
}

// Subscribe 注册消息处理函数
func (m *memoryPublisher) Subscribe(topic string, handler MessageHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers[topic] = append(m.subscribers[topic], handler)
}

// Close 关闭发布器
func (m *memoryPublisher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
