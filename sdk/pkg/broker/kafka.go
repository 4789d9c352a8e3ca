package broker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ChenBigdata421/jxt-feedverify/sdk/config"
	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/logger"
	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// kafkaPublisher Kafka发布器实现
type kafkaPublisher struct {
	config   *config.KafkaConfig
	producer sarama.SyncProducer
	logger   *zap.Logger
	limiter  *RateLimiter
	mu       sync.RWMutex
	closed   bool

	// 统计信息
	publishedMessages atomic.Int64
	errorCount        atomic.Int64
}

// NewKafkaPublisher 创建Kafka发布器
func NewKafkaPublisher(cfg *config.KafkaConfig) (Publisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("kafka config cannot be nil")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers cannot be empty")
	}

	// 创建Sarama配置
	saramaConfig := sarama.NewConfig()
	if err := configureSarama(saramaConfig, cfg); err != nil {
		return nil, fmt.Errorf("failed to configure sarama: %w", err)
	}

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &kafkaPublisher{
		config:   cfg,
		producer: producer,
		logger:   logger.Logger,
		limiter: NewRateLimiter(RateLimitConfig{
			Enabled:       cfg.RateLimit.Enabled,
			RatePerSecond: cfg.RateLimit.RatePerSecond,
			BurstSize:     cfg.RateLimit.BurstSize,
		}),
	}, nil
}

// configureSarama 配置Sarama
func configureSarama(saramaConfig *sarama.Config, cfg *config.KafkaConfig) error {
	// 生产者配置
	saramaConfig.Producer.RequiredAcks = sarama.RequiredAcks(cfg.Producer.RequiredAcks)
	if cfg.Producer.RequiredAcks == 0 {
		saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	}
	if cfg.Producer.Timeout > 0 {
		saramaConfig.Producer.Timeout = cfg.Producer.Timeout
	}
	if cfg.Producer.RetryMax > 0 {
		saramaConfig.Producer.Retry.Max = cfg.Producer.RetryMax
	}
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true

	// 设置压缩算法
	switch cfg.Producer.Compression {
	case "gzip":
		saramaConfig.Producer.Compression = sarama.CompressionGZIP
	case "snappy":
		saramaConfig.Producer.Compression = sarama.CompressionSnappy
	case "lz4":
		saramaConfig.Producer.Compression = sarama.CompressionLZ4
	case "zstd":
		saramaConfig.Producer.Compression = sarama.CompressionZSTD
	default:
		saramaConfig.Producer.Compression = sarama.CompressionNone
	}

	// 批处理配置
	if cfg.Producer.FlushFrequency > 0 {
		saramaConfig.Producer.Flush.Frequency = cfg.Producer.FlushFrequency
	}
	if cfg.Producer.FlushMessages > 0 {
		saramaConfig.Producer.Flush.Messages = cfg.Producer.FlushMessages
	}

	// SASL认证（云端broker）
	if cfg.Username != "" {
		saramaConfig.Net.SASL.Enable = true
		saramaConfig.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		saramaConfig.Net.SASL.User = cfg.Username
		saramaConfig.Net.SASL.Password = cfg.Password
	}

	// 网络配置
	if cfg.Net.DialTimeout > 0 {
		saramaConfig.Net.DialTimeout = cfg.Net.DialTimeout
	}
	if cfg.Net.ReadTimeout > 0 {
		saramaConfig.Net.ReadTimeout = cfg.Net.ReadTimeout
	}
	if cfg.Net.WriteTimeout > 0 {
		saramaConfig.Net.WriteTimeout = cfg.Net.WriteTimeout
	}

	if cfg.ClientID != "" {
		saramaConfig.ClientID = cfg.ClientID
	}

	// 版本配置
	saramaConfig.Version = sarama.V2_6_0_0

	return nil
}

// Publish 发布消息
func (k *kafkaPublisher) Publish(ctx context.Context, topic, key, value string) error {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.closed {
		return fmt.Errorf("kafka publisher is closed")
	}

	// 流量控制
	if err := k.limiter.Wait(ctx); err != nil {
		k.errorCount.Add(1)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.StringEncoder(value),
	}

	partition, offset, err := k.producer.SendMessage(msg)
	if err != nil {
		k.errorCount.Add(1)
		k.logger.Error("Failed to publish message",
			zap.String("topic", topic),
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("failed to publish message: %w", err)
	}

	k.publishedMessages.Add(1)
	k.logger.Debug("Message published successfully",
		zap.String("topic", topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset))

	return nil
}

// Close 关闭发布器
func (k *kafkaPublisher) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil
	}
	k.closed = true

	if err := k.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}
