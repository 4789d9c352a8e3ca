package broker

import (
	"fmt"

	"github.com/ChenBigdata421/jxt-feedverify/sdk/config"
	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/logger"
)

// NewPublisher 按类型创建发布器
func NewPublisher(brokerType string, kafkaCfg *config.KafkaConfig, natsCfg *config.NATSConfig) (Publisher, error) {
	switch brokerType {
	case "kafka":
		pub, err := NewKafkaPublisher(kafkaCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
		}
		logger.Info("Publisher created successfully", "type", brokerType)
		return pub, nil
	case "nats":
		pub, err := NewNATSPublisher(natsCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create nats publisher: %w", err)
		}
		logger.Info("Publisher created successfully", "type", brokerType)
		return pub, nil
	case "memory":
		return NewMemoryPublisher(), nil
	default:
		return nil, fmt.Errorf("unsupported broker type: %s", brokerType)
	}
}
