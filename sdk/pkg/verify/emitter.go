package verify

import (
	"context"
	"fmt"
	"time"

	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/broker"
	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/logger"
	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/platform"
	"go.uber.org/zap"
)

// Emitter 消息发出器
// EmittedAt必须在实际发出动作前采集：存储中任何早于该时刻的记录
// 都不可能是本周期的结果，轮询时一律忽略
type Emitter interface {
	Emit(ctx context.Context, topic, key, value string) (*EmissionRecord, error)
}

// ActionEmitter 经平台生产动作发出消息（端到端全链路校验路径）
type ActionEmitter struct {
	client     platform.ControlClient
	action     string
	baseParams map[string]interface{}
	logger     *zap.Logger
}

// NewActionEmitter 创建动作发出器
// baseParams携带broker访问凭据等固定参数，每次发出时补充topic/key/value
func NewActionEmitter(client platform.ControlClient, produceAction string, baseParams map[string]interface{}) *ActionEmitter {
	return &ActionEmitter{
		client:     client,
		action:     produceAction,
		baseParams: baseParams,
		logger:     logger.Logger,
	}
}

// Emit 发出消息
func (e *ActionEmitter) Emit(ctx context.Context, topic, key, value string) (*EmissionRecord, error) {
	params := map[string]interface{}{
		"topic": topic,
		"key":   key,
		"value": value,
	}
	for k, v := range e.baseParams {
		params[k] = v
	}

	emittedAt := time.Now()
	result, err := e.client.InvokeAction(ctx, e.action, params)
	if err != nil {
		return nil, fmt.Errorf("%w: produce action %s: %v", ErrEmissionFailed, e.action, err)
	}
	if !result.Response.Success {
		return nil, fmt.Errorf("%w: produce action %s reported failure: %s",
			ErrEmissionFailed, e.action, result.Response.Status)
	}

	e.logger.Info("Message emitted via produce action",
		zap.String("topic", topic),
		zap.String("key", key),
		zap.String("activationId", result.ActivationID))

	return &EmissionRecord{
		Topic:     topic,
		Key:       key,
		Token:     value,
		EmittedAt: emittedAt,
	}, nil
}

// BrokerEmitter 直连broker发出消息（隔离feed/trigger侧问题的路径）
type BrokerEmitter struct {
	publisher broker.Publisher
	logger    *zap.Logger
}

// NewBrokerEmitter 创建直连发出器
func NewBrokerEmitter(publisher broker.Publisher) *BrokerEmitter {
	return &BrokerEmitter{
		publisher: publisher,
		logger:    logger.Logger,
	}
}

// Emit 发出消息
func (e *BrokerEmitter) Emit(ctx context.Context, topic, key, value string) (*EmissionRecord, error) {
	emittedAt := time.Now()
	if err := e.publisher.Publish(ctx, topic, key, value); err != nil {
		return nil, fmt.Errorf("%w: direct publish to %s: %v", ErrEmissionFailed, topic, err)
	}

	e.logger.Info("Message emitted via broker",
		zap.String("topic", topic),
		zap.String("key", key))

	return &EmissionRecord{
		Topic:     topic,
		Key:       key,
		Token:     value,
		EmittedAt: emittedAt,
	}, nil
}
