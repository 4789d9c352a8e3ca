package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/ChenBigdata421/jxt-feedverify/sdk/config"
	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/broker"
	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/logger"
	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/platform"
	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/verify"
	"github.com/spf13/cobra"
)

// newRunCommand 创建run子命令：执行一次完整的端到端校验
func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "执行一次端到端管道校验",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client, err := platform.NewClient(config.PlatformConfigInstance)
			if err != nil {
				return err
			}

			emitter, closer, err := buildEmitter(client)
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer()
			}

			runner := verify.NewRunner(client, emitter, config.VerifyConfigInstance,
				feedParams(config.KafkaConfigInstance, config.VerifyConfigInstance.Topic))

			result, err := runner.Run(ctx)
			if err != nil {
				logCycleSnapshot(result)
				return err
			}

			if err := runner.Cleanup(ctx); err != nil {
				logger.Warn("Cleanup failed", "error", err)
			}

			logger.Infof("校验通过: trigger=%s token=%s attempt=%d",
				config.VerifyConfigInstance.TriggerName, result.Token, result.Attempt)
			return nil
		},
	}
}

// buildEmitter 按配置选择发出路径：经平台生产动作，或直连broker
func buildEmitter(client platform.Client) (verify.Emitter, func() error, error) {
	cfg := config.VerifyConfigInstance

	switch cfg.EmitMode {
	case "action":
		base := map[string]interface{}{
			"user":               config.KafkaConfigInstance.Username,
			"password":           config.KafkaConfigInstance.Password,
			"kafka_brokers_sasl": config.KafkaConfigInstance.Brokers,
		}
		return verify.NewActionEmitter(client, cfg.ProduceAction, base), nil, nil
	case "broker":
		pub, err := broker.NewPublisher(cfg.BrokerType, config.KafkaConfigInstance, config.NATSConfigInstance)
		if err != nil {
			return nil, nil, err
		}
		return verify.NewBrokerEmitter(pub), pub.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported emit mode: %s", cfg.EmitMode)
	}
}

// feedParams feed注册所需的broker接入参数
func feedParams(k *config.KafkaConfig, topic string) map[string]interface{} {
	return map[string]interface{}{
		"user":               k.Username,
		"password":           k.Password,
		"topic":              topic,
		"kafka_brokers_sasl": k.Brokers,
		"kafka_admin_url":    k.AdminURL,
	}
}

// logCycleSnapshot 失败时输出最后一个周期的诊断快照
func logCycleSnapshot(result *verify.CycleResult) {
	if result == nil {
		return
	}
	logger.Errorf("最后周期快照: token=%s 候选激活=%d", result.Token, len(result.Refs))
	for _, ref := range result.Refs {
		logger.Errorf("  候选: id=%s name=%s start=%d", ref.ID, ref.Name, ref.Start)
	}
	if result.Matched != nil {
		logger.Errorf("  命中激活: id=%s success=%v", result.Matched.ID, result.Matched.Response.Success)
	}
}
