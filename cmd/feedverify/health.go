package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/ChenBigdata421/jxt-feedverify/sdk/config"
	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/platform"
	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/verify"
	"github.com/spf13/cobra"
)

// newHealthCommand 创建health子命令：确认新建trigger对feed提供方可见
func newHealthCommand() *cobra.Command {
	var ident string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "校验trigger在feed提供方健康端点可见",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client, err := platform.NewClient(config.PlatformConfigInstance)
			if err != nil {
				return err
			}

			runner := verify.NewRunner(client, nil, config.VerifyConfigInstance,
				feedParams(config.KafkaConfigInstance, config.VerifyConfigInstance.Topic))

			return runner.CheckTriggerVisible(ctx, config.PlatformConfigInstance.HealthEndpoint, ident)
		},
	}

	cmd.Flags().StringVar(&ident, "ident", "", "期望在健康端点响应体中出现的标识子串（默认trigger名称）")

	return cmd
}
