package main

import (
	"github.com/ChenBigdata421/jxt-feedverify/sdk/config"
	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/logger"
	"github.com/spf13/cobra"
)

// newRootCommand 创建根命令
func newRootCommand() *cobra.Command {
	var configYml string

	cmd := &cobra.Command{
		Use:   "feedverify",
		Short: "Kafka/NATS feed管道的端到端校验工具",
		Long: "feedverify 对异步事件管道做端到端校验：向broker发布一条带关联token的消息，" +
			"确认feed/trigger子系统产生了对应的激活记录，并核对消息内容逐字回流。",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Setup(configYml); err != nil {
				return err
			}
			logger.Setup()
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configYml, "config", "c", "config/settings.yml", "配置文件路径")

	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newHealthCommand())

	return cmd
}
