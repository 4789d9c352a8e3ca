package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config 顶层配置结构
type Config struct {
	Application *Application    `mapstructure:"application"`
	Logger      *Logger         `mapstructure:"logger"`
	Platform    *PlatformConfig `mapstructure:"platform"`
	Kafka       *KafkaConfig    `mapstructure:"kafka"`
	NATS        *NATSConfig     `mapstructure:"nats"`
	Verify      *VerifyConfig   `mapstructure:"verify"`
}

var AppConfig = &Config{
	Application: ApplicationConfig,
	Logger:      LoggerConfig,
	Platform:    PlatformConfigInstance,
	Kafka:       KafkaConfigInstance,
	NATS:        NATSConfigInstance,
	Verify:      VerifyConfigInstance,
}

// Setup 读取配置文件并映射到AppConfig，放在程序运行前执行
func Setup(configYml string) error {
	v := viper.New()
	v.SetConfigFile(configYml)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 映射到AppConfig
	if err := v.Unmarshal(AppConfig); err != nil {
		return fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 填充各组件默认值
	AppConfig.Verify.SetDefault()
	AppConfig.Platform.SetDefault()

	return nil
}
