package config

import "time"

// PlatformConfig 被测平台（OpenWhisk风格控制面）的访问配置
type PlatformConfig struct {
	APIHost        string        `mapstructure:"apiHost"`        // 控制面地址，如 https://openwhisk.example.com
	AuthKey        string        `mapstructure:"authKey"`        // user:password 形式的认证串
	Namespace      string        `mapstructure:"namespace"`      // 命名空间，默认 _
	Insecure       bool          `mapstructure:"insecure"`       // 是否跳过TLS证书校验（自签名环境）
	Timeout        time.Duration `mapstructure:"timeout"`        // 单次API调用超时
	HealthEndpoint string        `mapstructure:"healthEndpoint"` // feed提供方健康检查端点
}

// SetDefault 填充默认值
func (c *PlatformConfig) SetDefault() {
	if c.Namespace == "" {
		c.Namespace = "_"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

var PlatformConfigInstance = new(PlatformConfig)
