package config

import "time"

// KafkaConfig Kafka配置
type KafkaConfig struct {
	Brokers   []string        `mapstructure:"brokers"`
	Username  string          `mapstructure:"username"` // SASL用户名（云端broker）
	Password  string          `mapstructure:"password"` // SASL密码
	AdminURL  string          `mapstructure:"adminURL"` // broker管理端点，feed注册时使用
	ClientID  string          `mapstructure:"clientID"`
	Producer  ProducerConfig  `mapstructure:"producer"`
	Net       NetConfig       `mapstructure:"net"`
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// ProducerConfig 生产者配置
type ProducerConfig struct {
	RequiredAcks   int           `mapstructure:"requiredAcks"`
	Compression    string        `mapstructure:"compression"`
	FlushFrequency time.Duration `mapstructure:"flushFrequency"`
	FlushMessages  int           `mapstructure:"flushMessages"`
	RetryMax       int           `mapstructure:"retryMax"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// NetConfig 网络配置
type NetConfig struct {
	DialTimeout  time.Duration `mapstructure:"dialTimeout"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
}

// NATSConfig NATS配置
type NATSConfig struct {
	URLs           []string      `mapstructure:"urls"`
	ClientID       string        `mapstructure:"clientID"`
	ConnectTimeout time.Duration `mapstructure:"connectTimeout"`
	MaxReconnects  int           `mapstructure:"maxReconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnectWait"`
}

// RateLimitConfig 发布端流量控制配置
type RateLimitConfig struct {
	Enabled       bool    `mapstructure:"enabled"`       // 是否启用流量控制
	RatePerSecond float64 `mapstructure:"ratePerSecond"` // 每秒允许的发布数
	BurstSize     int     `mapstructure:"burstSize"`     // 突发容量
}

var (
	KafkaConfigInstance = new(KafkaConfig)
	NATSConfigInstance  = new(NATSConfig)
)
