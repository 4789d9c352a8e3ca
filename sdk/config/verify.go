package config

import "time"

// VerifyConfig 端到端校验配置
type VerifyConfig struct {
	TriggerName   string `mapstructure:"triggerName"`   // 被校验的trigger名称
	Topic         string `mapstructure:"topic"`         // 目标topic
	Key           string `mapstructure:"key"`           // 消息key
	FeedAction    string `mapstructure:"feedAction"`    // feed动作引用，如 /whisk.system/messaging/kafkaFeed
	ProduceAction string `mapstructure:"produceAction"` // 生产动作引用，如 /whisk.system/messaging/kafkaProduce
	EmitMode      string `mapstructure:"emitMode"`      // action（经平台生产动作）或 broker（直连broker）
	BrokerType    string `mapstructure:"brokerType"`    // kafka, nats, memory（EmitMode=broker时生效）

	ProvisionTimeout time.Duration `mapstructure:"provisionTimeout"` // feed创建确认超时
	SettleDelay      time.Duration `mapstructure:"settleDelay"`      // 新建feed后的消费端静默期
	PollAttempts     int           `mapstructure:"pollAttempts"`     // 激活记录轮询次数
	PollDelay        time.Duration `mapstructure:"pollDelay"`        // 轮询间隔
	ActivationLimit  int           `mapstructure:"activationLimit"`  // 单次轮询拉取上限
	RetryAttempts    int           `mapstructure:"retryAttempts"`    // 整周期重试次数
	RetryDelay       time.Duration `mapstructure:"retryDelay"`       // 重试前等待
	Cleanup          bool          `mapstructure:"cleanup"`          // 运行结束后是否删除trigger
}

// SetDefault 填充默认值
func (c *VerifyConfig) SetDefault() {
	if c.EmitMode == "" {
		c.EmitMode = "action"
	}
	if c.BrokerType == "" {
		c.BrokerType = "kafka"
	}
	if c.ProvisionTimeout == 0 {
		c.ProvisionTimeout = 60 * time.Second
	}
	if c.SettleDelay == 0 {
		c.SettleDelay = 8 * time.Second
	}
	if c.PollAttempts == 0 {
		c.PollAttempts = 20
	}
	if c.PollDelay == 0 {
		c.PollDelay = 1 * time.Second
	}
	if c.ActivationLimit == 0 {
		c.ActivationLimit = 50
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = 3
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = 5 * time.Second
	}
}

var VerifyConfigInstance = new(VerifyConfig)
