package verify

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TriggerState trigger/feed绑定的生命周期状态
type TriggerState string

const (
	StateAbsent   TriggerState = "absent"
	StateCreating TriggerState = "creating"
	StateReady    TriggerState = "ready"
	StateFailed   TriggerState = "failed"
)

// TriggerBinding trigger/feed绑定
// 由Provisioner在首次使用时创建，之后只读；一次校验运行内不会删除
type TriggerBinding struct {
	Name        string                 // trigger名称
	FeedRef     string                 // feed动作引用
	Params      map[string]interface{} // feed注册参数
	State       TriggerState           // 生命周期状态
	JustCreated bool                   // 本次运行中是否新建（决定是否需要静默期）
}

// EmissionRecord 一次消息发出的记录
// EmittedAt在调用生产动作前采集，作为激活轮询的严格下界
type EmissionRecord struct {
	Topic     string
	Key       string
	Token     string
	EmittedAt time.Time
}

// MessageRecord 从激活载荷中还原出的broker消息
type MessageRecord struct {
	Topic string
	Key   string
	Value string
}

// NewCorrelationToken 生成新的关联token
// 毫秒时间戳前缀保证轮询窗口内单调可区分，uuid后缀消除
// 并发运行在同一毫秒内的碰撞
func NewCorrelationToken() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString())
}
