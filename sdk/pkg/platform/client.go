package platform

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound 控制面中不存在请求的实体
var ErrNotFound = errors.New("platform: entity not found")

// ErrUnresolved 激活记录尚未写入存储，暂时无法解析
var ErrUnresolved = errors.New("platform: activation not yet resolved")

// ControlClient 控制面客户端接口
// trigger创建是异步过程：CreateTrigger返回feed注册动作的激活ID，
// 调用方需通过ActivationStore等待该激活出现并确认成功
type ControlClient interface {
	// 创建trigger并触发feed注册，返回feed动作的激活ID
	CreateTrigger(ctx context.Context, name string, feedRef string, params map[string]interface{}) (string, error)

	// 按名称查询trigger，不存在时返回ErrNotFound
	GetTrigger(ctx context.Context, name string) (*Trigger, error)

	// 删除trigger并注销feed
	DeleteTrigger(ctx context.Context, name string) error

	// 阻塞式调用动作
	InvokeAction(ctx context.Context, actionRef string, params map[string]interface{}) (*InvokeResult, error)
}

// ListFilter 激活记录查询条件
type ListFilter struct {
	Name  string    // trigger名称
	Since time.Time // 只返回此时刻及之后开始的记录
	Limit int       // 单次返回上限
}

// ActivationStore 激活记录存储接口
type ActivationStore interface {
	// 按条件列出激活记录引用（轻量，不含完整载荷）
	ListActivations(ctx context.Context, filter ListFilter) ([]ActivationRef, error)

	// 解析完整激活记录；记录尚未落库时返回ErrUnresolved
	GetActivation(ctx context.Context, id string) (*Activation, error)
}

// HealthProber feed提供方健康检查接口
type HealthProber interface {
	// 请求健康检查端点，返回HTTP状态码与响应体
	Probe(ctx context.Context, url string) (int, []byte, error)
}

// Client 完整的平台客户端
type Client interface {
	ControlClient
	ActivationStore
	HealthProber
}
