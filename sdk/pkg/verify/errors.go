package verify

import (
	"errors"

	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/platform"
)

// 失败分级：
// - ErrProvisioningFailed 属于环境缺陷，整个运行立即终止，不重试
// - ErrEmissionFailed / ErrNoActivationObserved / ErrNoMatchFound 属于瞬时失败，
//   由编排器在预算内以全新token重新走一遍发出→轮询→匹配
// - ErrAmbiguousMatch / ErrStructuralMismatch 属于逻辑或数据形状缺陷，
//   重试无法消除歧义，立即终止
var (
	ErrProvisioningFailed   = errors.New("verify: trigger provisioning failed")
	ErrEmissionFailed       = errors.New("verify: message emission failed")
	ErrNoActivationObserved = errors.New("verify: no activation observed")
	ErrNoMatchFound         = errors.New("verify: no activation matched correlation token")
	ErrAmbiguousMatch       = errors.New("verify: ambiguous correlation match")
	ErrStructuralMismatch   = errors.New("verify: matched message has unexpected structure")
)

// IsRetriable 判断失败是否可由编排器重试
func IsRetriable(err error) bool {
	return errors.Is(err, ErrEmissionFailed) ||
		errors.Is(err, ErrNoActivationObserved) ||
		errors.Is(err, ErrNoMatchFound)
}

// CycleResult 单个校验周期的诊断快照
// 无论成败都尽量填充，失败时随错误一并返回给调用方定位问题
type CycleResult struct {
	Token    string                   // 本周期使用的关联token
	Emission *EmissionRecord          // 发出记录
	Refs     []platform.ActivationRef // 轮询看到的激活引用
	Matched  *platform.Activation     // 命中的激活记录
	Message  *MessageRecord           // 命中的消息
	Attempt  int                      // 所属的编排器尝试序号（从1开始）
}
