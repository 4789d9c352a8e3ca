package verify

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// 校验运行的Prometheus指标
// 注册在默认registry上；harness本身不起HTTP服务，由嵌入方决定
// 是否暴露
var (
	cyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedverify_cycles_total",
			Help: "校验周期总数，按结果（pass/fail）分类",
		},
		[]string{"result"},
	)

	retriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "feedverify_retries_total",
			Help: "编排器触发的重试总数",
		},
	)

	failuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedverify_failures_total",
			Help: "失败总数，按失败类型分类",
		},
		[]string{"kind"},
	)

	cycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feedverify_cycle_duration_seconds",
			Help:    "单个校验周期耗时",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(cyclesTotal, retriesTotal, failuresTotal, cycleDuration)
}

// failureKind 把失败错误映射到指标label
func failureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsRetriable(err):
		switch {
		case errors.Is(err, ErrEmissionFailed):
			return "emission_failed"
		case errors.Is(err, ErrNoActivationObserved):
			return "no_activation"
		default:
			return "no_match"
		}
	case errors.Is(err, ErrAmbiguousMatch):
		return "ambiguous_match"
	case errors.Is(err, ErrStructuralMismatch):
		return "structural_mismatch"
	case errors.Is(err, ErrProvisioningFailed):
		return "provisioning_failed"
	default:
		return "other"
	}
}
