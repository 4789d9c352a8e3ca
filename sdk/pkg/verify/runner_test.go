package verify

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ChenBigdata421/jxt-feedverify/sdk/config"
	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/broker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVerifyConfig() *config.VerifyConfig {
	return &config.VerifyConfig{
		TriggerName:      "pipeline-check",
		Topic:            "test",
		Key:              "TheKey",
		FeedAction:       testFeed,
		ProduceAction:    "/whisk.system/messaging/kafkaProduce",
		ProvisionTimeout: time.Second,
		SettleDelay:      time.Millisecond,
		PollAttempts:     5,
		PollDelay:        time.Millisecond,
		ActivationLimit:  50,
		RetryAttempts:    3,
		RetryDelay:       time.Millisecond,
	}
}

// wirePipeline 用内存发布器模拟完整管道：发布到topic的消息经feed/trigger
// 转化为一条（或copies条）trigger激活落入激活存储
func wirePipeline(fake *fakePlatform, trigger, topic string, copies int) broker.MemoryPublisher {
	pub := broker.NewMemoryPublisher()
	pub.Subscribe(topic, func(ctx context.Context, topic, key, value string) error {
		for i := 0; i < copies; i++ {
			fake.addActivation(trigger, time.Now(), topic, key, value)
		}
		return nil
	})
	return pub
}

// TestRunner_EndToEndPass 完整链路：供给→静默→发出→轮询→匹配一次通过
func TestRunner_EndToEndPass(t *testing.T) {
	fake := newFakePlatform()
	pub := wirePipeline(fake, "pipeline-check", "test", 1)
	runner := NewRunner(fake, NewBrokerEmitter(pub), testVerifyConfig(), testFeedParams())
	runner.provisioner.pollInterval = time.Millisecond

	result, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 1, result.Attempt)
	require.NotNil(t, result.Message)
	assert.Equal(t, "test", result.Message.Topic)
	assert.Equal(t, "TheKey", result.Message.Key)
	assert.Equal(t, result.Token, result.Message.Value)
	assert.Equal(t, 1, fake.createCalls)
}

// TestRunner_ReusesExistingTrigger 第二次运行复用trigger，不再创建
func TestRunner_ReusesExistingTrigger(t *testing.T) {
	fake := newFakePlatform()
	pub := wirePipeline(fake, "pipeline-check", "test", 1)
	cfg := testVerifyConfig()

	first := NewRunner(fake, NewBrokerEmitter(pub), cfg, testFeedParams())
	first.provisioner.pollInterval = time.Millisecond
	_, err := first.Run(context.Background())
	require.NoError(t, err)

	second := NewRunner(fake, NewBrokerEmitter(pub), cfg, testFeedParams())
	second.provisioner.pollInterval = time.Millisecond
	_, err = second.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, fake.createCalls)
}

// TestRunner_AmbiguousDelivery 重复投递导致同token双激活，立即判死
func TestRunner_AmbiguousDelivery(t *testing.T) {
	fake := newFakePlatform()
	pub := wirePipeline(fake, "pipeline-check", "test", 2)
	runner := NewRunner(fake, NewBrokerEmitter(pub), testVerifyConfig(), testFeedParams())
	runner.provisioner.pollInterval = time.Millisecond

	result, err := runner.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAmbiguousMatch)
	require.NotNil(t, result, "失败时返回诊断快照")
	assert.Len(t, result.Refs, 2)
}

// TestRunner_PipelineSilent 管道不产生激活时在重试预算内失败
func TestRunner_PipelineSilent(t *testing.T) {
	fake := newFakePlatform()
	// 无订阅者：消息发出后没有任何激活产生
	pub := broker.NewMemoryPublisher()
	cfg := testVerifyConfig()
	cfg.PollAttempts = 2
	cfg.RetryAttempts = 2
	runner := NewRunner(fake, NewBrokerEmitter(pub), cfg, testFeedParams())
	runner.provisioner.pollInterval = time.Millisecond

	_, err := runner.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoActivationObserved)
}

// TestRunner_StaleActivationsIgnored 发出前已存在的激活不影响本周期
func TestRunner_StaleActivationsIgnored(t *testing.T) {
	fake := newFakePlatform()
	// 历史运行残留：早于本周期发出时刻
	fake.addActivation("pipeline-check", time.Now().Add(-time.Hour), "test", "TheKey", "stale-token")

	pub := wirePipeline(fake, "pipeline-check", "test", 1)
	runner := NewRunner(fake, NewBrokerEmitter(pub), testVerifyConfig(), testFeedParams())
	runner.provisioner.pollInterval = time.Millisecond

	result, err := runner.Run(context.Background())
	require.NoError(t, err)
	for _, ref := range result.Refs {
		assert.GreaterOrEqual(t, ref.Start, result.Emission.EmittedAt.UnixMilli())
	}
}

// TestRunner_Cleanup 配置开启时运行后删除trigger
func TestRunner_Cleanup(t *testing.T) {
	fake := newFakePlatform()
	pub := wirePipeline(fake, "pipeline-check", "test", 1)
	cfg := testVerifyConfig()
	cfg.Cleanup = true
	runner := NewRunner(fake, NewBrokerEmitter(pub), cfg, testFeedParams())
	runner.provisioner.pollInterval = time.Millisecond

	_, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, runner.Cleanup(context.Background()))

	_, err = fake.GetTrigger(context.Background(), "pipeline-check")
	require.Error(t, err)
}

// TestRunner_CheckTriggerVisible 健康端点响应体出现trigger名称即通过
func TestRunner_CheckTriggerVisible(t *testing.T) {
	fake := newFakePlatform()
	probes := 0
	fake.probeFn = func(url string) (int, []byte, error) {
		probes++
		if probes < 3 {
			return 200, []byte(`{"triggers":[]}`), nil
		}
		return 200, []byte(`{"triggers":["/guest/pipeline-check"]}`), nil
	}

	runner := NewRunner(fake, nil, testVerifyConfig(), testFeedParams())
	runner.provisioner.pollInterval = time.Millisecond

	err := runner.CheckTriggerVisible(context.Background(), "https://provider.example.com/health", "")
	require.NoError(t, err)
	assert.Equal(t, 3, probes)
}

// TestRunner_CheckTriggerVisible_NeverAppears 超出轮询预算后报错
func TestRunner_CheckTriggerVisible_NeverAppears(t *testing.T) {
	fake := newFakePlatform()
	fake.probeFn = func(url string) (int, []byte, error) {
		return 200, []byte(`{"triggers":[]}`), nil
	}

	cfg := testVerifyConfig()
	cfg.PollAttempts = 2
	runner := NewRunner(fake, nil, cfg, testFeedParams())
	runner.provisioner.pollInterval = time.Millisecond

	err := runner.CheckTriggerVisible(context.Background(), "https://provider.example.com/health", "")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "not visible"))
}
