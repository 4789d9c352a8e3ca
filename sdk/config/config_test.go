package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const settingsYml = `
application:
  mode: test
  name: feedverify

logger:
  level: debug
  stdout: true

platform:
  apiHost: https://openwhisk.example.com
  authKey: "guest:secret"
  healthEndpoint: https://provider.example.com/health

kafka:
  brokers:
    - broker-0:9093
    - broker-1:9093
  username: kafka-user
  password: kafka-pass
  adminURL: https://kafka-admin.example.com

verify:
  triggerName: pipeline-check
  topic: test
  key: TheKey
  feedAction: /whisk.system/messaging/kafkaFeed
  produceAction: /whisk.system/messaging/kafkaProduce
  pollAttempts: 10
  pollDelay: 2s
`

// TestSetup 配置文件解析与默认值填充
func TestSetup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	require.NoError(t, os.WriteFile(path, []byte(settingsYml), 0o644))

	require.NoError(t, Setup(path))

	assert.Equal(t, "test", ApplicationConfig.Mode)
	assert.Equal(t, "debug", LoggerConfig.Level)
	assert.True(t, LoggerConfig.Stdout)

	assert.Equal(t, "https://openwhisk.example.com", PlatformConfigInstance.APIHost)
	// 未显式配置的平台字段使用默认值
	assert.Equal(t, "_", PlatformConfigInstance.Namespace)
	assert.Equal(t, 30*time.Second, PlatformConfigInstance.Timeout)

	assert.Equal(t, []string{"broker-0:9093", "broker-1:9093"}, KafkaConfigInstance.Brokers)
	assert.Equal(t, "kafka-user", KafkaConfigInstance.Username)

	assert.Equal(t, "pipeline-check", VerifyConfigInstance.TriggerName)
	assert.Equal(t, 10, VerifyConfigInstance.PollAttempts)
	assert.Equal(t, 2*time.Second, VerifyConfigInstance.PollDelay)
	// 未显式配置的校验参数使用默认值
	assert.Equal(t, "action", VerifyConfigInstance.EmitMode)
	assert.Equal(t, 60*time.Second, VerifyConfigInstance.ProvisionTimeout)
	assert.Equal(t, 8*time.Second, VerifyConfigInstance.SettleDelay)
	assert.Equal(t, 3, VerifyConfigInstance.RetryAttempts)
}

// TestSetup_MissingFile 配置文件不存在时报错而非panic
func TestSetup_MissingFile(t *testing.T) {
	err := Setup("/nonexistent/settings.yml")
	assert.Error(t, err)
}
