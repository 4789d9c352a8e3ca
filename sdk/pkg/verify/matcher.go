package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/json"
	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/logger"
	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/platform"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// Matcher 候选匹配器
// 把轮询得到的候选激活收敛到唯一命中：先解析完整载荷（解析不了的
// 按非命中跳过），再按"序列化结果中包含token子串"做内容匹配。
// 生产端载荷形状与消费端观测形状之间是松耦合，结构化比对在消息层
// 才进行
type Matcher struct {
	store  platform.ActivationStore
	logger *zap.Logger
}

// NewMatcher 创建匹配器
func NewMatcher(store platform.ActivationStore) *Matcher {
	return &Matcher{
		store:  store,
		logger: logger.Logger,
	}
}

// SelectMatch 从候选中选出唯一命中并校验消息结构
// 零命中可重试（可能是轮询窗口没赶上），多命中说明出现重复投递或
// 窗口被历史运行污染，重试无法消除歧义，直接判死
func (m *Matcher) SelectMatch(ctx context.Context, refs []platform.ActivationRef, token, wantTopic, wantKey string) (*platform.Activation, *MessageRecord, error) {
	var matched []*platform.Activation

	for _, ref := range refs {
		activation, err := m.store.GetActivation(ctx, ref.ID)
		if err != nil {
			if errors.Is(err, platform.ErrUnresolved) || errors.Is(err, platform.ErrNotFound) {
				m.logger.Debug("Skipping unresolved activation",
					zap.String("activationId", ref.ID))
				continue
			}
			m.logger.Warn("Activation fetch failed, treating as non-match",
				zap.String("activationId", ref.ID),
				zap.Error(err))
			continue
		}
		if !activation.Response.Success {
			continue
		}

		serialized, err := json.MarshalToString(activation.Response.Result)
		if err != nil {
			continue
		}
		if strings.Contains(serialized, token) {
			matched = append(matched, activation)
		}
	}

	switch len(matched) {
	case 0:
		return nil, nil, fmt.Errorf("%w: token %s absent from %d candidate(s)",
			ErrNoMatchFound, token, len(refs))
	case 1:
		// 唯一命中，继续消息层校验
	default:
		ids := make([]string, len(matched))
		for i, a := range matched {
			ids[i] = a.ID
		}
		return nil, nil, fmt.Errorf("%w: token %s appeared in %d activations (%s)",
			ErrAmbiguousMatch, token, len(matched), strings.Join(ids, ", "))
	}

	activation := matched[0]
	message, err := m.matchMessage(activation, token, wantTopic, wantKey)
	if err != nil {
		return activation, nil, err
	}

	m.logger.Info("Activation matched",
		zap.String("activationId", activation.ID),
		zap.String("token", token))

	return activation, message, nil
}

// matchMessage 在命中激活的载荷内还原消息并做结构化断言：
// 恰好一条消息的value等于token，且topic与key与发出时一致
func (m *Matcher) matchMessage(activation *platform.Activation, token, wantTopic, wantKey string) (*MessageRecord, error) {
	messages := decodeMessages(activation.Response.Result)
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: activation %s carries no decodable messages",
			ErrStructuralMismatch, activation.ID)
	}

	var hits []MessageRecord
	for _, msg := range messages {
		if msg.Value == token {
			hits = append(hits, msg)
		}
	}

	switch len(hits) {
	case 0:
		return nil, fmt.Errorf("%w: no message in activation %s carries value %s",
			ErrStructuralMismatch, activation.ID, token)
	case 1:
		// 唯一消息命中
	default:
		return nil, fmt.Errorf("%w: %d messages in activation %s carry value %s",
			ErrAmbiguousMatch, len(hits), activation.ID, token)
	}

	hit := hits[0]
	if hit.Topic != wantTopic || hit.Key != wantKey {
		return nil, fmt.Errorf("%w: got topic=%s key=%s, want topic=%s key=%s",
			ErrStructuralMismatch, hit.Topic, hit.Key, wantTopic, wantKey)
	}
	return &hit, nil
}

// decodeMessages 从激活结果中提取消息列表
// 载荷是不透明的嵌套键值结构，约定消息位于顶层messages数组，
// 每个元素携带topic/key/value字段
func decodeMessages(result map[string]interface{}) []MessageRecord {
	raw, ok := result["messages"].([]interface{})
	if !ok {
		return nil
	}

	var records []MessageRecord
	for _, entry := range raw {
		fields, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		records = append(records, MessageRecord{
			Topic: cast.ToString(fields["topic"]),
			Key:   cast.ToString(fields["key"]),
			Value: cast.ToString(fields["value"]),
		})
	}
	return records
}
