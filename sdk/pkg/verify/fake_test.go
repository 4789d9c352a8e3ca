package verify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/platform"
)

// fakePlatform 内存版平台客户端，测试用
// 激活记录可处于"pending"状态（列表可见但GetActivation暂不可解析），
// 用于模拟激活存储的最终一致性
type fakePlatform struct {
	mu          sync.Mutex
	triggers    map[string]*platform.Trigger
	activations map[string]*platform.Activation
	pendingGets map[string]int // activationID -> 还需多少次Get才可解析
	createCalls int
	listCalls   int
	nextID      int

	invokeFn func(action string, params map[string]interface{}) (*platform.InvokeResult, error)
	probeFn  func(url string) (int, []byte, error)

	// feed注册确认行为
	feedPendingGets int  // 确认激活前n次Get不可解析
	feedFails       bool // 确认激活报告失败
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		triggers:    make(map[string]*platform.Trigger),
		activations: make(map[string]*platform.Activation),
		pendingGets: make(map[string]int),
	}
}

// addActivation 注入一条trigger激活，载荷为单条消息
func (f *fakePlatform) addActivation(trigger string, start time.Time, topic, key, value string) string {
	return f.addActivationResult(trigger, start, true, map[string]interface{}{
		"messages": []interface{}{
			map[string]interface{}{"topic": topic, "key": key, "value": value},
		},
	})
}

func (f *fakePlatform) addActivationResult(trigger string, start time.Time, success bool, result map[string]interface{}) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("activation-%d", f.nextID)
	f.activations[id] = &platform.Activation{
		ID:    id,
		Name:  trigger,
		Start: start.UnixMilli(),
		Response: platform.ActivationResponse{
			Success: success,
			Result:  result,
		},
	}
	return id
}

// markPending 让某条激活的前n次Get返回ErrUnresolved
func (f *fakePlatform) markPending(id string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pendingGets[id] = n
}

func (f *fakePlatform) CreateTrigger(ctx context.Context, name string, feedRef string, params map[string]interface{}) (string, error) {
	f.mu.Lock()
	f.createCalls++
	f.triggers[name] = &platform.Trigger{
		Name:        name,
		Annotations: []platform.KeyValue{{Key: "feed", Value: feedRef}},
	}
	f.mu.Unlock()

	// feed注册确认：一条独立的激活记录
	id := f.addActivationResult(feedRef, time.Now(), !f.feedFails, map[string]interface{}{"status": "created"})
	if f.feedPendingGets > 0 {
		f.markPending(id, f.feedPendingGets)
	}
	return id, nil
}

func (f *fakePlatform) GetTrigger(ctx context.Context, name string) (*platform.Trigger, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if trigger, ok := f.triggers[name]; ok {
		return trigger, nil
	}
	return nil, platform.ErrNotFound
}

func (f *fakePlatform) DeleteTrigger(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.triggers, name)
	return nil
}

func (f *fakePlatform) InvokeAction(ctx context.Context, actionRef string, params map[string]interface{}) (*platform.InvokeResult, error) {
	if f.invokeFn != nil {
		return f.invokeFn(actionRef, params)
	}
	return &platform.InvokeResult{
		ActivationID: "invoke-1",
		Response:     platform.ActivationResponse{Success: true},
	}, nil
}

func (f *fakePlatform) ListActivations(ctx context.Context, filter platform.ListFilter) ([]platform.ActivationRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++

	var refs []platform.ActivationRef
	for _, activation := range f.activations {
		if filter.Name != "" && activation.Name != filter.Name {
			continue
		}
		if !filter.Since.IsZero() && activation.Start < filter.Since.UnixMilli() {
			continue
		}
		refs = append(refs, platform.ActivationRef{
			ID:    activation.ID,
			Name:  activation.Name,
			Start: activation.Start,
		})
		if filter.Limit > 0 && len(refs) >= filter.Limit {
			break
		}
	}
	return refs, nil
}

func (f *fakePlatform) GetActivation(ctx context.Context, id string) (*platform.Activation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if remaining, ok := f.pendingGets[id]; ok && remaining > 0 {
		f.pendingGets[id] = remaining - 1
		return nil, platform.ErrUnresolved
	}
	if activation, ok := f.activations[id]; ok {
		return activation, nil
	}
	return nil, platform.ErrUnresolved
}

func (f *fakePlatform) Probe(ctx context.Context, url string) (int, []byte, error) {
	if f.probeFn != nil {
		return f.probeFn(url)
	}
	return 200, []byte("{}"), nil
}
