package platform

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ChenBigdata421/jxt-feedverify/sdk/config"
	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/json"
	"github.com/ChenBigdata421/jxt-feedverify/sdk/pkg/logger"
	"go.uber.org/zap"
)

// httpClient OpenWhisk风格REST控制面的客户端实现
type httpClient struct {
	cfg    *config.PlatformConfig
	client *http.Client
	logger *zap.Logger
}

// NewClient 创建平台客户端
func NewClient(cfg *config.PlatformConfig) (Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("platform config cannot be nil")
	}
	if cfg.APIHost == "" {
		return nil, fmt.Errorf("platform apiHost cannot be empty")
	}
	if cfg.AuthKey == "" || !strings.Contains(cfg.AuthKey, ":") {
		return nil, fmt.Errorf("platform authKey must be in user:password form")
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Insecure {
		// 自签名证书环境
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &httpClient{
		cfg: cfg,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		logger: logger.Logger,
	}, nil
}

// CreateTrigger 创建trigger并触发feed注册
// 两步操作：先在控制面注册trigger实体（带feed annotation），
// 再调用feed动作执行broker侧的订阅注册。feed注册是异步的，
// 返回其激活ID供调用方在激活存储中确认结果
func (c *httpClient) CreateTrigger(ctx context.Context, name string, feedRef string, params map[string]interface{}) (string, error) {
	body := map[string]interface{}{
		"annotations": []KeyValue{{Key: "feed", Value: feedRef}},
	}

	var trigger Trigger
	status, err := c.doJSON(ctx, http.MethodPut, c.triggerURL(name)+"?overwrite=false", body, &trigger)
	if err != nil {
		return "", fmt.Errorf("failed to create trigger %s: %w", name, err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("failed to create trigger %s: unexpected status %d", name, status)
	}

	// feed注册参数：生命周期事件 + trigger全名 + 认证信息
	feedParams := map[string]interface{}{
		"lifecycleEvent": "CREATE",
		"triggerName":    "/" + c.cfg.Namespace + "/" + name,
		"authKey":        c.cfg.AuthKey,
	}
	for k, v := range params {
		feedParams[k] = v
	}

	var pending struct {
		ActivationID string `json:"activationId"`
	}
	status, err = c.doJSON(ctx, http.MethodPost, c.actionURL(feedRef), feedParams, &pending)
	if err != nil {
		return "", fmt.Errorf("failed to invoke feed action %s: %w", feedRef, err)
	}
	if status != http.StatusAccepted && status != http.StatusOK {
		return "", fmt.Errorf("failed to invoke feed action %s: unexpected status %d", feedRef, status)
	}

	c.logger.Info("Trigger created, feed registration pending",
		zap.String("trigger", name),
		zap.String("feed", feedRef),
		zap.String("activationId", pending.ActivationID))

	return pending.ActivationID, nil
}

// GetTrigger 按名称查询trigger
func (c *httpClient) GetTrigger(ctx context.Context, name string) (*Trigger, error) {
	var trigger Trigger
	status, err := c.doJSON(ctx, http.MethodGet, c.triggerURL(name), nil, &trigger)
	if err != nil {
		return nil, fmt.Errorf("failed to get trigger %s: %w", name, err)
	}
	switch status {
	case http.StatusOK:
		return &trigger, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("failed to get trigger %s: unexpected status %d", name, status)
	}
}

// DeleteTrigger 注销feed并删除trigger
func (c *httpClient) DeleteTrigger(ctx context.Context, name string) error {
	// 先通知feed提供方注销订阅，失败不阻断trigger删除
	trigger, err := c.GetTrigger(ctx, name)
	if err == nil {
		if feedRef, ok := trigger.FindAnnotation("feed").(string); ok && feedRef != "" {
			feedParams := map[string]interface{}{
				"lifecycleEvent": "DELETE",
				"triggerName":    "/" + c.cfg.Namespace + "/" + name,
				"authKey":        c.cfg.AuthKey,
			}
			if _, err := c.doJSON(ctx, http.MethodPost, c.actionURL(feedRef), feedParams, nil); err != nil {
				c.logger.Warn("Feed deregistration failed",
					zap.String("trigger", name),
					zap.Error(err))
			}
		}
	}

	status, err := c.doJSON(ctx, http.MethodDelete, c.triggerURL(name), nil, nil)
	if err != nil {
		return fmt.Errorf("failed to delete trigger %s: %w", name, err)
	}
	if status != http.StatusOK && status != http.StatusNotFound {
		return fmt.Errorf("failed to delete trigger %s: unexpected status %d", name, status)
	}
	return nil
}

// InvokeAction 阻塞式调用动作
func (c *httpClient) InvokeAction(ctx context.Context, actionRef string, params map[string]interface{}) (*InvokeResult, error) {
	var result InvokeResult
	status, err := c.doJSON(ctx, http.MethodPost, c.actionURL(actionRef)+"?blocking=true", params, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke action %s: %w", actionRef, err)
	}
	// 200为执行成功，502为动作自身失败（响应体仍携带激活结果）
	if status != http.StatusOK && status != http.StatusBadGateway {
		return nil, fmt.Errorf("failed to invoke action %s: unexpected status %d", actionRef, status)
	}
	return &result, nil
}

// ListActivations 按条件列出激活记录引用
func (c *httpClient) ListActivations(ctx context.Context, filter ListFilter) ([]ActivationRef, error) {
	q := url.Values{}
	if filter.Name != "" {
		q.Set("name", filter.Name)
	}
	if !filter.Since.IsZero() {
		q.Set("since", strconv.FormatInt(filter.Since.UnixMilli(), 10))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	q.Set("docs", "false")

	var refs []ActivationRef
	status, err := c.doJSON(ctx, http.MethodGet, c.namespaceURL()+"/activations?"+q.Encode(), nil, &refs)
	if err != nil {
		return nil, fmt.Errorf("failed to list activations: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("failed to list activations: unexpected status %d", status)
	}
	return refs, nil
}

// GetActivation 解析完整激活记录
func (c *httpClient) GetActivation(ctx context.Context, id string) (*Activation, error) {
	var activation Activation
	status, err := c.doJSON(ctx, http.MethodGet, c.namespaceURL()+"/activations/"+url.PathEscape(id), nil, &activation)
	if err != nil {
		return nil, fmt.Errorf("failed to get activation %s: %w", id, err)
	}
	switch status {
	case http.StatusOK:
		return &activation, nil
	case http.StatusNotFound:
		// 激活尚未落库，调用方可稍后重试
		return nil, ErrUnresolved
	default:
		return nil, fmt.Errorf("failed to get activation %s: unexpected status %d", id, status)
	}
}

// Probe 请求健康检查端点
func (c *httpClient) Probe(ctx context.Context, probeURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build probe request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("probe request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read probe response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// doJSON 执行一次JSON请求，解码响应体到out（out为nil时丢弃响应体）
func (c *httpClient) doJSON(ctx context.Context, method, rawURL string, body, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	user, pass, _ := strings.Cut(c.cfg.AuthKey, ":")
	req.SetBasicAuth(user, pass)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	if out != nil && len(data) > 0 && resp.StatusCode < http.StatusInternalServerError {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response body: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func (c *httpClient) namespaceURL() string {
	return strings.TrimRight(c.cfg.APIHost, "/") + "/api/v1/namespaces/" + url.PathEscape(c.cfg.Namespace)
}

func (c *httpClient) triggerURL(name string) string {
	return c.namespaceURL() + "/triggers/" + url.PathEscape(name)
}

// actionURL 解析动作引用为REST路径
// 支持 /namespace/package/action、/namespace/action、package/action、action 四种形式
func (c *httpClient) actionURL(ref string) string {
	base := strings.TrimRight(c.cfg.APIHost, "/") + "/api/v1/namespaces/"
	if strings.HasPrefix(ref, "/") {
		parts := strings.SplitN(strings.TrimPrefix(ref, "/"), "/", 2)
		if len(parts) == 2 {
			return base + url.PathEscape(parts[0]) + "/actions/" + parts[1]
		}
		return base + url.PathEscape(c.cfg.Namespace) + "/actions/" + parts[0]
	}
	return base + url.PathEscape(c.cfg.Namespace) + "/actions/" + ref
}
