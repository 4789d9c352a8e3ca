package platform

// Trigger 控制面中的trigger实体
type Trigger struct {
	Name        string                 `json:"name"`
	Namespace   string                 `json:"namespace"`
	Annotations []KeyValue             `json:"annotations,omitempty"`
	Parameters  []KeyValue             `json:"parameters,omitempty"`
	Limits      map[string]interface{} `json:"limits,omitempty"`
}

// KeyValue 控制面API使用的键值对
type KeyValue struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// ActivationRef 激活记录的轻量引用（列表接口返回，不含完整载荷）
type ActivationRef struct {
	ID    string `json:"activationId"`
	Name  string `json:"name"`
	Start int64  `json:"start"` // 开始时间，epoch毫秒
}

// Activation 解析后的完整激活记录
type Activation struct {
	ID       string             `json:"activationId"`
	Name     string             `json:"name"`
	Start    int64              `json:"start"`
	End      int64              `json:"end"`
	Response ActivationResponse `json:"response"`
}

// ActivationResponse 激活结果
type ActivationResponse struct {
	Success bool                   `json:"success"`
	Status  string                 `json:"status,omitempty"`
	Result  map[string]interface{} `json:"result,omitempty"`
}

// InvokeResult 阻塞式动作调用的结果
type InvokeResult struct {
	ActivationID string             `json:"activationId"`
	Response     ActivationResponse `json:"response"`
}

// FindAnnotation 按key查找annotation，未找到返回nil
func (t *Trigger) FindAnnotation(key string) interface{} {
	for _, kv := range t.Annotations {
		if kv.Key == key {
			return kv.Value
		}
	}
	return nil
}
