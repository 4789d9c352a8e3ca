package json

import (
	jsoniter "github.com/json-iterator/go"
)

// JSON 统一的 jsoniter 配置实例
// 使用 ConfigCompatibleWithStandardLibrary 确保与标准库完全兼容
// 同时获得更高的性能（比标准库快 2-3 倍）
//
// 所有 jxt-feedverify 组件都应该使用这个统一的配置，包括：
// - platform: 控制面API请求/响应的编解码
// - verify: 激活记录载荷的序列化与关联值匹配
// - broker: 直连broker发布时的消息体编码
var JSON = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONFast 高性能 jsoniter 配置实例
// 使用 ConfigFastest 获得最高性能，但可能在某些边缘情况下与标准库不完全兼容
var JSONFast = jsoniter.ConfigFastest

// Marshal 序列化对象为 JSON 字节数组
// 兼容标准库 json.Marshal 接口
func Marshal(v interface{}) ([]byte, error) {
	return JSON.Marshal(v)
}

// Unmarshal 从 JSON 字节数组反序列化对象
// 兼容标准库 json.Unmarshal 接口
func Unmarshal(data []byte, v interface{}) error {
	return JSON.Unmarshal(data, v)
}

// MarshalToString 序列化对象为 JSON 字符串
// 匹配器的"包含子串"判定在序列化结果上进行
func MarshalToString(v interface{}) (string, error) {
	return JSON.MarshalToString(v)
}

// UnmarshalFromString 从 JSON 字符串反序列化对象
func UnmarshalFromString(str string, v interface{}) error {
	return JSON.UnmarshalFromString(str, v)
}
