package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	MsgSimulate MessageType = "simulate" // 发起模拟
	MsgCancel   MessageType = "cancel"   // 取消当前模拟
	MsgPing     MessageType = "ping"     // 心跳 ping
)

// 服务端 → 客户端 消息类型
const (
	MsgStarted    MessageType = "started"     // 模拟已开始
	MsgShoeResult MessageType = "shoe_result" // 单靴结果
	MsgSummary    MessageType = "summary"     // 模拟汇总
	MsgPong       MessageType = "pong"        // 心跳 pong
	MsgError      MessageType = "error"       // 错误消息
)

// NewMessage 创建一个新消息
func NewMessage(msgType MessageType, payload any) (*Message, error) {
	var data json.RawMessage
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return &Message{
		Type:    msgType,
		Payload: data,
	}, nil
}

// MustNewMessage 创建消息，失败时 panic
func MustNewMessage(msgType MessageType, payload any) *Message {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// ParsePayload 解析消息的 Payload 到指定类型
func ParsePayload[T any](msg *Message) (*T, error) {
	var payload T
	if len(msg.Payload) == 0 {
		return &payload, nil
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
