// Package codec encodes protocol messages as protobuf. The envelope is a
// google.protobuf.Struct with a "type" string and a "payload" value, so
// payloads stay plain Go structs with json tags.
package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/palemoky/blackjack-sim/internal/apperrors"
	"github.com/palemoky/blackjack-sim/internal/protocol"
)

const (
	typeField    = "type"
	payloadField = "payload"
)

// Encode 将消息编码为 Protobuf 字节
func Encode(m *protocol.Message) ([]byte, error) {
	env := getEnvelope()
	defer putEnvelope(env)

	env.Fields = map[string]*structpb.Value{
		typeField: structpb.NewStringValue(string(m.Type)),
	}
	if len(m.Payload) > 0 {
		payload := &structpb.Value{}
		if err := protojson.Unmarshal(m.Payload, payload); err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", m.Type, err)
		}
		env.Fields[payloadField] = payload
	}
	return proto.Marshal(env)
}

// Decode 从 Protobuf 字节解码消息
// 注意: 使用完毕后应调用 PutMessage 归还对象到池
func Decode(data []byte) (*protocol.Message, error) {
	env := getEnvelope()
	defer putEnvelope(env)

	if err := proto.Unmarshal(data, env); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidRequest, err)
	}

	typ := env.GetFields()[typeField].GetStringValue()
	if typ == "" {
		return nil, fmt.Errorf("%w: message without type", apperrors.ErrInvalidRequest)
	}

	msg := GetMessage()
	msg.Type = protocol.MessageType(typ)
	if payload, ok := env.GetFields()[payloadField]; ok {
		data, err := protojson.Marshal(payload)
		if err != nil {
			PutMessage(msg)
			return nil, fmt.Errorf("decode %s payload: %w", typ, err)
		}
		msg.Payload = data
	}
	return msg, nil
}

// NewMessage 创建消息并直接编码
func NewMessage(msgType protocol.MessageType, payload any) ([]byte, error) {
	msg, err := protocol.NewMessage(msgType, payload)
	if err != nil {
		return nil, err
	}
	return Encode(msg)
}
