package protocol

import (
	"github.com/palemoky/blackjack-sim/internal/apperrors"
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	apperrors.CodeUnknown:          "未知错误",
	apperrors.CodeInvalidConfig:    "无效的模拟参数",
	apperrors.CodeInvalidRequest:   "无效的消息格式",
	apperrors.CodeShoeExhausted:    "牌靴已发完",
	apperrors.CodeInvalidCard:      "无效的牌",
	apperrors.CodeStrategyMiss:     "策略表缺少该手牌",
	apperrors.CodeRunNotFound:      "模拟记录不存在",
	apperrors.CodeStoreUnavailable: "存储不可用",
}

// NewErrorMessage 创建错误消息
func NewErrorMessage(code int) *Message {
	msg, _ := NewMessage(MsgError, ErrorPayload{
		Code:    code,
		Message: ErrorMessages[code],
	})
	return msg
}

// NewErrorMessageWithText 创建带自定义文本的错误消息
func NewErrorMessageWithText(code int, text string) *Message {
	msg, _ := NewMessage(MsgError, ErrorPayload{
		Code:    code,
		Message: text,
	})
	return msg
}

// ErrorMessageFor maps err to an error message carrying its code.
func ErrorMessageFor(err error) *Message {
	return NewErrorMessageWithText(apperrors.CodeOf(err), err.Error())
}
