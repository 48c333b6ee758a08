package apperrors

import "errors"

// 错误码
const (
	CodeUnknown          = 1000
	CodeInvalidConfig    = 1001
	CodeInvalidRequest   = 1002
	CodeShoeExhausted    = 2001
	CodeInvalidCard      = 2002
	CodeStrategyMiss     = 3001
	CodeRunNotFound      = 4001
	CodeStoreUnavailable = 5001
)

// SimError 模拟器错误
type SimError struct {
	Code    int
	Message string
}

func (e *SimError) Error() string {
	return e.Message
}

// 预定义错误
var (
	ErrInvalidConfig     = &SimError{Code: CodeInvalidConfig, Message: "invalid configuration"}
	ErrInvalidRequest    = &SimError{Code: CodeInvalidRequest, Message: "invalid request"}
	ErrShoeExhausted     = &SimError{Code: CodeShoeExhausted, Message: "shoe exhausted"}
	ErrInvalidCard       = &SimError{Code: CodeInvalidCard, Message: "invalid card"}
	ErrStrategyTableMiss = &SimError{Code: CodeStrategyMiss, Message: "strategy table miss"}
	ErrRunNotFound       = &SimError{Code: CodeRunNotFound, Message: "run not found"}
	ErrStoreUnavailable  = &SimError{Code: CodeStoreUnavailable, Message: "result store unavailable"}
)

// CodeOf 返回错误链中 SimError 的错误码
func CodeOf(err error) int {
	var se *SimError
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeUnknown
}
