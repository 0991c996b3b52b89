package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// ErrorContextKey 是用于在 gin.Context 中存储错误对象的键
const ErrorContextKey = "error"

// Error 业务错误，携带 HTTP 状态码、业务码、提示信息以及原始错误链
type Error struct {
	Code    int32  `json:"code"`
	Message string `json:"msg"`
	Origin  string `json:"origin"`
	status  int
	// cause 保存原始错误，用于 Unwrap() 和 Sentry 错误链提取
	cause error
	stack pkgerrors.StackTrace
}

func newError(status int, code int32, msg string) *Error {
	return &Error{
		Code:    code,
		Message: msg,
		status:  status,
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("code:%d, msg:%s", e.Code, e.Message)
}

// GetCode 返回错误码，实现 sentry.CodedError 接口
func (e *Error) GetCode() int32 {
	return e.Code
}

// Status 返回对应的 HTTP 状态码
func (e *Error) Status() int {
	if e.status == 0 {
		return http.StatusInternalServerError
	}
	return e.status
}

func (e *Error) Unwrap() error {
	return e.cause
}

// StackTrace 实现 pkg/errors 的 stackTracer 接口
func (e *Error) StackTrace() pkgerrors.StackTrace {
	if e.stack != nil {
		return e.stack
	}
	if e.cause != nil {
		if st, ok := e.cause.(stackTracer); ok {
			return st.StackTrace()
		}
	}
	return nil
}

// Is 按错误码比较，ErrConflict.WithTips(...) 仍然 Is ErrConflict
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WithOrigin 附加原始错误（仅 debug 模式返回给前端），保留错误链和堆栈
func (e *Error) WithOrigin(err error) *Error {
	if err == nil {
		return e
	}
	wrapped := ensureStack(err)

	n := e.clone()
	n.Origin = fmt.Sprintf("%+v", wrapped)
	n.cause = wrapped
	if st, ok := wrapped.(stackTracer); ok {
		n.stack = st.StackTrace()
	}
	return n
}

// WithTips 附加面向用户的提示信息（release 模式也可见）
func (e *Error) WithTips(details ...string) *Error {
	n := e.clone()
	if len(details) > 0 {
		n.Message = e.Message + ": " + strings.Join(details, "; ")
	}
	return n
}

// Tips 返回去掉通用前缀后的提示信息
func (e *Error) Tips() string {
	if i := strings.Index(e.Message, ": "); i >= 0 {
		return e.Message[i+2:]
	}
	return e.Message
}

func (e *Error) clone() *Error {
	n := *e
	return &n
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// ensureStack 没有堆栈信息的错误补上堆栈
func ensureStack(err error) error {
	if _, ok := err.(stackTracer); ok {
		return err
	}
	return pkgerrors.WithStack(err)
}
