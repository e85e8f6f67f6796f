package errcode

import (
	"errors"
	"fmt"
)

// 错误码约定：
// - 0：无错误
// - 4xxx：调用方可修正的错误（参数非法、资源缺失、未登录）
// - 5xxx：系统错误（上游服务失败或意外异常）
const (
	OK              = 0
	Validation      = 4000
	Unauthenticated = 4001
	ResourceMissing = 4004
	SystemError     = 5000
	UpstreamFailure = 5002
)

// Error 在各层之间携带错误码与可返回给客户端的消息。
type Error struct {
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(code int, msg string) *Error { return &Error{Code: code, Message: msg} }

func Wrap(code int, msg string, err error) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

func Invalid(msg string) *Error  { return New(Validation, msg) }
func NotFound(msg string) *Error { return New(ResourceMissing, msg) }

// Upstream 会把上游错误信息透传给客户端。
func Upstream(msg string, err error) *Error { return Wrap(UpstreamFailure, msg, err) }

func Internal(msg string, err error) *Error { return Wrap(SystemError, msg, err) }

// CodeOf 返回错误链中第一个 *Error 的错误码；其他错误视为 SystemError，nil 返回 OK。
func CodeOf(err error) int {
	if err == nil {
		return OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return SystemError
}

// Is 判断 err 是否携带指定错误码。
func Is(err error, code int) bool {
	return err != nil && CodeOf(err) == code
}

// MessageOf 返回面向客户端的错误消息。
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Code == UpstreamFailure && e.Err != nil {
			return e.Error()
		}
		return e.Message
	}
	return "internal error"
}
