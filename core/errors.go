package core

import (
	"errors"
	"fmt"
)

// DouyinError 抖音开放平台 API 错误
type DouyinError struct {
	ErrNo   int    `json:"err_no"`
	ErrTips string `json:"err_tips"`
	// LogID 平台日志 ID，排查问题时提供给抖音技术支持
	LogID string `json:"log_id,omitempty"`
}

// Error 实现 error 接口
func (e *DouyinError) Error() string {
	if e.LogID != "" {
		return fmt.Sprintf("douyin error: [%d] %s (log_id=%s)", e.ErrNo, e.ErrTips, e.LogID)
	}
	return fmt.Sprintf("douyin error: [%d] %s", e.ErrNo, e.ErrTips)
}

// NewDouyinError 创建抖音错误
func NewDouyinError(code int, msg string) *DouyinError {
	return &DouyinError{
		ErrNo:   code,
		ErrTips: msg,
	}
}

func newDouyinErrorWithLog(code int, msg, logID string) *DouyinError {
	return &DouyinError{
		ErrNo:   code,
		ErrTips: msg,
		LogID:   logID,
	}
}

// 常见错误码定义
const (
	ErrCodeSuccess         = 0        // 成功
	ErrCodeBadParams       = 40014    // 参数错误
	ErrCodeBadAppID        = 40015    // appid 错误
	ErrCodeBadSecret       = 40017    // secret 错误
	ErrCodeBadCode         = 40018    // code 错误
	ErrCodeBadAnonymous    = 40019    // anonymous_code 错误
	ErrCodeInvalidToken    = 2190002  // access_token 无效
	ErrCodeExpiredToken    = 2190008  // access_token 过期
	ErrCodeTokenUnverified = 28001003 // access_token 校验失败
)

// ErrInvalidCredentials appid 或 secret 被平台拒绝，重试无意义
var ErrInvalidCredentials = errors.New("douyin: invalid app credentials")

// IsCredentialError 判断是否为 appid/secret 错误
func IsCredentialError(err error) bool {
	if de, ok := errors.AsType[*DouyinError](err); ok {
		return de.ErrNo == ErrCodeBadAppID || de.ErrNo == ErrCodeBadSecret
	}
	return false
}

// IsTokenError 判断是否为 token 相关错误（需要刷新 token）
func IsTokenError(err error) bool {
	if de, ok := errors.AsType[*DouyinError](err); ok {
		switch de.ErrNo {
		case ErrCodeInvalidToken, ErrCodeExpiredToken, ErrCodeTokenUnverified:
			return true
		}
	}
	return false
}

// ResponseParseError 响应解析错误
// 当响应体不是有效的 JSON 时返回此错误
type ResponseParseError struct {
	Body []byte // 原始响应体
	Err  error  // 底层解析错误
}

// Error 实现 error 接口
func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("failed to parse response: %v", e.Err)
}

// Unwrap 支持 errors.Is/As
func (e *ResponseParseError) Unwrap() error {
	return e.Err
}

// NewResponseParseError 创建响应解析错误
func NewResponseParseError(body []byte, err error) *ResponseParseError {
	return &ResponseParseError{
		Body: body,
		Err:  err,
	}
}
