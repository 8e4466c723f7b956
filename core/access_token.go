package core

import (
	"context"
)

// AccessTokenProvider AccessToken 提供者接口
// 小程序 access_token 与开放平台 client_token 均可通过此接口注入
type AccessTokenProvider interface {
	// GetToken 获取 AccessToken
	// 实现应处理缓存和自动刷新逻辑
	//
	// 参数:
	//   - ctx: 上下文
	//
	// 返回:
	//   - string: 可用于调用抖音 API 的 access_token
	//   - error: 可能的错误
	//
	// 错误:
	//   - 获取或刷新 token 失败
	//   - 配置缺失导致无法获取 token
	GetToken(ctx context.Context) (string, error)

	// RefreshToken 强制刷新 AccessToken
	// 用于 token 失效时主动刷新
	//
	// 参数:
	//   - ctx: 上下文
	//
	// 返回:
	//   - string: 新的 access_token
	//   - error: 可能的错误
	//
	// 错误:
	//   - 向抖音服务端刷新 token 失败
	RefreshToken(ctx context.Context) (string, error)
}

// TokenInvalidator 可在平台报告 token 失效时丢弃缓存的提供者
type TokenInvalidator interface {
	// InvalidateIfStale err 为 token 失效错误时清除缓存并返回 true
	InvalidateIfStale(ctx context.Context, err error) bool
}
