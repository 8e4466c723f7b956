package miniprogram

import (
	"context"
	"fmt"

	"github.com/ShinyNito/FunkDouyin/core"
)

const (
	// Code2SessionPath code2session 接口地址
	Code2SessionPath = "/api/apps/v2/jscode2session"
)

// Code2SessionRequest code2session 请求参数
// Code 与 AnonymousCode 至少填写一个。
type Code2SessionRequest struct {
	// Code tt.login 返回的 code
	Code string `json:"code,omitempty" validate:"required_without=AnonymousCode"`
	// AnonymousCode tt.login 返回的 anonymousCode，用于匿名登录
	AnonymousCode string `json:"anonymous_code,omitempty"`
}

// Code2SessionResponse code2session 响应结果
type Code2SessionResponse struct {
	// OpenID 用户在当前小程序的唯一标识，仅传入 code 时返回
	OpenID string `json:"openid"`
	// SessionKey 会话密钥
	SessionKey string `json:"session_key"`
	// UnionID 用户在同一主体下的唯一标识
	UnionID string `json:"unionid,omitempty"`
	// AnonymousOpenID 匿名用户标识，仅传入 anonymous_code 时返回
	AnonymousOpenID string `json:"anonymous_openid,omitempty"`
}

// Code2Session 通过 tt.login 获取的 code 换取 session_key 和 openid
// 接口文档: https://developer.open-douyin.com/docs/resource/zh-CN/mini-app/develop/server/log-in/code-2-session
//
// 参数:
//   - ctx: 上下文
//   - req: 请求参数，包含 Code 或 AnonymousCode
//
// 返回:
//   - *Code2SessionResponse: 响应结果，包含 openid, session_key, unionid 等
//   - error: 可能的错误
//
// 错误:
//   - 40014: 参数错误
//   - 40015: appid 错误
//   - 40017: secret 错误
//   - 40018: code 错误
//   - 40019: anonymous_code 错误
//   - -1: 系统错误
//
// 示例:
//
//	resp, err := mp.Code2Session(ctx, &miniprogram.Code2SessionRequest{
//	    Code: "Je0lVdCeTvRvHSIgBSWT3u9S0mqdaSl6",
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println("OpenID:", resp.OpenID)
func (c *Client) Code2Session(ctx context.Context, req *Code2SessionRequest) (*Code2SessionResponse, error) {
	if err := core.ValidateStruct(req); err != nil {
		return nil, err
	}

	body := map[string]string{
		"appid":  c.cfg.AppID,
		"secret": c.cfg.AppSecret,
	}
	if req.Code != "" {
		body["code"] = req.Code
	}
	if req.AnonymousCode != "" {
		body["anonymous_code"] = req.AnonymousCode
	}

	resp, err := core.NewTypedRequest[core.DataEnvelope[Code2SessionResponse]](c.apiClient).
		Path(Code2SessionPath).
		Body(body).
		WithoutToken().
		Post(ctx)
	if err != nil {
		return nil, fmt.Errorf("code2session: %w", err)
	}
	return &resp.Data, nil
}
