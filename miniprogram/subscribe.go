package miniprogram

import (
	"context"
	"fmt"

	"github.com/ShinyNito/FunkDouyin/core"
)

const sendNotificationPath = "/api/apps/subscribe_notification/developer/v1/notify"

// SendNotificationRequest 订阅消息请求
type SendNotificationRequest struct {
	// OpenID 接收消息的用户
	OpenID string `json:"open_id" validate:"notblank"`
	// TplID 模板 id
	TplID string `json:"tpl_id" validate:"notblank"`
	// Data 模板内容，key 为模板中的字段名
	Data map[string]string `json:"data" validate:"required"`
	// Page 点击消息跳转的小程序页面
	Page string `json:"page,omitempty"`
}

type sendNotificationBody struct {
	AccessToken string `json:"access_token"`
	AppID       string `json:"app_id"`
	SendNotificationRequest
}

// SendNotification 发送一次性订阅消息
// 接口文档: https://developer.open-douyin.com/docs/resource/zh-CN/mini-app/develop/server/subscribe-notification/notify
func (c *Client) SendNotification(ctx context.Context, req *SendNotificationRequest) error {
	if err := core.ValidateStruct(req); err != nil {
		return err
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	_, err = core.NewTypedRequest[core.DataEnvelope[struct{}]](c.apiClient).
		Path(sendNotificationPath).
		Body(sendNotificationBody{AccessToken: token, AppID: c.cfg.AppID, SendNotificationRequest: *req}).
		Post(ctx)
	if err != nil {
		c.tokenManager.InvalidateIfStale(ctx, err)
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}
