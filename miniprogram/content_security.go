package miniprogram

import (
	"context"
	"fmt"

	"github.com/ShinyNito/FunkDouyin/core"
)

const (
	checkTextPath  = "/api/v2/tags/text/antidirt"
	checkImagePath = "/api/apps/v1/censor/image"
	xTokenHeader   = "X-Token"
)

// Predict 单个模型的检测结果
type Predict struct {
	Target    string  `json:"target"`
	ModelName string  `json:"model_name"`
	Prob      float64 `json:"prob"`
	Hit       bool    `json:"hit"`
}

// CheckTextRequest 文本检测请求
type CheckTextRequest struct {
	Contents []string `json:"contents" validate:"required,min=1,dive,notblank"`
}

// TextResult 单条文本的检测结果
type TextResult struct {
	Code     int       `json:"code"`
	TaskID   string    `json:"task_id"`
	DataID   string    `json:"data_id"`
	Msg      string    `json:"msg"`
	Predicts []Predict `json:"predicts"`
}

// Hit 任一模型命中即视为违规
func (r TextResult) Hit() bool {
	for _, p := range r.Predicts {
		if p.Hit {
			return true
		}
	}
	return false
}

type checkTextTask struct {
	Content string `json:"content"`
}

type checkTextResponse struct {
	LogID string       `json:"log_id"`
	Data  []TextResult `json:"data"`
}

// CheckText 文本内容安全检测，结果与 Contents 一一对应
// 接口文档: https://developer.open-douyin.com/docs/resource/zh-CN/mini-app/develop/server/content-security/content-security-detect
func (c *Client) CheckText(ctx context.Context, req *CheckTextRequest) ([]TextResult, error) {
	if err := core.ValidateStruct(req); err != nil {
		return nil, err
	}

	tasks := make([]checkTextTask, 0, len(req.Contents))
	for _, content := range req.Contents {
		tasks = append(tasks, checkTextTask{Content: content})
	}

	resp, err := core.NewTypedRequest[checkTextResponse](c.contentClient).
		Path(checkTextPath).
		TokenHeader(xTokenHeader).
		Body(map[string]any{"tasks": tasks}).
		Post(ctx)
	if err != nil {
		c.tokenManager.InvalidateIfStale(ctx, err)
		return nil, fmt.Errorf("check text: %w", err)
	}
	return resp.Data, nil
}

// CheckImageRequest 图片检测请求，Image 与 ImageData 二选一
type CheckImageRequest struct {
	// Image 图片链接
	Image string `json:"image,omitempty" validate:"required_without=ImageData"`
	// ImageData 图片 base64 内容
	ImageData string `json:"image_data,omitempty"`
}

type checkImageBody struct {
	AppID       string `json:"app_id"`
	AccessToken string `json:"access_token"`
	CheckImageRequest
}

// CheckImageResponse 图片检测结果
type CheckImageResponse struct {
	Error    int       `json:"error"`
	Message  string    `json:"message"`
	Predicts []Predict `json:"predicts"`
}

// Hit 任一模型命中即视为违规
func (r *CheckImageResponse) Hit() bool {
	for _, p := range r.Predicts {
		if p.Hit {
			return true
		}
	}
	return false
}

// CheckImage 图片内容安全检测
// 接口文档: https://developer.open-douyin.com/docs/resource/zh-CN/mini-app/develop/server/content-security/picture-detect-v2
func (c *Client) CheckImage(ctx context.Context, req *CheckImageRequest) (*CheckImageResponse, error) {
	if err := core.ValidateStruct(req); err != nil {
		return nil, err
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := core.NewTypedRequest[CheckImageResponse](c.contentClient).
		Path(checkImagePath).
		Body(checkImageBody{AppID: c.cfg.AppID, AccessToken: token, CheckImageRequest: *req}).
		Post(ctx)
	if err != nil {
		c.tokenManager.InvalidateIfStale(ctx, err)
		return nil, fmt.Errorf("check image: %w", err)
	}
	if resp.Error != 0 {
		return nil, fmt.Errorf("check image: %w", core.NewDouyinError(resp.Error, resp.Message))
	}
	return &resp, nil
}
