package ecpay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ShinyNito/FunkDouyin/core"
)

const (
	createOrderPath = "/api/apps/ecpay/v1/create_order"
	queryOrderPath  = "/api/apps/ecpay/v1/query_order"
	pushOrderPath   = "/api/apps/order/v2/push"
)

// Client 担保支付客户端
type Client struct {
	cfg        Config
	apiClient  *core.Client
	pushClient *core.Client
	logger     *slog.Logger
}

func New(cfg Config) (*Client, error) {
	cfg = normalizeConfig(cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("ecpay config: %w", err)
	}

	apiClient, err := core.NewClient(core.ClientConfig{
		BaseURL:    cfg.BaseURL,
		HTTPClient: cfg.HTTPClient,
		Logger:     cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	pushClient, err := core.NewClient(core.ClientConfig{
		BaseURL:       cfg.PushBaseURL,
		HTTPClient:    cfg.HTTPClient,
		TokenProvider: cfg.TokenProvider,
		Logger:        cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &Client{cfg: cfg, apiClient: apiClient, pushClient: pushClient, logger: cfg.Logger}, nil
}

func (c *Client) AppID() string {
	return c.cfg.AppID
}

func (c *Client) Env() Env {
	return c.cfg.Env
}

// Sign 使用配置的 salt 计算请求签名
func (c *Client) Sign(params Params) string {
	return Sign(params, c.cfg.Salt)
}

// VerifyCallback 使用配置的 token 校验回调
func (c *Client) VerifyCallback(cb Callback) bool {
	return VerifyCallback(cb, c.cfg.Token)
}

// VerifyCallbackJSON 使用配置的 token 校验原始回调报文
func (c *Client) VerifyCallbackJSON(raw []byte) bool {
	return VerifyCallbackJSON(raw, c.cfg.Token)
}

// ParseCallback 校验并解析回调报文
// 签名不通过时返回 ErrInvalidSignature。
func (c *Client) ParseCallback(ctx context.Context, raw []byte) (*Callback, error) {
	cb, ok := callbackFromJSON(raw)
	if !ok {
		c.logger.WarnContext(ctx, "ecpay callback malformed")
		return nil, fmt.Errorf("%w: malformed payload", ErrInvalidSignature)
	}
	if !VerifyCallback(cb, c.cfg.Token) {
		c.logger.WarnContext(ctx, "ecpay callback signature mismatch", slog.String("type", cb.Type))
		return nil, ErrInvalidSignature
	}
	return &cb, nil
}

// signedParams 补齐 app_id 并计算 sign
func (c *Client) signedParams(req any) (Params, error) {
	params, err := toParams(req)
	if err != nil {
		return nil, err
	}
	if v, ok := params["app_id"]; !ok || v == "" {
		params["app_id"] = c.cfg.AppID
	}
	params["sign"] = c.Sign(params)
	return params, nil
}

// CreateOrderRequest 预下单请求
type CreateOrderRequest struct {
	OutOrderNo      string         `json:"out_order_no" validate:"notblank"`
	TotalAmount     int64          `json:"total_amount" validate:"gt=0"`
	Subject         string         `json:"subject" validate:"notblank"`
	Body            string         `json:"body" validate:"notblank"`
	ValidTime       int64          `json:"valid_time" validate:"gt=0"`
	CpExtra         string         `json:"cp_extra,omitempty"`
	NotifyURL       string         `json:"notify_url,omitempty"`
	ThirdpartyID    string         `json:"thirdparty_id,omitempty"`
	StoreUID        string         `json:"store_uid,omitempty"`
	DisableMsg      int            `json:"disable_msg,omitempty"`
	MsgPage         string         `json:"msg_page,omitempty"`
	ExpandOrderInfo map[string]any `json:"expand_order_info,omitempty"`
	LimitPayWay     string         `json:"limit_pay_way,omitempty"`
}

// CreateOrderData 预下单结果，order_id 与 order_token 交给 tt.pay 拉起收银台
type CreateOrderData struct {
	OrderID    string `json:"order_id"`
	OrderToken string `json:"order_token"`
}

// CreateOrder 担保支付预下单
func (c *Client) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderData, error) {
	if err := core.ValidateStruct(req); err != nil {
		return nil, err
	}
	params, err := c.signedParams(req)
	if err != nil {
		return nil, err
	}

	resp, err := core.NewTypedRequest[core.DataEnvelope[CreateOrderData]](c.apiClient).
		Path(createOrderPath).
		Body(params).
		Post(ctx)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &resp.Data, nil
}

// QueryOrderRequest 订单查询请求
type QueryOrderRequest struct {
	OutOrderNo   string `json:"out_order_no" validate:"notblank"`
	ThirdpartyID string `json:"thirdparty_id,omitempty"`
}

// PaymentInfo 订单支付信息
type PaymentInfo struct {
	TotalFee         int64  `json:"total_fee"`
	OrderStatus      string `json:"order_status"`
	PayTime          string `json:"pay_time"`
	Way              int    `json:"way"`
	ChannelNo        string `json:"channel_no"`
	ChannelGatewayNo string `json:"channel_gateway_no"`
	SellerUID        string `json:"seller_uid"`
	ItemID           string `json:"item_id"`
	CpExtra          string `json:"cp_extra"`
}

// QueryOrderResponse 订单查询结果
type QueryOrderResponse struct {
	OutOrderNo  string      `json:"out_order_no"`
	OrderID     string      `json:"order_id"`
	PaymentInfo PaymentInfo `json:"payment_info"`
	CpsInfo     string      `json:"cps_info"`
}

// QueryOrder 按开发者订单号查询支付状态
func (c *Client) QueryOrder(ctx context.Context, req *QueryOrderRequest) (*QueryOrderResponse, error) {
	if err := core.ValidateStruct(req); err != nil {
		return nil, err
	}
	params, err := c.signedParams(req)
	if err != nil {
		return nil, err
	}

	resp, err := core.NewTypedRequest[QueryOrderResponse](c.apiClient).
		Path(queryOrderPath).
		Body(params).
		Post(ctx)
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	return &resp, nil
}

// PushOrderRequest 订单同步请求
// AccessToken 为空时从 Config.TokenProvider 获取。
type PushOrderRequest struct {
	AccessToken string `json:"access_token"`
	ClientKey   string `json:"client_key,omitempty"`
	ExtShopID   int64  `json:"ext_shop_id,omitempty"`
	AppName     string `json:"app_name"`
	OpenID      string `json:"open_id" validate:"notblank"`
	UpdateTime  int64  `json:"update_time"`
	// OrderDetail 订单详情，JSON 字符串
	OrderDetail string `json:"order_detail" validate:"notblank"`
	OrderType   int    `json:"order_type"`
	OrderStatus int    `json:"order_status"`
	Extra       string `json:"extra,omitempty"`
}

type pushOrderResponse struct {
	ErrCode int    `json:"err_code"`
	ErrMsg  string `json:"err_msg"`
	Body    string `json:"body"`
}

// PushOrder 同步订单状态到抖音订单中心，返回平台响应的 body 字段
func (c *Client) PushOrder(ctx context.Context, req *PushOrderRequest) (string, error) {
	if err := core.ValidateStruct(req); err != nil {
		return "", err
	}

	body := *req
	if body.AppName == "" {
		body.AppName = "douyin"
	}
	if body.UpdateTime == 0 {
		body.UpdateTime = time.Now().UnixMilli()
	}
	if body.AccessToken == "" {
		if c.cfg.TokenProvider == nil {
			return "", fmt.Errorf("push order: access_token is required")
		}
		token, err := c.cfg.TokenProvider.GetToken(ctx)
		if err != nil {
			return "", fmt.Errorf("push order: get access token: %w", err)
		}
		body.AccessToken = token
	}

	resp, err := core.NewTypedRequest[pushOrderResponse](c.pushClient).
		Path(pushOrderPath).
		Body(body).
		Post(ctx)
	if err != nil {
		return "", fmt.Errorf("push order: %w", err)
	}
	if resp.ErrCode != 0 {
		return "", fmt.Errorf("push order: %w", core.NewDouyinError(resp.ErrCode, resp.ErrMsg))
	}
	return resp.Body, nil
}
