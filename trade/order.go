package trade

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ShinyNito/FunkDouyin/core"
)

const (
	queryOrderPath = "/api/trade_basic/v1/developer/order_query/"
	// accessTokenHeader 交易系统接口通过该请求头传递 client_token
	accessTokenHeader = "access-token"
)

// SkuType 商品类型
type SkuType int32

// RequestOrderData tt.requestOrder 的 data 参数
type RequestOrderData struct {
	SkuList          []*Sku  `json:"skuList" validate:"required,min=1,dive,required"`
	OutOrderNo       string  `json:"outOrderNo" validate:"notblank"`
	TotalAmount      int64   `json:"totalAmount" validate:"gt=0"`
	PayExpireSeconds int32   `json:"payExpireSeconds,omitempty" validate:"gte=0,lte=172800"`
	PayNotifyURL     string  `json:"payNotifyUrl,omitempty"`
	MerchantUID      string  `json:"merchantUid,omitempty"`
	OrderEntrySchema *Schema `json:"orderEntrySchema" validate:"required"`
	LimitPayWayList  []int32 `json:"limitPayWayList,omitempty"`
	PayScene         string  `json:"payScene,omitempty"`
}

// Sku 下单商品
type Sku struct {
	SkuID       string   `json:"skuId" validate:"notblank"`
	Price       int64    `json:"price" validate:"gte=0"`
	Quantity    int32    `json:"quantity" validate:"gt=0,lte=100"`
	Title       string   `json:"title" validate:"notblank"`
	ImageList   []string `json:"imageList" validate:"len=1"`
	Type        SkuType  `json:"type" validate:"required"`
	TagGroupID  string   `json:"tagGroupId" validate:"notblank"`
	EntrySchema *Schema  `json:"entrySchema,omitempty"`
}

// Schema 小程序页面路径
type Schema struct {
	Path   string `json:"path" validate:"notblank"`
	Params string `json:"params,omitempty"`
}

// RequestOrderResult 传给 tt.requestOrder 的参数
type RequestOrderResult struct {
	Data              string `json:"data"`
	ByteAuthorization string `json:"byteAuthorization"`
}

// RequestOrder 生成 tt.requestOrder 所需的 data 与 byteAuthorization
func (c *Client) RequestOrder(data *RequestOrderData) (*RequestOrderResult, error) {
	if err := core.ValidateStruct(data); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal order data: %w", err)
	}
	auth, err := c.Authorize(string(raw))
	if err != nil {
		return nil, err
	}
	return &RequestOrderResult{Data: string(raw), ByteAuthorization: auth}, nil
}

// QueryOrderRequest 订单查询请求，order_id 与 out_order_no 二选一
type QueryOrderRequest struct {
	OrderID    string `json:"order_id,omitempty" validate:"required_without=OutOrderNo"`
	OutOrderNo string `json:"out_order_no,omitempty"`
}

// OrderInfo 订单详情
type OrderInfo struct {
	AppID          string      `json:"app_id"`
	OrderID        string      `json:"order_id"`
	OutOrderNo     string      `json:"out_order_no"`
	PayStatus      string      `json:"pay_status"`
	TotalAmount    int64       `json:"total_amount"`
	DiscountAmount int64       `json:"discount_amount"`
	TradeTime      int64       `json:"trade_time"`
	PayTime        int64       `json:"pay_time"`
	PayChannel     int32       `json:"pay_channel"`
	ChannelPayID   string      `json:"channel_pay_id"`
	MerchantUID    string      `json:"merchant_uid"`
	ItemOrderList  []ItemOrder `json:"item_order_list"`
}

// ItemOrder 商品单
type ItemOrder struct {
	ItemOrderID     string `json:"item_order_id"`
	SkuID           string `json:"sku_id"`
	ItemOrderAmount int64  `json:"item_order_amount"`
}

// QueryOrder 查询交易订单
func (c *Client) QueryOrder(ctx context.Context, req *QueryOrderRequest) (*OrderInfo, error) {
	if err := core.ValidateStruct(req); err != nil {
		return nil, err
	}

	resp, err := core.NewTypedRequest[core.DataEnvelope[OrderInfo]](c.apiClient).
		Path(queryOrderPath).
		TokenHeader(accessTokenHeader).
		Body(req).
		Post(ctx)
	if err != nil {
		if inv, ok := c.tokenProvider.(core.TokenInvalidator); ok {
			inv.InvalidateIfStale(ctx, err)
		}
		return nil, fmt.Errorf("query order: %w", err)
	}
	return &resp.Data, nil
}

