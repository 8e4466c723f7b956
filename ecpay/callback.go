package ecpay

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/ShinyNito/FunkDouyin/core/utils"
)

// 回调类型
const (
	CallbackTypePayment = "payment"
	CallbackTypeRefund  = "refund"
	CallbackTypeSettle  = "settle"
)

// ErrInvalidSignature 回调签名校验失败
var ErrInvalidSignature = errors.New("ecpay: invalid callback signature")

// CallbackAck 回调处理成功后需要返回给抖音的响应体
var CallbackAck = []byte(`{"err_no":0,"err_tips":"success"}`)

// Callback 担保支付异步回调
type Callback struct {
	Timestamp    string `json:"timestamp"`
	Nonce        string `json:"nonce"`
	Msg          string `json:"msg"`
	Type         string `json:"type"`
	MsgSignature string `json:"msg_signature"`
}

// PaymentMessage 支付回调 msg 内容
type PaymentMessage struct {
	AppID             string `json:"appid"`
	CpOrderNo         string `json:"cp_orderno"`
	CpExtra           string `json:"cp_extra"`
	Way               string `json:"way"`
	ChannelNo         string `json:"channel_no"`
	ChannelGatewayNo  string `json:"channel_gateway_no"`
	PaymentOrderNo    string `json:"payment_order_no"`
	OutChannelOrderNo string `json:"out_channel_order_no"`
	TotalAmount       int64  `json:"total_amount"`
	Status            string `json:"status"`
	SellerUID         string `json:"seller_uid"`
	Extra             string `json:"extra"`
	ItemID            string `json:"item_id"`
	PaidAt            int64  `json:"paid_at"`
	Message           string `json:"message"`
	OrderID           string `json:"order_id"`
}

// RefundMessage 退款回调 msg 内容
type RefundMessage struct {
	AppID        string `json:"appid"`
	CpRefundNo   string `json:"cp_refundno"`
	CpExtra      string `json:"cp_extra"`
	Status       string `json:"status"`
	RefundAmount int64  `json:"refund_amount"`
	IsAllSettled bool   `json:"is_all_settled"`
	RefundedAt   int64  `json:"refunded_at"`
	Message      string `json:"message"`
	OrderID      string `json:"order_id"`
	RefundNo     string `json:"refund_no"`
}

// VerifyCallback 校验担保支付回调签名
// token、timestamp、msg、nonce 按字典序排序后直接拼接，取 SHA1 小写十六进制与 msg_signature 比较。
// 字段缺失或签名不一致都返回 false。
func VerifyCallback(cb Callback, token string) bool {
	if cb.MsgSignature == "" || cb.Timestamp == "" || cb.Nonce == "" {
		return false
	}
	expected := utils.SHA1Sign(token, cb.Timestamp, cb.Msg, cb.Nonce)
	return utils.EqualSignature(expected, cb.MsgSignature)
}

// VerifyCallbackJSON 直接校验原始回调报文
// 报文不是 JSON 对象或字段类型不是字符串时返回 false。
func VerifyCallbackJSON(raw []byte, token string) bool {
	cb, ok := callbackFromJSON(raw)
	if !ok {
		return false
	}
	return VerifyCallback(cb, token)
}

func callbackFromJSON(raw []byte) (Callback, bool) {
	if !gjson.ValidBytes(raw) {
		return Callback{}, false
	}
	if !gjson.ParseBytes(raw).IsObject() {
		return Callback{}, false
	}

	fields := gjson.GetManyBytes(raw, "timestamp", "nonce", "msg", "type", "msg_signature")
	for i, f := range fields {
		// type 可缺省，其余字段必须是字符串
		if f.Type != gjson.String && !(i == 3 && !f.Exists()) {
			return Callback{}, false
		}
	}
	return Callback{
		Timestamp:    fields[0].Str,
		Nonce:        fields[1].Str,
		Msg:          fields[2].Str,
		Type:         fields[3].Str,
		MsgSignature: fields[4].Str,
	}, true
}

// DecodeMessage 把回调 msg 解码到目标类型
func DecodeMessage[T any](cb *Callback) (T, error) {
	var msg T
	if err := json.Unmarshal([]byte(cb.Msg), &msg); err != nil {
		return msg, fmt.Errorf("decode callback msg: %w", err)
	}
	return msg, nil
}
