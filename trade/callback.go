package trade

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/ShinyNito/FunkDouyin/core/utils"
)

// 回调请求头
const (
	HeaderTimestamp = "Byte-Timestamp"
	HeaderNonce     = "Byte-Nonce-Str"
	HeaderSignature = "Byte-Signature"
)

// 回调事件类型
const (
	EventPayment = "payment"
	EventRefund  = "refund"
	EventSettle  = "settle"
)

const maxCallbackBodySize = 1 << 20

var (
	// ErrInvalidSignature 回调签名校验失败
	ErrInvalidSignature = errors.New("trade: invalid callback signature")
	// ErrMalformedNotification 回调报文不是合法的 {type, msg, version} 结构
	ErrMalformedNotification = errors.New("trade: malformed notification")
)

// CallbackAck 回调处理成功后返回给抖音的响应体
var CallbackAck = []byte(`{"err_no":0,"err_tips":"success"}`)

// Callback 一次回调请求中参与验签的内容
// Body 为收到的原始字节，不做任何重新序列化。
type Callback struct {
	Timestamp string
	Nonce     string
	Signature string
	Body      []byte
}

// Notification 回调报文
type Notification struct {
	Type    string `json:"type"`
	Msg     string `json:"msg"`
	Version string `json:"version"`
}

// PaymentResult 支付结果回调 msg
type PaymentResult struct {
	AppID          string `json:"app_id"`
	OutOrderNo     string `json:"out_order_no"`
	OrderID        string `json:"order_id"`
	Status         string `json:"status"`
	TotalAmount    int64  `json:"total_amount"`
	DiscountAmount int64  `json:"discount_amount"`
	PayChannel     int32  `json:"pay_channel"`
	ChannelPayID   string `json:"channel_pay_id"`
	MerchantUID    string `json:"merchant_uid"`
	Message        string `json:"message"`
	EventTime      int64  `json:"event_time"`
	UserBillPayID  string `json:"user_bill_pay_id"`
}

// CallbackMessage 回调验签串：时间戳、随机串、原始报文各占一行
func CallbackMessage(timestamp, nonce string, body []byte) []byte {
	msg := make([]byte, 0, len(timestamp)+len(nonce)+len(body)+3)
	msg = append(msg, timestamp...)
	msg = append(msg, '\n')
	msg = append(msg, nonce...)
	msg = append(msg, '\n')
	msg = append(msg, body...)
	msg = append(msg, '\n')
	return msg
}

// VerifyCallback 使用平台公钥校验回调签名
// 签名为空、不是合法 base64 或与报文不匹配时返回 false。
func VerifyCallback(platformPublicKey *rsa.PublicKey, cb Callback) bool {
	return utils.VerifySHA256WithRSA(platformPublicKey, CallbackMessage(cb.Timestamp, cb.Nonce, cb.Body), cb.Signature)
}

// VerifyCallback 使用配置的平台公钥校验回调签名
func (c *Client) VerifyCallback(cb Callback) bool {
	return VerifyCallback(c.platformPublicKey, cb)
}

// CallbackFromRequest 从回调请求中读取验签所需的请求头与原始报文
// 读取后 r.Body 会被替换为同样内容的新 reader。
func CallbackFromRequest(r *http.Request) (Callback, error) {
	if r.Body == nil {
		return Callback{}, fmt.Errorf("read callback body: empty body")
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBodySize+1))
	if err != nil {
		return Callback{}, fmt.Errorf("read callback body: %w", err)
	}
	if len(body) > maxCallbackBodySize {
		return Callback{}, fmt.Errorf("read callback body: exceeds %d bytes", maxCallbackBodySize)
	}
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	return Callback{
		Timestamp: r.Header.Get(HeaderTimestamp),
		Nonce:     r.Header.Get(HeaderNonce),
		Signature: r.Header.Get(HeaderSignature),
		Body:      body,
	}, nil
}

// ParseNotification 解析回调报文，不做验签
func ParseNotification(body []byte) (*Notification, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrMalformedNotification
	}
	if !gjson.ParseBytes(body).IsObject() {
		return nil, ErrMalformedNotification
	}
	fields := gjson.GetManyBytes(body, "type", "msg", "version")
	if fields[0].Type != gjson.String || fields[1].Type != gjson.String {
		return nil, ErrMalformedNotification
	}
	return &Notification{
		Type:    fields[0].Str,
		Msg:     fields[1].Str,
		Version: fields[2].String(),
	}, nil
}

// DecodeMessage 把回调 msg 解码到目标类型
func DecodeMessage[T any](n *Notification) (T, error) {
	var msg T
	if err := json.Unmarshal([]byte(n.Msg), &msg); err != nil {
		return msg, fmt.Errorf("decode notification msg: %w", err)
	}
	return msg, nil
}

// VerifyNotification 读取回调请求、校验签名并解析报文
func (c *Client) VerifyNotification(r *http.Request) (*Notification, error) {
	cb, err := CallbackFromRequest(r)
	if err != nil {
		return nil, err
	}
	if !c.VerifyCallback(cb) {
		c.logger.WarnContext(r.Context(), "trade callback signature mismatch",
			slog.String("timestamp", cb.Timestamp),
			slog.String("nonce", cb.Nonce),
		)
		return nil, ErrInvalidSignature
	}
	return ParseNotification(cb.Body)
}

// NotifyFunc 处理已验签的回调，返回 error 时抖音会重试推送
type NotifyFunc func(ctx context.Context, n *Notification) error

// NotifyHandler 返回处理交易回调的 http.Handler
// 验签失败返回 401，处理失败返回 500，成功时写回 CallbackAck。
func (c *Client) NotifyHandler(fn NotifyFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		n, err := c.VerifyNotification(r)
		switch {
		case errors.Is(err, ErrInvalidSignature):
			http.Error(w, `{"err_no":1,"err_tips":"invalid signature"}`, http.StatusUnauthorized)
			return
		case err != nil:
			c.logger.WarnContext(ctx, "trade callback rejected", slog.Any("error", err))
			http.Error(w, `{"err_no":1,"err_tips":"bad request"}`, http.StatusBadRequest)
			return
		}

		if err := fn(ctx, n); err != nil {
			c.logger.ErrorContext(ctx, "trade callback handler failed",
				slog.String("type", n.Type),
				slog.Any("error", err),
			)
			http.Error(w, `{"err_no":1,"err_tips":"internal error"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(CallbackAck)
	})
}
