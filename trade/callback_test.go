package trade

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShinyNito/FunkDouyin/core/utils"
)

const notificationBody = `{"version":"2.0","msg":"{\"app_id\":\"tt-app\",\"status\":\"SUCCESS\",\"order_id\":\"N1\",\"out_order_no\":\"o-1\",\"total_amount\":1990}","type":"payment"}`

func platformSign(t *testing.T, timestamp, nonce string, body []byte) string {
	t.Helper()
	sig, err := utils.SignSHA256WithRSA(testKeys().platform, CallbackMessage(timestamp, nonce, body))
	require.NoError(t, err)
	return sig
}

func TestCallbackMessage(t *testing.T) {
	got := CallbackMessage("1700000000", "abc", []byte(`{"a":1}`))
	assert.Equal(t, "1700000000\nabc\n{\"a\":1}\n", string(got))
}

func TestVerifyCallback(t *testing.T) {
	client := newTestClient(t)
	body := []byte(notificationBody)
	sig := platformSign(t, "1700000000", "abc", body)

	otherSig, err := utils.SignSHA256WithRSA(testKeys().other, CallbackMessage("1700000000", "abc", body))
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(sig)
	require.NoError(t, err)
	raw[0] ^= 0xff
	mutated := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name string
		cb   Callback
		want bool
	}{
		{name: "签名正确", cb: Callback{Timestamp: "1700000000", Nonce: "abc", Signature: sig, Body: body}, want: true},
		{name: "其他私钥签名", cb: Callback{Timestamp: "1700000000", Nonce: "abc", Signature: otherSig, Body: body}, want: false},
		{name: "签名被修改一个字节", cb: Callback{Timestamp: "1700000000", Nonce: "abc", Signature: mutated, Body: body}, want: false},
		{name: "时间戳不一致", cb: Callback{Timestamp: "1700000001", Nonce: "abc", Signature: sig, Body: body}, want: false},
		{
			name: "报文重新格式化",
			cb:   Callback{Timestamp: "1700000000", Nonce: "abc", Signature: sig, Body: []byte(strings.Replace(notificationBody, `":"`, `": "`, 1))},
			want: false,
		},
		{name: "签名不是 base64", cb: Callback{Timestamp: "1700000000", Nonce: "abc", Signature: "%%%", Body: body}, want: false},
		{name: "缺少签名", cb: Callback{Timestamp: "1700000000", Nonce: "abc", Body: body}, want: false},
		{name: "空回调", cb: Callback{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, client.VerifyCallback(tt.cb))
		})
	}

	assert.False(t, VerifyCallback(nil, Callback{Timestamp: "1700000000", Nonce: "abc", Signature: sig, Body: body}))
}

func TestCallbackFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/notify", strings.NewReader(notificationBody))
	req.Header.Set(HeaderTimestamp, "1700000000")
	req.Header.Set(HeaderNonce, "abc")
	req.Header.Set(HeaderSignature, "sig==")

	cb, err := CallbackFromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, "1700000000", cb.Timestamp)
	assert.Equal(t, "abc", cb.Nonce)
	assert.Equal(t, "sig==", cb.Signature)
	assert.Equal(t, notificationBody, string(cb.Body))

	rest, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, notificationBody, string(rest))

	large := httptest.NewRequest(http.MethodPost, "/notify", strings.NewReader(strings.Repeat("a", maxCallbackBodySize+1)))
	_, err = CallbackFromRequest(large)
	require.Error(t, err)
}

func TestParseNotification(t *testing.T) {
	n, err := ParseNotification([]byte(notificationBody))
	require.NoError(t, err)
	assert.Equal(t, EventPayment, n.Type)
	assert.Equal(t, "2.0", n.Version)

	result, err := DecodeMessage[PaymentResult](n)
	require.NoError(t, err)
	assert.Equal(t, "o-1", result.OutOrderNo)
	assert.EqualValues(t, 1990, result.TotalAmount)

	n, err = ParseNotification([]byte(`{"msg":"{}","version":3,"extra":[1,2],"type":"refund"}`))
	require.NoError(t, err)
	assert.Equal(t, "refund", n.Type)
	assert.Equal(t, "{}", n.Msg)
	assert.Equal(t, "3", n.Version)

	for _, body := range []string{``, `[]`, `not json`, `{"type":1,"msg":"x"}`, `{"type":"payment","msg":{}}`} {
		_, err := ParseNotification([]byte(body))
		assert.ErrorIs(t, err, ErrMalformedNotification, "body %q", body)
	}
}

func TestNotifyHandler(t *testing.T) {
	client := newTestClient(t)

	newRequest := func(body, sig string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/notify", strings.NewReader(body))
		req.Header.Set(HeaderTimestamp, "1700000000")
		req.Header.Set(HeaderNonce, "abc")
		req.Header.Set(HeaderSignature, sig)
		return req
	}
	validSig := platformSign(t, "1700000000", "abc", []byte(notificationBody))

	tests := []struct {
		name       string
		body       string
		sig        string
		handlerErr error
		wantStatus int
		wantCalled bool
	}{
		{name: "成功", body: notificationBody, sig: validSig, wantStatus: http.StatusOK, wantCalled: true},
		{name: "签名错误", body: notificationBody, sig: "bad", wantStatus: http.StatusUnauthorized},
		{
			name:       "报文结构错误",
			body:       `{"foo":"bar"}`,
			sig:        platformSign(t, "1700000000", "abc", []byte(`{"foo":"bar"}`)),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "业务处理失败",
			body:       notificationBody,
			sig:        validSig,
			handlerErr: errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
			wantCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := client.NotifyHandler(func(_ context.Context, n *Notification) error {
				called = true
				assert.Equal(t, EventPayment, n.Type)
				return tt.handlerErr
			})

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, newRequest(tt.body, tt.sig))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalled, called)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, string(CallbackAck), rec.Body.String())
			}
		})
	}
}
