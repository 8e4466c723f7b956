package trade

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// AuthorizationScheme byteAuthorization 前缀
	AuthorizationScheme = "SHA256-RSA2048"

	requestOrderMethod = "POST"
	requestOrderURI    = "/requestOrder"
	nonceBytes         = 8

	// keyBits 应用私钥位数，与 AuthorizationScheme 对应
	keyBits = 2048
)

// ErrUnsupportedKeySize 应用私钥不是 RSA-2048
var ErrUnsupportedKeySize = errors.New("unsupported rsa key size, want 2048 bits")

func checkKeySize(key *rsa.PrivateKey) error {
	if key == nil || key.N == nil || key.N.BitLen() != keyBits {
		return ErrUnsupportedKeySize
	}
	return nil
}

// SignError 生成 byteAuthorization 失败
// Step 为 nonce 或 sign，错误信息不包含任何密钥内容。
type SignError struct {
	Step string
	Err  error
}

func (e *SignError) Error() string {
	return fmt.Sprintf("trade: authorize failed at %s: %v", e.Step, e.Err)
}

func (e *SignError) Unwrap() error {
	return e.Err
}

// Authorization byteAuthorization 的组成字段
type Authorization struct {
	AppID      string
	NonceStr   string
	Timestamp  string
	KeyVersion string
	Signature  string
}

// String 按 appid、nonce_str、timestamp、key_version、signature 的顺序拼接
func (a Authorization) String() string {
	var b strings.Builder
	b.WriteString(AuthorizationScheme)
	b.WriteString(" appid=")
	b.WriteString(a.AppID)
	b.WriteString(",nonce_str=")
	b.WriteString(a.NonceStr)
	b.WriteString(",timestamp=")
	b.WriteString(a.Timestamp)
	b.WriteString(",key_version=")
	b.WriteString(a.KeyVersion)
	b.WriteString(",signature=")
	b.WriteString(a.Signature)
	return b.String()
}

// ParseAuthorization 解析 byteAuthorization 字符串
func ParseAuthorization(s string) (Authorization, error) {
	rest, ok := strings.CutPrefix(s, AuthorizationScheme+" ")
	if !ok {
		return Authorization{}, fmt.Errorf("authorization scheme is not %s", AuthorizationScheme)
	}

	var a Authorization
	for part := range strings.SplitSeq(rest, ",") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return Authorization{}, fmt.Errorf("malformed authorization field %q", part)
		}
		switch key {
		case "appid":
			a.AppID = value
		case "nonce_str":
			a.NonceStr = value
		case "timestamp":
			a.Timestamp = value
		case "key_version":
			a.KeyVersion = value
		case "signature":
			// base64 填充符 '=' 属于值的一部分
			a.Signature = value
		default:
			return Authorization{}, fmt.Errorf("unknown authorization field %q", key)
		}
	}
	return a, nil
}

// AuthorizationMessage 待签名串：POST、/requestOrder、时间戳、随机串、请求体各占一行
func AuthorizationMessage(timestamp, nonce, body string) []byte {
	var b strings.Builder
	b.Grow(len(requestOrderMethod) + len(requestOrderURI) + len(timestamp) + len(nonce) + len(body) + 5)
	for _, line := range []string{requestOrderMethod, requestOrderURI, timestamp, nonce, body} {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// Authorize 为 tt.requestOrder 的 data 生成 byteAuthorization
// body 原样参与签名，必须与传给前端的 data 字符串完全一致。
func (c *Client) Authorize(body string) (string, error) {
	nonce, err := c.nonce()
	if err != nil {
		return "", &SignError{Step: "nonce", Err: err}
	}
	return c.AuthorizeAt(body, c.now().Unix(), nonce)
}

// AuthorizeAt 使用指定的时间戳与随机串生成 byteAuthorization，用于排查签名问题
func (c *Client) AuthorizeAt(body string, timestamp int64, nonce string) (string, error) {
	if err := checkKeySize(c.privateKey); err != nil {
		return "", &SignError{Step: "sign", Err: err}
	}
	ts := strconv.FormatInt(timestamp, 10)
	signature, err := c.sign(c.privateKey, AuthorizationMessage(ts, nonce, body))
	if err != nil {
		return "", &SignError{Step: "sign", Err: err}
	}
	return Authorization{
		AppID:      c.appID,
		NonceStr:   nonce,
		Timestamp:  ts,
		KeyVersion: c.keyVersion,
		Signature:  signature,
	}.String(), nil
}
