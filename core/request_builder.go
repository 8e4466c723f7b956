package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const accessTokenQueryKey = "access_token"

type tokenPlacement int

const (
	tokenNone tokenPlacement = iota
	tokenQuery
	tokenHeader
)

// RequestBuilder 请求构建器
type RequestBuilder struct {
	client *Client
	path   string
	query  map[string]string
	header http.Header
	body   any
	// rawBody 非空时原样发送，不再做 JSON 编码
	rawBody []byte
	method  string

	// 抖音各接口携带 access_token 的位置不统一，默认不携带
	token     tokenPlacement
	tokenName string
}

// newRequestBuilder 创建请求构建器（包内使用）
func newRequestBuilder(client *Client) *RequestBuilder {
	return &RequestBuilder{
		client: client,
		query:  make(map[string]string),
		header: make(http.Header),
	}
}

// Path 设置请求路径
func (b *RequestBuilder) Path(path string) *RequestBuilder {
	b.path = path
	return b
}

// Query 添加单个查询参数
func (b *RequestBuilder) Query(key, value string) *RequestBuilder {
	if b.query == nil {
		b.query = make(map[string]string)
	}
	b.query[key] = value
	return b
}

// QueryMap 批量设置查询参数
func (b *RequestBuilder) QueryMap(query map[string]string) *RequestBuilder {
	if b.query == nil {
		b.query = make(map[string]string)
	}
	for k, v := range query {
		b.query[k] = v
	}
	return b
}

// Header 设置请求头
func (b *RequestBuilder) Header(key, value string) *RequestBuilder {
	if b.header == nil {
		b.header = make(http.Header)
	}
	b.header.Set(key, value)
	return b
}

// Body 设置请求体，发送时编码为 JSON
func (b *RequestBuilder) Body(body any) *RequestBuilder {
	b.body = body
	b.rawBody = nil
	return b
}

// RawBody 设置原始请求体
// 需要签名的请求必须保证发送的字节与参与签名的字节一致，此时使用 RawBody。
func (b *RequestBuilder) RawBody(body []byte) *RequestBuilder {
	b.rawBody = body
	b.body = nil
	return b
}

// WithToken 以 access_token 查询参数携带凭证
func (b *RequestBuilder) WithToken() *RequestBuilder {
	b.token = tokenQuery
	b.tokenName = accessTokenQueryKey
	return b
}

// TokenHeader 以指定请求头携带凭证，如 X-Token、access-token
func (b *RequestBuilder) TokenHeader(name string) *RequestBuilder {
	b.token = tokenHeader
	b.tokenName = name
	return b
}

// WithoutToken 不携带 access_token（默认行为）
func (b *RequestBuilder) WithoutToken() *RequestBuilder {
	b.token = tokenNone
	b.tokenName = ""
	return b
}

// Get 执行 GET 请求
func (b *RequestBuilder) Get(ctx context.Context) (*Response, error) {
	b.method = http.MethodGet
	return b.do(ctx)
}

// Post 执行 POST 请求
func (b *RequestBuilder) Post(ctx context.Context) (*Response, error) {
	b.method = http.MethodPost
	return b.do(ctx)
}

func (b *RequestBuilder) do(ctx context.Context) (*Response, error) {
	query := make(map[string]string, len(b.query)+1)
	for k, v := range b.query {
		query[k] = v
	}
	header := b.header.Clone()
	if header == nil {
		header = make(http.Header)
	}

	if b.token != tokenNone {
		token, err := b.client.accessToken(ctx)
		if err != nil {
			return nil, err
		}
		switch b.token {
		case tokenQuery:
			query[b.tokenName] = token
		case tokenHeader:
			header.Set(b.tokenName, token)
		}
	}

	reqURL, err := b.client.buildURL(b.path, query)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}

	body := b.rawBody
	if body == nil && b.body != nil {
		body, err = json.Marshal(b.body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
	}

	return b.client.do(ctx, b.method, reqURL, header, body)
}
