package core

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// mockTokenProvider 模拟 token 提供者
type mockTokenProvider struct {
	token string
	err   error
}

func (m *mockTokenProvider) RefreshToken(_ context.Context) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.token, nil
}

func (m *mockTokenProvider) GetToken(_ context.Context) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.token, nil
}

func newTestClient(t *testing.T, baseURL string, tokenProvider AccessTokenProvider) *Client {
	t.Helper()
	client, err := NewClient(ClientConfig{
		BaseURL:       baseURL,
		TokenProvider: tokenProvider,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestClient_Request_GET(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		query          map[string]string
		build          func(*RequestBuilder) *RequestBuilder
		tokenProvider  AccessTokenProvider
		serverHandler  func(w http.ResponseWriter, r *http.Request)
		wantErr        bool
		wantErrContain string
		validate       func(t *testing.T, resp *Response)
	}{
		{
			name:  "成功的 GET 请求（query 携带 token）",
			path:  "/test",
			query: map[string]string{"openid": "test_openid"},
			build: func(b *RequestBuilder) *RequestBuilder { return b.WithToken() },
			tokenProvider: &mockTokenProvider{
				token: "test_token",
			},
			serverHandler: func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if token := r.URL.Query().Get("access_token"); token != "test_token" {
					t.Errorf("expected access_token=test_token, got %s", token)
				}
				if openid := r.URL.Query().Get("openid"); openid != "test_openid" {
					t.Errorf("expected openid=test_openid, got %s", openid)
				}
				_ = json.NewEncoder(w).Encode(map[string]any{"err_no": 0, "data": "success"})
			},
			validate: func(t *testing.T, resp *Response) {
				var result map[string]any
				if err := json.Unmarshal(resp.Body, &result); err != nil {
					t.Fatalf("failed to unmarshal response: %v", err)
				}
				if result["data"] != "success" {
					t.Errorf("expected data=success, got %v", result["data"])
				}
			},
		},
		{
			name:  "header 携带 token",
			path:  "/api/trade_basic/v1/developer/order_query",
			build: func(b *RequestBuilder) *RequestBuilder { return b.TokenHeader("access-token") },
			tokenProvider: &mockTokenProvider{
				token: "test_token",
			},
			serverHandler: func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("access-token"); got != "test_token" {
					t.Errorf("expected access-token header, got %q", got)
				}
				if got := r.URL.Query().Get("access_token"); got != "" {
					t.Errorf("unexpected access_token query: %s", got)
				}
				_, _ = w.Write([]byte(`{"err_no":0}`))
			},
		},
		{
			name:  "默认不携带 token",
			path:  "/api/apps/v2/jscode2session",
			query: map[string]string{"code": "test_code"},
			tokenProvider: &mockTokenProvider{
				token: "test_token",
			},
			serverHandler: func(w http.ResponseWriter, r *http.Request) {
				if token := r.URL.Query().Get("access_token"); token != "" {
					t.Errorf("expected no access_token, got %s", token)
				}
				_, _ = w.Write([]byte(`{"err_no":0}`))
			},
		},
		{
			name:  "Token 提供者返回错误",
			path:  "/test",
			build: func(b *RequestBuilder) *RequestBuilder { return b.WithToken() },
			tokenProvider: &mockTokenProvider{
				err: errors.New("token provider error"),
			},
			wantErr:        true,
			wantErrContain: "get access token",
		},
		{
			name:           "未配置 Token 提供者",
			path:           "/test",
			build:          func(b *RequestBuilder) *RequestBuilder { return b.TokenHeader("X-Token") },
			wantErr:        true,
			wantErrContain: "token provider is not configured",
		},
		{
			name: "服务器返回错误状态码",
			path: "/test",
			serverHandler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("Internal Server Error"))
			},
			validate: func(t *testing.T, resp *Response) {
				// HTTP 错误不应导致请求失败，由上层解码决定
				if resp.StatusCode != http.StatusInternalServerError {
					t.Errorf("expected status 500, got %d", resp.StatusCode)
				}
				if !strings.Contains(string(resp.Body), "Internal Server Error") {
					t.Errorf("expected error message in body")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			baseURL := "http://127.0.0.1:1"
			if tt.serverHandler != nil {
				server := httptest.NewServer(http.HandlerFunc(tt.serverHandler))
				defer server.Close()
				baseURL = server.URL
			}

			client := newTestClient(t, baseURL, tt.tokenProvider)
			builder := client.Request().Path(tt.path).QueryMap(tt.query)
			if tt.build != nil {
				builder = tt.build(builder)
			}

			resp, err := builder.Get(context.Background())

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.wantErrContain != "" && !strings.Contains(err.Error(), tt.wantErrContain) {
					t.Errorf("expected error to contain %q, got %q", tt.wantErrContain, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, resp)
			}
		})
	}
}

func TestClient_Request_POST(t *testing.T) {
	tests := []struct {
		name     string
		build    func(*RequestBuilder) *RequestBuilder
		wantBody string
		wantCT   string
	}{
		{
			name: "JSON 请求体",
			build: func(b *RequestBuilder) *RequestBuilder {
				return b.Body(map[string]any{"message": "test"})
			},
			wantBody: `{"message":"test"}`,
			wantCT:   "application/json",
		},
		{
			name: "原始请求体原样发送",
			build: func(b *RequestBuilder) *RequestBuilder {
				return b.RawBody([]byte(`{"b": 2, "a": 1}`))
			},
			wantBody: `{"b": 2, "a": 1}`,
			wantCT:   "application/json",
		},
		{
			name: "自定义 Content-Type",
			build: func(b *RequestBuilder) *RequestBuilder {
				return b.RawBody([]byte("a=1")).Header("Content-Type", "application/x-www-form-urlencoded")
			},
			wantBody: "a=1",
			wantCT:   "application/x-www-form-urlencoded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if ct := r.Header.Get("Content-Type"); ct != tt.wantCT {
					t.Errorf("expected Content-Type=%s, got %s", tt.wantCT, ct)
				}
				body, _ := io.ReadAll(r.Body)
				if string(body) != tt.wantBody {
					t.Errorf("expected body %s, got %s", tt.wantBody, body)
				}
				_, _ = w.Write([]byte(`{"err_no":0}`))
			}))
			defer server.Close()

			client := newTestClient(t, server.URL, nil)
			resp, err := tt.build(client.Request().Path("/post")).Post(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Errorf("unexpected status: %d", resp.StatusCode)
			}
		})
	}
}

func TestClient_BuildURL(t *testing.T) {
	tests := []struct {
		name        string
		baseURL     string
		path        string
		query       map[string]string
		wantHost    string
		wantPath    string
		wantQueries map[string]string
	}{
		{
			name:     "默认域名",
			path:     "/api/apps/v2/token",
			wantHost: "developer.toutiao.com",
			wantPath: "/api/apps/v2/token",
		},
		{
			name:     "路径包含查询参数",
			baseURL:  OpenBaseURL,
			path:     "/test?foo=bar",
			query:    map[string]string{"a": "1"},
			wantHost: "open.douyin.com",
			wantPath: "/test",
			wantQueries: map[string]string{
				"foo": "bar",
				"a":   "1",
			},
		},
		{
			name:     "去除末尾斜杠",
			baseURL:  "https://open-sandbox.douyin.com/",
			path:     "/api/apps/ecpay/v1/create_order",
			wantHost: "open-sandbox.douyin.com",
			wantPath: "/api/apps/ecpay/v1/create_order",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.baseURL, nil)
			gotURL, err := client.buildURL(tt.path, tt.query)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			parsedURL, err := url.Parse(gotURL)
			if err != nil {
				t.Fatalf("failed to parse result URL: %v", err)
			}
			if parsedURL.Host != tt.wantHost {
				t.Errorf("expected host=%q, got %q", tt.wantHost, parsedURL.Host)
			}
			if parsedURL.Path != tt.wantPath {
				t.Errorf("expected path=%q, got %q", tt.wantPath, parsedURL.Path)
			}

			gotQueries := parsedURL.Query()
			for key, wantValue := range tt.wantQueries {
				if gotValue := gotQueries.Get(key); gotValue != wantValue {
					t.Errorf("expected query %s=%q, got %s=%q", key, wantValue, key, gotValue)
				}
			}
			if len(gotQueries) != len(tt.wantQueries) {
				t.Errorf("expected %d query params, got %d: %v", len(tt.wantQueries), len(gotQueries), gotQueries)
			}
		})
	}
}
