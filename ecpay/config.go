package ecpay

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/ShinyNito/FunkDouyin/core"
)

// Env 担保支付环境
type Env string

const (
	EnvOnline  Env = "online"
	EnvSandbox Env = "sandbox"
)

const (
	// OnlineBaseURL 线上环境域名
	OnlineBaseURL = core.DefaultBaseURL
	// SandboxBaseURL 沙盒环境域名
	SandboxBaseURL = "https://open-sandbox.douyin.com"
)

// Config 担保支付配置
// Salt 与 Token 只在签名和验签时使用，不会出现在日志或错误信息中。
type Config struct {
	AppID string `conf:"app_id" validate:"notblank"`
	// Salt 支付密钥，用于请求签名
	Salt string `conf:"salt" validate:"notblank"`
	// Token 回调验签 token
	Token string `conf:"token" validate:"notblank"`
	Env   Env    `conf:"env" validate:"required,oneof=online sandbox"`

	// BaseURL 覆盖 Env 对应的接口域名
	BaseURL string `conf:"base_url"`
	// PushBaseURL 订单同步接口域名，始终默认线上环境
	PushBaseURL string `conf:"push_base_url"`

	// TokenProvider 订单同步所需的 access_token 来源，通常传入小程序客户端的 AccessTokenProvider()
	TokenProvider core.AccessTokenProvider `validate:"-"`
	HTTPClient    *http.Client             `validate:"-"`
	Logger        *slog.Logger             `validate:"-"`
}

func normalizeConfig(cfg Config) Config {
	cfg.AppID = strings.TrimSpace(cfg.AppID)
	cfg.Env = Env(strings.ToLower(strings.TrimSpace(string(cfg.Env))))
	if cfg.BaseURL == "" {
		switch cfg.Env {
		case EnvSandbox:
			cfg.BaseURL = SandboxBaseURL
		default:
			cfg.BaseURL = OnlineBaseURL
		}
	}
	if cfg.PushBaseURL == "" {
		cfg.PushBaseURL = OnlineBaseURL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

func validateConfig(cfg Config) error {
	return core.ValidateStruct(cfg)
}
