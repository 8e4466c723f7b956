package trade

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/ShinyNito/FunkDouyin/core"
)

// Config 通用交易系统配置
// 密钥均为 PEM 文本，在 New 中解析，解析失败直接返回错误。
type Config struct {
	AppID string `conf:"app_id" validate:"notblank"`
	// PrivateKey 应用私钥，PKCS#1 或 PKCS#8
	PrivateKey string `conf:"private_key" validate:"notblank"`
	// PublicKey 应用公钥，签名不使用，填写时同样会校验格式
	PublicKey string `conf:"public_key"`
	// PlatformPublicKey 平台公钥，用于校验回调
	PlatformPublicKey string `conf:"platform_public_key" validate:"notblank"`
	KeyVersion        string `conf:"key_version" validate:"notblank"`

	// AppSecret 用于获取 client_token；已提供 TokenProvider 时可不填
	AppSecret string `conf:"app_secret"`
	// BaseURL 开放平台接口域名
	BaseURL string `conf:"base_url"`

	TokenProvider core.AccessTokenProvider `validate:"-"`
	Cache         core.Cache               `validate:"-"`
	HTTPClient    *http.Client             `validate:"-"`
	Logger        *slog.Logger             `validate:"-"`
}

func normalizeConfig(cfg Config) Config {
	cfg.AppID = strings.TrimSpace(cfg.AppID)
	cfg.KeyVersion = strings.TrimSpace(cfg.KeyVersion)
	if cfg.BaseURL == "" {
		cfg.BaseURL = core.OpenBaseURL
	}
	if cfg.Cache == nil {
		cfg.Cache = core.NewMemoryCache()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

func validateConfig(cfg Config) error {
	return core.ValidateStruct(cfg)
}
