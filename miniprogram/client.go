package miniprogram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ShinyNito/FunkDouyin/core"
)

const (
	accessTokenPath           = "/api/apps/v2/token"
	accessTokenCacheKeyPrefix = "miniprogram:access_token:"
	tokenExpireBuffer         = 300
)

type Config struct {
	AppID     string `conf:"appid" validate:"notblank"`
	AppSecret string `conf:"secret" validate:"notblank"`

	Cache      core.Cache   `validate:"-"`
	HTTPClient *http.Client `validate:"-"`
	Logger     *slog.Logger `validate:"-"`
	// BaseURL 小程序服务端接口域名，默认 developer.toutiao.com
	BaseURL string
	// ContentBaseURL 内容安全接口域名，默认 open.douyin.com
	ContentBaseURL string
}

type Client struct {
	cfg           Config
	apiClient     *core.Client
	contentClient *core.Client
	tokenManager  *core.TokenManager
}

type accessTokenData struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func New(cfg Config) (*Client, error) {
	cfg = normalizeConfig(cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	tokenClient, err := core.NewClient(core.ClientConfig{
		BaseURL:    cfg.BaseURL,
		HTTPClient: cfg.HTTPClient,
		Logger:     cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	tokenManager, err := core.NewTokenManager(core.TokenManagerConfig{
		Cache:               cfg.Cache,
		CacheKey:            accessTokenCacheKeyPrefix + cfg.AppID,
		ExpireBufferSeconds: tokenExpireBuffer,
		Logger:              cfg.Logger,
		Fetcher: func(ctx context.Context) (core.TokenFetchResult, error) {
			resp, err := core.NewTypedRequest[core.DataEnvelope[accessTokenData]](tokenClient).
				Path(accessTokenPath).
				Body(map[string]string{
					"appid":      cfg.AppID,
					"secret":     cfg.AppSecret,
					"grant_type": "client_credential",
				}).
				WithoutToken().
				Post(ctx)
			if err != nil {
				return core.TokenFetchResult{}, fmt.Errorf("request access token: %w", err)
			}
			return core.TokenFetchResult{Token: resp.Data.AccessToken, ExpiresIn: resp.Data.ExpiresIn}, nil
		},
	})
	if err != nil {
		return nil, err
	}

	apiClient, err := core.NewClient(core.ClientConfig{
		BaseURL:       cfg.BaseURL,
		HTTPClient:    cfg.HTTPClient,
		TokenProvider: tokenManager,
		Logger:        cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	contentClient, err := core.NewClient(core.ClientConfig{
		BaseURL:       cfg.ContentBaseURL,
		HTTPClient:    cfg.HTTPClient,
		TokenProvider: tokenManager,
		Logger:        cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &Client{cfg: cfg, apiClient: apiClient, contentClient: contentClient, tokenManager: tokenManager}, nil
}

func (c *Client) Config() Config {
	return c.cfg
}

// AccessTokenProvider 小程序 access_token，可传给 ecpay.Config.TokenProvider 用于订单同步
func (c *Client) AccessTokenProvider() core.AccessTokenProvider {
	return c.tokenManager
}

// accessToken 获取放在请求体中的 access_token
func (c *Client) accessToken(ctx context.Context) (string, error) {
	token, err := c.tokenManager.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("get access token: %w", err)
	}
	return token, nil
}

func normalizeConfig(cfg Config) Config {
	cfg.AppID = strings.TrimSpace(cfg.AppID)
	if cfg.Cache == nil {
		cfg.Cache = core.NewMemoryCache()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = core.DefaultBaseURL
	}
	if cfg.ContentBaseURL == "" {
		cfg.ContentBaseURL = core.OpenBaseURL
	}
	return cfg
}

func validateConfig(cfg Config) error {
	if err := core.ValidateStruct(cfg); err != nil {
		return fmt.Errorf("miniprogram config: %w", err)
	}
	return nil
}
