package trade

import (
	"context"
	"crypto/rsa"
	"fmt"
	"log/slog"
	"time"

	"github.com/ShinyNito/FunkDouyin/core"
	"github.com/ShinyNito/FunkDouyin/core/utils"
)

const (
	clientTokenPath           = "/oauth/client_token/"
	clientTokenCacheKeyPrefix = "trade:client_token:"
	tokenExpireBuffer         = 300
)

// Client 通用交易系统客户端
// 构造完成后密钥只读，可并发使用。
type Client struct {
	appID             string
	keyVersion        string
	privateKey        *rsa.PrivateKey
	publicKey         *rsa.PublicKey
	platformPublicKey *rsa.PublicKey

	apiClient     *core.Client
	tokenProvider core.AccessTokenProvider
	logger        *slog.Logger

	now   func() time.Time
	nonce func() (string, error)
	sign  func(key *rsa.PrivateKey, message []byte) (string, error)
}

type clientTokenResponse struct {
	Data struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	} `json:"data"`
}

func New(cfg Config) (*Client, error) {
	cfg = normalizeConfig(cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("trade config: %w", err)
	}

	privateKey, err := utils.ParseRSAPrivateKey([]byte(cfg.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("trade config: parse private_key: %w", err)
	}
	if err := checkKeySize(privateKey); err != nil {
		return nil, fmt.Errorf("trade config: parse private_key: %w", err)
	}
	platformPublicKey, err := utils.ParseRSAPublicKey([]byte(cfg.PlatformPublicKey))
	if err != nil {
		return nil, fmt.Errorf("trade config: parse platform_public_key: %w", err)
	}
	var publicKey *rsa.PublicKey
	if cfg.PublicKey != "" {
		publicKey, err = utils.ParseRSAPublicKey([]byte(cfg.PublicKey))
		if err != nil {
			return nil, fmt.Errorf("trade config: parse public_key: %w", err)
		}
	}

	tokenProvider := cfg.TokenProvider
	if tokenProvider == nil && cfg.AppSecret != "" {
		tokenProvider, err = newClientTokenManager(cfg)
		if err != nil {
			return nil, err
		}
	}

	apiClient, err := core.NewClient(core.ClientConfig{
		BaseURL:       cfg.BaseURL,
		HTTPClient:    cfg.HTTPClient,
		TokenProvider: tokenProvider,
		Logger:        cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		appID:             cfg.AppID,
		keyVersion:        cfg.KeyVersion,
		privateKey:        privateKey,
		publicKey:         publicKey,
		platformPublicKey: platformPublicKey,
		apiClient:         apiClient,
		tokenProvider:     tokenProvider,
		logger:            cfg.Logger,
		now:               time.Now,
		nonce:             func() (string, error) { return utils.RandomHex(nonceBytes) },
		sign:              utils.SignSHA256WithRSA,
	}, nil
}

// newClientTokenManager 使用 appid 与 app_secret 获取开放平台 client_token
func newClientTokenManager(cfg Config) (*core.TokenManager, error) {
	tokenClient, err := core.NewClient(core.ClientConfig{
		BaseURL:    cfg.BaseURL,
		HTTPClient: cfg.HTTPClient,
		Logger:     cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	return core.NewTokenManager(core.TokenManagerConfig{
		Cache:               cfg.Cache,
		CacheKey:            clientTokenCacheKeyPrefix + cfg.AppID,
		ExpireBufferSeconds: tokenExpireBuffer,
		Logger:              cfg.Logger,
		Fetcher: func(ctx context.Context) (core.TokenFetchResult, error) {
			resp, err := core.NewTypedRequest[clientTokenResponse](tokenClient).
				Path(clientTokenPath).
				Body(map[string]string{
					"client_key":    cfg.AppID,
					"client_secret": cfg.AppSecret,
					"grant_type":    "client_credential",
				}).
				Post(ctx)
			if err != nil {
				return core.TokenFetchResult{}, fmt.Errorf("request client token: %w", err)
			}
			return core.TokenFetchResult{Token: resp.Data.AccessToken, ExpiresIn: resp.Data.ExpiresIn}, nil
		},
	})
}

func (c *Client) AppID() string {
	return c.appID
}

func (c *Client) KeyVersion() string {
	return c.keyVersion
}

// PublicKey 应用公钥，未配置时为 nil
func (c *Client) PublicKey() *rsa.PublicKey {
	return c.publicKey
}

func (c *Client) AccessTokenProvider() core.AccessTokenProvider {
	return c.tokenProvider
}
