package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultExpireBufferSeconds = 300
	// 抖音 access_token 有效期为 2 小时，接口未返回 expires_in 时使用
	defaultExpiresIn = 7200
)

type TokenFetchResult struct {
	Token     string
	ExpiresIn int
}

type TokenFetcher func(ctx context.Context) (TokenFetchResult, error)

type TokenManagerConfig struct {
	Cache               Cache
	CacheKey            string
	Fetcher             TokenFetcher
	Logger              *slog.Logger
	ExpireBufferSeconds int
}

type tokenCall struct {
	done  chan struct{}
	token string
	err   error
}

type TokenManager struct {
	cache               Cache
	cacheKey            string
	fetcher             TokenFetcher
	logger              *slog.Logger
	expireBufferSeconds int

	mu       sync.Mutex
	inflight *tokenCall
}

func NewTokenManager(cfg TokenManagerConfig) (*TokenManager, error) {
	if cfg.Cache == nil {
		return nil, fmt.Errorf("cache is required")
	}
	if cfg.CacheKey == "" {
		return nil, fmt.Errorf("cache key is required")
	}
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	expireBufferSeconds := cfg.ExpireBufferSeconds
	if expireBufferSeconds <= 0 {
		expireBufferSeconds = defaultExpireBufferSeconds
	}

	return &TokenManager{
		cache:               cfg.Cache,
		cacheKey:            cfg.CacheKey,
		fetcher:             cfg.Fetcher,
		logger:              logger,
		expireBufferSeconds: expireBufferSeconds,
	}, nil
}

func (m *TokenManager) GetToken(ctx context.Context) (string, error) {
	if token, ok := m.cache.Get(ctx, m.cacheKey); ok {
		return token, nil
	}
	return m.do(ctx, false)
}

func (m *TokenManager) RefreshToken(ctx context.Context) (string, error) {
	return m.do(ctx, true)
}

func (m *TokenManager) do(ctx context.Context, force bool) (string, error) {
	m.mu.Lock()
	if !force {
		if token, ok := m.cache.Get(ctx, m.cacheKey); ok {
			m.mu.Unlock()
			return token, nil
		}
	}

	if m.inflight != nil {
		call := m.inflight
		m.mu.Unlock()
		return waitTokenCall(ctx, call)
	}

	call := &tokenCall{done: make(chan struct{})}
	m.inflight = call
	m.mu.Unlock()

	token, err := m.fetchAndStore(ctx, force)
	call.token = token
	call.err = err
	close(call.done)

	m.mu.Lock()
	if m.inflight == call {
		m.inflight = nil
	}
	m.mu.Unlock()

	return token, err
}

func (m *TokenManager) fetchAndStore(ctx context.Context, force bool) (string, error) {
	if !force {
		if token, ok := m.cache.Get(ctx, m.cacheKey); ok {
			return token, nil
		}
	}

	result, err := m.fetcher(ctx)
	if err != nil {
		if IsCredentialError(err) {
			m.logger.ErrorContext(ctx, "access token rejected credentials", slog.String("key", m.cacheKey), slog.Any("error", err))
			return "", fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return "", err
	}
	if result.Token == "" {
		return "", fmt.Errorf("empty token from fetcher")
	}
	if result.ExpiresIn <= 0 {
		result.ExpiresIn = defaultExpiresIn
	}

	ttlSeconds := max(result.ExpiresIn-m.expireBufferSeconds, 1)
	ttl := time.Duration(ttlSeconds) * time.Second
	if err := m.cache.Set(ctx, m.cacheKey, result.Token, ttl); err != nil {
		m.logger.WarnContext(ctx, "cache token failed", slog.String("key", m.cacheKey), slog.Any("error", err))
	}

	m.logger.DebugContext(ctx, "access token refreshed",
		slog.String("key", m.cacheKey),
		slog.Int("expires_in", result.ExpiresIn),
		slog.Bool("forced", force),
	)
	return result.Token, nil
}

// Invalidate 删除缓存中的 token，下一次 GetToken 会重新获取
func (m *TokenManager) Invalidate(ctx context.Context) error {
	if err := m.cache.Delete(ctx, m.cacheKey); err != nil {
		return fmt.Errorf("delete cached token: %w", err)
	}
	m.logger.InfoContext(ctx, "access token invalidated", slog.String("key", m.cacheKey))
	return nil
}

// InvalidateIfStale 平台返回 2190002、2190008 或 28001003 时清除缓存
// 其他错误不处理。清除失败只记录日志。
func (m *TokenManager) InvalidateIfStale(ctx context.Context, err error) bool {
	if !IsTokenError(err) {
		return false
	}
	if invErr := m.Invalidate(ctx); invErr != nil {
		m.logger.WarnContext(ctx, "invalidate access token failed", slog.String("key", m.cacheKey), slog.Any("error", invErr))
	}
	return true
}

func waitTokenCall(ctx context.Context, call *tokenCall) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-call.done:
		return call.token, call.err
	}
}

var (
	_ AccessTokenProvider = (*TokenManager)(nil)
	_ TokenInvalidator    = (*TokenManager)(nil)
)
