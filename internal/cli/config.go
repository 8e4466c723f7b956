package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/ShinyNito/FunkDouyin/trade"
)

// NewLogger 按日志级别创建输出到 stderr 的 slog.Logger
func NewLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

// tradeConfigFromCLI 从命令行参数读取密钥文件并组装 trade.Config
func tradeConfigFromCLI(c *cli.Context, logger *slog.Logger) (trade.Config, error) {
	privateKey, err := os.ReadFile(c.String(PrivateKeyFileFlag.Name))
	if err != nil {
		return trade.Config{}, fmt.Errorf("read private key file: %w", err)
	}
	platformKey, err := os.ReadFile(c.String(PlatformPublicKeyFileFlag.Name))
	if err != nil {
		return trade.Config{}, fmt.Errorf("read platform public key file: %w", err)
	}

	return trade.Config{
		AppID:             c.String(AppIDFlag.Name),
		PrivateKey:        string(privateKey),
		PlatformPublicKey: string(platformKey),
		KeyVersion:        c.String(KeyVersionFlag.Name),
		Logger:            logger,
	}, nil
}
