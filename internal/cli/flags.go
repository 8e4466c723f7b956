package cli

import "github.com/urfave/cli/v2"

var (
	LogLevelFlag = &cli.StringFlag{
		Name:    "log-level",
		Value:   "info",
		Usage:   "Log level (debug, info, warn, error)",
		EnvVars: []string{"DOUYIN_LOG_LEVEL"},
	}

	AppIDFlag = &cli.StringFlag{
		Name:    "app-id",
		Usage:   "Mini-app appid",
		EnvVars: []string{"DOUYIN_APP_ID"},
	}

	SaltFlag = &cli.StringFlag{
		Name:     "salt",
		Usage:    "Guaranteed-payment signing salt",
		EnvVars:  []string{"DOUYIN_ECPAY_SALT"},
		Required: true,
	}

	TokenFlag = &cli.StringFlag{
		Name:     "token",
		Usage:    "Guaranteed-payment callback token",
		EnvVars:  []string{"DOUYIN_ECPAY_TOKEN"},
		Required: true,
	}

	ParamFlag = &cli.StringSliceFlag{
		Name:  "param",
		Usage: "Request parameter as key=value, repeatable",
	}

	InputFlag = &cli.StringFlag{
		Name:  "input",
		Usage: "File holding the JSON payload, - for stdin",
		Value: "-",
	}

	PrivateKeyFileFlag = &cli.StringFlag{
		Name:     "private-key-file",
		Usage:    "Path to the app RSA private key PEM file",
		EnvVars:  []string{"DOUYIN_TRADE_PRIVATE_KEY_FILE"},
		Required: true,
	}

	PlatformPublicKeyFileFlag = &cli.StringFlag{
		Name:     "platform-public-key-file",
		Usage:    "Path to the platform RSA public key PEM file",
		EnvVars:  []string{"DOUYIN_TRADE_PLATFORM_PUBLIC_KEY_FILE"},
		Required: true,
	}

	KeyVersionFlag = &cli.StringFlag{
		Name:    "key-version",
		Usage:   "Key version registered on the open platform",
		Value:   "1",
		EnvVars: []string{"DOUYIN_TRADE_KEY_VERSION"},
	}

	TimestampFlag = &cli.Int64Flag{
		Name:  "timestamp",
		Usage: "Unix timestamp in seconds, defaults to now",
	}

	NonceFlag = &cli.StringFlag{
		Name:  "nonce",
		Usage: "Nonce string, random when empty",
	}

	CallbackNonceFlag = &cli.StringFlag{
		Name:     "nonce",
		Usage:    "Value of the Byte-Nonce-Str header",
		Required: true,
	}

	CallbackTimestampFlag = &cli.StringFlag{
		Name:     "timestamp",
		Usage:    "Value of the Byte-Timestamp header",
		Required: true,
	}

	SignatureFlag = &cli.StringFlag{
		Name:     "signature",
		Usage:    "Base64 signature from the Byte-Signature header",
		Required: true,
	}
)
