package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/ShinyNito/FunkDouyin/core/utils"
	"github.com/ShinyNito/FunkDouyin/ecpay"
	"github.com/ShinyNito/FunkDouyin/trade"
)

// LoadEnv 加载 .env 文件，文件不存在时忽略
func LoadEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
	}
	return nil
}

// NewApp 签名调试工具
func NewApp() *cli.App {
	return &cli.App{
		Name:  "douyin-sign",
		Usage: "Compute and verify Douyin payment signatures",
		Flags: []cli.Flag{LogLevelFlag},
		Commands: []*cli.Command{
			{
				Name:  "ecpay",
				Usage: "Guaranteed payment (MD5 request sign, SHA1 callback signature)",
				Subcommands: []*cli.Command{
					{
						Name:   "sign",
						Usage:  "Sign request parameters given as --param or a JSON object on --input",
						Flags:  []cli.Flag{SaltFlag, ParamFlag, InputFlag},
						Action: ecpaySign,
					},
					{
						Name:   "verify",
						Usage:  "Verify a raw callback body",
						Flags:  []cli.Flag{TokenFlag, InputFlag},
						Action: ecpayVerify,
					},
				},
			},
			{
				Name:  "trade",
				Usage: "General trade (RSA byteAuthorization, RSA callback signature)",
				Subcommands: []*cli.Command{
					{
						Name:  "authorize",
						Usage: "Build byteAuthorization for the request body on --input, used byte for byte",
						Flags: []cli.Flag{
							AppIDFlag, PrivateKeyFileFlag, PlatformPublicKeyFileFlag, KeyVersionFlag,
							TimestampFlag, NonceFlag, InputFlag,
						},
						Action: tradeAuthorize,
					},
					{
						Name:  "verify",
						Usage: "Verify a callback body on --input against Byte-* header values",
						Flags: []cli.Flag{
							AppIDFlag, PrivateKeyFileFlag, PlatformPublicKeyFileFlag, KeyVersionFlag,
							CallbackTimestampFlag, CallbackNonceFlag, SignatureFlag, InputFlag,
						},
						Action: tradeVerify,
					},
				},
			},
		},
	}
}

func readInput(c *cli.Context) ([]byte, error) {
	path := c.String(InputFlag.Name)
	if path == "" || path == "-" {
		reader := c.App.Reader
		if reader == nil {
			reader = os.Stdin
		}
		return io.ReadAll(reader)
	}
	return os.ReadFile(path)
}

func ecpaySign(c *cli.Context) error {
	params := ecpay.Params{}
	if kvs := c.StringSlice(ParamFlag.Name); len(kvs) > 0 {
		for _, kv := range kvs {
			key, value, ok := strings.Cut(kv, "=")
			if !ok || key == "" {
				return fmt.Errorf("param %q is not key=value", kv)
			}
			params[key] = value
		}
	} else {
		raw, err := readInput(c)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&params); err != nil {
			return fmt.Errorf("decode params: %w", err)
		}
	}

	_, err := fmt.Fprintln(c.App.Writer, ecpay.Sign(params, c.String(SaltFlag.Name)))
	return err
}

func ecpayVerify(c *cli.Context) error {
	raw, err := readInput(c)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if !ecpay.VerifyCallbackJSON(bytes.TrimSpace(raw), c.String(TokenFlag.Name)) {
		return cli.Exit("invalid", 1)
	}
	_, err = fmt.Fprintln(c.App.Writer, "valid")
	return err
}

func newTradeClient(c *cli.Context) (*trade.Client, error) {
	logger, err := NewLogger(c.String(LogLevelFlag.Name))
	if err != nil {
		return nil, err
	}
	cfg, err := tradeConfigFromCLI(c, logger)
	if err != nil {
		return nil, err
	}
	return trade.New(cfg)
}

func tradeAuthorize(c *cli.Context) error {
	client, err := newTradeClient(c)
	if err != nil {
		return err
	}
	body, err := readInput(c)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	timestamp := c.Int64(TimestampFlag.Name)
	nonce := c.String(NonceFlag.Name)

	var header string
	if timestamp == 0 && nonce == "" {
		header, err = client.Authorize(string(body))
	} else {
		if timestamp == 0 {
			timestamp = time.Now().Unix()
		}
		if nonce == "" {
			if nonce, err = utils.RandomHex(8); err != nil {
				return fmt.Errorf("generate nonce: %w", err)
			}
		}
		header, err = client.AuthorizeAt(string(body), timestamp, nonce)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(c.App.Writer, header)
	return err
}

func tradeVerify(c *cli.Context) error {
	client, err := newTradeClient(c)
	if err != nil {
		return err
	}
	body, err := readInput(c)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	ok := client.VerifyCallback(trade.Callback{
		Timestamp: c.String(CallbackTimestampFlag.Name),
		Nonce:     c.String(CallbackNonceFlag.Name),
		Signature: c.String(SignatureFlag.Name),
		Body:      body,
	})
	if !ok {
		return cli.Exit("invalid", 1)
	}
	_, err = fmt.Fprintln(c.App.Writer, "valid")
	return err
}
