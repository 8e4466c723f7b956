package core

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// DataEnvelope 抖音 {err_no, err_tips, data} 响应外壳
type DataEnvelope[T any] struct {
	ErrNo   int    `json:"err_no"`
	ErrTips string `json:"err_tips"`
	Data    T      `json:"data"`
}

// 不同接口的错误码、错误信息字段不统一
var (
	errorCodeFields = []string{"err_no", "errcode", "data.error_code"}
	errorMsgFields  = []string{"err_tips", "err_msg", "errmsg", "data.description"}
)

func DecodeDouyin[T any](statusCode int, body []byte) (T, error) {
	var zero T

	if len(bytes.TrimSpace(body)) == 0 {
		if statusCode >= 200 && statusCode < 300 {
			return zero, nil
		}
		return zero, fmt.Errorf("http status %d", statusCode)
	}

	if douyinErr := parseDouyinError(body); douyinErr != nil {
		return zero, douyinErr
	}

	if statusCode < 200 || statusCode >= 300 {
		return zero, fmt.Errorf("http status %d: %s", statusCode, truncateBody(body, 256))
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return zero, NewResponseParseError(body, err)
	}
	return out, nil
}

func parseDouyinError(body []byte) error {
	if !gjson.ValidBytes(body) {
		return nil
	}

	parsed := gjson.ParseBytes(body)
	for _, field := range errorCodeFields {
		code := parsed.Get(field)
		if !code.Exists() || code.Int() == 0 {
			continue
		}

		var msg string
		for _, msgField := range errorMsgFields {
			if msg = parsed.Get(msgField).String(); msg != "" {
				break
			}
		}
		return newDouyinErrorWithLog(int(code.Int()), msg, logID(parsed))
	}
	return nil
}

func logID(parsed gjson.Result) string {
	if id := parsed.Get("log_id"); id.Exists() {
		return id.String()
	}
	return parsed.Get("extra.logid").String()
}

func truncateBody(body []byte, max int) string {
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max]) + "..."
}
