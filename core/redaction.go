package core

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

const redactedValue = "***"

var sensitiveKeys = map[string]struct{}{
	"access_token":       {},
	"access-token":       {},
	"anonymous_code":     {},
	"appsecret":          {},
	"app_secret":         {},
	"authorization":      {},
	"byte-authorization": {},
	"client_secret":      {},
	"code":               {},
	"refresh_token":      {},
	"salt":               {},
	"secret":             {},
	"session_key":        {},
	"token":              {},
	"x-token":            {},
}

// RedactURLQuery 脱敏 URL 查询参数中的敏感字段。
func RedactURLQuery(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.RawQuery == "" {
		return rawURL
	}

	query := parsed.Query()
	for key, values := range query {
		if !isSensitiveKey(key) {
			continue
		}
		for i := range values {
			values[i] = redactedValue
		}
		query[key] = values
	}

	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// RedactHeader 脱敏请求头，返回拷贝。
func RedactHeader(header http.Header) http.Header {
	out := header.Clone()
	for key := range out {
		if isSensitiveKey(key) {
			out[key] = []string{redactedValue}
		}
	}
	return out
}

// RedactJSONBody 脱敏 JSON 对象顶层的敏感字段。
// 非 JSON 对象原样返回。
func RedactJSONBody(body []byte) []byte {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return body
	}

	redacted := false
	for key := range fields {
		if isSensitiveKey(key) {
			fields[key] = json.RawMessage(`"` + redactedValue + `"`)
			redacted = true
		}
	}
	if !redacted {
		return body
	}

	out, err := json.Marshal(fields)
	if err != nil {
		return body
	}
	return out
}

func isSensitiveKey(key string) bool {
	_, exists := sensitiveKeys[strings.ToLower(key)]
	return exists
}
