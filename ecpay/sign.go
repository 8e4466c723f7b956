package ecpay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ShinyNito/FunkDouyin/core/utils"
)

// Params 待签名的请求参数
type Params map[string]any

// 不参与签名的字段
var unsignedFields = map[string]struct{}{
	"app_id":              {},
	"thirdparty_id":       {},
	"sign":                {},
	"other_settle_params": {},
}

// Sign 计算担保支付请求签名
//
// 除 app_id、thirdparty_id、sign、other_settle_params 外的字段值转为字符串并去掉首尾空白，
// 成对的外层双引号剥掉一层；空串与 "null" 丢弃。剩余的值加上 salt 按字典序排序，
// 以 & 连接后取 MD5 小写十六进制。只取值，不取字段名。
//
// 所有字段都被排除时结果等于 md5(salt)。
func Sign(params Params, salt string) string {
	values := make([]string, 0, len(params)+1)
	for key, value := range params {
		if _, skip := unsignedFields[key]; skip {
			continue
		}
		s := normalizeSignValue(signValueString(value))
		if s == "" || s == "null" {
			continue
		}
		values = append(values, s)
	}
	values = append(values, salt)
	return utils.MD5Sign("&", values...)
}

func normalizeSignValue(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 1 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// signValueString 把参数值转换为参与签名的字符串形式
func signValueString(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", v)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32:
		return formatNumber(float64(v), 32)
	case float64:
		return formatNumber(v, 64)
	case fmt.Stringer:
		return v.String()
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return fmt.Sprint(value)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// formatNumber 与前端 Number 转字符串一致：[1e-6, 1e21) 内用定点，其余用指数形式
func formatNumber(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, bitSize)
	}
	mant, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, bitSize), "e")
	return mant + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
}

// toParams 把请求结构体按 json 标签转换为 Params，数字保留原始文本
func toParams(req any) (Params, error) {
	if p, ok := req.(Params); ok {
		out := make(Params, len(p))
		for k, v := range p {
			out[k] = v
		}
		return out, nil
	}

	raw, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var params Params
	if err := dec.Decode(&params); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}
	if params == nil {
		params = Params{}
	}
	return params, nil
}
