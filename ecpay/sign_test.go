package ecpay

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		salt   string
		want   string
	}{
		{
			name:   "排除 app_id 后按值排序",
			params: Params{"app_id": "X", "out_order_no": "123", "total_amount": "100"},
			salt:   "s3cr3t",
			want:   "dfa1127f8793d92954f2e20df0bdc5f1",
		},
		{
			name:   "数字类型与字符串等价",
			params: Params{"app_id": "X", "out_order_no": json.Number("123"), "total_amount": 100},
			salt:   "s3cr3t",
			want:   "dfa1127f8793d92954f2e20df0bdc5f1",
		},
		{
			name:   "浮点数不带多余小数位",
			params: Params{"out_order_no": 123.0, "total_amount": float32(100)},
			salt:   "s3cr3t",
			want:   "dfa1127f8793d92954f2e20df0bdc5f1",
		},
		{
			name: "全部字段被排除时只剩 salt",
			params: Params{
				"app_id":              "X",
				"thirdparty_id":       "tp",
				"sign":                "old",
				"other_settle_params": "{}",
				"cp_extra":            "",
				"notify_url":          "null",
				"subject":             "   ",
				"body":                `""`,
				"msg_page":            `"null"`,
				"store_uid":           nil,
			},
			salt: "salt",
			want: "ceb20772e0c9d240c75eb26b0e37abee",
		},
		{
			name:   "空参数",
			params: Params{},
			salt:   "s3cr3t",
			want:   "a4d80eac9ab26a4a2da04125bc2c096a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sign(tt.params, tt.salt))
		})
	}
}

func TestSign_QuoteStripping(t *testing.T) {
	quoted := Sign(Params{"subject": `"foo"`}, "salt")
	plain := Sign(Params{"subject": "foo"}, "salt")
	spaced := Sign(Params{"subject": ` " foo " `}, "salt")

	assert.Equal(t, plain, quoted)
	assert.Equal(t, plain, spaced)

	// 单个引号不满足成对条件，原样参与签名
	assert.NotEqual(t, Sign(Params{}, "salt"), Sign(Params{"subject": `"`}, "salt"))
	// 只剥一层
	assert.NotEqual(t, plain, Sign(Params{"subject": `""foo""`}, "salt"))
}

func TestSign_Deterministic(t *testing.T) {
	params := Params{
		"out_order_no": "o-1",
		"total_amount": 1990,
		"subject":      "会员",
		"body":         "月卡",
		"valid_time":   900,
		"disable_msg":  true,
		"expand":       map[string]any{"k": "v"},
	}

	first := Sign(params, "salt")
	for range 50 {
		require.Equal(t, first, Sign(params, "salt"))
	}
	assert.NotEqual(t, first, Sign(params, "other"))
}

func TestSignValueString(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{value: nil, want: "null"},
		{value: "abc", want: "abc"},
		{value: true, want: "true"},
		{value: int64(-7), want: "-7"},
		{value: uint8(9), want: "9"},
		{value: 1.5, want: "1.5"},
		{value: 0.000001, want: "0.000001"},
		{value: 1e-7, want: "1e-7"},
		{value: 1e21, want: "1e+21"},
		{value: 1.5e300, want: "1.5e+300"},
		{value: float32(2.5e-8), want: "2.5e-8"},
		{value: 1e20, want: "100000000000000000000"},
		{value: math.Copysign(0, -1), want: "0"},
		{value: math.Inf(-1), want: "-Infinity"},
		{value: json.Number("0012"), want: "0012"},
		{value: []int{1, 2}, want: "[1,2]"},
		{value: map[string]string{"url": "a&b"}, want: `{"url":"a&b"}`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, signValueString(tt.value))
	}
}

func TestToParams(t *testing.T) {
	params, err := toParams(&CreateOrderRequest{OutOrderNo: "o-1", TotalAmount: 100, Subject: "s", Body: "b", ValidTime: 60})
	require.NoError(t, err)

	assert.Equal(t, "o-1", params["out_order_no"])
	assert.Equal(t, json.Number("100"), params["total_amount"])
	assert.NotContains(t, params, "cp_extra")

	src := Params{"a": "1"}
	cloned, err := toParams(src)
	require.NoError(t, err)
	cloned["b"] = "2"
	assert.NotContains(t, src, "b")
}
