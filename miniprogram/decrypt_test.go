package miniprogram

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShinyNito/FunkDouyin/core/utils"
)

func encryptForTest(t *testing.T, v any) (sessionKey, data, iv string) {
	t.Helper()
	key := []byte("0123456789abcdef")
	ivBytes := []byte("fedcba9876543210")
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	ciphertext, err := utils.AESCBCEncrypt(raw, key, ivBytes)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(key),
		base64.StdEncoding.EncodeToString(ciphertext),
		base64.StdEncoding.EncodeToString(ivBytes)
}

func TestDecryptPhoneNumber(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:1")

	sk, data, iv := encryptForTest(t, map[string]any{
		"phoneNumber":     "+8613800000000",
		"purePhoneNumber": "13800000000",
		"countryCode":     "86",
		"watermark":       map[string]any{"appid": "appid", "timestamp": 1700000000},
	})
	phone, err := client.DecryptPhoneNumber(sk, data, iv)
	require.NoError(t, err)
	assert.Equal(t, "13800000000", phone.PurePhoneNumber)
	assert.EqualValues(t, 1700000000, phone.Watermark.Timestamp)

	sk, data, iv = encryptForTest(t, map[string]any{
		"purePhoneNumber": "13800000000",
		"watermark":       map[string]any{"appid": "other"},
	})
	_, err = client.DecryptPhoneNumber(sk, data, iv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watermark appid mismatch")

	_, err = client.DecryptPhoneNumber("###", data, iv)
	require.Error(t, err)
}

func TestDecryptUserData(t *testing.T) {
	type userInfo struct {
		NickName string `json:"nickName"`
	}
	sk, data, iv := encryptForTest(t, map[string]any{"nickName": "抖音用户"})

	got, err := DecryptUserData[userInfo](sk, data, iv)
	require.NoError(t, err)
	assert.Equal(t, "抖音用户", got.NickName)
}
