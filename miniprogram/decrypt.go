package miniprogram

import (
	"fmt"

	"github.com/ShinyNito/FunkDouyin/core/utils"
)

// Watermark 敏感数据水印
type Watermark struct {
	AppID     string `json:"appid"`
	Timestamp int64  `json:"timestamp"`
}

// PhoneNumber tt.getPhoneNumber 解密后的手机号
type PhoneNumber struct {
	PhoneNumber     string    `json:"phoneNumber"`
	PurePhoneNumber string    `json:"purePhoneNumber"`
	CountryCode     string    `json:"countryCode"`
	Watermark       Watermark `json:"watermark"`
}

// DecryptUserData 使用 session_key 解密 tt.getUserInfo 等接口返回的 encryptedData
func DecryptUserData[T any](sessionKey, encryptedData, iv string) (T, error) {
	return utils.DecryptUserData[T](sessionKey, encryptedData, iv)
}

// DecryptPhoneNumber 解密手机号并校验水印中的 appid
func (c *Client) DecryptPhoneNumber(sessionKey, encryptedData, iv string) (*PhoneNumber, error) {
	phone, err := utils.DecryptUserData[PhoneNumber](sessionKey, encryptedData, iv)
	if err != nil {
		return nil, fmt.Errorf("decrypt phone number: %w", err)
	}
	if phone.Watermark.AppID != c.cfg.AppID {
		return nil, fmt.Errorf("decrypt phone number: watermark appid mismatch")
	}
	return &phone, nil
}
