package utils

import (
	"crypto"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
)

// RandomHex 生成 n 个随机字节并做十六进制编码，结果长度为 2n
func RandomHex(n int) (string, error) {
	if n < 0 {
		return "", fmt.Errorf("length must be non-negative")
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

var (
	// ErrInvalidBlockSize 无效的块大小
	ErrInvalidBlockSize = errors.New("invalid block size")
	// ErrInvalidIVSize 无效的 IV 长度
	ErrInvalidIVSize = errors.New("invalid iv size")
	// ErrInvalidPKCS7Data 无效的 PKCS7 数据
	ErrInvalidPKCS7Data = errors.New("invalid PKCS7 data")
	// ErrInvalidPKCS7Padding 无效的 PKCS7 填充
	ErrInvalidPKCS7Padding = errors.New("invalid PKCS7 padding")

	// ErrInvalidPEM PEM 解码失败
	ErrInvalidPEM = errors.New("invalid PEM block")
	// ErrNotRSAKey 密钥类型不是 RSA
	ErrNotRSAKey = errors.New("not an RSA key")
)

// DecryptUserData 解密用户敏感数据（如手机号）到目标类型。
// sessionKey: 用户会话密钥（Base64 编码）
// encryptedData: 加密数据（Base64 编码）
// iv: 初始向量（Base64 编码）
func DecryptUserData[T any](sessionKey, encryptedData, iv string) (T, error) {
	var zero T

	decrypted, err := decryptUserDataPlaintext(sessionKey, encryptedData, iv)
	if err != nil {
		return zero, err
	}

	var result T
	if err := json.Unmarshal(decrypted, &result); err != nil {
		return zero, fmt.Errorf("unmarshal json: %w", err)
	}
	return result, nil
}

func decryptUserDataPlaintext(sessionKey, encryptedData, iv string) ([]byte, error) {
	keyBytes, err := base64.StdEncoding.DecodeString(sessionKey)
	if err != nil {
		return nil, fmt.Errorf("decode session key: %w", err)
	}

	dataBytes, err := base64.StdEncoding.DecodeString(encryptedData)
	if err != nil {
		return nil, fmt.Errorf("decode encrypted data: %w", err)
	}

	ivBytes, err := base64.StdEncoding.DecodeString(iv)
	if err != nil {
		return nil, fmt.Errorf("decode iv: %w", err)
	}

	decrypted, err := AESCBCDecrypt(dataBytes, keyBytes, ivBytes)
	if err != nil {
		return nil, fmt.Errorf("aes decrypt: %w", err)
	}

	return decrypted, nil
}

// AESCBCDecrypt AES-CBC 解密
func AESCBCDecrypt(ciphertext, key, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	if len(iv) != aes.BlockSize {
		return nil, ErrInvalidIVSize
	}
	if len(ciphertext) < aes.BlockSize || len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrInvalidBlockSize
	}

	mode := cipher.NewCBCDecrypter(block, iv)
	plaintext := make([]byte, len(ciphertext))
	mode.CryptBlocks(plaintext, ciphertext)

	return PKCS7Unpad(plaintext, aes.BlockSize)
}

// AESCBCEncrypt AES-CBC 加密
func AESCBCEncrypt(plaintext, key, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	if len(iv) != aes.BlockSize {
		return nil, ErrInvalidIVSize
	}

	plaintext = PKCS7Pad(plaintext, aes.BlockSize)

	ciphertext := make([]byte, len(plaintext))
	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(ciphertext, plaintext)

	return ciphertext, nil
}

// PKCS7Pad PKCS7 填充
func PKCS7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	padText := make([]byte, padding)
	for i := range padText {
		padText[i] = byte(padding)
	}
	return append(data, padText...)
}

// PKCS7Unpad PKCS7 去填充
func PKCS7Unpad(data []byte, blockSize int) ([]byte, error) {
	length := len(data)
	if length == 0 || length%blockSize != 0 {
		return nil, ErrInvalidPKCS7Data
	}

	padding := int(data[length-1])
	if padding > blockSize || padding == 0 {
		return nil, ErrInvalidPKCS7Padding
	}

	for i := range padding {
		if data[length-1-i] != byte(padding) {
			return nil, ErrInvalidPKCS7Padding
		}
	}

	return data[:length-padding], nil
}

// ParseRSAPrivateKey 解析 PEM 编码的 RSA 私钥，支持 PKCS#1 与 PKCS#8
func ParseRSAPrivateKey(pemData []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, ErrInvalidPEM
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, ErrNotRSAKey
	}
	return rsaKey, nil
}

// ParseRSAPublicKey 解析 PEM 编码的 RSA 公钥，支持 PKIX 与 PKCS#1
func ParseRSAPublicKey(pemData []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil || len(block.Bytes) == 0 {
		return nil, ErrInvalidPEM
	}

	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return key, nil
	}

	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	rsaKey, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, ErrNotRSAKey
	}
	return rsaKey, nil
}

// SignSHA256WithRSA 对消息做 SHA256 摘要后以 RSA PKCS#1 v1.5 签名，返回标准 Base64
func SignSHA256WithRSA(key *rsa.PrivateKey, message []byte) (string, error) {
	if key == nil {
		return "", fmt.Errorf("private key is nil")
	}
	hashed := sha256.Sum256(message)
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, hashed[:])
	if err != nil {
		return "", fmt.Errorf("rsa sign: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// VerifySHA256WithRSA 校验 Base64 编码的 SHA256-RSA 签名
// 任何解码或校验失败都返回 false。
func VerifySHA256WithRSA(key *rsa.PublicKey, message []byte, signatureBase64 string) bool {
	if key == nil || signatureBase64 == "" {
		return false
	}
	sig, err := base64.StdEncoding.DecodeString(signatureBase64)
	if err != nil {
		return false
	}
	hashed := sha256.Sum256(message)
	return rsa.VerifyPKCS1v15(key, crypto.SHA256, hashed[:], sig) == nil
}
