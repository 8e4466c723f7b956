package trade

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type testKeySet struct {
	merchant *rsa.PrivateKey
	platform *rsa.PrivateKey
	other    *rsa.PrivateKey
}

// 每个测试二进制只生成一次
var testKeys = sync.OnceValue(func() testKeySet {
	gen := func() *rsa.PrivateKey {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		return key
	}
	return testKeySet{merchant: gen(), platform: gen(), other: gen()}
})

var smallKey = sync.OnceValue(func() *rsa.PrivateKey {
	key, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		panic(err)
	}
	return key
})

func privatePEM(t *testing.T, key *rsa.PrivateKey) string {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

func publicPEM(t *testing.T, key *rsa.PublicKey) string {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func testConfig(t *testing.T) Config {
	t.Helper()
	keys := testKeys()
	return Config{
		AppID:             "tt-app",
		PrivateKey:        privatePEM(t, keys.merchant),
		PublicKey:         publicPEM(t, &keys.merchant.PublicKey),
		PlatformPublicKey: publicPEM(t, &keys.platform.PublicKey),
		KeyVersion:        "1",
	}
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(testConfig(t))
	require.NoError(t, err)
	return client
}
