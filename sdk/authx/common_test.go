package authx

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testKeyID  = "170079991923474690"
	testUserID = "170079991923474689"
)

var (
	testRSAKey     *rsa.PrivateKey
	testRSAKeyOnce sync.Once
)

// getTestRSAKey returns an RSA key shared by all tests in the package. Key
// generation is slow enough that it's worth doing only once.
func getTestRSAKey(t *testing.T) *rsa.PrivateKey {
	testRSAKeyOnce.Do(func() {
		var err error
		testRSAKey, err = rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
	})
	require.NotNil(t, testRSAKey)
	return testRSAKey
}

func getTestServiceAccountKey(t *testing.T) ServiceAccountKey {
	return ServiceAccountKey{
		Type:   "serviceaccount",
		KeyID:  testKeyID,
		UserID: testUserID,
		Key: string(
			pem.EncodeToMemory(
				&pem.Block{
					Type:  "RSA PRIVATE KEY",
					Bytes: x509.MarshalPKCS1PrivateKey(getTestRSAKey(t)),
				},
			),
		),
	}
}
