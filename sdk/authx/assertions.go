package authx

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"strings"
	"time"

	"github.com/krancour/zitadel-provisioner/sdk/meta"
	"github.com/pkg/errors"
	"golang.org/x/oauth2/jws"
	jose "gopkg.in/square/go-jose.v2"
	"gopkg.in/square/go-jose.v2/jwt"
)

const (
	// AssertionClockSkew is how far an assertion's issued-at time is set in the
	// past so that an identity service whose clock runs slightly behind still
	// accepts it.
	AssertionClockSkew = 2 * time.Minute
	// AssertionLifetime is how long after minting an assertion expires.
	AssertionLifetime = time.Hour
)

// Assertion is a signed, time-bounded claim set usable as an OAuth2 JWT-bearer
// grant. It is exchanged once for an access token and then discarded.
type Assertion struct {
	Issuer   string
	Subject  string
	Audience string
	IssuedAt time.Time
	Expiry   time.Time
	ID       string
	// Token is the compact serialization of the signed claim set.
	Token string
}

// MintAssertion builds and signs (RS256) an Assertion on behalf of the
// service account the provided key belongs to. The key's ID is carried in the
// signature header. Unusable key material yields a *meta.ErrInvalidKeyMaterial.
func MintAssertion(
	key ServiceAccountKey,
	audience string,
	now time.Time,
) (Assertion, error) {
	assertion := Assertion{
		Issuer:   key.UserID,
		Subject:  key.UserID,
		Audience: strings.TrimSuffix(audience, "/"),
		IssuedAt: now.Add(-AssertionClockSkew),
		Expiry:   now.Add(AssertionLifetime),
		ID:       fmt.Sprintf("%s-%d", key.UserID, now.Unix()),
	}

	privateKey, err := parseRSAPrivateKey(key.Key)
	if err != nil {
		return assertion, &meta.ErrInvalidKeyMaterial{
			KeyID:  key.KeyID,
			Reason: err.Error(),
		}
	}

	signer, err := jose.NewSigner(
		jose.SigningKey{
			Algorithm: jose.RS256,
			Key: jose.JSONWebKey{
				Key:   privateKey,
				KeyID: key.KeyID,
			},
		},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return assertion, &meta.ErrInvalidKeyMaterial{
			KeyID:  key.KeyID,
			Reason: err.Error(),
		}
	}

	if assertion.Token, err = jwt.Signed(signer).Claims(
		jwt.Claims{
			Issuer:   assertion.Issuer,
			Subject:  assertion.Subject,
			Audience: jwt.Audience{assertion.Audience},
			IssuedAt: jwt.NewNumericDate(assertion.IssuedAt),
			Expiry:   jwt.NewNumericDate(assertion.Expiry),
			ID:       assertion.ID,
		},
	).CompactSerialize(); err != nil {
		return assertion, &meta.ErrInvalidKeyMaterial{
			KeyID:  key.KeyID,
			Reason: err.Error(),
		}
	}
	return assertion, nil
}

// DescribeAssertion decodes, without verifying, the claims of a compact
// serialized assertion into a short human-readable form.
func DescribeAssertion(token string) (string, error) {
	claims, err := jws.Decode(token)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"iss=%s sub=%s aud=%s iat=%s exp=%s",
		claims.Iss,
		claims.Sub,
		claims.Aud,
		time.Unix(claims.Iat, 0).UTC().Format(time.RFC3339),
		time.Unix(claims.Exp, 0).UTC().Format(time.RFC3339),
	), nil
}

func parseRSAPrivateKey(keyPEM string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(keyPEM))
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, errors.Errorf(
			"%s block is neither PKCS#1 nor PKCS#8",
			block.Type,
		)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.Errorf("PKCS#8 key is %T, not an RSA key", parsed)
	}
	return key, nil
}
