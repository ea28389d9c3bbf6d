package authx

import (
	"encoding/json"
	"io/ioutil"
	"time"

	"github.com/krancour/zitadel-provisioner/sdk/meta"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

const serviceAccountKeySchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["type", "keyId", "userId", "key"],
	"properties": {
		"type": {"type": "string", "minLength": 1},
		"keyId": {"type": "string", "minLength": 1},
		"userId": {"type": "string", "minLength": 1},
		"key": {"type": "string", "minLength": 1},
		"expirationDate": {"type": "string"}
	}
}`

var serviceAccountKeySchemaLoader = gojsonschema.NewStringLoader(
	serviceAccountKeySchema,
)

// ServiceAccountKey is the credential record the identity service issues for
// a machine user. Key holds PEM-encoded private key material.
type ServiceAccountKey struct {
	Type           string `json:"type"`
	KeyID          string `json:"keyId"`
	UserID         string `json:"userId"`
	Key            string `json:"key"`
	ExpirationDate string `json:"expirationDate,omitempty"`
}

// Expiration returns the key's parsed expiration date. The second return value
// is false if the key carries no expiration date or it cannot be parsed.
func (s ServiceAccountKey) Expiration() (time.Time, bool) {
	if s.ExpirationDate == "" {
		return time.Time{}, false
	}
	expiration, err := time.Parse(time.RFC3339, s.ExpirationDate)
	if err != nil {
		return time.Time{}, false
	}
	return expiration, true
}

// Expired returns true if the key carries an expiration date that is not after
// the provided time.
func (s ServiceAccountKey) Expired(now time.Time) bool {
	expiration, ok := s.Expiration()
	return ok && !expiration.After(now)
}

// LoadServiceAccountKey reads and validates a service account key file.
func LoadServiceAccountKey(path string) (ServiceAccountKey, error) {
	keyBytes, err := ioutil.ReadFile(path)
	if err != nil {
		return ServiceAccountKey{}, errors.Wrapf(
			err,
			"error reading service account key file %s",
			path,
		)
	}
	return ParseServiceAccountKey(keyBytes)
}

// ParseServiceAccountKey validates the provided JSON document and unmarshals
// it. Invalid documents yield a *meta.ErrConfiguration.
func ParseServiceAccountKey(keyBytes []byte) (ServiceAccountKey, error) {
	key := ServiceAccountKey{}
	result, err := gojsonschema.Validate(
		serviceAccountKeySchemaLoader,
		gojsonschema.NewBytesLoader(keyBytes),
	)
	if err != nil {
		// As long as the schema itself is valid, the document wasn't valid JSON.
		return key, meta.NewErrConfiguration(
			"service account key is not a valid JSON document",
			err.Error(),
		)
	}
	if !result.Valid() {
		details := make([]string, len(result.Errors()))
		for i, verr := range result.Errors() {
			details[i] = verr.String()
		}
		return key, meta.NewErrConfiguration(
			"service account key failed validation",
			details...,
		)
	}
	if err := json.Unmarshal(keyBytes, &key); err != nil {
		return key, errors.Wrap(err, "error unmarshaling service account key")
	}
	return key, nil
}
