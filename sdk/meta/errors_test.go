package meta

import (
	"net/http"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const testErrorReason = "i don't have to answer to you"

var testErrorDetails = []string{"the", "devil", "is", "in", "the", "details"}

func TestErrConfiguration(t *testing.T) {
	testCases := []struct {
		name       string
		err        *ErrConfiguration
		assertions func(t *testing.T, err *ErrConfiguration)
	}{
		{
			name: "without details",
			err:  NewErrConfiguration(testErrorReason),
			assertions: func(t *testing.T, err *ErrConfiguration) {
				require.Contains(t, err.Error(), testErrorReason)
				require.NotContains(t, err.Error(), "\n")
			},
		},
		{
			name: "with details",
			err:  NewErrConfiguration(testErrorReason, testErrorDetails...),
			assertions: func(t *testing.T, err *ErrConfiguration) {
				require.Contains(t, err.Error(), testErrorReason)
				for _, detail := range err.Details {
					require.Contains(t, err.Error(), detail)
				}
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			testCase.assertions(t, testCase.err)
		})
	}
}

func TestErrInvalidKeyMaterial(t *testing.T) {
	err := &ErrInvalidKeyMaterial{Reason: testErrorReason}
	require.Contains(t, err.Error(), testErrorReason)
	err.KeyID = "42"
	require.Contains(t, err.Error(), `"42"`)
}

func TestErrNetworkTimeout(t *testing.T) {
	err := &ErrNetworkTimeout{
		Method: http.MethodPost,
		URL:    "http://zitadel:8080/oauth/v2/token",
	}
	require.Contains(t, err.Error(), "timed out")
	require.Contains(t, err.Error(), err.URL)
	err.Timeout = 30 * time.Second
	require.Contains(t, err.Error(), "30s")
}

func TestErrAuthenticationFailed(t *testing.T) {
	err := &ErrAuthenticationFailed{
		StatusCode: http.StatusBadRequest,
		Body:       `{"error":"invalid_grant"}`,
	}
	require.Contains(t, err.Error(), "400")
	require.Contains(t, err.Error(), err.Body)
}

func TestErrAPIResponse(t *testing.T) {
	err := &ErrAPIResponse{
		Method:     http.MethodPost,
		Path:       "/management/v1/projects",
		StatusCode: http.StatusInternalServerError,
		Body:       testErrorReason,
	}
	require.Contains(t, err.Error(), "500")
	require.Contains(t, err.Error(), testErrorReason)
	require.NotContains(t, err.Error(), "expired")
	err.StatusCode = http.StatusUnauthorized
	require.Contains(t, err.Error(), "expired")
}

func TestIsConflictAndIsUnauthorized(t *testing.T) {
	conflict := &ErrAPIResponse{StatusCode: http.StatusConflict}
	unauthorized := &ErrAPIResponse{StatusCode: http.StatusUnauthorized}
	require.True(t, IsConflict(conflict))
	require.True(t, IsConflict(errors.Wrap(conflict, "wrapped")))
	require.False(t, IsConflict(unauthorized))
	require.False(t, IsConflict(errors.New("something else")))
	require.True(t, IsUnauthorized(unauthorized))
	require.False(t, IsUnauthorized(conflict))
}
