package management

import (
	"crypto/tls"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"testing"

	"github.com/krancour/zitadel-provisioner/sdk/restmachinery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const (
	testAPIAddress          = "localhost:8080"
	testAccessToken         = "11235813213455"
	testClientAllowInsecure = true
	testHost                = "auth.example.com"
	testProjectID           = "170079991923474689"
)

var testToken = &oauth2.Token{AccessToken: testAccessToken}

var testOpts = &restmachinery.APIClientOptions{
	AllowInsecureConnections: testClientAllowInsecure,
	Host:                     testHost,
}

func requireBaseClient(t *testing.T, baseClient *restmachinery.BaseClient) {
	require.Equal(t, testAPIAddress, baseClient.APIAddress)
	require.Equal(t, testToken, baseClient.Token)
	require.Equal(t, testHost, baseClient.Host)
	require.IsType(t, &http.Client{}, baseClient.HTTPClient)
	require.IsType(t, &http.Transport{}, baseClient.HTTPClient.Transport)
	require.IsType(
		t,
		&tls.Config{},
		baseClient.HTTPClient.Transport.(*http.Transport).TLSClientConfig,
	)
	require.Equal(
		t,
		testClientAllowInsecure,
		baseClient.HTTPClient.Transport.(*http.Transport).TLSClientConfig.InsecureSkipVerify, // nolint: lll
	)
}

// assertAuthenticatedJSONRequest checks what every management API
// request must carry and unmarshals its body into bodyObj.
func assertAuthenticatedJSONRequest(
	t *testing.T,
	r *http.Request,
	method string,
	path string,
	bodyObj interface{},
) {
	assert.Equal(t, method, r.Method)
	assert.Equal(t, path, r.URL.Path)
	assert.Equal(t, testHost, r.Host)
	assert.Equal(t, "Bearer "+testAccessToken, r.Header.Get("Authorization"))
	assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
	defer r.Body.Close()
	bodyBytes, err := ioutil.ReadAll(r.Body)
	assert.NoError(t, err)
	assert.NoError(t, json.Unmarshal(bodyBytes, bodyObj))
}
