package authx

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coreos/go-oidc"
	"github.com/krancour/zitadel-provisioner/sdk/meta"
	"github.com/krancour/zitadel-provisioner/sdk/restmachinery"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const (
	// GrantTypeJWTBearer is the OAuth2 grant type for exchanging a signed
	// assertion for an access token.
	GrantTypeJWTBearer = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	// ScopeManagementAudience adds the identity service's own API to the
	// audience of the issued access token.
	ScopeManagementAudience = "urn:zitadel:iam:org:project:id:zitadel:aud"

	tokenPath = "oauth/v2/token"
)

// ManagementScopes are the scopes requested when exchanging an assertion.
var ManagementScopes = []string{
	oidc.ScopeOpenID,
	"profile",
	ScopeManagementAudience,
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	IDToken     string `json:"id_token,omitempty"`
}

// TokensClient is the specialized client for obtaining access tokens.
type TokensClient interface {
	// Exchange trades the provided Assertion for an access token. Any response
	// other than a 200 carrying an access token yields a
	// *meta.ErrAuthenticationFailed.
	Exchange(context.Context, Assertion) (oauth2.Token, error)
}

type tokensClient struct {
	*restmachinery.BaseClient
}

// NewTokensClient returns a specialized client for obtaining access tokens.
func NewTokensClient(
	apiAddress string,
	opts *restmachinery.APIClientOptions,
) TokensClient {
	return &tokensClient{
		BaseClient: restmachinery.NewBaseClient(apiAddress, nil, opts),
	}
}

func (t *tokensClient) Exchange(
	ctx context.Context,
	assertion Assertion,
) (oauth2.Token, error) {
	resp, err := t.SubmitRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method: http.MethodPost,
			Path:   tokenPath,
			ReqBodyObj: url.Values{
				"grant_type": []string{GrantTypeJWTBearer},
				"scope":      []string{strings.Join(ManagementScopes, " ")},
				"assertion":  []string{assertion.Token},
			},
			SuccessCodes: []int{http.StatusOK},
		},
	)
	if err != nil {
		if apiErr, ok := errors.Cause(err).(*meta.ErrAPIResponse); ok {
			return oauth2.Token{}, &meta.ErrAuthenticationFailed{
				StatusCode: apiErr.StatusCode,
				Body:       apiErr.Body,
			}
		}
		return oauth2.Token{}, err
	}
	defer resp.Body.Close()
	bodyBytes, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return oauth2.Token{}, errors.Wrap(err, "error reading token response")
	}
	tokenResp := tokenResponse{}
	// A body that isn't JSON falls through to the missing token check below.
	_ = json.Unmarshal(bodyBytes, &tokenResp)
	if tokenResp.AccessToken == "" {
		return oauth2.Token{}, &meta.ErrAuthenticationFailed{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(bodyBytes)),
		}
	}
	token := oauth2.Token{
		AccessToken: tokenResp.AccessToken,
		TokenType:   tokenResp.TokenType,
	}
	if tokenResp.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(
			time.Duration(tokenResp.ExpiresIn) * time.Second,
		)
	}
	return token, nil
}
