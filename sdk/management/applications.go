package management

import (
	"context"
	"fmt"
	"net/http"

	"github.com/krancour/zitadel-provisioner/sdk/meta"
	"github.com/krancour/zitadel-provisioner/sdk/restmachinery"
	"golang.org/x/oauth2"
)

// Enumerated values used by OIDCApplication.
const (
	OIDCResponseTypeNone           = "OIDC_RESPONSE_TYPE_NONE"
	OIDCGrantTypeAuthorizationCode = "OIDC_GRANT_TYPE_AUTHORIZATION_CODE"
	OIDCAppTypeWeb                 = "OIDC_APP_TYPE_WEB"
	OIDCAuthMethodTypeBasic        = "OIDC_AUTH_METHOD_TYPE_BASIC"
	OIDCVersion1_0                 = "OIDC_VERSION_1_0"
	OIDCTokenTypeBearer            = "OIDC_TOKEN_TYPE_BEARER"
)

// OIDCApplication is an OpenID Connect client registered under a Project.
type OIDCApplication struct {
	Name                     string   `json:"name"`
	RedirectURIs             []string `json:"redirectUris"`
	ResponseTypes            []string `json:"responseTypes"`
	GrantTypes               []string `json:"grantTypes"`
	AppType                  string   `json:"appType"`
	AuthMethodType           string   `json:"authMethodType"`
	PostLogoutRedirectURIs   []string `json:"postLogoutRedirectUris"`
	Version                  string   `json:"version"`
	DevMode                  bool     `json:"devMode"`
	AccessTokenType          string   `json:"accessTokenType"`
	AccessTokenRoleAssertion bool     `json:"accessTokenRoleAssertion"`
	IDTokenRoleAssertion     bool     `json:"idTokenRoleAssertion"`
	IDTokenUserinfoAssertion bool     `json:"idTokenUserinfoAssertion"`
	// ClockSkew is a duration string such as "1s".
	ClockSkew                string   `json:"clockSkew"`
	AdditionalOrigins        []string `json:"additionalOrigins"`
	SkipNativeAppSuccessPage bool     `json:"skipNativeAppSuccessPage"`
}

// NewWebApplication returns an OIDCApplication for a confidential web client
// that uses the authorization code flow with basic client authentication and
// bearer access tokens. The same URIs are used for login and post-logout
// redirects.
func NewWebApplication(name string, redirectURIs []string) OIDCApplication {
	return OIDCApplication{
		Name:                     name,
		RedirectURIs:             redirectURIs,
		ResponseTypes:            []string{OIDCResponseTypeNone},
		GrantTypes:               []string{OIDCGrantTypeAuthorizationCode},
		AppType:                  OIDCAppTypeWeb,
		AuthMethodType:           OIDCAuthMethodTypeBasic,
		PostLogoutRedirectURIs:   redirectURIs,
		Version:                  OIDCVersion1_0,
		DevMode:                  false,
		AccessTokenType:          OIDCTokenTypeBearer,
		AccessTokenRoleAssertion: true,
		IDTokenRoleAssertion:     true,
		IDTokenUserinfoAssertion: true,
		ClockSkew:                "1s",
		AdditionalOrigins:        []string{},
		SkipNativeAppSuccessPage: true,
	}
}

// OIDCApplicationCreated is returned by the API when an OIDCApplication is
// created. ClientSecret is only ever returned at creation time.
type OIDCApplicationCreated struct {
	AppID        string              `json:"appId"`
	ClientID     string              `json:"clientId,omitempty"`
	ClientSecret string              `json:"clientSecret,omitempty"`
	Details      *meta.ObjectDetails `json:"details,omitempty"`
}

// ApplicationsClient is the specialized client for managing a Project's
// Applications.
type ApplicationsClient interface {
	// CreateOIDC creates a new OIDCApplication under the specified Project.
	CreateOIDC(
		ctx context.Context,
		projectID string,
		app OIDCApplication,
	) (OIDCApplicationCreated, error)
}

type applicationsClient struct {
	*restmachinery.BaseClient
}

// NewApplicationsClient returns a specialized client for managing a Project's
// Applications.
func NewApplicationsClient(
	apiAddress string,
	token *oauth2.Token,
	opts *restmachinery.APIClientOptions,
) ApplicationsClient {
	return &applicationsClient{
		BaseClient: restmachinery.NewBaseClient(apiAddress, token, opts),
	}
}

func (a *applicationsClient) CreateOIDC(
	ctx context.Context,
	projectID string,
	app OIDCApplication,
) (OIDCApplicationCreated, error) {
	created := OIDCApplicationCreated{}
	return created, a.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method: http.MethodPost,
			Path: fmt.Sprintf(
				"management/v1/projects/%s/apps/oidc",
				projectID,
			),
			AuthHeaders:  a.BearerTokenAuthHeaders(),
			ReqBodyObj:   app,
			SuccessCodes: successCodes,
			RespObj:      &created,
		},
	)
}
