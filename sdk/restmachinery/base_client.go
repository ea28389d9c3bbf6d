package restmachinery

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/krancour/zitadel-provisioner/sdk/meta"
	"github.com/pkg/errors"
	"golang.org/x/net/context/ctxhttp"
	"golang.org/x/oauth2"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// APIClientOptions encapsulates optional API client configuration.
type APIClientOptions struct {
	// AllowInsecureConnections indicates whether SSL errors should be ignored.
	AllowInsecureConnections bool
	// Host, when non-empty, is sent as the Host header of every request. This
	// lets a client reach the API through an internal address while the API
	// still sees its public hostname.
	Host string
	// Timeout bounds each individual request. Zero means no timeout.
	Timeout time.Duration
}

// BaseClient provides "API machinery" used by all the specialized API clients.
type BaseClient struct {
	APIAddress string
	Token      *oauth2.Token
	Host       string
	HTTPClient *http.Client
}

// NewBaseClient returns a BaseClient for the API at the provided address. The
// token may be nil for clients that only ever make unauthenticated requests.
func NewBaseClient(
	apiAddress string,
	token *oauth2.Token,
	opts *APIClientOptions,
) *BaseClient {
	if opts == nil {
		opts = &APIClientOptions{}
	}
	return &BaseClient{
		APIAddress: strings.TrimSuffix(apiAddress, "/"),
		Token:      token,
		Host:       opts.Host,
		HTTPClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: opts.AllowInsecureConnections, // nolint: gosec
				},
			},
		},
	}
}

// BearerTokenAuthHeaders returns an Authorization header carrying the client's
// access token.
func (b *BaseClient) BearerTokenAuthHeaders() map[string]string {
	if b.Token == nil {
		return nil
	}
	return map[string]string{
		"Authorization": fmt.Sprintf("%s %s", b.Token.Type(), b.Token.AccessToken),
	}
}

// ExecuteRequest submits the request and, if the request carries a response
// object, unmarshals the response body into it.
func (b *BaseClient) ExecuteRequest(
	ctx context.Context,
	req OutboundRequest,
) error {
	resp, err := b.SubmitRequest(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if req.RespObj != nil {
		respBodyBytes, err := ioutil.ReadAll(resp.Body)
		if err != nil {
			return errors.Wrap(err, "error reading response body")
		}
		if len(bytes.TrimSpace(respBodyBytes)) == 0 {
			return nil
		}
		if err := json.Unmarshal(respBodyBytes, req.RespObj); err != nil {
			return errors.Wrap(err, "error unmarshaling response body")
		}
	}
	return nil
}

// SubmitRequest submits the request and returns the response if its status
// code is one the request considers successful. Callers are responsible for
// closing the response body.
func (b *BaseClient) SubmitRequest(
	ctx context.Context,
	req OutboundRequest,
) (*http.Response, error) {
	var reqBodyReader io.Reader
	var contentType string
	if req.ReqBodyObj != nil {
		switch rb := req.ReqBodyObj.(type) {
		case []byte:
			reqBodyReader = bytes.NewBuffer(rb)
			contentType = contentTypeJSON
		case url.Values:
			reqBodyReader = strings.NewReader(rb.Encode())
			contentType = contentTypeForm
		default:
			reqBodyBytes, err := json.Marshal(req.ReqBodyObj)
			if err != nil {
				return nil, errors.Wrap(err, "error marshaling request body")
			}
			reqBodyReader = bytes.NewBuffer(reqBodyBytes)
			contentType = contentTypeJSON
		}
	}

	r, err := http.NewRequest(
		req.Method,
		fmt.Sprintf("%s/%s", b.APIAddress, strings.TrimPrefix(req.Path, "/")),
		reqBodyReader,
	)
	if err != nil {
		return nil, errors.Wrapf(
			err,
			"error creating request %s %s",
			req.Method,
			req.Path,
		)
	}
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	r.Header.Set("Accept", contentTypeJSON)
	for k, v := range req.AuthHeaders {
		r.Header.Set(k, v)
	}
	if b.Host != "" {
		r.Host = b.Host
	}

	resp, err := ctxhttp.Do(ctx, b.HTTPClient, r)
	if err != nil {
		if isTimeout(err) {
			return nil, &meta.ErrNetworkTimeout{
				Method:  req.Method,
				URL:     r.URL.String(),
				Timeout: b.HTTPClient.Timeout,
			}
		}
		return nil, errors.Wrap(err, "error invoking API")
	}

	if !req.isSuccess(resp.StatusCode) {
		defer resp.Body.Close()
		bodyBytes, err := ioutil.ReadAll(resp.Body)
		if err != nil {
			return nil, errors.Wrap(err, "error reading error response body")
		}
		return nil, &meta.ErrAPIResponse{
			Method:     req.Method,
			Path:       r.URL.Path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(bodyBytes)),
		}
	}
	return resp, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
