package main

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"time"

	"github.com/coreos/go-oidc"
	"github.com/golang/glog"
	"github.com/krancour/zitadel-provisioner/sdk/authx"
	"github.com/krancour/zitadel-provisioner/sdk/management"
	"github.com/krancour/zitadel-provisioner/sdk/meta"
	"github.com/krancour/zitadel-provisioner/sdk/restmachinery"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"golang.org/x/oauth2"
	"k8s.io/apimachinery/pkg/util/duration"
)

// provisioner authenticates against Zitadel and converges it on the Config's
// Target, one step at a time.
type provisioner struct {
	config Config
	now    func() time.Time
}

func newProvisioner(config Config) *provisioner {
	return &provisioner{
		config: config,
		now:    time.Now,
	}
}

// clientCredentials is the document written to the client credentials file.
type clientCredentials struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

// Run executes a complete provisioning run. The returned Report is populated
// as far as the run got, even when an error is also returned.
func (p *provisioner) Run(ctx context.Context) (Report, error) {
	report := Report{
		RunID: uuid.NewV4().String(),
		Steps: []StepResult{},
	}
	glog.Infof("==== STARTING PROVISIONING RUN %s ====", report.RunID)
	glog.Infof("zitadel external URL: %s", p.config.ExternalURL)
	glog.Infof("zitadel internal URL: %s", p.config.InternalURL)
	glog.Infof("project name: %s", p.config.ProjectName)
	glog.Infof("app name: %s", p.config.AppName)
	glog.Infof("webapp URLs: %v", p.config.WebappURLs)

	opts := &restmachinery.APIClientOptions{
		AllowInsecureConnections: p.config.IgnoreAPICertWarnings,
		Host:                     p.config.APIHost(),
		Timeout:                  p.config.RequestTimeout,
	}

	token, err := p.authenticate(ctx, opts)
	if err != nil {
		return report, err
	}

	client := management.NewAPIClient(p.config.InternalURL, &token, opts)
	state := &runState{
		target:      p.config.Target(),
		externalURL: p.config.ExternalURL,
	}
	err = p.converge(ctx, client, state, &report)
	report.ProjectID = state.projectID
	report.ActionID = state.actionID
	report.ClientID = state.clientID
	if err != nil {
		return report, err
	}

	if p.config.ClientCredentialsFile != "" {
		if err = writeClientCredentials(
			p.config.ClientCredentialsFile,
			state,
		); err != nil {
			return report, err
		}
	}

	if p.config.VerifyDiscovery {
		p.verifyDiscovery(ctx)
	}

	glog.Infof("==== PROVISIONING RUN %s COMPLETED ====", report.RunID)
	return report, nil
}

// authenticate loads the service account key, mints an assertion and
// exchanges it for an access token.
func (p *provisioner) authenticate(
	ctx context.Context,
	opts *restmachinery.APIClientOptions,
) (oauth2.Token, error) {
	key, err := authx.LoadServiceAccountKey(p.config.ServiceAccountKeyPath)
	if err != nil {
		return oauth2.Token{}, err
	}
	glog.Infof(
		"service account key id: %s, user id: %s",
		key.KeyID,
		key.UserID,
	)

	now := p.now()
	if expiration, ok := key.Expiration(); ok {
		if key.Expired(now) {
			glog.Warningf(
				"service account key %s expired at %s",
				key.KeyID,
				expiration.UTC().Format(time.RFC3339),
			)
		} else {
			glog.Infof(
				"service account key %s expires in %s",
				key.KeyID,
				duration.ShortHumanDuration(expiration.Sub(now)),
			)
		}
	}

	assertion, err := authx.MintAssertion(key, p.config.Audience(), now)
	if err != nil {
		return oauth2.Token{}, err
	}
	if glog.V(2) {
		description, derr := authx.DescribeAssertion(assertion.Token)
		if derr != nil {
			glog.Warningf("could not decode the assertion: %s", derr)
		} else {
			glog.Infof("assertion claims: %s", description)
		}
	}

	start := time.Now()
	token, err := authx.NewTokensClient(p.config.InternalURL, opts).Exchange(
		ctx,
		assertion,
	)
	glog.V(1).Infof("token request completed in %s", time.Since(start))
	if err != nil {
		return oauth2.Token{}, err
	}
	if token.Expiry.IsZero() {
		glog.Info("access token obtained")
	} else {
		glog.Infof(
			"access token obtained; expires in %s",
			duration.ShortHumanDuration(token.Expiry.Sub(p.now())),
		)
	}
	return token, nil
}

// converge runs every step in order, recording each in the report, and stops
// at the first failure.
func (p *provisioner) converge(
	ctx context.Context,
	client management.APIClient,
	state *runState,
	report *Report,
) error {
	for _, s := range steps {
		glog.Infof("==== %s ====", s.name)
		start := time.Now()
		outcome, detail, err := s.run(ctx, client, state)
		glog.V(1).Infof("%s completed in %s", s.name, time.Since(start))
		if err != nil {
			stepErr, ok := err.(*ErrStepFailed)
			if !ok {
				stepErr = &ErrStepFailed{
					Failure: s.failure,
					Err:     err,
				}
			}
			stepErr.Step = s.name
			report.Steps = append(
				report.Steps,
				StepResult{
					Step:    s.name,
					Outcome: OutcomeFailed,
					Detail:  string(stepErr.Failure),
				},
			)
			if meta.IsUnauthorized(err) {
				glog.Error(
					"zitadel rejected the access token; it may have expired and " +
						"is never renewed during a run",
				)
			}
			glog.Errorf("%s", stepErr)
			return stepErr
		}
		glog.Infof("%s: %s", s.name, outcome)
		report.Steps = append(
			report.Steps,
			StepResult{
				Step:    s.name,
				Outcome: outcome,
				Detail:  detail,
			},
		)
	}
	return nil
}

func writeClientCredentials(path string, state *runState) error {
	if state.clientID == "" {
		glog.Warningf(
			"no client id was returned; not writing client credentials to %s",
			path,
		)
		return nil
	}
	credsBytes, err := json.MarshalIndent(
		clientCredentials{
			ClientID:     state.clientID,
			ClientSecret: state.clientSecret,
		},
		"",
		"  ",
	)
	if err != nil {
		return errors.Wrap(err, "error marshaling client credentials")
	}
	if err = ioutil.WriteFile(path, credsBytes, 0600); err != nil {
		return errors.Wrapf(err, "error writing client credentials to %s", path)
	}
	glog.Infof("client credentials written to %s", path)
	return nil
}

// verifyDiscovery checks that Zitadel serves an OIDC discovery document for
// its external URL. Problems are only ever logged.
func (p *provisioner) verifyDiscovery(ctx context.Context) {
	httpClient := restmachinery.NewBaseClient(
		p.config.Audience(),
		nil,
		&restmachinery.APIClientOptions{
			AllowInsecureConnections: p.config.IgnoreAPICertWarnings,
			Timeout:                  p.config.RequestTimeout,
		},
	).HTTPClient
	provider, err := oidc.NewProvider(
		oidc.ClientContext(ctx, httpClient),
		p.config.Audience(),
	)
	if err != nil {
		glog.Warningf("OIDC discovery failed: %s", err)
		return
	}
	endpoint := provider.Endpoint()
	glog.Infof(
		"OIDC discovery succeeded; authorization endpoint: %s, token endpoint: %s",
		endpoint.AuthURL,
		endpoint.TokenURL,
	)
}
