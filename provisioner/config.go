package main

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/krancour/zitadel-provisioner/internal/file"
	"github.com/krancour/zitadel-provisioner/sdk/meta"
	"github.com/mitchellh/go-homedir"
)

// Config is the complete, immutable input for a single provisioning run.
type Config struct {
	// ExternalURL is the identity service's public base URL. It is the
	// audience of the assertion, the source of the Host header on every
	// request and part of the OIDC application's redirect URIs.
	ExternalURL string `envconfig:"ZITADEL_EXTERNAL_URL"`
	// InternalURL is the base URL requests are actually sent to. It may differ
	// from ExternalURL, e.g. when it bypasses a reverse proxy.
	InternalURL           string        `envconfig:"ZITADEL_INTERNAL_URL"`
	ServiceAccountKeyPath string        `envconfig:"SERVICE_ACCOUNT_KEY_PATH"`
	ProjectName           string        `envconfig:"PROJECT_NAME"`
	RoleKey               string        `envconfig:"ROLE_KEY"`
	RoleDisplayName       string        `envconfig:"ROLE_DISPLAY_NAME"`
	RoleGroup             string        `envconfig:"ROLE_GROUP"`
	AppName               string        `envconfig:"APP_NAME"`
	WebappURLs            []string      `envconfig:"WEBAPP_URLS"`
	RequestTimeout        time.Duration `envconfig:"REQUEST_TIMEOUT"`
	IgnoreAPICertWarnings bool          `envconfig:"IGNORE_API_CERT_WARNINGS"`
	// ClientCredentialsFile, if set, is where the OIDC application's client id
	// and secret are written after the application is created.
	ClientCredentialsFile string `envconfig:"CLIENT_CREDENTIALS_FILE"`
	VerifyDiscovery       bool   `envconfig:"VERIFY_DISCOVERY"`
}

// Target is the desired end state of the identity service.
type Target struct {
	ProjectName     string   `json:"projectName"`
	RoleKey         string   `json:"roleKey"`
	RoleDisplayName string   `json:"roleDisplayName"`
	RoleGroup       string   `json:"roleGroup"`
	AppName         string   `json:"appName"`
	WebappURLs      []string `json:"webappURLs"`
}

// NewConfigWithDefaults returns a Config object with default values already
// applied. Callers are then free to set custom values for the remaining fields
// and/or override default values.
func NewConfigWithDefaults() Config {
	return Config{
		ProjectName:     "MyApp",
		RoleKey:         "app-user",
		RoleDisplayName: "App User",
		RoleGroup:       "app-user-group",
		AppName:         "webapp",
		RequestTimeout:  30 * time.Second,
	}
}

// GetConfigFromEnvironment returns configuration derived from environment
// variables. The result is not yet validated.
func GetConfigFromEnvironment() (Config, error) {
	c := NewConfigWithDefaults()
	err := envconfig.Process("", &c)
	return c, err
}

// Validate normalizes the Config in place and returns a
// *meta.ErrConfiguration listing every problem found. It never touches the
// network.
func (c *Config) Validate() error {
	var problems []string

	for _, u := range []struct {
		name  string
		value string
	}{
		{name: "zitadel external URL", value: c.ExternalURL},
		{name: "zitadel internal URL", value: c.InternalURL},
	} {
		if problem := checkBaseURL(u.name, u.value); problem != "" {
			problems = append(problems, problem)
		}
	}

	if c.ServiceAccountKeyPath == "" {
		problems = append(problems, "service account key path is required")
	} else {
		path, err := homedir.Expand(c.ServiceAccountKeyPath)
		if err != nil {
			problems = append(
				problems,
				fmt.Sprintf(
					"service account key path %q could not be expanded: %s",
					c.ServiceAccountKeyPath,
					err,
				),
			)
		} else if !file.Exists(path) {
			problems = append(
				problems,
				fmt.Sprintf("service account key file not found: %s", path),
			)
		} else {
			c.ServiceAccountKeyPath = path
		}
	}

	if c.ClientCredentialsFile != "" {
		path, err := homedir.Expand(c.ClientCredentialsFile)
		if err != nil {
			problems = append(
				problems,
				fmt.Sprintf(
					"client credentials file %q could not be expanded: %s",
					c.ClientCredentialsFile,
					err,
				),
			)
		} else {
			c.ClientCredentialsFile = path
		}
	}

	webappURLs := make([]string, 0, len(c.WebappURLs))
	for _, webappURL := range c.WebappURLs {
		if webappURL = strings.TrimSpace(webappURL); webappURL != "" {
			webappURLs = append(webappURLs, webappURL)
		}
	}
	if len(webappURLs) == 0 {
		problems = append(problems, "at least one webapp URL is required")
	}
	c.WebappURLs = webappURLs

	for _, field := range []struct {
		name  string
		value string
	}{
		{name: "project name", value: c.ProjectName},
		{name: "role key", value: c.RoleKey},
		{name: "app name", value: c.AppName},
	} {
		if strings.TrimSpace(field.value) == "" {
			problems = append(problems, fmt.Sprintf("%s must not be empty", field.name))
		}
	}

	if c.RequestTimeout <= 0 {
		problems = append(
			problems,
			fmt.Sprintf("request timeout must be positive; got %s", c.RequestTimeout),
		)
	}

	if len(problems) > 0 {
		return meta.NewErrConfiguration(
			"the provisioner cannot run with the supplied settings",
			problems...,
		)
	}
	return nil
}

// Target returns the desired end state described by the Config.
func (c Config) Target() Target {
	webappURLs := make([]string, len(c.WebappURLs))
	copy(webappURLs, c.WebappURLs)
	return Target{
		ProjectName:     c.ProjectName,
		RoleKey:         c.RoleKey,
		RoleDisplayName: c.RoleDisplayName,
		RoleGroup:       c.RoleGroup,
		AppName:         c.AppName,
		WebappURLs:      webappURLs,
	}
}

// APIHost returns the host component, port included when present, of the
// external URL. Every request carries it as its Host header so the identity
// service sees its public hostname regardless of which address is dialed.
func (c Config) APIHost() string {
	u, err := url.Parse(c.ExternalURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// Audience returns the external URL without a trailing slash.
func (c Config) Audience() string {
	return strings.TrimRight(c.ExternalURL, "/")
}

func checkBaseURL(name, value string) string {
	if value == "" {
		return fmt.Sprintf("%s is required", name)
	}
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Sprintf("%s %q is not a valid URL: %s", name, value, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Sprintf(
			"%s %q must be an absolute http or https URL",
			name,
			value,
		)
	}
	return ""
}
