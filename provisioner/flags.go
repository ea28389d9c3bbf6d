package main

import (
	"strings"

	"github.com/urfave/cli/v2"
)

const (
	flagAppName               = "app-name"
	flagClientCredentialsFile = "client-credentials-file"
	flagExternalURL           = "zitadel-external-url"
	flagInsecure              = "insecure"
	flagInternalURL           = "zitadel-internal-url"
	flagOutput                = "output"
	flagProjectName           = "project-name"
	flagRequestTimeout        = "request-timeout"
	flagRoleDisplayName       = "role-display-name"
	flagRoleGroup             = "role-group"
	flagRoleKey               = "role-key"
	flagServiceAccountKeyPath = "service-account-key-path"
	flagVerbosity             = "verbosity"
	flagVerifyDiscovery       = "verify-discovery"
	flagWebappURLs            = "webapp-urls"
)

// None of these carry a Value. Defaults live in NewConfigWithDefaults and a
// flag only overrides the environment when it is explicitly set.
var flags = []cli.Flag{
	&cli.StringFlag{
		Name:  flagExternalURL,
		Usage: "External URL of the Zitadel instance, e.g. https://auth.example.com",
	},
	&cli.StringFlag{
		Name:  flagInternalURL,
		Usage: "Internal URL of the Zitadel instance, e.g. http://zitadel:8080",
	},
	&cli.StringFlag{
		Name:  flagServiceAccountKeyPath,
		Usage: "Path to the service account's JSON key file",
	},
	&cli.StringFlag{
		Name:  flagProjectName,
		Usage: "Name of the project to converge (default: MyApp)",
	},
	&cli.StringFlag{
		Name:  flagRoleKey,
		Usage: "Key of the role to add to the project (default: app-user)",
	},
	&cli.StringFlag{
		Name:  flagRoleDisplayName,
		Usage: "Display name of the role (default: App User)",
	},
	&cli.StringFlag{
		Name:  flagRoleGroup,
		Usage: "Group of the role (default: app-user-group)",
	},
	&cli.StringFlag{
		Name:  flagAppName,
		Usage: "Name of the OIDC application to create (default: webapp)",
	},
	&cli.StringFlag{
		Name:  flagWebappURLs,
		Usage: "Comma-separated list of webapp URLs to allow as redirects",
	},
	&cli.DurationFlag{
		Name:  flagRequestTimeout,
		Usage: "Timeout for each request to Zitadel (default: 30s)",
	},
	&cli.BoolFlag{
		Name:    flagInsecure,
		Aliases: []string{"k"},
		Usage:   "Allow insecure connections to Zitadel when using TLS",
	},
	&cli.StringFlag{
		Name: flagClientCredentialsFile,
		Usage: "If set, write the OIDC application's client id and secret to " +
			"this file",
	},
	&cli.BoolFlag{
		Name: flagVerifyDiscovery,
		Usage: "After provisioning, check that Zitadel's OIDC discovery document " +
			"is served at the external URL",
	},
	&cli.StringFlag{
		Name:    flagOutput,
		Aliases: []string{"o"},
		Usage: "Print the run report in the specified format; supported " +
			"formats: table, yaml, json (default: table on a terminal, json " +
			"otherwise)",
	},
	// No short alias; -v belongs to --version.
	&cli.IntFlag{
		Name:  flagVerbosity,
		Usage: "Log verbosity; 1 adds timings, 2 adds payloads",
	},
}

// applyFlags overrides config with every flag that was explicitly set.
func applyFlags(c *cli.Context, config *Config) {
	stringFlags := map[string]*string{
		flagExternalURL:           &config.ExternalURL,
		flagInternalURL:           &config.InternalURL,
		flagServiceAccountKeyPath: &config.ServiceAccountKeyPath,
		flagProjectName:           &config.ProjectName,
		flagRoleKey:               &config.RoleKey,
		flagRoleDisplayName:       &config.RoleDisplayName,
		flagRoleGroup:             &config.RoleGroup,
		flagAppName:               &config.AppName,
		flagClientCredentialsFile: &config.ClientCredentialsFile,
	}
	for name, field := range stringFlags {
		if c.IsSet(name) {
			*field = c.String(name)
		}
	}
	if c.IsSet(flagWebappURLs) {
		config.WebappURLs = strings.Split(c.String(flagWebappURLs), ",")
	}
	if c.IsSet(flagRequestTimeout) {
		config.RequestTimeout = c.Duration(flagRequestTimeout)
	}
	if c.IsSet(flagInsecure) {
		config.IgnoreAPICertWarnings = c.Bool(flagInsecure)
	}
	if c.IsSet(flagVerifyDiscovery) {
		config.VerifyDiscovery = c.Bool(flagVerifyDiscovery)
	}
}
