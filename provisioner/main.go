package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/golang/glog"
	"github.com/krancour/zitadel-provisioner/internal/version"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func main() {
	err := newApp().Run(os.Args)
	glog.Flush()
	if err != nil {
		fmt.Fprintf(os.Stderr, "\n%s\n\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "zitadel-provisioner"
	app.Usage = "Converge a Zitadel instance on a project, role, role grant " +
		"action and OIDC web application"
	app.Version = fmt.Sprintf(
		"%s -- commit %s",
		version.Version(),
		version.Commit(),
	)
	app.Flags = flags
	app.Action = run
	return app
}

func run(c *cli.Context) error {
	initLogging(c.Int(flagVerbosity))

	config, err := GetConfigFromEnvironment()
	if err != nil {
		return errors.Wrap(err, "error reading configuration from environment")
	}
	applyFlags(c, &config)
	if err = config.Validate(); err != nil {
		return err
	}

	output := c.String(flagOutput)
	if output == "" {
		output = defaultOutputFormat()
	}
	if err = validateOutputFormat(output); err != nil {
		return err
	}

	report, err := newProvisioner(config).Run(c.Context)
	if perr := report.Print(c.App.Writer, output); perr != nil {
		glog.Errorf("%s", perr)
	}
	return err
}

// initLogging points glog at stderr. glog registers its settings on the
// standard library's flag set, which urfave/cli doesn't parse.
func initLogging(verbosity int) {
	_ = flag.Set("logtostderr", "true")
	_ = flag.Set("v", strconv.Itoa(verbosity))
	_ = flag.CommandLine.Parse([]string{})
}
