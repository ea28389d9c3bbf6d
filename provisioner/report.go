package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/gosuri/uitable"
	"github.com/krancour/zitadel-provisioner/sdk/meta"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh/terminal"
)

const (
	outputFormatTable = "table"
	outputFormatYAML  = "yaml"
	outputFormatJSON  = "json"
)

// StepResult records what a single step did.
type StepResult struct {
	Step    string  `json:"step"`
	Outcome Outcome `json:"outcome"`
	Detail  string  `json:"detail,omitempty"`
}

// Report summarizes a provisioning run. A failed run's Report ends with the
// step that failed.
type Report struct {
	RunID     string       `json:"runID"`
	ProjectID string       `json:"projectID,omitempty"`
	ActionID  string       `json:"actionID,omitempty"`
	ClientID  string       `json:"clientID,omitempty"`
	Steps     []StepResult `json:"steps"`
}

// defaultOutputFormat is a table for humans and JSON for everything else.
func defaultOutputFormat() string {
	if terminal.IsTerminal(int(os.Stdout.Fd())) {
		return outputFormatTable
	}
	return outputFormatJSON
}

func validateOutputFormat(format string) error {
	switch strings.ToLower(format) {
	case outputFormatTable, outputFormatYAML, outputFormatJSON:
		return nil
	}
	return meta.NewErrConfiguration(
		fmt.Sprintf("unsupported output format %q", format),
		"supported formats are table, yaml and json",
	)
}

// Print writes the Report to w in the specified format.
func (r Report) Print(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case outputFormatTable:
		table := uitable.New()
		table.AddRow("RUN", r.RunID)
		table.AddRow("PROJECT ID", r.ProjectID)
		table.AddRow("ACTION ID", r.ActionID)
		table.AddRow("CLIENT ID", r.ClientID)
		fmt.Fprintln(w, table)
		fmt.Fprintln(w)

		table = uitable.New()
		table.AddRow("STEP", "OUTCOME", "DETAIL")
		for _, result := range r.Steps {
			table.AddRow(result.Step, result.Outcome, result.Detail)
		}
		fmt.Fprintln(w, table)

	case outputFormatYAML:
		yamlBytes, err := yaml.Marshal(r)
		if err != nil {
			return errors.Wrap(err, "error formatting run report")
		}
		fmt.Fprint(w, string(yamlBytes))

	case outputFormatJSON:
		prettyJSON, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return errors.Wrap(err, "error formatting run report")
		}
		fmt.Fprintln(w, string(prettyJSON))

	default:
		return validateOutputFormat(format)
	}
	return nil
}
