package main

import (
	"context"
	"fmt"

	"github.com/golang/glog"
	"github.com/krancour/zitadel-provisioner/sdk/management"
	"github.com/krancour/zitadel-provisioner/sdk/meta"
	"github.com/pkg/errors"
)

// Outcome describes what a successful step did.
type Outcome string

const (
	// OutcomeCreated means the step created the resource it manages.
	OutcomeCreated Outcome = "created"
	// OutcomeExists means the resource already existed and the step was a
	// no-op.
	OutcomeExists Outcome = "exists"
	// OutcomeFound means a read-only step located what it was looking for.
	OutcomeFound Outcome = "found"
	// OutcomeSkipped means the step had nothing to act on.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed is only ever recorded in a Report.
	OutcomeFailed Outcome = "failed"
)

// Failure tags the reason a run was aborted.
type Failure string

const (
	ProjectCreationFailed     Failure = "ProjectCreationFailed"
	ProjectNotFound           Failure = "ProjectNotFound"
	ProjectLookupFailed       Failure = "ProjectLookupFailed"
	RoleCreationFailed        Failure = "RoleCreationFailed"
	ActionCreationFailed      Failure = "ActionCreationFailed"
	TriggerBindingFailed      Failure = "TriggerBindingFailed"
	ApplicationCreationFailed Failure = "ApplicationCreationFailed"
)

// ErrStepFailed represents a step that could not converge. It aborts the run.
type ErrStepFailed struct {
	Step    string  `json:"step"`
	Failure Failure `json:"failure"`
	Err     error   `json:"-"`
}

func (e *ErrStepFailed) Error() string {
	return fmt.Sprintf("Step %s failed (%s): %s", e.Step, e.Failure, e.Err)
}

// Cause returns the underlying error.
func (e *ErrStepFailed) Cause() error {
	return e.Err
}

// Unwrap returns the underlying error.
func (e *ErrStepFailed) Unwrap() error {
	return e.Err
}

const (
	projectSearchLimit = 100
	grantActionName    = "addGrant"
	grantActionTimeout = "20s"
	callbackPath       = "/auth/callback"
)

// runState carries what earlier steps learned to the steps that need it.
type runState struct {
	target      Target
	externalURL string

	projectID    string
	actionID     string
	clientID     string
	clientSecret string
}

// stepFn converges one resource. On success it returns an Outcome and a short
// detail for the Report.
type stepFn func(
	ctx context.Context,
	client management.APIClient,
	state *runState,
) (Outcome, string, error)

type step struct {
	name    string
	failure Failure
	run     stepFn
}

// steps are executed strictly in order; each may depend on state recorded by
// the ones before it.
var steps = []step{
	{
		name:    "create-project",
		failure: ProjectCreationFailed,
		run:     createProject,
	},
	{
		name:    "find-project",
		failure: ProjectLookupFailed,
		run:     findProject,
	},
	{
		name:    "add-role",
		failure: RoleCreationFailed,
		run:     addRole,
	},
	{
		name:    "create-grant-action",
		failure: ActionCreationFailed,
		run:     createGrantAction,
	},
	{
		name:    "bind-trigger",
		failure: TriggerBindingFailed,
		run:     bindTrigger,
	},
	{
		name:    "create-oidc-app",
		failure: ApplicationCreationFailed,
		run:     createApplication,
	},
}

func createProject(
	ctx context.Context,
	client management.APIClient,
	state *runState,
) (Outcome, string, error) {
	_, err := client.Projects().Create(
		ctx,
		management.Project{
			Name:                   state.target.ProjectName,
			ProjectRoleAssertion:   true,
			ProjectRoleCheck:       true,
			HasProjectCheck:        true,
			PrivateLabelingSetting: management.PrivateLabelingSettingUnspecified,
		},
	)
	if meta.IsConflict(err) {
		glog.Infof(
			"project %q already exists; nothing to do",
			state.target.ProjectName,
		)
		return OutcomeExists, state.target.ProjectName, nil
	}
	if err != nil {
		return "", "", err
	}
	return OutcomeCreated, state.target.ProjectName, nil
}

func findProject(
	ctx context.Context,
	client management.APIClient,
	state *runState,
) (Outcome, string, error) {
	projects, err := client.Projects().Search(
		ctx,
		management.NewProjectsSearchByName(
			state.target.ProjectName,
			projectSearchLimit,
		),
	)
	if err != nil {
		return "", "", err
	}
	if len(projects.Result) == 0 || projects.Result[0].ID == "" {
		return "", "", &ErrStepFailed{
			Failure: ProjectNotFound,
			Err: errors.Errorf(
				"no project named %q was found",
				state.target.ProjectName,
			),
		}
	}
	state.projectID = projects.Result[0].ID
	glog.Infof("project id: %s", state.projectID)
	return OutcomeFound, state.projectID, nil
}

func addRole(
	ctx context.Context,
	client management.APIClient,
	state *runState,
) (Outcome, string, error) {
	err := client.ProjectRoles().Create(
		ctx,
		state.projectID,
		management.ProjectRole{
			RoleKey:     state.target.RoleKey,
			DisplayName: state.target.RoleDisplayName,
			Group:       state.target.RoleGroup,
		},
	)
	if meta.IsConflict(err) {
		glog.Infof("role %q already exists; nothing to do", state.target.RoleKey)
		return OutcomeExists, state.target.RoleKey, nil
	}
	if err != nil {
		return "", "", err
	}
	return OutcomeCreated, state.target.RoleKey, nil
}

func createGrantAction(
	ctx context.Context,
	client management.APIClient,
	state *runState,
) (Outcome, string, error) {
	created, err := client.Actions().Create(
		ctx,
		management.Action{
			Name:          grantActionName,
			Script:        grantScript(state.projectID, state.target.RoleKey),
			Timeout:       grantActionTimeout,
			AllowedToFail: true,
		},
	)
	if err != nil {
		return "", "", err
	}
	state.actionID = created.ID
	if state.actionID == "" {
		glog.Warning("the action was created but its id was not returned")
	} else {
		glog.Infof("action id: %s", state.actionID)
	}
	return OutcomeCreated, state.actionID, nil
}

func bindTrigger(
	ctx context.Context,
	client management.APIClient,
	state *runState,
) (Outcome, string, error) {
	if state.actionID == "" {
		glog.Warning("cannot bind the post-creation trigger; no action id")
		return OutcomeSkipped, "no action id", nil
	}
	if err := client.Flows().SetTriggerActions(
		ctx,
		management.FlowTypeInternalAuthentication,
		management.TriggerTypePostCreation,
		state.actionID,
	); err != nil {
		return "", "", err
	}
	return OutcomeCreated, state.actionID, nil
}

func createApplication(
	ctx context.Context,
	client management.APIClient,
	state *runState,
) (Outcome, string, error) {
	uris := redirectURIs(state.target.WebappURLs, state.externalURL)
	glog.V(2).Infof("redirect URIs: %v", uris)
	created, err := client.Applications().CreateOIDC(
		ctx,
		state.projectID,
		management.NewWebApplication(state.target.AppName, uris),
	)
	if err != nil {
		return "", "", err
	}
	state.clientID = created.ClientID
	state.clientSecret = created.ClientSecret
	glog.Infof(
		"application %q created with client id %s",
		state.target.AppName,
		state.clientID,
	)
	return OutcomeCreated, state.clientID, nil
}

// grantScript returns the source of an action that grants the role to every
// user it runs for.
func grantScript(projectID, roleKey string) string {
	return fmt.Sprintf(
		"function %s(ctx, api) {api.userGrants.push({projectID: \"%s\", "+
			"roles: ['%s']});}",
		grantActionName,
		projectID,
		roleKey,
	)
}

// redirectURIs returns, in order, every webapp URL followed by its callback,
// then the external URL followed by its callback. Duplicates are kept.
func redirectURIs(webappURLs []string, externalURL string) []string {
	uris := make([]string, 0, 2*len(webappURLs)+2)
	for _, u := range webappURLs {
		uris = append(uris, u, u+callbackPath)
	}
	return append(uris, externalURL, externalURL+callbackPath)
}
