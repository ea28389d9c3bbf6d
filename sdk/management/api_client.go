package management

import (
	"net/http"

	"github.com/krancour/zitadel-provisioner/sdk/restmachinery"
	"golang.org/x/oauth2"
)

// successCodes are the statuses the management API answers mutations and
// searches with.
var successCodes = []int{http.StatusOK, http.StatusCreated}

// APIClient is the root client for the management API.
type APIClient interface {
	// Projects returns a specialized client for Project management.
	Projects() ProjectsClient
	// ProjectRoles returns a specialized client for Project Role management.
	ProjectRoles() ProjectRolesClient
	// Actions returns a specialized client for Action management.
	Actions() ActionsClient
	// Flows returns a specialized client for Flow management.
	Flows() FlowsClient
	// Applications returns a specialized client for Application management.
	Applications() ApplicationsClient
}

type apiClient struct {
	projectsClient     ProjectsClient
	projectRolesClient ProjectRolesClient
	actionsClient      ActionsClient
	flowsClient        FlowsClient
	applicationsClient ApplicationsClient
}

// NewAPIClient returns a management API client that authenticates every
// request with the provided access token.
func NewAPIClient(
	apiAddress string,
	token *oauth2.Token,
	opts *restmachinery.APIClientOptions,
) APIClient {
	return &apiClient{
		projectsClient:     NewProjectsClient(apiAddress, token, opts),
		projectRolesClient: NewProjectRolesClient(apiAddress, token, opts),
		actionsClient:      NewActionsClient(apiAddress, token, opts),
		flowsClient:        NewFlowsClient(apiAddress, token, opts),
		applicationsClient: NewApplicationsClient(apiAddress, token, opts),
	}
}

func (a *apiClient) Projects() ProjectsClient {
	return a.projectsClient
}

func (a *apiClient) ProjectRoles() ProjectRolesClient {
	return a.projectRolesClient
}

func (a *apiClient) Actions() ActionsClient {
	return a.actionsClient
}

func (a *apiClient) Flows() FlowsClient {
	return a.flowsClient
}

func (a *apiClient) Applications() ApplicationsClient {
	return a.applicationsClient
}
