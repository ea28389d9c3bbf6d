package management

import (
	"context"
	"net/http"

	"github.com/krancour/zitadel-provisioner/sdk/meta"
	"github.com/krancour/zitadel-provisioner/sdk/restmachinery"
	"golang.org/x/oauth2"
)

// PrivateLabelingSettingUnspecified leaves the Project's private labeling
// behavior at the identity service's default.
const PrivateLabelingSettingUnspecified = "PRIVATE_LABELING_SETTING_UNSPECIFIED"

// TextQueryMethodEquals matches a text field exactly.
const TextQueryMethodEquals = "TEXT_QUERY_METHOD_EQUALS"

// Project groups Roles and Applications within an organization.
type Project struct {
	Name string `json:"name"`
	// ProjectRoleAssertion includes the user's Roles in issued tokens.
	ProjectRoleAssertion bool `json:"projectRoleAssertion"`
	// ProjectRoleCheck requires a user to hold a Role on the Project to log in.
	ProjectRoleCheck bool `json:"projectRoleCheck"`
	// HasProjectCheck requires the user's organization to be granted the
	// Project to log in.
	HasProjectCheck        bool   `json:"hasProjectCheck"`
	PrivateLabelingSetting string `json:"privateLabelingSetting,omitempty"`
}

// ProjectCreated is returned by the API when a Project is created.
type ProjectCreated struct {
	ID      string              `json:"id"`
	Details *meta.ObjectDetails `json:"details,omitempty"`
}

// ProjectsSearch is a bounded search for Projects.
type ProjectsSearch struct {
	Query   meta.ListQuery `json:"query"`
	Queries []ProjectQuery `json:"queries,omitempty"`
}

// ProjectQuery is a single search criterion.
type ProjectQuery struct {
	NameQuery *ProjectNameQuery `json:"nameQuery,omitempty"`
}

// ProjectNameQuery matches Projects by name using the given method.
type ProjectNameQuery struct {
	Name   string `json:"name"`
	Method string `json:"method"`
}

// ProjectList is an ordered and bounded collection of Projects.
type ProjectList struct {
	Details *meta.ListDetails `json:"details,omitempty"`
	Result  []ProjectSummary  `json:"result,omitempty"`
}

// ProjectSummary is a single search result.
type ProjectSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state,omitempty"`
}

// NewProjectsSearchByName returns a ProjectsSearch for Projects whose name
// exactly matches the one provided, returning at most limit results in
// ascending order.
func NewProjectsSearchByName(name string, limit int) ProjectsSearch {
	return ProjectsSearch{
		Query: meta.ListQuery{
			Offset: "0",
			Limit:  limit,
			Asc:    true,
		},
		Queries: []ProjectQuery{
			{
				NameQuery: &ProjectNameQuery{
					Name:   name,
					Method: TextQueryMethodEquals,
				},
			},
		},
	}
}

// ProjectsClient is the specialized client for managing Projects.
type ProjectsClient interface {
	// Create creates a new Project. A Project with the same name that already
	// exists yields an error for which meta.IsConflict returns true.
	Create(context.Context, Project) (ProjectCreated, error)
	// Search returns a single page of Projects matching the search.
	Search(context.Context, ProjectsSearch) (ProjectList, error)
}

type projectsClient struct {
	*restmachinery.BaseClient
}

// NewProjectsClient returns a specialized client for managing Projects.
func NewProjectsClient(
	apiAddress string,
	token *oauth2.Token,
	opts *restmachinery.APIClientOptions,
) ProjectsClient {
	return &projectsClient{
		BaseClient: restmachinery.NewBaseClient(apiAddress, token, opts),
	}
}

func (p *projectsClient) Create(
	ctx context.Context,
	project Project,
) (ProjectCreated, error) {
	created := ProjectCreated{}
	return created, p.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:       http.MethodPost,
			Path:         "management/v1/projects",
			AuthHeaders:  p.BearerTokenAuthHeaders(),
			ReqBodyObj:   project,
			SuccessCodes: successCodes,
			RespObj:      &created,
		},
	)
}

func (p *projectsClient) Search(
	ctx context.Context,
	search ProjectsSearch,
) (ProjectList, error) {
	projects := ProjectList{}
	return projects, p.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:       http.MethodPost,
			Path:         "management/v1/projects/_search",
			AuthHeaders:  p.BearerTokenAuthHeaders(),
			ReqBodyObj:   search,
			SuccessCodes: successCodes,
			RespObj:      &projects,
		},
	)
}
