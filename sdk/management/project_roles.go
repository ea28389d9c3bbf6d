package management

import (
	"context"
	"fmt"
	"net/http"

	"github.com/krancour/zitadel-provisioner/sdk/restmachinery"
	"golang.org/x/oauth2"
)

// ProjectRole is a Role that may be granted to users of a Project.
type ProjectRole struct {
	RoleKey     string `json:"roleKey"`
	DisplayName string `json:"displayName,omitempty"`
	Group       string `json:"group,omitempty"`
}

// ProjectRolesClient is the specialized client for managing Project Roles.
type ProjectRolesClient interface {
	// Create adds a Role to the specified Project. A Role with the same key
	// that already exists yields an error for which meta.IsConflict returns
	// true.
	Create(ctx context.Context, projectID string, role ProjectRole) error
}

type projectRolesClient struct {
	*restmachinery.BaseClient
}

// NewProjectRolesClient returns a specialized client for managing Project
// Roles.
func NewProjectRolesClient(
	apiAddress string,
	token *oauth2.Token,
	opts *restmachinery.APIClientOptions,
) ProjectRolesClient {
	return &projectRolesClient{
		BaseClient: restmachinery.NewBaseClient(apiAddress, token, opts),
	}
}

func (p *projectRolesClient) Create(
	ctx context.Context,
	projectID string,
	role ProjectRole,
) error {
	return p.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:       http.MethodPost,
			Path:         fmt.Sprintf("management/v1/projects/%s/roles", projectID),
			AuthHeaders:  p.BearerTokenAuthHeaders(),
			ReqBodyObj:   role,
			SuccessCodes: successCodes,
		},
	)
}
