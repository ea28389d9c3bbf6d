package management

import (
	"context"
	"net/http"

	"github.com/krancour/zitadel-provisioner/sdk/meta"
	"github.com/krancour/zitadel-provisioner/sdk/restmachinery"
	"golang.org/x/oauth2"
)

// Action is a script the identity service runs when a Flow trigger it is
// bound to fires. Name must match the name of the function the script
// defines.
type Action struct {
	Name   string `json:"name"`
	Script string `json:"script"`
	// Timeout is a duration string such as "20s".
	Timeout string `json:"timeout,omitempty"`
	// AllowedToFail lets the triggering flow continue if the script fails.
	AllowedToFail bool `json:"allowedToFail"`
}

// ActionCreated is returned by the API when an Action is created. ID may be
// empty if the API omitted it.
type ActionCreated struct {
	ID      string              `json:"id,omitempty"`
	Details *meta.ObjectDetails `json:"details,omitempty"`
}

// ActionsClient is the specialized client for managing Actions.
type ActionsClient interface {
	// Create creates a new Action. The API does not deduplicate Actions.
	Create(context.Context, Action) (ActionCreated, error)
}

type actionsClient struct {
	*restmachinery.BaseClient
}

// NewActionsClient returns a specialized client for managing Actions.
func NewActionsClient(
	apiAddress string,
	token *oauth2.Token,
	opts *restmachinery.APIClientOptions,
) ActionsClient {
	return &actionsClient{
		BaseClient: restmachinery.NewBaseClient(apiAddress, token, opts),
	}
}

func (a *actionsClient) Create(
	ctx context.Context,
	action Action,
) (ActionCreated, error) {
	created := ActionCreated{}
	return created, a.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:       http.MethodPost,
			Path:         "management/v1/actions",
			AuthHeaders:  a.BearerTokenAuthHeaders(),
			ReqBodyObj:   action,
			SuccessCodes: successCodes,
			RespObj:      &created,
		},
	)
}
