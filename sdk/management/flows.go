package management

import (
	"context"
	"fmt"
	"net/http"

	"github.com/krancour/zitadel-provisioner/sdk/restmachinery"
	"golang.org/x/oauth2"
)

// FlowType identifies a lifecycle flow of the identity service.
type FlowType string

// FlowTypeInternalAuthentication is the flow for users authenticating with
// credentials held by the identity service itself, including registration.
const FlowTypeInternalAuthentication FlowType = "3"

// TriggerType identifies a hook point within a Flow.
type TriggerType string

// TriggerTypePostCreation fires after a user has been created, i.e. after
// registration.
const TriggerTypePostCreation TriggerType = "3"

type triggerActions struct {
	ActionIDs []string `json:"actionIds"`
}

// FlowsClient is the specialized client for managing Flows.
type FlowsClient interface {
	// SetTriggerActions binds the specified Actions to a Flow's trigger,
	// replacing whatever was bound there before.
	SetTriggerActions(
		ctx context.Context,
		flowType FlowType,
		triggerType TriggerType,
		actionIDs ...string,
	) error
}

type flowsClient struct {
	*restmachinery.BaseClient
}

// NewFlowsClient returns a specialized client for managing Flows.
func NewFlowsClient(
	apiAddress string,
	token *oauth2.Token,
	opts *restmachinery.APIClientOptions,
) FlowsClient {
	return &flowsClient{
		BaseClient: restmachinery.NewBaseClient(apiAddress, token, opts),
	}
}

func (f *flowsClient) SetTriggerActions(
	ctx context.Context,
	flowType FlowType,
	triggerType TriggerType,
	actionIDs ...string,
) error {
	return f.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method: http.MethodPost,
			Path: fmt.Sprintf(
				"management/v1/flows/%s/trigger/%s",
				flowType,
				triggerType,
			),
			AuthHeaders:  f.BearerTokenAuthHeaders(),
			ReqBodyObj:   triggerActions{ActionIDs: actionIDs},
			SuccessCodes: successCodes,
		},
	)
}
