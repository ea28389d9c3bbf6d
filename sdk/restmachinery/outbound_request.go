package restmachinery

// OutboundRequest models an outbound API call.
type OutboundRequest struct {
	Method      string
	Path        string
	AuthHeaders map[string]string
	// ReqBodyObj is sent as-is when it is a []byte, form-encoded when it is a
	// url.Values and JSON-encoded otherwise.
	ReqBodyObj interface{}
	// SuccessCodes defaults to 200 only.
	SuccessCodes []int
	RespObj      interface{}
}

func (o OutboundRequest) isSuccess(statusCode int) bool {
	if len(o.SuccessCodes) == 0 {
		return statusCode == 200
	}
	for _, code := range o.SuccessCodes {
		if statusCode == code {
			return true
		}
	}
	return false
}
