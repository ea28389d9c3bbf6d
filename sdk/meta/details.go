package meta

// ObjectDetails is returned by the management API alongside most mutations.
type ObjectDetails struct {
	Sequence      string `json:"sequence,omitempty"`
	CreationDate  string `json:"creationDate,omitempty"`
	ChangeDate    string `json:"changeDate,omitempty"`
	ResourceOwner string `json:"resourceOwner,omitempty"`
}

// ListQuery bounds a search. Offset is a string because the API encodes
// 64-bit integers that way.
type ListQuery struct {
	Offset string `json:"offset"`
	Limit  int    `json:"limit"`
	Asc    bool   `json:"asc"`
}

// ListDetails accompanies search results.
type ListDetails struct {
	TotalResult       string `json:"totalResult,omitempty"`
	ProcessedSequence string `json:"processedSequence,omitempty"`
	ViewTimestamp     string `json:"viewTimestamp,omitempty"`
}
