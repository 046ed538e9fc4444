package schema

import "github.com/aretw0/usher/pkg/domain"

// OpenRequest asks the service to run one open cycle.
type OpenRequest struct {
	Resource string `json:"resource" yaml:"resource"`
}

// Validate checks the request before it reaches the controller.
func (r OpenRequest) Validate() error {
	return ValidateResource(r.Resource)
}

// StatusResponse reports the pending field as a tagged value. State is
// "idle" or "pending"; Resource is only set while pending.
type StatusResponse struct {
	State    string `json:"state"`
	Resource string `json:"resource,omitempty"`
}

// StatusFromRequest flattens a domain request for the wire.
func StatusFromRequest(req domain.Request) StatusResponse {
	if resource, ok := req.Resource(); ok {
		return StatusResponse{State: "pending", Resource: resource}
	}
	return StatusResponse{State: "idle"}
}

// OutcomesResponse pages the journal, newest first.
type OutcomesResponse struct {
	Outcomes []domain.Outcome `json:"outcomes"`
	Count    int              `json:"count"`
}

// ErrorResponse is the uniform error envelope of the HTTP surface.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports liveness and the library version.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
