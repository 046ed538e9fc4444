package domain

import "encoding/json"

// Request models the pending-resource field of a host application as an
// explicit tagged state: either Idle (nothing to open) or Pending with the
// resource that should be opened now.
//
// The zero value is Idle. Requests are immutable values; hosts replace the
// field rather than mutate it. A non-idle Request signals "open this now";
// it is set by host logic and reset to Idle exclusively by the reducer layer
// installed with Attach, upon receipt of any outcome.
type Request struct {
	resource string
	pending  bool
}

// Idle returns the empty request state.
func Idle() Request { return Request{} }

// Pending returns a request for the given resource.
// A blank resource cannot be pending: Pending("") is Idle.
func Pending(resource string) Request {
	if resource == "" {
		return Request{}
	}
	return Request{resource: resource, pending: true}
}

// IsPending reports whether a resource is waiting to be opened.
func (r Request) IsPending() bool { return r.pending }

// Resource returns the pending resource. The second value is false when the
// request is Idle.
func (r Request) Resource() (string, bool) {
	return r.resource, r.pending
}

// String renders the request for logs: "idle" or "pending(<resource>)".
func (r Request) String() string {
	if !r.pending {
		return "idle"
	}
	return "pending(" + r.resource + ")"
}

type requestJSON struct {
	Pending  bool   `json:"pending"`
	Resource string `json:"resource,omitempty"`
}

// MarshalJSON serializes the request as {"pending": bool, "resource": string}.
func (r Request) MarshalJSON() ([]byte, error) {
	return json.Marshal(requestJSON{Pending: r.pending, Resource: r.resource})
}

// UnmarshalJSON restores a request, normalizing blank resources to Idle.
func (r *Request) UnmarshalJSON(data []byte) error {
	var raw requestJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.Pending {
		*r = Idle()
		return nil
	}
	*r = Pending(raw.Resource)
	return nil
}
