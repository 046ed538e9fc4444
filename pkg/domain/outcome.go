package domain

import "time"

// Kind classifies the result of one open cycle.
type Kind string

const (
	// KindOpened means the capability reported a successful open.
	KindOpened Kind = "opened"
	// KindOpenFailed means the capability attempted the open and failed.
	KindOpenFailed Kind = "open_failed"
	// KindUnsupported means the capability declined before any attempt.
	KindUnsupported Kind = "unsupported"
)

// Valid reports whether k is one of the three defined kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindOpened, KindOpenFailed, KindUnsupported:
		return true
	}
	return false
}

// Outcome is the classified result of one open cycle. Exactly one outcome is
// produced per cycle. Failures travel as data (KindOpenFailed with Detail),
// never as errors: the controller normalizes every attempt into one of the
// three kinds and leaves the reaction to the host.
type Outcome struct {
	// Resource is the value the cycle tried to open.
	Resource string `json:"resource" yaml:"resource" mapstructure:"resource"`

	// Kind is the classification of the cycle.
	Kind Kind `json:"kind" yaml:"kind" mapstructure:"kind"`

	// Detail carries the capability's failure text for KindOpenFailed.
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty" mapstructure:"detail"`

	// At is the completion time, stamped from the controller's scheduler
	// clock so virtual-time tests stay deterministic.
	At time.Time `json:"at" yaml:"at" mapstructure:"at"`
}

// Opened reports a successful attempt.
func Opened(resource string) Outcome {
	return Outcome{Resource: resource, Kind: KindOpened}
}

// OpenFailed reports an attempt the capability could not complete.
func OpenFailed(resource string, err error) Outcome {
	o := Outcome{Resource: resource, Kind: KindOpenFailed}
	if err != nil {
		o.Detail = err.Error()
	}
	return o
}

// Unsupported reports that the capability declined to attempt at all.
func Unsupported(resource string) Outcome {
	return Outcome{Resource: resource, Kind: KindUnsupported}
}

// Succeeded reports whether the resource was actually opened.
func (o Outcome) Succeeded() bool { return o.Kind == KindOpened }
