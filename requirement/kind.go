package requirement

import "fmt"

// Kind classifies what a component requirement is.
type Kind int

const (
	// Dependency is a pre-existing instance listed in the component's
	// dependencies attribute; the component receives it from outside.
	Dependency Kind = iota

	// Module is a provider-hosting type listed in the component's
	// modules attribute; the component may need to hold an instance of
	// it to invoke its non-static provider methods.
	Module

	// BoundInstance is an object passed to a builder's bindsinstance
	// method; the caller supplies it unconditionally.
	BoundInstance
)

// IsBoundInstance reports whether k is BoundInstance.
func (k Kind) IsBoundInstance() bool { return k == BoundInstance }

// IsModule reports whether k is Module.
func (k Kind) IsModule() bool { return k == Module }

func (k Kind) String() string {
	switch k {
	case Dependency:
		return "dependency"
	case Module:
		return "module"
	case BoundInstance:
		return "bound instance"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// NullPolicy is the action a generated builder takes when no instance
// was supplied for a requirement.
type NullPolicy int

const (
	// Synthesize constructs a new instance automatically.
	Synthesize NullPolicy = iota

	// Reject fails the build.
	Reject

	// Permit lets the absent instance flow through unchanged.
	Permit
)

func (p NullPolicy) String() string {
	switch p {
	case Synthesize:
		return "synthesize"
	case Reject:
		return "reject"
	case Permit:
		return "permit"
	}
	return fmt.Sprintf("NullPolicy(%d)", int(p))
}
