// Package requirement classifies the instances a generated component
// must obtain, and decides what the generated builder does when one is
// missing: synthesize it, reject the build, or permit the absence.
package requirement

import (
	"errors"
	"fmt"
	"go/token"

	"github.com/stoewer/go-strcase"

	"github.com/damianw/dagger/bindingkey"
	"github.com/damianw/dagger/typemodel"
)

// ErrInvalidArgument is wrapped by every constructor error. Callers that
// want to distinguish bad input from internal failures match on it with
// errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

// Requirement is one thing a generated component needs an instance of.
// Values are immutable; identity for deduplication is (kind, type).
type Requirement struct {
	kind Kind
	ref  typemodel.Ref

	// key is the associated binding key when one is derivable; zero
	// otherwise. Always set for bound instances.
	key bindingkey.Key

	// override short-circuits Resolve when the policy is knowable at
	// construction time, e.g. an explicitly nullable bound instance.
	override    NullPolicy
	hasOverride bool

	variableName string
}

// ForDependency builds a requirement for a component dependency. The
// null policy is left to Resolve.
func ForDependency(ref typemodel.Ref) (Requirement, error) {
	if ref.IsZero() {
		return Requirement{}, fmt.Errorf("requirement: %w: no type for dependency", ErrInvalidArgument)
	}
	return Requirement{
		kind:         Dependency,
		ref:          ref,
		variableName: SafeVariableName(ref.SimpleName()),
	}, nil
}

// ForModule builds a requirement for a component module. The null policy
// is left to Resolve.
func ForModule(ref typemodel.Ref) (Requirement, error) {
	if ref.IsZero() {
		return Requirement{}, fmt.Errorf("requirement: %w: no type for module", ErrInvalidArgument)
	}
	return Requirement{
		kind:         Module,
		ref:          ref,
		variableName: SafeVariableName(ref.SimpleName()),
	}, nil
}

// ForBoundInstance builds a requirement for an instance the caller binds
// explicitly. A nullable binding resolves to Permit without inference;
// otherwise the instance is strictly required. variableName may be empty
// to derive one from the keyed type.
func ForBoundInstance(key bindingkey.Key, nullable bool, variableName string) (Requirement, error) {
	if key.IsZero() {
		return Requirement{}, fmt.Errorf("requirement: %w: no key for bound instance", ErrInvalidArgument)
	}
	if variableName == "" {
		variableName = SafeVariableName(key.Ref().SimpleName())
	}
	req := Requirement{
		kind:         BoundInstance,
		ref:          key.Ref(),
		key:          key,
		variableName: variableName,
	}
	if nullable {
		req.override = Permit
		req.hasOverride = true
	}
	return req, nil
}

// InstanceBinding is the narrow view of a contribution binding that a
// bound-instance requirement is built from.
type InstanceBinding struct {
	Key          bindingkey.Key
	Nullable     bool
	VariableName string
	// BoundInstance reports whether the binding originated from a
	// builder bindsinstance method. Any other origin is rejected.
	BoundInstance bool
}

// ForInstanceBinding builds a bound-instance requirement from a binding.
func ForInstanceBinding(b InstanceBinding) (Requirement, error) {
	if !b.BoundInstance {
		return Requirement{}, fmt.Errorf("requirement: %w: binding for %s is not a bound instance", ErrInvalidArgument, b.Key)
	}
	return ForBoundInstance(b.Key, b.Nullable, b.VariableName)
}

// Kind returns the requirement's classification.
func (r Requirement) Kind() Kind { return r.kind }

// TypeRef returns the type the component must have an instance of.
func (r Requirement) TypeRef() typemodel.Ref { return r.ref }

// Key returns the associated binding key, if one is known.
func (r Requirement) Key() (bindingkey.Key, bool) {
	return r.key, !r.key.IsZero()
}

// OverrideNullPolicy returns the construction-time policy override, if
// one was set.
func (r Requirement) OverrideNullPolicy() (NullPolicy, bool) {
	return r.override, r.hasOverride
}

// VariableName returns an identifier for this requirement that is safe
// to use in generated code.
func (r Requirement) VariableName() string { return r.variableName }

// Equal reports whether two requirements are the same: same kind, same
// type, same key. Two requirements for the same type under different
// kinds are distinct.
func (r Requirement) Equal(other Requirement) bool {
	return r.kind == other.kind && r.ref == other.ref && r.key == other.key
}

// DedupeKey is a comparable identity for requirement deduplication in
// the enclosing graph: one requirement per (kind, type).
type DedupeKey struct {
	Kind Kind
	Ref  typemodel.Ref
}

// Dedupe returns the requirement's deduplication identity.
func (r Requirement) Dedupe() DedupeKey {
	return DedupeKey{Kind: r.kind, Ref: r.ref}
}

func (r Requirement) String() string {
	return fmt.Sprintf("%s %s", r.kind, r.ref)
}

// SafeVariableName derives a generated-code-safe identifier from a type
// simple name.
func SafeVariableName(name string) string {
	v := strcase.LowerCamelCase(name)
	if token.IsKeyword(v) {
		v += "_"
	}
	return v
}
