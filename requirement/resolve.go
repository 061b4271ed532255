package requirement

import (
	"fmt"

	"github.com/damianw/dagger/typemodel"
)

// MemberService enumerates a type's full member set: methods declared
// directly on the type plus methods inherited through embedding, with
// overrides already deduplicated (a subtype's override shadows the
// embedded version), plus static provider functions attributed to the
// type. Order is unspecified and must not matter to callers.
type MemberService interface {
	AllMembers(typemodel.Ref) []typemodel.Method
}

// InstantiabilityService answers whether generated code can make a new
// instance of a type with no caller-supplied arguments.
type InstantiabilityService interface {
	CanMakeNewInstance(typemodel.Ref) bool
}

// Services is what policy resolution consumes. *typemodel.Universe
// implements it.
type Services interface {
	MemberService
	InstantiabilityService
}

// Resolve decides the requirement's null policy. A construction-time
// override wins outright; otherwise dependencies and bound instances
// always require an instance, and modules fall through to the
// instantiability inference.
//
// Resolve panics on a Kind outside the closed set: that is a programming
// error, and guessing a policy would silently emit wrong code.
func Resolve(req Requirement, svc Services) NullPolicy {
	if policy, ok := req.OverrideNullPolicy(); ok {
		return policy
	}
	switch req.Kind() {
	case Module:
		if svc.CanMakeNewInstance(req.TypeRef()) {
			return Synthesize
		}
		if RequiresPassedInstance(req.TypeRef(), svc) {
			return Reject
		}
		return Permit
	case Dependency, BoundInstance:
		return Reject
	}
	panic(fmt.Sprintf("requirement: unknown kind %d", int(req.Kind())))
}

// RequiresPassedInstance reports whether a module type cannot be used
// unless the caller passes an instance of it.
//
// An abstract method that is not a pure binding declaration forces a
// passed instance immediately: the generator has no way to know which
// concrete implementation to use. A non-static provider method needs a
// live receiver, which forces a passed instance only if the generator
// cannot synthesize the receiver itself. The scan must visit the whole
// member set before deciding on provider methods alone, since an
// abstract non-binding method anywhere in the set trumps them. The
// result does not depend on enumeration order.
func RequiresPassedInstance(ref typemodel.Ref, svc Services) bool {
	foundBindingInstanceMethod := false
	for _, method := range svc.AllMembers(ref) {
		switch {
		case method.Abstract() && !method.HasAnyMarker(typemodel.BindingDeclarationMarkers...):
			return true
		case !method.Static() && method.HasAnyMarker(typemodel.ProviderMarkers...):
			foundBindingInstanceMethod = true
		}
	}
	if foundBindingInstanceMethod {
		return !svc.CanMakeNewInstance(ref)
	}
	return false
}
