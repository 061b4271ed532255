package typemodel

// Method describes one member of a type's full member set: a declared or
// inherited method, or a package-level provider function attributed to
// the type (modeled as a static member). Values are immutable once built
// by the Universe or a test fixture.
type Method struct {
	name       string
	abstract   bool
	static     bool
	directives []Directive
}

// NewMethod builds a member descriptor. It is exported for test fixtures
// and alternative member sources; the Universe builds its own.
func NewMethod(name string, abstract, static bool, directives ...Directive) Method {
	return Method{name: name, abstract: abstract, static: static, directives: directives}
}

// NewMarkedMethod is a convenience for fixtures: a method carrying the
// given markers with no attributes.
func NewMarkedMethod(name string, abstract, static bool, markers ...Marker) Method {
	ds := make([]Directive, len(markers))
	for i, m := range markers {
		ds[i] = Directive{Marker: m}
	}
	return NewMethod(name, abstract, static, ds...)
}

// Name returns the method name.
func (m Method) Name() string { return m.name }

// Abstract reports whether the method has no concrete implementation:
// it belongs to an interface type, or is promoted from an embedded
// interface the enclosing struct does not override.
func (m Method) Abstract() bool { return m.abstract }

// Static reports whether the member needs no receiver: a package-level
// provider function attributed to the type.
func (m Method) Static() bool { return m.static }

// HasAnyMarker reports whether the method carries at least one of the
// given markers.
func (m Method) HasAnyMarker(markers ...Marker) bool {
	return hasAnyMarker(m.directives, markers)
}

// Directives returns the parsed dagger directives on the method.
func (m Method) Directives() []Directive { return m.directives }
