package typemodel

import (
	"go/ast"
	"strings"
)

// Marker is a recognized dagger directive name, the part after the
// "//dagger:" prefix in a directive comment.
type Marker string

const (
	// MarkerProvides marks a method or attributed package function whose
	// return value contributes a binding.
	MarkerProvides Marker = "provides"
	// MarkerProduces is the asynchronous flavor of MarkerProvides.
	MarkerProduces Marker = "produces"

	// MarkerBinds marks an abstract method that delegates one binding to
	// another; the framework synthesizes its behavior.
	MarkerBinds Marker = "binds"
	// MarkerMultibinds marks an abstract method declaring a multibound
	// collection.
	MarkerMultibinds Marker = "multibinds"
	// MarkerBindsOptional marks an abstract method declaring an optional
	// binding.
	MarkerBindsOptional Marker = "bindsoptional"

	// MarkerComponent marks an interface as a component declaration.
	MarkerComponent Marker = "component"
	// MarkerBindsInstance marks a builder method whose argument is bound
	// directly into the graph.
	MarkerBindsInstance Marker = "bindsinstance"
)

// ProviderMarkers are the markers identifying methods that produce
// bindings and need a live receiver unless static.
var ProviderMarkers = []Marker{MarkerProvides, MarkerProduces}

// BindingDeclarationMarkers are the markers identifying abstract methods
// that are pure binding declarations rather than methods needing a real
// implementation.
var BindingDeclarationMarkers = []Marker{MarkerBinds, MarkerMultibinds, MarkerBindsOptional}

const directivePrefix = "//dagger:"

// Directive is one parsed "//dagger:name key=value ..." comment line.
type Directive struct {
	Marker Marker
	attrs  map[string]string
}

// Attr returns the value of the named attribute and whether it was
// present. Flag attributes without "=value" report an empty value.
func (d Directive) Attr(name string) (string, bool) {
	v, ok := d.attrs[name]
	return v, ok
}

// AttrList returns a comma-separated attribute split into its elements,
// or nil if the attribute is absent.
func (d Directive) AttrList(name string) []string {
	v, ok := d.attrs[name]
	if !ok || v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// parseDirectives extracts dagger directives from a doc comment group.
// Non-directive comment lines are ignored. Directive comments follow the
// Go convention for tool directives: no space after "//".
func parseDirectives(doc *ast.CommentGroup) []Directive {
	if doc == nil {
		return nil
	}
	var out []Directive
	for _, c := range doc.List {
		text, ok := strings.CutPrefix(c.Text, directivePrefix)
		if !ok {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		d := Directive{Marker: Marker(fields[0]), attrs: make(map[string]string)}
		for _, field := range fields[1:] {
			key, value, _ := strings.Cut(field, "=")
			d.attrs[key] = value
		}
		out = append(out, d)
	}
	return out
}

// hasAnyMarker reports whether any directive in ds carries one of the
// given markers.
func hasAnyMarker(ds []Directive, markers []Marker) bool {
	for _, d := range ds {
		for _, m := range markers {
			if d.Marker == m {
				return true
			}
		}
	}
	return false
}
