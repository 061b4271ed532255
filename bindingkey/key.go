// Package bindingkey identifies bindings in the dependency graph. A key
// is a named type plus an optional qualifier distinguishing multiple
// bindings of the same type.
package bindingkey

import "github.com/damianw/dagger/typemodel"

// Key identifies one binding. Keys are comparable and safe for use as
// map keys; deduplication across the graph relies on that.
type Key struct {
	ref       typemodel.Ref
	qualifier string
}

// New builds an unqualified key for a type.
func New(ref typemodel.Ref) Key {
	return Key{ref: ref}
}

// Qualified builds a key distinguished by a qualifier.
func Qualified(ref typemodel.Ref, qualifier string) Key {
	return Key{ref: ref, qualifier: qualifier}
}

// Ref returns the keyed type.
func (k Key) Ref() typemodel.Ref { return k.ref }

// Qualifier returns the qualifier, or "" for unqualified keys.
func (k Key) Qualifier() string { return k.qualifier }

// IsZero reports whether k is the invalid zero key.
func (k Key) IsZero() bool { return k == Key{} }

func (k Key) String() string {
	if k.qualifier == "" {
		return k.ref.String()
	}
	return "@" + k.qualifier + " " + k.ref.String()
}
