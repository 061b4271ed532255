// Package typemodel provides the type-model layer of the generator: a
// comparison-stable reference to a named Go type, a descriptor for the
// members of such a type, and a go/types backed Universe that resolves
// references to their full, override-deduplicated member sets.
package typemodel

import (
	"fmt"
	"go/types"
)

// Ref is a comparison-stable reference to a named type. The go/types
// objects it stands for are not safe to compare or to use as map keys
// across loads, so everything downstream of the loader identifies types
// by Ref instead. The zero Ref is invalid.
type Ref struct {
	pkgPath string
	name    string
}

// MakeRef builds a Ref from a package path and a type name.
func MakeRef(pkgPath, name string) Ref {
	return Ref{pkgPath: pkgPath, name: name}
}

// RefOf derives a Ref from a go/types type. Pointers are unwrapped; the
// pointee must be a named type.
func RefOf(t types.Type) (Ref, error) {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	named, ok := t.(*types.Named)
	if !ok {
		return Ref{}, fmt.Errorf("typemodel: %s is not a named type", t)
	}
	obj := named.Obj()
	pkgPath := ""
	if obj.Pkg() != nil {
		pkgPath = obj.Pkg().Path()
	}
	return Ref{pkgPath: pkgPath, name: obj.Name()}, nil
}

// IsZero reports whether r is the invalid zero reference.
func (r Ref) IsZero() bool {
	return r == Ref{}
}

// PkgPath returns the import path of the package declaring the type.
func (r Ref) PkgPath() string {
	return r.pkgPath
}

// SimpleName returns the bare type name without package qualification.
func (r Ref) SimpleName() string {
	return r.name
}

func (r Ref) String() string {
	if r.pkgPath == "" {
		return r.name
	}
	return r.pkgPath + "." + r.name
}
