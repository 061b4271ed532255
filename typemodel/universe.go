package typemodel

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"strings"
)

// Package pairs a type-checked package with its parsed syntax. The
// syntax is what carries dagger directives; the types are what carry the
// member structure.
type Package struct {
	Types  *types.Package
	Syntax []*ast.File
}

// Universe resolves Refs against a set of loaded packages. It implements
// the member-enumeration and instantiability services the requirement
// classifier consumes.
//
// A Universe is immutable after construction and safe for concurrent
// use: all indexes are built up front in NewUniverse.
type Universe struct {
	fset *token.FileSet
	pkgs map[string]*types.Package

	// docs maps a declaration's name position to its parsed directives.
	// Positions are unique across the shared FileSet, so one index
	// covers every loaded package.
	docs map[token.Pos][]Directive

	// statics holds package-level provider functions attributed to a
	// type via a "module=" directive attribute.
	statics map[Ref][]Method

	// ctors holds declared constructors, keyed by the type they return.
	ctors map[Ref][]ctorInfo

	// typeDecls records every named type declaration alongside its
	// directives and declaring file, for component discovery.
	typeDecls map[Ref]TypeDecl
}

// TypeDecl is a named type declaration as seen by component discovery.
type TypeDecl struct {
	Ref        Ref
	Directives []Directive
	File       string
}

type ctorInfo struct {
	name    string
	nparams int
	pointer bool
}

// NewUniverse indexes the given packages. The FileSet must be the one
// the packages were parsed and checked against.
func NewUniverse(fset *token.FileSet, pkgs []Package) *Universe {
	u := &Universe{
		fset:      fset,
		pkgs:      make(map[string]*types.Package),
		docs:      make(map[token.Pos][]Directive),
		statics:   make(map[Ref][]Method),
		ctors:     make(map[Ref][]ctorInfo),
		typeDecls: make(map[Ref]TypeDecl),
	}
	for _, pkg := range pkgs {
		u.pkgs[pkg.Types.Path()] = pkg.Types
		for _, file := range pkg.Syntax {
			u.indexFile(pkg.Types, file)
		}
	}
	return u
}

func (u *Universe) indexFile(pkg *types.Package, file *ast.File) {
	for _, decl := range file.Decls {
		switch decl := decl.(type) {
		case *ast.FuncDecl:
			u.indexFunc(pkg, decl)
		case *ast.GenDecl:
			if decl.Tok != token.TYPE {
				continue
			}
			for _, spec := range decl.Specs {
				typeSpec, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				u.indexTypeSpec(pkg, decl, typeSpec)
			}
		}
	}
}

func (u *Universe) indexFunc(pkg *types.Package, decl *ast.FuncDecl) {
	directives := parseDirectives(decl.Doc)
	if len(directives) > 0 {
		u.docs[decl.Name.Pos()] = directives
	}
	if decl.Recv != nil {
		return
	}

	// Package-level provider function attributed to a module type is
	// modeled as a static member of that type.
	for _, d := range directives {
		if !markerIn(d.Marker, ProviderMarkers) {
			continue
		}
		moduleName, ok := d.Attr("module")
		if !ok || moduleName == "" {
			continue
		}
		ref := MakeRef(pkg.Path(), moduleName)
		u.statics[ref] = append(u.statics[ref], NewMethod(decl.Name.Name, false, true, directives...))
	}

	u.indexCtor(pkg, decl)
}

// indexCtor records package-level functions named New<Type> returning
// <Type> or *<Type> as declared constructors of that type.
func (u *Universe) indexCtor(pkg *types.Package, decl *ast.FuncDecl) {
	name := decl.Name.Name
	typeName, ok := strings.CutPrefix(name, "New")
	if !ok || typeName == "" {
		return
	}
	obj := pkg.Scope().Lookup(name)
	fn, ok := obj.(*types.Func)
	if !ok {
		return
	}
	sig := fn.Type().(*types.Signature)
	if sig.Results().Len() == 0 {
		return
	}
	result := sig.Results().At(0).Type()
	_, pointer := result.(*types.Pointer)
	ref, err := RefOf(result)
	if err != nil || ref.PkgPath() != pkg.Path() || ref.SimpleName() != typeName {
		return
	}
	u.ctors[ref] = append(u.ctors[ref], ctorInfo{name: name, nparams: sig.Params().Len(), pointer: pointer})
}

func (u *Universe) indexTypeSpec(pkg *types.Package, decl *ast.GenDecl, spec *ast.TypeSpec) {
	doc := spec.Doc
	if doc == nil && len(decl.Specs) == 1 {
		doc = decl.Doc
	}
	directives := parseDirectives(doc)
	if len(directives) > 0 {
		u.docs[spec.Name.Pos()] = directives
	}
	ref := MakeRef(pkg.Path(), spec.Name.Name)
	u.typeDecls[ref] = TypeDecl{
		Ref:        ref,
		Directives: directives,
		File:       u.fset.Position(spec.Name.Pos()).Filename,
	}

	// Interface method docs hang off the field list, not a FuncDecl.
	if iface, ok := spec.Type.(*ast.InterfaceType); ok {
		for _, field := range iface.Methods.List {
			directives := parseDirectives(field.Doc)
			if len(directives) == 0 {
				continue
			}
			for _, name := range field.Names {
				u.docs[name.Pos()] = directives
			}
		}
	}
}

// TypeDecls returns every indexed type declaration, for discovery scans.
// Iteration order is unspecified.
func (u *Universe) TypeDecls() []TypeDecl {
	out := make([]TypeDecl, 0, len(u.typeDecls))
	for _, d := range u.typeDecls {
		out = append(out, d)
	}
	return out
}

// Lookup resolves a type name within a loaded package.
func (u *Universe) Lookup(pkgPath, name string) (Ref, bool) {
	ref := MakeRef(pkgPath, name)
	_, err := u.named(ref)
	return ref, err == nil
}

func (u *Universe) named(ref Ref) (*types.Named, error) {
	pkg, ok := u.pkgs[ref.PkgPath()]
	if !ok {
		return nil, fmt.Errorf("typemodel: package %q not loaded", ref.PkgPath())
	}
	obj := pkg.Scope().Lookup(ref.SimpleName())
	typeName, ok := obj.(*types.TypeName)
	if !ok {
		return nil, fmt.Errorf("typemodel: no type %s in %s", ref.SimpleName(), ref.PkgPath())
	}
	named, ok := typeName.Type().(*types.Named)
	if !ok {
		return nil, fmt.Errorf("typemodel: %s is not a named type", ref)
	}
	return named, nil
}

// AllMembers returns the full member set of the referenced type: methods
// declared on it, methods inherited through embedding (with overrides
// already deduplicated by go/types method-set shadowing rules), and
// static provider functions attributed to it. Returns nil for a type the
// Universe cannot resolve. Order is unspecified.
func (u *Universe) AllMembers(ref Ref) []Method {
	named, err := u.named(ref)
	if err != nil {
		return nil
	}

	var recv types.Type = types.NewPointer(named)
	if types.IsInterface(named) {
		recv = named
	}
	mset := types.NewMethodSet(recv)

	members := make([]Method, 0, mset.Len()+len(u.statics[ref]))
	for i := 0; i < mset.Len(); i++ {
		fn := mset.At(i).Obj().(*types.Func)
		members = append(members, NewMethod(
			fn.Name(),
			isAbstract(fn),
			false,
			u.docs[fn.Pos()]...,
		))
	}
	return append(members, u.statics[ref]...)
}

// isAbstract reports whether a selected method has no concrete
// implementation. A method whose receiver is an interface reaches the
// method set either because the type itself is an interface or because
// it was promoted from an embedded interface without an override.
func isAbstract(fn *types.Func) bool {
	recv := fn.Type().(*types.Signature).Recv()
	return recv != nil && types.IsInterface(recv.Type())
}

// Constructor describes how generated code synthesizes an instance. An
// empty Name means a composite literal suffices.
type Constructor struct {
	Name string
	// Pointer reports whether the constructor returns *T rather than T.
	Pointer bool
}

// CanMakeNewInstance reports whether generated code can synthesize an
// instance of the type with no caller-supplied arguments: the type is
// concrete, leaves no promoted interface method unimplemented, and
// either declares no constructor at all (a composite literal suffices)
// or declares a nullary one.
func (u *Universe) CanMakeNewInstance(ref Ref) bool {
	_, ok := u.NullaryConstructor(ref)
	return ok
}

// NullaryConstructor returns how generated code should synthesize an
// instance of the type. The second result mirrors CanMakeNewInstance.
func (u *Universe) NullaryConstructor(ref Ref) (Constructor, bool) {
	named, err := u.named(ref)
	if err != nil {
		return Constructor{}, false
	}
	if types.IsInterface(named) {
		return Constructor{}, false
	}
	// A type carrying an abstract member cannot be synthesized: the
	// composite literal would leave the embedded interface nil, and a
	// constructor cannot be trusted to fill a method the type itself
	// never implements.
	if u.hasAbstractMember(named) {
		return Constructor{}, false
	}
	ctors := u.ctors[ref]
	if len(ctors) == 0 {
		return Constructor{}, true
	}
	for _, c := range ctors {
		if c.nparams == 0 {
			return Constructor{Name: c.name, Pointer: c.pointer}, true
		}
	}
	// Every declared constructor wants arguments the generator cannot
	// supply here.
	return Constructor{}, false
}

// hasAbstractMember reports whether the type's method set contains a
// method promoted from an embedded interface without an override.
func (u *Universe) hasAbstractMember(named *types.Named) bool {
	mset := types.NewMethodSet(types.NewPointer(named))
	for i := 0; i < mset.Len(); i++ {
		if isAbstract(mset.At(i).Obj().(*types.Func)) {
			return true
		}
	}
	return false
}

// IsInterfaceType reports whether the referenced type is an interface.
func (u *Universe) IsInterfaceType(ref Ref) bool {
	named, err := u.named(ref)
	if err != nil {
		return false
	}
	return types.IsInterface(named)
}

// PackageName returns the package name for a loaded import path.
func (u *Universe) PackageName(pkgPath string) (string, bool) {
	pkg, ok := u.pkgs[pkgPath]
	if !ok {
		return "", false
	}
	return pkg.Name(), true
}

// MethodParamRef resolves the type of the single parameter of the named
// method on an interface type. Builder bindsinstance methods use this to
// recover the bound type.
func (u *Universe) MethodParamRef(ref Ref, method string) (Ref, error) {
	named, err := u.named(ref)
	if err != nil {
		return Ref{}, err
	}
	iface, ok := named.Underlying().(*types.Interface)
	if !ok {
		return Ref{}, fmt.Errorf("typemodel: %s is not an interface", ref)
	}
	for i := 0; i < iface.NumMethods(); i++ {
		fn := iface.Method(i)
		if fn.Name() != method {
			continue
		}
		sig := fn.Type().(*types.Signature)
		if sig.Params().Len() != 1 {
			return Ref{}, fmt.Errorf("typemodel: %s.%s must take exactly one parameter", ref, method)
		}
		return RefOf(sig.Params().At(0).Type())
	}
	return Ref{}, fmt.Errorf("typemodel: no method %s on %s", method, ref)
}

func markerIn(m Marker, set []Marker) bool {
	for _, candidate := range set {
		if m == candidate {
			return true
		}
	}
	return false
}
