// Package component discovers component declarations in loaded packages
// and assembles their requirement sets.
package component

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/damianw/dagger/bindingkey"
	"github.com/damianw/dagger/requirement"
	"github.com/damianw/dagger/typemodel"
)

// Component is one discovered component declaration: an interface marked
// with a component directive, its optional builder interface, and the
// deduplicated requirements collected from its modules, dependencies and
// bound-instance parameters.
type Component struct {
	Ref     typemodel.Ref
	Builder typemodel.Ref // zero when the component has no builder
	File    string

	// Requirements hold one entry per distinct (kind, type), in
	// declaration order: modules, then dependencies, then bound
	// instances.
	Requirements []requirement.Requirement
}

// Options control a discovery scan.
type Options struct {
	// Exclude lists doublestar globs; components declared in a matching
	// file are skipped.
	Exclude []string
}

// Discover scans every type declaration in the universe for component
// directives. Results are sorted by type for deterministic output.
func Discover(u *typemodel.Universe, opts Options) ([]Component, error) {
	var out []Component
	for _, decl := range u.TypeDecls() {
		directive, ok := componentDirective(decl)
		if !ok {
			continue
		}
		excluded, err := matchesAny(opts.Exclude, decl.File)
		if err != nil {
			return nil, err
		}
		if excluded {
			continue
		}
		comp, err := build(u, decl, directive)
		if err != nil {
			return nil, err
		}
		out = append(out, comp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Ref.String() < out[j].Ref.String()
	})
	return out, nil
}

func componentDirective(decl typemodel.TypeDecl) (typemodel.Directive, bool) {
	for _, d := range decl.Directives {
		if d.Marker == typemodel.MarkerComponent {
			return d, true
		}
	}
	return typemodel.Directive{}, false
}

func matchesAny(patterns []string, file string) (bool, error) {
	file = filepath.ToSlash(file)
	for _, pattern := range patterns {
		ok, err := doublestar.Match(pattern, file)
		if err != nil {
			return false, fmt.Errorf("component: exclude pattern %q: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func build(u *typemodel.Universe, decl typemodel.TypeDecl, directive typemodel.Directive) (Component, error) {
	comp := Component{Ref: decl.Ref, File: decl.File}
	seen := make(map[requirement.DedupeKey]bool)

	add := func(req requirement.Requirement) {
		if seen[req.Dedupe()] {
			return
		}
		seen[req.Dedupe()] = true
		comp.Requirements = append(comp.Requirements, req)
	}

	for _, name := range directive.AttrList("modules") {
		ref, err := resolveName(u, decl.Ref.PkgPath(), name)
		if err != nil {
			return Component{}, fmt.Errorf("component %s: module %q: %w", decl.Ref, name, err)
		}
		req, err := requirement.ForModule(ref)
		if err != nil {
			return Component{}, err
		}
		add(req)
	}

	for _, name := range directive.AttrList("dependencies") {
		ref, err := resolveName(u, decl.Ref.PkgPath(), name)
		if err != nil {
			return Component{}, fmt.Errorf("component %s: dependency %q: %w", decl.Ref, name, err)
		}
		req, err := requirement.ForDependency(ref)
		if err != nil {
			return Component{}, err
		}
		add(req)
	}

	if err := addBoundInstances(u, &comp, add); err != nil {
		return Component{}, err
	}
	return comp, nil
}

// addBoundInstances collects the bindsinstance methods of the
// component's builder interface, named <Component>Builder by convention.
func addBoundInstances(u *typemodel.Universe, comp *Component, add func(requirement.Requirement)) error {
	builderRef, ok := u.Lookup(comp.Ref.PkgPath(), comp.Ref.SimpleName()+"Builder")
	if !ok {
		return nil
	}
	comp.Builder = builderRef

	for _, method := range u.AllMembers(builderRef) {
		for _, d := range method.Directives() {
			if d.Marker != typemodel.MarkerBindsInstance {
				continue
			}
			boundRef, err := u.MethodParamRef(builderRef, method.Name())
			if err != nil {
				return fmt.Errorf("component %s: %w", comp.Ref, err)
			}
			key := bindingkey.New(boundRef)
			if qualifier, ok := d.Attr("qualifier"); ok && qualifier != "" {
				key = bindingkey.Qualified(boundRef, qualifier)
			}
			_, nullable := d.Attr("nullable")
			req, err := requirement.ForInstanceBinding(requirement.InstanceBinding{
				Key:           key,
				Nullable:      nullable,
				VariableName:  requirement.SafeVariableName(method.Name()),
				BoundInstance: true,
			})
			if err != nil {
				return fmt.Errorf("component %s: %w", comp.Ref, err)
			}
			add(req)
		}
	}
	return nil
}

// resolveName resolves a directive attribute value to a type. A bare
// name is looked up in the declaring package; a dotted name is split
// into import path and type name.
func resolveName(u *typemodel.Universe, declPkg, name string) (typemodel.Ref, error) {
	pkgPath, typeName := declPkg, name
	if i := strings.LastIndex(name, "."); i >= 0 {
		pkgPath, typeName = name[:i], name[i+1:]
	}
	ref, ok := u.Lookup(pkgPath, typeName)
	if !ok {
		return typemodel.Ref{}, fmt.Errorf("cannot resolve type %s in %s", typeName, pkgPath)
	}
	return ref, nil
}
