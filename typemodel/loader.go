package typemodel

import (
	"fmt"
	"go/token"

	"golang.org/x/tools/go/packages"
)

// LoadConfig controls how Load resolves package patterns.
type LoadConfig struct {
	// Dir is the working directory for the underlying build system
	// queries. Empty means the current directory.
	Dir string
	// BuildFlags are passed through to the build system.
	BuildFlags []string
	// Env overrides the environment for the build system, if non-nil.
	Env []string
}

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo |
	packages.NeedModule

// Load type-checks the packages matching the given patterns and builds a
// Universe over them. Any package error fails the load: classifying
// requirements over a partially checked package would produce wrong
// generated code.
func Load(cfg LoadConfig, patterns ...string) (*Universe, error) {
	fset := token.NewFileSet()
	pkgCfg := &packages.Config{
		Mode:       loadMode,
		Dir:        cfg.Dir,
		BuildFlags: cfg.BuildFlags,
		Env:        cfg.Env,
		Fset:       fset,
	}

	loaded, err := packages.Load(pkgCfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("typemodel: load %v: %w", patterns, err)
	}
	if len(loaded) == 0 {
		return nil, fmt.Errorf("typemodel: no packages matched %v", patterns)
	}

	pkgs := make([]Package, 0, len(loaded))
	for _, p := range loaded {
		if len(p.Errors) > 0 {
			return nil, fmt.Errorf("typemodel: package %s: %w", p.PkgPath, p.Errors[0])
		}
		pkgs = append(pkgs, Package{Types: p.Types, Syntax: p.Syntax})
	}
	return NewUniverse(fset, pkgs), nil
}
