// Package codegen emits the builder side of a component: a setter per
// requirement, with setter requiredness decided by the requirement's
// resolved null policy.
package codegen

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/stoewer/go-strcase"

	"github.com/damianw/dagger/component"
	"github.com/damianw/dagger/requirement"
	"github.com/damianw/dagger/typemodel"
)

// TypeInfo is everything emission needs to know about types beyond the
// requirement services. *typemodel.Universe implements it.
type TypeInfo interface {
	requirement.Services
	NullaryConstructor(typemodel.Ref) (typemodel.Constructor, bool)
	IsInterfaceType(typemodel.Ref) bool
	PackageName(pkgPath string) (string, bool)
}

// Generate emits the generated component skeleton and its builder into
// the component's own package.
func Generate(comp component.Component, info TypeInfo) (*jen.File, error) {
	pkgName, ok := info.PackageName(comp.Ref.PkgPath())
	if !ok {
		return nil, fmt.Errorf("codegen: package %q not loaded", comp.Ref.PkgPath())
	}
	return GenerateInto(comp, info, comp.Ref.PkgPath(), pkgName)
}

// GenerateInto emits the same output into an arbitrary target package,
// for standalone output directories.
func GenerateInto(comp component.Component, info TypeInfo, pkgPath, pkgName string) (*jen.File, error) {
	f := jen.NewFilePathName(pkgPath, pkgName)
	f.HeaderComment("Code generated by dagger. DO NOT EDIT.")

	implName := "Dagger" + comp.Ref.SimpleName()
	builderName := implName + "Builder"

	fields := make([]jen.Code, 0, len(comp.Requirements))
	for _, req := range comp.Requirements {
		fields = append(fields, jen.Id(req.VariableName()).Add(fieldType(req.TypeRef(), info)))
	}

	f.Commentf("%s holds the instances %s is built from.", implName, comp.Ref.SimpleName())
	f.Type().Id(implName).Struct(fields...)

	f.Commentf("%s collects the requirements of %s.", builderName, comp.Ref.SimpleName())
	f.Type().Id(builderName).Struct(fields...)

	f.Func().Id("New" + builderName).Params().Op("*").Id(builderName).Block(
		jen.Return(jen.Op("&").Id(builderName).Values()),
	)

	recv := jen.Id("b").Op("*").Id(builderName)
	for _, req := range comp.Requirements {
		setter := "Set" + strcase.UpperCamelCase(req.VariableName())
		f.Func().Params(recv.Clone()).Id(setter).
			Params(jen.Id("v").Add(fieldType(req.TypeRef(), info))).
			Op("*").Id(builderName).
			Block(
				jen.Id("b").Dot(req.VariableName()).Op("=").Id("v"),
				jen.Return(jen.Id("b")),
			)
	}

	build, err := buildMethod(comp, info, implName, builderName)
	if err != nil {
		return nil, err
	}
	f.Add(build)

	return f, nil
}

// buildMethod emits Build: missing instances are synthesized, rejected,
// or permitted per the resolved null policy.
func buildMethod(comp component.Component, info TypeInfo, implName, builderName string) (*jen.Statement, error) {
	var stmts []jen.Code
	for _, req := range comp.Requirements {
		field := jen.Id("b").Dot(req.VariableName())
		switch policy := requirement.Resolve(req, info); policy {
		case requirement.Synthesize:
			assign, err := synthesize(req.TypeRef(), info, field)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, jen.If(field.Clone().Op("==").Nil()).Block(assign...))
		case requirement.Reject:
			stmts = append(stmts, jen.If(field.Clone().Op("==").Nil()).Block(
				jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(
					jen.Lit(req.VariableName()+" must be set"),
				)),
			))
		case requirement.Permit:
			// Absent instance flows through unchanged.
		default:
			return nil, fmt.Errorf("codegen: unexpected null policy %s for %s", policy, req)
		}
	}

	values := jen.Dict{}
	for _, req := range comp.Requirements {
		values[jen.Id(req.VariableName())] = jen.Id("b").Dot(req.VariableName())
	}
	stmts = append(stmts, jen.Return(jen.Op("&").Id(implName).Values(values), jen.Nil()))

	return jen.Func().Params(jen.Id("b").Op("*").Id(builderName)).Id("Build").
		Params().
		Params(jen.Op("*").Id(implName), jen.Error()).
		Block(stmts...), nil
}

func synthesize(ref typemodel.Ref, info TypeInfo, field *jen.Statement) ([]jen.Code, error) {
	ctor, ok := info.NullaryConstructor(ref)
	if !ok {
		return nil, fmt.Errorf("codegen: %s resolved to synthesize but has no nullary construction path", ref)
	}
	switch {
	case ctor.Name == "":
		return []jen.Code{
			field.Clone().Op("=").Op("&").Qual(ref.PkgPath(), ref.SimpleName()).Values(),
		}, nil
	case ctor.Pointer:
		return []jen.Code{
			field.Clone().Op("=").Qual(ref.PkgPath(), ctor.Name).Call(),
		}, nil
	default:
		return []jen.Code{
			jen.Id("v").Op(":=").Qual(ref.PkgPath(), ctor.Name).Call(),
			field.Clone().Op("=").Op("&").Id("v"),
		}, nil
	}
}

// fieldType maps a requirement type to the Go type generated code holds
// it as: interfaces directly, anything else behind a pointer so that
// absence is representable.
func fieldType(ref typemodel.Ref, info TypeInfo) *jen.Statement {
	if info.IsInterfaceType(ref) {
		return jen.Qual(ref.PkgPath(), ref.SimpleName())
	}
	return jen.Op("*").Qual(ref.PkgPath(), ref.SimpleName())
}

// Render renders a generated file to source text.
func Render(f *jen.File) (string, error) {
	var sb strings.Builder
	if err := f.Render(&sb); err != nil {
		return "", fmt.Errorf("codegen: render: %w", err)
	}
	return sb.String(), nil
}
