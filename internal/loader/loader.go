// Package loader builds a frozen model.GlobalEnv from a set of deployed
// Move packages. Build runs a single-threaded, leaves-first pipeline: each
// stage reads only what earlier stages produced and never revisits a
// package once later stages begin, so the result needs no synchronization
// once returned. Implements spec.md §2 and §4.
package loader

import (
	"github.com/pkg/errors"

	"github.com/sourcegraph/move-env/internal/model"
	"github.com/sourcegraph/move-env/internal/stage"
)

// LoaderConfig configures a single Build call. The zero value is usable:
// it reports no progress, assumes DefaultFramework, and drops raw modules
// once loading completes.
type LoaderConfig struct {
	// Framework overrides DefaultFramework when non-nil.
	Framework map[model.ObjectID]struct{}

	// KeepRawModules retains each Module's deserialized CompiledModule
	// after Build returns, for callers (e.g. a disassembler) that need
	// signatures or constant bytes a GlobalEnv doesn't otherwise expose.
	// Left false, Build drops them to bound the resident size of a large
	// environment.
	KeepRawModules bool

	Progress stage.Options
}

// Build loads rawPackages into a fully linked, immutable GlobalEnv. It
// returns the first unrecoverable error hit; invariant-verification stages
// (loadVersions, verifyStructuralInvariants) instead aggregate every
// violation they find before returning.
func Build(rawPackages []model.MovePackage, cfg LoaderConfig) (*model.GlobalEnv, error) {
	framework := cfg.Framework
	if framework == nil {
		framework = DefaultFramework
	}

	reporter := stage.New(cfg.Progress)
	idents := newIdentifierTable()

	var (
		packages     []model.Package
		packageMap   map[model.ObjectID]model.PackageIndex
		frameworkIdx map[model.PackageIndex]model.ObjectID
		modules      []model.Module
		cleaned      []model.MovePackage
	)

	if err := reporter.Stage("Cleaning framework packages", func() error {
		cleaned = cleanFramework(rawPackages, framework)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := reporter.Stage("Loading packages", func() error {
		var err error
		packages, packageMap, frameworkIdx, err = loadPackages(cleaned, framework)
		return err
	}); err != nil {
		return nil, errors.Wrap(err, "load packages")
	}

	if err := reporter.Stage("Loading modules", func() error {
		var err error
		modules, _, err = loadModules(idents, packages, cleaned)
		return err
	}); err != nil {
		return nil, errors.Wrap(err, "load modules")
	}

	if err := reporter.Stage("Resolving package versions", func() error {
		return loadVersions(packages, packageMap, modules, frameworkIdx)
	}); err != nil {
		return nil, errors.Wrap(err, "resolve versions")
	}

	if err := reporter.Stage("Resolving dependencies", func() error {
		if err := moduleDependencies(packages, modules); err != nil {
			return err
		}
		return packageDependencies(packages, modules, packageMap)
	}); err != nil {
		return nil, errors.Wrap(err, "resolve dependencies")
	}

	tb := &typeBuilder{packages: packages, packageMap: packageMap}

	var (
		structs       []model.Struct
		structMap     map[string]model.StructIndex
		functions     []model.Function
		functionMap   map[string]model.FunctionIndex
	)

	if err := reporter.Stage("Loading structs", func() error {
		var err error
		structs, structMap, err = loadStructs(idents, modules, packages)
		if err != nil {
			return err
		}
		tb.structMap = structMap
		return loadFields(structs, idents, tb, modules, frameworkIdx)
	}); err != nil {
		return nil, errors.Wrap(err, "load structs")
	}

	if err := reporter.Stage("Loading constants", func() error {
		return loadConstants(tb, modules)
	}); err != nil {
		return nil, errors.Wrap(err, "load constants")
	}

	if err := reporter.Stage("Loading functions", func() error {
		var err error
		functions, functionMap, err = loadFunctions(idents, modules, tb)
		return err
	}); err != nil {
		return nil, errors.Wrap(err, "load functions")
	}

	rw := &codeRewriter{tb: tb, functionMap: functionMap}
	if err := reporter.Stage("Rewriting code", func() error {
		return loadCode(rw, modules, functions)
	}); err != nil {
		return nil, errors.Wrap(err, "rewrite code")
	}

	var callers, callees map[model.FunctionIndex]map[model.FunctionIndex]struct{}
	if err := reporter.Stage("Building call graphs", func() error {
		callers, callees = buildCallGraphs(functions)
		return nil
	}); err != nil {
		return nil, err
	}

	moduleByKey := make(map[string]model.ModuleIndex, len(modules))
	for i := range modules {
		m := &modules[i]
		moduleByKey[model.ModuleKey(packages[m.Package].ID, m.ModuleName)] = m.SelfIdx
	}

	env := &model.GlobalEnv{
		Packages:         packages,
		Modules:          modules,
		Structs:          structs,
		Functions:        functions,
		Identifiers:      idents.identifiers,
		PackageByID:      packageMap,
		ModuleByKey:      moduleByKey,
		StructByKey:      structMap,
		FunctionByKey:    functionMap,
		IdentifierByName: idents.index,
		Callers:          callers,
		Callees:          callees,
		Framework:        frameworkIdx,
	}

	if err := reporter.Stage("Verifying environment", func() error {
		return verifyStructuralInvariants(env)
	}); err != nil {
		return nil, errors.Wrap(err, "verify environment")
	}

	if !cfg.KeepRawModules {
		for i := range env.Modules {
			env.Modules[i].ClearRaw()
		}
	}

	return env, nil
}
