package main

import (
	"context"
	"fmt"

	"builder-generator/internal/analyze"
	"builder-generator/internal/descriptor"
	"builder-generator/internal/gen"
	"builder-generator/internal/openapi"
	"builder-generator/internal/plan"
	"builder-generator/internal/typemodel"
)

// sources is the merged input of a run.
type sources struct {
	universe   *typemodel.Universe
	candidates []typemodel.TypeID
	// dirs and names locate the scanned Go packages.
	dirs  map[string]string
	names map[string]string
}

// load reads every configured source into one universe.
func (e *environment) load(ctx context.Context) (*sources, error) {
	cfg := e.config
	src := &sources{
		universe: typemodel.NewUniverse(),
		dirs:     map[string]string{},
		names:    map[string]string{},
	}

	var pkgPaths []string

	if len(cfg.Packages) > 0 {
		a := analyze.NewAnalyzer()

		u, err := a.LoadPackages(cfg.Packages...)
		if err != nil {
			return nil, err
		}

		src.universe.Merge(u)
		src.dirs = a.Dirs()
		src.names = a.Names()
		pkgPaths = append(pkgPaths, a.Roots...)
	}

	if cfg.Descriptor != "" {
		f, err := descriptor.LoadFile(cfg.Descriptor)
		if err != nil {
			return nil, err
		}

		if err := src.addDescriptor(f); err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Descriptor, err)
		}

		pkgPaths = append(pkgPaths, f.Package)
	}

	if cfg.OpenAPI != "" {
		f, err := openapi.Load(ctx, cfg.OpenAPI, openapi.Options{Package: cfg.OpenAPIPackage, Validate: true})
		if err != nil {
			return nil, err
		}

		if err := src.addDescriptor(f); err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.OpenAPI, err)
		}

		pkgPaths = append(pkgPaths, f.Package)
	}

	src.universe.Normalize()

	for _, id := range plan.Candidates(src.universe, pkgPaths...) {
		if cfg.Wants(id.Name) {
			src.candidates = append(src.candidates, id)
		}
	}

	return src, nil
}

func (s *sources) addDescriptor(f *descriptor.File) error {
	u, err := descriptor.ToUniverse(f)
	if err != nil {
		return err
	}

	s.universe.Merge(u)

	return nil
}

// plan runs the planner over the candidates.
func (e *environment) plan(src *sources) (*plan.Result, error) {
	planner := plan.NewPlanner(src.universe, src.universe, e.config.Plan())

	res, err := planner.Plan(src.candidates)
	if res != nil {
		e.report(res)
	}

	if err != nil {
		return nil, err
	}

	if e.debug {
		e.dump(res)
	}

	return res, nil
}

// generator returns the generator writing next to the scanned sources.
func (e *environment) generator(src *sources) *gen.Generator {
	cfg := e.config.Generator()
	cfg.Dirs = src.dirs
	cfg.PackageNames = src.names

	return gen.NewGenerator(cfg)
}
