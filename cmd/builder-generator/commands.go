package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"

	"builder-generator/internal/config"
	"builder-generator/internal/diagnostic"
	"builder-generator/internal/gen"
	"builder-generator/internal/plan"
)

// errFailed signals a failure already reported to the user.
var errFailed = errors.New("failed")

// errDeclined is returned when the user refuses to overwrite files.
var errDeclined = errors.New("aborted: existing files were not overwritten")

type command func(e *environment, args []string) error

var commands = map[string]command{
	"gen":      runGen,
	"check":    runCheck,
	"describe": runDescribe,
	"init":     runInit,
}

// environment carries the state of one command.
type environment struct {
	stdout, stderr io.Writer
	config         *config.Config
	debug          bool
	yes            bool
	confirm        func(message string) (bool, error)
}

// setup parses the flags of a command and loads the configuration.
func (e *environment) setup(name string, args []string) error {
	var o options

	fs := newFlagSet(name, e.stderr, &o)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := o.resolve(fs)
	if err != nil {
		return err
	}

	e.config = cfg
	e.debug = o.debug
	e.yes = o.yes

	return nil
}

// report prints the diagnostics of a planning run.
func (e *environment) report(res *plan.Result) {
	for _, group := range [][]diagnostic.Diagnostic{res.Diagnostics.Errors, res.Diagnostics.Warnings} {
		for _, d := range group {
			fmt.Fprintf(e.stderr, "%s: %s\n", d.Severity, d)
		}
	}

	if e.debug {
		for _, d := range res.Diagnostics.Infos {
			fmt.Fprintf(e.stderr, "%s: %s\n", d.Severity, d)
		}
	}
}

func (e *environment) dump(res *plan.Result) {
	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, MaxDepth: 4}

	for _, t := range res.Types {
		fmt.Fprintf(e.stderr, "=== %s ===\n", t.Datatype.ID)
		cfg.Fdump(e.stderr, t.Datatype)
		fmt.Fprintf(e.stderr, "categories: %v\n", t.Categories())
	}
}

// prepare loads, plans and renders every configured datatype.
func (e *environment) prepare(name string, args []string) ([]gen.GeneratedFile, *plan.Result, error) {
	if err := e.setup(name, args); err != nil {
		return nil, nil, err
	}

	src, err := e.load(context.Background())
	if err != nil {
		return nil, nil, err
	}

	res, err := e.plan(src)
	if err != nil {
		return nil, nil, err
	}

	files, err := e.generator(src).Generate(res)
	if err != nil {
		return nil, nil, err
	}

	return files, res, nil
}

func runGen(e *environment, args []string) error {
	files, _, err := e.prepare("gen", args)
	if err != nil {
		return err
	}

	if existing := gen.Existing(files); len(existing) > 0 && !e.yes && promptEnabled() {
		ok, err := e.confirm(fmt.Sprintf("Overwrite %d existing file(s)?", len(existing)))
		if err != nil {
			return err
		}

		if !ok {
			return errDeclined
		}
	}

	if err := gen.WriteFiles(files); err != nil {
		return err
	}

	for _, f := range files {
		fmt.Fprintln(e.stdout, f.Path())
	}

	return nil
}

func runCheck(e *environment, args []string) error {
	files, res, err := e.prepare("check", args)
	if err != nil {
		return err
	}

	stale, err := gen.Stale(files)
	if err != nil {
		return err
	}

	for _, p := range stale {
		fmt.Fprintf(e.stdout, "stale: %s\n", p)
	}

	if len(stale) > 0 || res.Diagnostics.HasErrors() {
		return errFailed
	}

	fmt.Fprintf(e.stdout, "%d file(s) up to date\n", len(files))

	return nil
}

func runDescribe(e *environment, args []string) error {
	if err := e.setup("describe", args); err != nil {
		return err
	}

	src, err := e.load(context.Background())
	if err != nil {
		return err
	}

	res, err := e.plan(src)
	if err != nil {
		return err
	}

	for _, t := range res.Types {
		if err := describe(e.stdout, t); err != nil {
			return err
		}
	}

	return nil
}

func runInit(e *environment, args []string) error {
	var o options

	fs := newFlagSet("init", e.stderr, &o)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := os.Stat(o.configPath); err == nil && !o.yes && promptEnabled() {
		ok, err := e.confirm(fmt.Sprintf("Overwrite %s?", o.configPath))
		if err != nil {
			return err
		}

		if !ok {
			return errDeclined
		}
	}

	cfg := config.Default()
	cfg.Packages = o.packages
	cfg.Types = o.types
	cfg.Descriptor = o.descriptor
	cfg.OpenAPI = o.openapi

	if err := cfg.WriteFile(o.configPath); err != nil {
		return err
	}

	fmt.Fprintln(e.stdout, o.configPath)

	return nil
}
