package main

import (
	"flag"
	"io"
	"os"
	"strings"

	"builder-generator/internal/config"
)

// stringList is a repeatable, comma-separated flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*s = append(*s, part)
		}
	}

	return nil
}

// options are the flags shared by every command.
type options struct {
	configPath     string
	packages       stringList
	types          stringList
	descriptor     string
	openapi        string
	openapiPackage string
	out            string
	strict         bool
	stack          bool
	noComments     bool
	yes            bool
	debug          bool
}

func newFlagSet(name string, stderr io.Writer, o *options) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.configPath, "config", config.DefaultFile, "configuration file")
	fs.Var(&o.packages, "pkg", "Go package pattern to scan (repeatable)")
	fs.Var(&o.types, "type", "generate only the named type (repeatable)")
	fs.StringVar(&o.descriptor, "descriptor", "", "YAML type descriptor")
	fs.StringVar(&o.openapi, "openapi", "", "OpenAPI 3 document")
	fs.StringVar(&o.openapiPackage, "openapi-package", "", "import path of the package generated from -openapi")
	fs.StringVar(&o.out, "out", "", "output directory for packages without a source directory")
	fs.BoolVar(&o.strict, "strict", false, "fail when any diagnostic error is reported")
	fs.BoolVar(&o.stack, "stack", false, "include stacks in internal error diagnostics")
	fs.BoolVar(&o.noComments, "no-comments", false, "omit doc comments from generated code")
	fs.BoolVar(&o.yes, "yes", false, "overwrite existing files without asking")
	fs.BoolVar(&o.debug, "debug", os.Getenv("BG_DEBUG") != "", "dump the planned datatypes")

	return fs
}

// resolve loads the configuration file and applies the flags set on fs.
func (o *options) resolve(fs *flag.FlagSet) (*config.Config, error) {
	cfg, err := config.LoadOptional(o.configPath)
	if err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "pkg":
			cfg.Packages = o.packages
		case "type":
			cfg.Types = o.types
		case "descriptor":
			cfg.Descriptor = o.descriptor
		case "openapi":
			cfg.OpenAPI = o.openapi
		case "openapi-package":
			cfg.OpenAPIPackage = o.openapiPackage
		case "out":
			cfg.OutputDir = o.out
		case "strict":
			cfg.Strict = o.strict
		case "stack":
			cfg.Stack = o.stack
		case "no-comments":
			cfg.Comments = !o.noComments
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
