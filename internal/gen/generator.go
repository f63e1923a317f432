package gen

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"text/template"
	"unicode"

	"golang.org/x/tools/imports"

	"builder-generator/internal/model"
	"builder-generator/internal/plan"
)

// ErrHelperConflict is returned when two categories register different
// helpers under one name in the same package.
var ErrHelperConflict = errors.New("conflicting helper definitions")

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// OutputDir receives the files of packages missing from Dirs.
	OutputDir string
	// Dirs maps package paths to their source directories.
	Dirs map[string]string
	// PackageNames maps package paths to package names. The default is the
	// last path element.
	PackageNames map[string]string
	// FileSuffix is appended to the snake-cased type name.
	FileSuffix string
	// HelpersFile is the per-package file of shared helpers.
	HelpersFile string
	// GenerateComments emits doc comments on generated declarations.
	GenerateComments bool
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		OutputDir:        ".",
		FileSuffix:       "_builder.go",
		HelpersFile:      "builder_helpers.go",
		GenerateComments: true,
	}
}

// Generator generates Go code from a planning result.
type Generator struct {
	config GeneratorConfig
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig) *Generator {
	return &Generator{config: config}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// PkgPath is the package the file belongs to.
	PkgPath string
	// Dir is the directory the file is written to.
	Dir string
	// Filename is the name of the file (e.g., "person_builder.go").
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// Path returns the file path.
func (f *GeneratedFile) Path() string {
	return filepath.Join(f.Dir, f.Filename)
}

// Generate renders every type plan of res, one file per datatype plus one
// helpers file per package that needs helpers.
func (g *Generator) Generate(res *plan.Result) ([]GeneratedFile, error) {
	byPkg := res.ByPackage()
	pkgs := slices.Sorted(maps.Keys(byPkg))

	dirs := make(map[string]string, len(pkgs))

	var files []GeneratedFile

	for _, pkgPath := range pkgs {
		dir := g.dir(pkgPath)
		if other, ok := dirs[dir]; ok {
			return nil, fmt.Errorf("packages %s and %s both generate into %s", other, pkgPath, dir)
		}

		dirs[dir] = pkgPath

		pkgFiles, err := g.generatePackage(pkgPath, dir, nestingOrder(byPkg[pkgPath]))
		if err != nil {
			return nil, fmt.Errorf("generating %s: %w", pkgPath, err)
		}

		files = append(files, pkgFiles...)
	}

	return files, nil
}

func (g *Generator) generatePackage(pkgPath, dir string, types []*plan.TypePlan) ([]GeneratedFile, error) {
	files := make([]GeneratedFile, 0, len(types)+1)

	for _, t := range types {
		file, err := g.generateType(dir, t)
		if err != nil {
			return nil, fmt.Errorf("generating %s: %w", t.Datatype.ID.Name, err)
		}

		files = append(files, *file)
	}

	helpers, err := g.generateHelpers(pkgPath, dir, types)
	if err != nil {
		return nil, err
	}

	if helpers != nil {
		files = append(files, *helpers)
	}

	return files, nil
}

// generateType generates the file of a single datatype.
func (g *Generator) generateType(dir string, t *plan.TypePlan) (*GeneratedFile, error) {
	tr := t.Triad
	r := &renderer{imports: tr.Imports, comments: g.config.GenerateComments}

	// Rendering qualifies types, so imports are read afterwards.
	decls := r.declarations(tr)

	data := &fileData{
		Package: g.packageName(tr.Imports.PkgPath()),
		Source:  t.Datatype.ID.String(),
		Consts:  tr.Consts,
		Decls:   decls,
		Imports: tr.Imports.Specs(),
	}

	return g.render(tr.Imports.PkgPath(), dir, Filename(t.Datatype.ID.Name, g.config.FileSuffix), data)
}

// generateHelpers writes the helpers of every datatype of a package once.
func (g *Generator) generateHelpers(pkgPath, dir string, types []*plan.TypePlan) (*GeneratedFile, error) {
	var (
		decls []string
		specs []model.Spec
	)

	byName := map[string]model.Helper{}
	seenSpec := map[string]bool{}

	for _, t := range types {
		for _, h := range t.Triad.Helpers.All() {
			if prev, ok := byName[h.Name]; ok {
				if prev.Code != h.Code {
					return nil, fmt.Errorf("%w: %s (%s, %s)", ErrHelperConflict, h.Name, prev.Category, h.Category)
				}

				continue
			}

			byName[h.Name] = h
			decls = append(decls, h.Code+"\n")
		}

		for _, s := range t.Triad.Imports.Specs() {
			if !seenSpec[s.Path] {
				seenSpec[s.Path] = true
				specs = append(specs, s)
			}
		}
	}

	if len(decls) == 0 {
		return nil, nil
	}

	slices.SortFunc(specs, func(a, b model.Spec) int { return strings.Compare(a.Path, b.Path) })

	data := &fileData{
		Package: g.packageName(pkgPath),
		Decls:   decls,
		Imports: specs,
	}

	return g.render(pkgPath, dir, g.config.HelpersFile, data)
}

// render executes the file template and formats the result. Unused imports
// are removed.
func (g *Generator) render(pkgPath, dir, filename string, data *fileData) (*GeneratedFile, error) {
	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	opts := &imports.Options{Comments: true, TabIndent: true, TabWidth: 8}

	formatted, err := imports.Process(filepath.Join(dir, filename), buf.Bytes(), opts)
	if err != nil {
		// Best-effort: the unformatted code helps debugging the template.
		_ = writeDebugUnformatted(dir, filename, buf.Bytes())

		return &GeneratedFile{
			PkgPath:  pkgPath,
			Dir:      dir,
			Filename: filename,
			Content:  buf.Bytes(),
		}, fmt.Errorf("formatting code: %w (unformatted code returned)", err)
	}

	return &GeneratedFile{
		PkgPath:  pkgPath,
		Dir:      dir,
		Filename: filename,
		Content:  formatted,
	}, nil
}

func (g *Generator) dir(pkgPath string) string {
	if d, ok := g.config.Dirs[pkgPath]; ok {
		return d
	}

	return g.config.OutputDir
}

func (g *Generator) packageName(pkgPath string) string {
	if name, ok := g.config.PackageNames[pkgPath]; ok {
		return name
	}

	return PackageName(pkgPath)
}

// PackageName guesses the package name of an import path from its last
// element, dropping a go- prefix, version suffixes and invalid characters.
func PackageName(pkgPath string) string {
	base := path.Base(pkgPath)

	if isMajorVersion(base) && path.Dir(pkgPath) != "." {
		base = path.Base(path.Dir(pkgPath))
	}

	base = strings.TrimPrefix(base, "go-")

	var sb strings.Builder

	for _, r := range base {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			sb.WriteRune(unicode.ToLower(r))
		}
	}

	if sb.Len() == 0 {
		return "generated"
	}

	return sb.String()
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}

	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

// Filename returns the snake-cased type name followed by suffix.
func Filename(typeName, suffix string) string {
	var sb strings.Builder

	runes := []rune(typeName)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			lowerBefore := i > 0 && unicode.IsLower(runes[i-1])
			acronymEnd := i > 0 && i+1 < len(runes) && unicode.IsUpper(runes[i-1]) && unicode.IsLower(runes[i+1])

			if lowerBefore || acronymEnd {
				sb.WriteByte('_')
			}

			sb.WriteRune(unicode.ToLower(r))

			continue
		}

		sb.WriteRune(r)
	}

	return sb.String() + suffix
}

// fileData holds all data needed for the file template.
type fileData struct {
	Package string
	// Source names the datatype the file was generated from.
	Source  string
	Imports []model.Spec
	Consts  []model.Const
	Decls   []string
}

var fileTemplate = template.Must(
	template.New("file").
		Parse(`// Code generated by builder-generator. DO NOT EDIT.
{{- if .Source}}
// Source: {{.Source}}
{{- end}}

package {{.Package}}
{{if .Imports}}
import (
{{- range .Imports}}
	{{if .Name}}{{.Name}} {{end}}"{{.Path}}"
{{- end}}
)
{{end}}
{{- if .Consts}}
const (
{{- range .Consts}}
	{{.Name}} = {{.Value}}
{{- end}}
)
{{end}}
{{- range .Decls}}
{{.}}
{{- end}}
`))
