// Package codegen renders the Java artifacts derived from a database model:
// one enum class and one jOOQ converter class per declared enumeration, plus
// the XML configuration file driving the jOOQ code generator.
package codegen

import (
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"ogma/internal/core"
	"ogma/internal/db"
	"ogma/internal/output"
)

// Version is stamped into every generated artifact header.
const Version = "1.4.0"

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("codegen").Funcs(template.FuncMap{"xml": xmlEscape}).ParseFS(templateFS, "templates/*.tmpl"),
)

func xmlEscape(s string) string {
	return strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	).Replace(s)
}

// TemplateRenderError reports a failed template execution.
type TemplateRenderError struct {
	Template string
	Err      error
}

func (e *TemplateRenderError) Error() string {
	return fmt.Sprintf("failed to render template %q: %v", e.Template, e.Err)
}

func (e *TemplateRenderError) Unwrap() error {
	return e.Err
}

// Generator renders Java enum code and jOOQ generator configuration.
type Generator struct {
	CodeDir          string
	ConfigDir        string
	EnumPackage      string
	ConverterPackage string
	ModelFile        string

	// Now supplies generation timestamps. Tests pin it for stable output.
	Now func() time.Time

	reporter *output.Reporter
}

// NewGenerator creates a Generator. The reporter may be nil for silent runs.
func NewGenerator(codeDir, configDir, enumPackage, converterPackage, modelFile string, reporter *output.Reporter) *Generator {
	if reporter == nil {
		reporter = output.NewReporter(nil)
	}
	return &Generator{
		CodeDir:          codeDir,
		ConfigDir:        configDir,
		EnumPackage:      enumPackage,
		ConverterPackage: converterPackage,
		ModelFile:        modelFile,
		Now:              time.Now,
		reporter:         reporter,
	}
}

func (g *Generator) enumData(e *core.Enum) *EnumData {
	d := NewEnumData(e, g.EnumPackage, g.ConverterPackage)
	d.Version = Version
	d.Timestamp = g.Now().UTC().Format(time.RFC3339)
	d.ModelFile = strings.ReplaceAll(g.ModelFile, `\`, "/")
	return d
}

// packageDir returns the directory for a Java package under the code
// directory, creating it if needed.
func (g *Generator) packageDir(pkg string) (string, error) {
	elements := append([]string{g.CodeDir}, strings.Split(pkg, ".")...)
	dir := filepath.Join(elements...)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create package directory %q: %w", dir, err)
	}
	return dir, nil
}

func (g *Generator) renderToFile(templateName, dir, fileName string, data any) (string, error) {
	path := filepath.Join(dir, fileName)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %q: %w", path, err)
	}
	defer f.Close()

	if err := templates.ExecuteTemplate(f, templateName, data); err != nil {
		return "", &TemplateRenderError{Template: templateName, Err: err}
	}
	return path, nil
}

// RenderEnum writes the Java enum class for e and returns the file path.
func (g *Generator) RenderEnum(e *core.Enum) (string, error) {
	data := g.enumData(e)
	dir, err := g.packageDir(g.EnumPackage)
	if err != nil {
		return "", err
	}
	return g.renderToFile("java_enum.tmpl", dir, data.FileName(), data)
}

// RenderEnumConverter writes the jOOQ converter class for e and returns the
// file path.
func (g *Generator) RenderEnumConverter(e *core.Enum) (string, error) {
	data := g.enumData(e)
	dir, err := g.packageDir(g.ConverterPackage)
	if err != nil {
		return "", err
	}
	return g.renderToFile("java_enum_converter.tmpl", dir, data.ConverterFileName(), data)
}

// GenerateEnumJavaCode renders the enum and converter classes for every
// enumeration of the schema, in declaration order.
func (g *Generator) GenerateEnumJavaCode(s *core.Schema) error {
	g.reporter.Section("Java Enums And Converters")
	for _, e := range s.Enums {
		g.reporter.Action("Generating files for enum: %s", e.Name)
		enumPath, err := g.RenderEnum(e)
		if err != nil {
			return err
		}
		g.reporter.Generated(enumPath)
		convPath, err := g.RenderEnumConverter(e)
		if err != nil {
			return err
		}
		g.reporter.Generated(convPath)
		g.reporter.Done()
	}
	return nil
}

// ConfigFileName returns the jOOQ generator configuration file name for a
// schema.
func ConfigFileName(schemaName string) string {
	return fmt.Sprintf("ogma_jooq_gen_config.%s.xml", strings.ToLower(schemaName))
}

// forcedType is one jOOQ forced-type mapping. Name alone rewrites the column
// type; Name plus Converter binds a user type with its converter class.
type forcedType struct {
	Expression string
	Name       string
	Converter  string
}

type jooqConfigData struct {
	Version   string
	Timestamp string

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	Package string
	CodeDir string
	Fields  []forcedType
}

// GenerateJooqConfig writes the jOOQ generator configuration file and returns
// its path. Enum-typed columns are forced to the generated enum classes via
// their converters; boolean columns, and binary ones when includeBinary is
// set, are forced to their type names.
func (g *Generator) GenerateJooqConfig(s *core.Schema, settings db.Settings, dbQueryPackage string, includeBinary bool) (string, error) {
	families := []core.TypeFamily{core.FamilyEnum, core.FamilyBoolean}
	if includeBinary {
		families = append(families, core.FamilyBinary)
	}

	var fields []forcedType
	for _, tt := range s.TypeMappings(families...) {
		for _, ct := range tt.Columns {
			ft := forcedType{
				Expression: tt.Table + `\.` + ct.Column,
				Name:       ct.TypeName,
			}
			if e := s.Enum(ct.TypeName); e != nil {
				data := g.enumData(e)
				ft.Name = data.FQN()
				ft.Converter = data.ConverterFQN()
			}
			fields = append(fields, ft)
		}
	}

	data := jooqConfigData{
		Version:    Version,
		Timestamp:  g.Now().UTC().Format(time.RFC3339),
		DBHost:     settings.Host,
		DBPort:     settings.Port,
		DBName:     settings.Name,
		DBUser:     settings.User,
		DBPassword: settings.Password,
		Package:    dbQueryPackage,
		CodeDir:    g.CodeDir,
		Fields:     fields,
	}

	if err := os.MkdirAll(g.ConfigDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory %q: %w", g.ConfigDir, err)
	}

	g.reporter.Section("jOOQ")
	g.reporter.Action("Generating jOOQ generator configuration file")
	path, err := g.renderToFile("jooq_generator_config.tmpl", g.ConfigDir, ConfigFileName(s.Name), data)
	if err != nil {
		return "", err
	}
	g.reporter.Generated(path)
	g.reporter.Done()
	return path, nil
}

// WriteEnumUsage prints every table.column using each enumeration, grouped by
// enumeration in first-use order.
func WriteEnumUsage(w io.Writer, s *core.Schema) {
	usages := make(map[string][]string)
	var order []string
	for _, tt := range s.TypeMappings(core.FamilyEnum) {
		for _, ct := range tt.Columns {
			if _, seen := usages[ct.TypeName]; !seen {
				order = append(order, ct.TypeName)
			}
			usages[ct.TypeName] = append(usages[ct.TypeName], tt.Table+"."+ct.Column)
		}
	}
	for _, name := range order {
		fmt.Fprintf(w, "Enum: %s\n", name)
		for _, use := range usages[name] {
			fmt.Fprintf(w, " * %s\n", use)
		}
	}
}
