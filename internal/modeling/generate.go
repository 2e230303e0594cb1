package modeling

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/buml/pkg/domain"
	"github.com/aretw0/buml/pkg/generator"
)

// label names a generator's output in user-facing messages.
type label struct {
	failure string // "Error generating <failure> from domain model"
	output  string // "No <output> generated."
	// requirements closes the diagnostic for models that have classes.
	requirements string
}

var labels = map[string]label{
	generator.SQL:        {failure: "SQL", output: "SQL", requirements: "The SQL generator may require additional configuration or the classes may not meet SQL generation requirements."},
	generator.Python:     {failure: "Python", output: "Python code"},
	generator.Java:       {failure: "Java", output: "Java code"},
	generator.JSONSchema: {failure: "JSON Schema", output: "JSON Schema"},
	generator.SmartData:  {failure: "Smart Data JSON Schema", output: "Smart Data JSON Schema"},
	generator.RDF:        {failure: "RDF", output: "RDF Vocabulary"},
	generator.RESTAPI:    {failure: "RESTAPI", output: "REST API"},
	generator.SQLAlchemy: {failure: "SQLAlchemy", output: "SQLAlchemy code"},
	generator.Pydantic:   {failure: "Pydantic", output: "Pydantic classes"},
	generator.Backend:    {failure: "Backend", output: "Backend"},
}

func labelFor(name string) label {
	l, ok := labels[name]
	if !ok {
		l = label{failure: name, output: name}
	}
	if l.requirements == "" {
		l.requirements = fmt.Sprintf("The %s generator may require additional configuration or the classes may not meet generation requirements.", l.output)
	}
	return l
}

// diagnostic explains why a generator produced nothing for m.
func (l label) diagnostic(m *domain.DomainModel) string {
	classes := m.Classes()
	if len(classes) == 0 {
		return fmt.Sprintf("No %s generated. The domain model contains no classes.", l.output)
	}
	info := make([]string, len(classes))
	for i, c := range classes {
		info[i] = fmt.Sprintf("%s (%d attributes)", c.Name, len(c.Attributes))
	}
	return fmt.Sprintf("No %s generated. The domain model contains %d class(es): %s. %s",
		l.output, len(classes), strings.Join(info, ", "), l.requirements)
}

// EnsureIdentifiers gives every class without attributes an integer "id"
// identifier, which the SQL generator needs for a primary key. It returns
// the names of the classes it changed.
func EnsureIdentifiers(m *domain.DomainModel) ([]string, error) {
	intType := m.TypeByName(domain.IntegerType)
	if intType == nil {
		return nil, domain.Missing("type", domain.IntegerType, domain.ScopeModel)
	}
	var changed []string
	for _, c := range m.Classes() {
		if len(c.Attributes) > 0 {
			continue
		}
		id, err := domain.NewProperty("id", intType)
		if err != nil {
			return changed, err
		}
		id.IsID = true
		if err := c.AddAttribute(id); err != nil {
			return changed, err
		}
		changed = append(changed, c.Name)
	}
	return changed, nil
}

// Prepare applies the model changes a generator depends on. Callers that
// keep state persist m afterwards.
func (s *Service) Prepare(m *domain.DomainModel, name string) error {
	if name != generator.SQL {
		return nil
	}
	changed, err := EnsureIdentifiers(m)
	if err != nil {
		return fail(err, "generating SQL from domain model")
	}
	if len(changed) > 0 {
		s.logger.Info("added id attribute", "classes", changed)
	}
	return nil
}

// build resolves a generator. An unregistered name is a fault, not a Failure.
func (s *Service) build(name string, in GenerationInput) (generator.Generator, error) {
	factory, err := s.generators.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("generation unavailable: %w", err)
	}
	opts := s.options
	if in.SQLDialect != "" {
		opts.Dialect = in.SQLDialect
	}
	g, err := factory(opts)
	if err != nil {
		return nil, fail(err, "generating %s from domain model", labelFor(name).failure)
	}
	return g, nil
}

// Generate runs the named generator into in.OutputDir (the service output
// directory when empty) and returns Success.
func (s *Service) Generate(ctx context.Context, m *domain.DomainModel, name string, in GenerationInput) (string, error) {
	g, err := s.build(name, in)
	if err != nil {
		return "", err
	}
	if err := s.Prepare(m, name); err != nil {
		return "", err
	}
	dir := in.OutputDir
	if dir == "" {
		dir = s.outputDir
	}
	paths, err := g.Generate(ctx, m, dir)
	if err != nil {
		return "", s.finish(fmt.Sprintf("generating %s from domain model", labelFor(name).failure), err)
	}
	s.logger.Info("generated", "generator", name, "files", len(paths), "dir", dir)
	return Success, nil
}

// GenerateText runs the named generator in a scratch directory and returns
// the content of its output file. When nothing was written the result is a
// diagnostic describing the model's classes.
func (s *Service) GenerateText(ctx context.Context, m *domain.DomainModel, name string, in GenerationInput) (string, error) {
	g, err := s.build(name, in)
	if err != nil {
		return "", err
	}
	single, ok := g.(generator.SingleFile)
	if !ok {
		return "", fmt.Errorf("generator %q writes several files and has no text form", name)
	}
	if err := s.Prepare(m, name); err != nil {
		return "", err
	}

	dir, err := os.MkdirTemp("", "buml-"+name+"-*")
	if err != nil {
		return "", fmt.Errorf("create scratch directory: %w", err)
	}
	defer os.RemoveAll(dir)

	l := labelFor(name)
	if _, err := g.Generate(ctx, m, dir); err != nil {
		return "", s.finish(fmt.Sprintf("generating %s from domain model", l.failure), err)
	}
	data, err := os.ReadFile(filepath.Join(dir, single.OutputFile()))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		s.logger.Warn("generator wrote nothing", "generator", name, "classes", len(m.Classes()))
		return l.diagnostic(m), nil
	}
	return strings.TrimRight(string(data), "\n"), nil
}
