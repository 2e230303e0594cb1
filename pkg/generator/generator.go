// Package generator turns a domain model into source code and schemas.
//
// Every generator writes one or more files into a directory. Generators
// whose output is a single file also implement SingleFile so callers can
// read the artifact back. A model without classes produces no files.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/buml/internal/logging"
	"github.com/aretw0/buml/pkg/domain"
	"github.com/aretw0/buml/pkg/registry"
)

// Generator names, as used by the generation tools.
const (
	SQL        = "sql"
	Python     = "python"
	Java       = "java"
	JSONSchema = "json_schema"
	SmartData  = "json_smart_data"
	RDF        = "rdf"
	RESTAPI    = "rest_api"
	SQLAlchemy = "sql_alchemy"
	Pydantic   = "pydantic"
	Backend    = "backend"
)

// Generator produces artifacts for a model inside dir and returns the
// paths it wrote.
type Generator interface {
	Generate(ctx context.Context, m *domain.DomainModel, dir string) ([]string, error)
}

// SingleFile is implemented by generators with one well-known output file.
type SingleFile interface {
	OutputFile() string
}

// Options configures generator construction.
type Options struct {
	// Dialect selects the SQL flavour (sqlite, postgresql, mysql, mariadb, mssql).
	Dialect string
	// ValidateSQL executes generated SQLite DDL in an in-memory database.
	ValidateSQL bool
	// BaseIRI is the namespace of the RDF vocabulary.
	BaseIRI string
	// Logger receives generation diagnostics.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return logging.NewNop()
	}
	return o.Logger
}

// Factory builds a generator from options.
type Factory func(Options) (Generator, error)

// Registry maps generator names to factories.
type Registry = registry.Registry[Factory]

// NewRegistry returns a registry holding every built-in generator.
func NewRegistry() *Registry {
	r := registry.New[Factory]("generator")
	r.Register(SQL, func(o Options) (Generator, error) { return NewSQL(o) })
	r.Register(Python, func(o Options) (Generator, error) { return &PythonGenerator{opts: o}, nil })
	r.Register(Java, func(o Options) (Generator, error) { return &JavaGenerator{opts: o}, nil })
	r.Register(JSONSchema, func(o Options) (Generator, error) { return &JSONSchemaGenerator{opts: o}, nil })
	r.Register(SmartData, func(o Options) (Generator, error) { return &SmartDataGenerator{opts: o}, nil })
	r.Register(RDF, func(o Options) (Generator, error) { return &RDFGenerator{opts: o}, nil })
	r.Register(RESTAPI, func(o Options) (Generator, error) { return &RESTAPIGenerator{opts: o}, nil })
	r.Register(SQLAlchemy, func(o Options) (Generator, error) { return &SQLAlchemyGenerator{opts: o}, nil })
	r.Register(Pydantic, func(o Options) (Generator, error) { return &PydanticGenerator{opts: o}, nil })
	r.Register(Backend, func(o Options) (Generator, error) { return &BackendGenerator{opts: o}, nil })
	return r
}

// writeFile writes data to dir/name, creating parent directories.
func writeFile(dir, name string, data []byte) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}
