package generator

import (
	"context"
	"fmt"

	"github.com/aretw0/buml/pkg/domain"
)

// BackendGenerator combines the SQLAlchemy, Pydantic and OpenAPI outputs
// into one directory.
type BackendGenerator struct {
	opts Options
}

type singleFileGenerator interface {
	Generator
	SingleFile
}

func (g *BackendGenerator) parts() []singleFileGenerator {
	return []singleFileGenerator{
		&SQLAlchemyGenerator{opts: g.opts},
		&PydanticGenerator{opts: g.opts},
		&RESTAPIGenerator{opts: g.opts},
	}
}

// Generate implements Generator.
func (g *BackendGenerator) Generate(ctx context.Context, m *domain.DomainModel, dir string) ([]string, error) {
	var paths []string
	for _, part := range g.parts() {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		written, err := part.Generate(ctx, m, dir)
		if err != nil {
			return paths, fmt.Errorf("%s: %w", part.OutputFile(), err)
		}
		paths = append(paths, written...)
	}
	return paths, nil
}
