package generator

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aretw0/buml/internal/openapi"
	"github.com/aretw0/buml/pkg/domain"
	"github.com/getkin/kin-openapi/openapi3"
)

// RESTAPIGenerator writes an OpenAPI document with CRUD endpoints for every
// concrete class. The document is validated before it is written.
type RESTAPIGenerator struct {
	opts Options
}

// OutputFile implements SingleFile.
func (*RESTAPIGenerator) OutputFile() string { return "openapi.yaml" }

// Generate implements Generator.
func (g *RESTAPIGenerator) Generate(ctx context.Context, m *domain.DomainModel, dir string) ([]string, error) {
	if len(m.Classes()) == 0 {
		return nil, nil
	}
	data, err := openapi.Render(ctx, restDocument(m))
	if err != nil {
		return nil, err
	}
	path, err := writeFile(dir, g.OutputFile(), data)
	if err != nil {
		return nil, err
	}
	g.opts.logger().Debug("OpenAPI document rendered", "bytes", len(data))
	return []string{path}, nil
}

func restDocument(m *domain.DomainModel) *openapi3.T {
	var opts []openapi3.NewPathsOption
	for _, c := range orderedClasses(m) {
		if c.IsAbstract {
			continue
		}
		opts = append(opts, restPaths(m, c)...)
	}
	return &openapi3.T{
		OpenAPI: openapi.Version,
		Info: &openapi3.Info{
			Title:       m.Name + " API",
			Description: fmt.Sprintf("CRUD endpoints for the %s domain model", m.Name),
			Version:     "1.0.0",
		},
		Paths: openapi3.NewPaths(opts...),
	}
}

// restSchema flattens c and its ancestors into one object schema.
// Associations are exposed as identifiers of the related objects.
func restSchema(m *domain.DomainModel, c *domain.Class, withID bool) *openapi3.Schema {
	s := openapi3.NewObjectSchema()
	var required []string
	if withID {
		s.WithProperty("id", openapi3.NewIntegerSchema())
		required = append(required, "id")
	}
	for _, cls := range lineage(m, c) {
		for _, p := range cls.Attributes {
			s.WithProperty(p.Name, restPropertySchema(p, restValueSchema(p.Type)))
			if p.Multiplicity.IsRequired() {
				required = append(required, p.Name)
			}
		}
		for _, end := range navigableEnds(m, cls) {
			name := end.Name + "_id"
			if end.Multiplicity.IsMany() {
				name = end.Name + "_ids"
			}
			s.WithProperty(name, restPropertySchema(end, openapi3.NewIntegerSchema()))
		}
	}
	if len(required) > 0 {
		s.WithRequired(required)
	}
	return s
}

func restValueSchema(t domain.Type) *openapi3.Schema {
	switch v := t.(type) {
	case *domain.Enumeration:
		s := openapi3.NewStringSchema()
		if len(v.Literals) == 0 {
			return s
		}
		var values []any
		for _, l := range v.Literals {
			values = append(values, l.Name)
		}
		return s.WithEnum(values...)
	case *domain.PrimitiveDataType:
		switch v.Name {
		case domain.IntegerType:
			return openapi3.NewIntegerSchema()
		case domain.FloatType:
			return openapi3.NewFloat64Schema()
		case domain.BooleanType:
			return openapi3.NewBoolSchema()
		case domain.DateType:
			return openapi3.NewStringSchema().WithFormat("date")
		case domain.DateTimeType:
			return openapi3.NewDateTimeSchema()
		case domain.TimeType:
			return openapi3.NewStringSchema().WithFormat("time")
		case domain.TimeDeltaType:
			return openapi3.NewStringSchema().WithFormat("duration")
		case domain.AnyType:
			return openapi3.NewSchema()
		}
	}
	return openapi3.NewStringSchema()
}

func restPropertySchema(p *domain.Property, v *openapi3.Schema) *openapi3.Schema {
	if p.Metadata != nil && p.Metadata.Description != "" {
		v.Description = p.Metadata.Description
	}
	if p.Multiplicity.IsMany() {
		return openapi3.NewArraySchema().WithItems(v)
	}
	return v
}

func restJSON(description string, schema *openapi3.Schema) *openapi3.ResponseRef {
	resp := openapi3.NewResponse().WithDescription(description)
	if schema != nil {
		resp = resp.WithJSONSchema(schema)
	}
	return &openapi3.ResponseRef{Value: resp}
}

func restPaths(m *domain.DomainModel, c *domain.Class) []openapi3.NewPathsOption {
	name := pascalCase(c.Name)
	collection := "/" + snakeCase(c.Name) + "s"
	item := collection + "/{id}"
	read := restSchema(m, c, true)
	write := restSchema(m, c, false)
	notFound := restJSON(c.Name+" not found", nil)

	idParam := &openapi3.ParameterRef{Value: openapi3.NewPathParameter("id").
		WithDescription(c.Name + " identifier").
		WithSchema(openapi3.NewIntegerSchema())}
	body := &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(write)}

	list := openapi3.NewOperation()
	list.OperationID = "list" + name
	list.Tags = []string{c.Name}
	list.Summary = "List " + c.Name + " objects"
	list.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, restJSON(c.Name+" objects", openapi3.NewArraySchema().WithItems(read))),
	)

	create := openapi3.NewOperation()
	create.OperationID = "create" + name
	create.Tags = []string{c.Name}
	create.Summary = "Create a " + c.Name
	create.RequestBody = body
	create.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusCreated, restJSON("Created", read)),
		openapi3.WithStatus(http.StatusUnprocessableEntity, restJSON("Validation error", nil)),
	)

	get := openapi3.NewOperation()
	get.OperationID = "get" + name
	get.Tags = []string{c.Name}
	get.Parameters = openapi3.Parameters{idParam}
	get.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, restJSON(c.Name, read)),
		openapi3.WithStatus(http.StatusNotFound, notFound),
	)

	update := openapi3.NewOperation()
	update.OperationID = "update" + name
	update.Tags = []string{c.Name}
	update.Parameters = openapi3.Parameters{idParam}
	update.RequestBody = body
	update.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, restJSON("Updated", read)),
		openapi3.WithStatus(http.StatusNotFound, notFound),
	)

	del := openapi3.NewOperation()
	del.OperationID = "delete" + name
	del.Tags = []string{c.Name}
	del.Parameters = openapi3.Parameters{idParam}
	del.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusNoContent, restJSON("Deleted", nil)),
		openapi3.WithStatus(http.StatusNotFound, notFound),
	)

	return []openapi3.NewPathsOption{
		openapi3.WithPath(collection, &openapi3.PathItem{Get: list, Post: create}),
		openapi3.WithPath(item, &openapi3.PathItem{Get: get, Put: update, Delete: del}),
	}
}
