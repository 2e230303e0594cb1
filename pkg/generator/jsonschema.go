package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/aretw0/buml/pkg/domain"
	"github.com/google/jsonschema-go/jsonschema"
)

// Draft2020 is the dialect URI written into every generated schema.
const Draft2020 = "https://json-schema.org/draft/2020-12/schema"

// JSONSchemaGenerator writes a single schema.json whose $defs hold one
// schema per class and enumeration.
type JSONSchemaGenerator struct {
	opts Options
}

// OutputFile implements SingleFile.
func (*JSONSchemaGenerator) OutputFile() string { return "schema.json" }

// Generate implements Generator.
func (g *JSONSchemaGenerator) Generate(_ context.Context, m *domain.DomainModel, dir string) ([]string, error) {
	if len(m.Classes()) == 0 {
		return nil, nil
	}
	root := &jsonschema.Schema{
		Schema: Draft2020,
		ID:     "urn:buml:" + m.Name,
		Title:  m.Name,
		Defs:   make(map[string]*jsonschema.Schema),
	}
	for _, e := range m.Enumerations() {
		root.Defs[e.Name] = enumSchema(e)
	}
	for _, c := range m.Classes() {
		root.Defs[c.Name] = classSchema(m, c)
		root.AnyOf = append(root.AnyOf, &jsonschema.Schema{Ref: defRef(c.Name)})
	}

	data, err := marshalSchema(root)
	if err != nil {
		return nil, err
	}
	p, err := writeFile(dir, g.OutputFile(), data)
	if err != nil {
		return nil, err
	}
	return []string{p}, nil
}

// SmartDataGenerator writes one FIWARE Smart Data Models style schema per
// class, each in <Class>/schema.json.
type SmartDataGenerator struct {
	opts Options
}

const (
	smartDataCommons = "https://smart-data-models.github.io/data-models/common-schema.json"
)

// Generate implements Generator.
func (g *SmartDataGenerator) Generate(_ context.Context, m *domain.DomainModel, dir string) ([]string, error) {
	if len(m.Classes()) == 0 {
		return nil, nil
	}
	var paths []string
	for _, c := range m.Classes() {
		own := smartDataProperties(m, c)
		own.Properties["type"] = &jsonschema.Schema{
			Type:        "string",
			Enum:        []any{c.Name},
			Description: "Property. NGSI Entity type. It has to be " + c.Name,
		}

		s := &jsonschema.Schema{
			Schema:      Draft2020,
			ID:          fmt.Sprintf("https://smart-data-models.github.io/dataModel.%s/%s/schema.json", m.Name, c.Name),
			Title:       "Smart Data Models - " + c.Name,
			Description: description(c.Metadata, "Data model for "+c.Name),
			Type:        "object",
			AllOf: []*jsonschema.Schema{
				{Ref: smartDataCommons + "#/definitions/GSMA-Commons"},
				{Ref: smartDataCommons + "#/definitions/Location-Commons"},
				own,
			},
			Required: []string{"id", "type"},
		}
		data, err := marshalSchema(s)
		if err != nil {
			return nil, err
		}
		p, err := writeFile(dir, path.Join(c.Name, "schema.json"), data)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	g.opts.logger().Debug("Smart data schemas rendered", "files", len(paths))
	return paths, nil
}

func defRef(name string) string { return "#/$defs/" + name }

func description(md *domain.Metadata, fallback string) string {
	if md != nil && md.Description != "" {
		return md.Description
	}
	return fallback
}

func enumSchema(e *domain.Enumeration) *jsonschema.Schema {
	s := &jsonschema.Schema{Type: "string", Title: e.Name}
	for _, l := range e.Literals {
		s.Enum = append(s.Enum, l.Name)
	}
	if e.Metadata != nil {
		s.Description = e.Metadata.Description
	}
	return s
}

// primitiveSchema maps a primitive type to a JSON Schema fragment.
func primitiveSchema(name string) *jsonschema.Schema {
	switch name {
	case domain.StringType:
		return &jsonschema.Schema{Type: "string"}
	case domain.IntegerType:
		return &jsonschema.Schema{Type: "integer"}
	case domain.FloatType:
		return &jsonschema.Schema{Type: "number"}
	case domain.BooleanType:
		return &jsonschema.Schema{Type: "boolean"}
	case domain.TimeType:
		return &jsonschema.Schema{Type: "string", Format: "time"}
	case domain.DateType:
		return &jsonschema.Schema{Type: "string", Format: "date"}
	case domain.DateTimeType:
		return &jsonschema.Schema{Type: "string", Format: "date-time"}
	case domain.TimeDeltaType:
		return &jsonschema.Schema{Type: "string", Format: "duration"}
	}
	return &jsonschema.Schema{}
}

func propertySchema(p *domain.Property, value *jsonschema.Schema) *jsonschema.Schema {
	if p.Metadata != nil {
		value.Description = p.Metadata.Description
	}
	if !p.Multiplicity.IsMany() {
		return value
	}
	arr := &jsonschema.Schema{Type: "array", Items: value}
	if p.Multiplicity.Min > 0 {
		lower := p.Multiplicity.Min
		arr.MinItems = &lower
	}
	if p.Multiplicity.Max != domain.Unbounded {
		upper := p.Multiplicity.Max
		arr.MaxItems = &upper
	}
	return arr
}

// classSchema describes c as an object schema referencing other $defs.
func classSchema(m *domain.DomainModel, c *domain.Class) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:       "object",
		Title:      c.Name,
		Properties: make(map[string]*jsonschema.Schema),
	}
	if c.Metadata != nil {
		s.Description = c.Metadata.Description
	}
	for _, p := range m.Parents(c) {
		s.AllOf = append(s.AllOf, &jsonschema.Schema{Ref: defRef(p.Name)})
	}

	props := append(append([]*domain.Property{}, c.Attributes...), navigableEnds(m, c)...)
	for _, p := range props {
		var v *jsonschema.Schema
		if pt, ok := p.Type.(*domain.PrimitiveDataType); ok {
			v = primitiveSchema(pt.Name)
		} else {
			v = &jsonschema.Schema{Ref: defRef(p.Type.TypeName())}
		}
		s.Properties[p.Name] = propertySchema(p, v)
		if p.Multiplicity.IsRequired() {
			s.Required = append(s.Required, p.Name)
		}
	}
	return s
}

// smartDataProperties flattens c and its ancestors into one properties
// block. Enumerations are inlined and associations become URI relationships.
func smartDataProperties(m *domain.DomainModel, c *domain.Class) *jsonschema.Schema {
	s := &jsonschema.Schema{Type: "object", Properties: make(map[string]*jsonschema.Schema)}
	for _, cls := range lineage(m, c) {
		for _, p := range cls.Attributes {
			v := &jsonschema.Schema{}
			switch t := p.Type.(type) {
			case *domain.PrimitiveDataType:
				v = primitiveSchema(t.Name)
			case *domain.Enumeration:
				v = enumSchema(t)
				v.Title = ""
			}
			v = propertySchema(p, v)
			if v.Description == "" {
				v.Description = "Property. " + p.Name
			}
			s.Properties[p.Name] = v
		}
		for _, end := range navigableEnds(m, cls) {
			rel := &jsonschema.Schema{
				Type:        "string",
				Format:      "uri",
				Description: fmt.Sprintf("Relationship. Reference to an entity of type %s", className(end.Type)),
			}
			s.Properties[end.Name] = propertySchema(end, rel)
		}
	}
	return s
}

func marshalSchema(s *jsonschema.Schema) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return append(data, '\n'), nil
}
