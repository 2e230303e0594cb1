package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/buml/pkg/domain"
)

// DefaultBaseIRI is used when Options.BaseIRI is empty; %s is the model name.
const DefaultBaseIRI = "http://example.org/%s#"

var xsdTypes = map[string]string{
	domain.StringType:    "xsd:string",
	domain.IntegerType:   "xsd:integer",
	domain.FloatType:     "xsd:double",
	domain.BooleanType:   "xsd:boolean",
	domain.TimeType:      "xsd:time",
	domain.DateType:      "xsd:date",
	domain.DateTimeType:  "xsd:dateTime",
	domain.TimeDeltaType: "xsd:duration",
	domain.AnyType:       "rdfs:Literal",
}

// RDFGenerator writes an RDFS/OWL vocabulary in Turtle.
type RDFGenerator struct {
	opts Options
}

// OutputFile implements SingleFile.
func (*RDFGenerator) OutputFile() string { return "vocabulary.ttl" }

func (g *RDFGenerator) baseIRI(m *domain.DomainModel) string {
	if g.opts.BaseIRI != "" {
		return g.opts.BaseIRI
	}
	return fmt.Sprintf(DefaultBaseIRI, m.Name)
}

// Generate implements Generator.
func (g *RDFGenerator) Generate(_ context.Context, m *domain.DomainModel, dir string) ([]string, error) {
	if len(m.Classes()) == 0 {
		return nil, nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "@prefix : <%s> .\n", g.baseIRI(m))
	b.WriteString("@prefix owl: <http://www.w3.org/2002/07/owl#> .\n")
	b.WriteString("@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .\n")
	b.WriteString("@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .\n")
	b.WriteString("@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .\n")

	for _, e := range m.Enumerations() {
		fmt.Fprintf(&b, "\n:%s a owl:Class ;\n    rdfs:label %s", e.Name, turtleString(e.Name))
		if len(e.Literals) > 0 {
			lits := make([]string, len(e.Literals))
			for i, l := range e.Literals {
				lits[i] = ":" + e.Name + "_" + l.Name
			}
			fmt.Fprintf(&b, " ;\n    owl:oneOf ( %s )", strings.Join(lits, " "))
		}
		b.WriteString(" .\n")
		for _, l := range e.Literals {
			fmt.Fprintf(&b, "\n:%s_%s a :%s ;\n    rdfs:label %s .\n", e.Name, l.Name, e.Name, turtleString(l.Name))
		}
	}

	for _, c := range orderedClasses(m) {
		fmt.Fprintf(&b, "\n:%s a rdfs:Class, owl:Class ;\n    rdfs:label %s", c.Name, turtleString(c.Name))
		for _, p := range m.Parents(c) {
			fmt.Fprintf(&b, " ;\n    rdfs:subClassOf :%s", p.Name)
		}
		if c.Metadata != nil && c.Metadata.Description != "" {
			fmt.Fprintf(&b, " ;\n    rdfs:comment %s", turtleString(c.Metadata.Description))
		}
		b.WriteString(" .\n")

		for _, p := range c.Attributes {
			rng := ":" + p.Type.TypeName()
			if pt, ok := p.Type.(*domain.PrimitiveDataType); ok {
				rng = xsdTypes[pt.Name]
			}
			kind := "owl:DatatypeProperty"
			if _, ok := p.Type.(*domain.Enumeration); ok {
				kind = "owl:ObjectProperty"
			}
			g.writeProperty(&b, c, p, kind, rng)
		}
	}

	for _, a := range m.Associations {
		for _, end := range a.Ends {
			if !end.IsNavigable {
				continue
			}
			g.writeProperty(&b, end.Owner, end, "owl:ObjectProperty", ":"+className(end.Type))
		}
	}

	path, err := writeFile(dir, g.OutputFile(), []byte(b.String()))
	if err != nil {
		return nil, err
	}
	return []string{path}, nil
}

func (g *RDFGenerator) writeProperty(b *strings.Builder, owner *domain.Class, p *domain.Property, kind, rng string) {
	fmt.Fprintf(b, "\n:%s_%s a %s ;\n    rdfs:label %s ;\n    rdfs:domain :%s ;\n    rdfs:range %s",
		owner.Name, p.Name, kind, turtleString(p.Name), owner.Name, rng)
	if !p.Multiplicity.IsMany() {
		b.WriteString(" ;\n    a owl:FunctionalProperty")
	}
	b.WriteString(" .\n")
}

// turtleString quotes s as a Turtle string literal.
func turtleString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)
	return `"` + r.Replace(s) + `"`
}
