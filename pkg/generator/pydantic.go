package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/buml/pkg/domain"
)

// PydanticGenerator writes Pydantic v2 models. Associations are exposed as
// the identifiers of the related objects.
type PydanticGenerator struct {
	opts Options
}

// OutputFile implements SingleFile.
func (*PydanticGenerator) OutputFile() string { return "pydantic_classes.py" }

// Generate implements Generator.
func (g *PydanticGenerator) Generate(_ context.Context, m *domain.DomainModel, dir string) ([]string, error) {
	if len(m.Classes()) == 0 {
		return nil, nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# Pydantic models for domain model '%s'\n", m.Name)
	b.WriteString("from __future__ import annotations\n\n")
	b.WriteString("from datetime import date, datetime, time, timedelta\n")
	b.WriteString("from enum import Enum\n")
	b.WriteString("from typing import Any, List, Optional\n\n")
	b.WriteString("from pydantic import BaseModel, Field\n")

	for _, e := range m.Enumerations() {
		fmt.Fprintf(&b, "\n\nclass %s(str, Enum):\n", e.Name)
		if len(e.Literals) == 0 {
			b.WriteString("    pass\n")
		}
		for _, l := range e.Literals {
			fmt.Fprintf(&b, "    %s = %q\n", l.Name, l.Name)
		}
	}

	for _, c := range orderedClasses(m) {
		base := "BaseModel"
		if parents := m.Parents(c); len(parents) > 0 {
			base = parents[0].Name
		}
		fmt.Fprintf(&b, "\n\nclass %s(%s):\n", c.Name, base)
		if c.Metadata != nil && c.Metadata.Description != "" {
			fmt.Fprintf(&b, "    %q\n\n", c.Metadata.Description)
		}
		var fields []string
		for _, p := range c.Attributes {
			fields = append(fields, pydanticField(snakeCase(p.Name), pythonType(p.Type), p))
		}
		for _, end := range navigableEnds(m, c) {
			name := snakeCase(end.Name) + "_id"
			if end.Multiplicity.IsMany() {
				name += "s"
			}
			fields = append(fields, pydanticField(name, "int", end))
		}
		if len(fields) == 0 {
			b.WriteString("    pass\n")
			continue
		}
		for _, f := range fields {
			b.WriteString("    " + f + "\n")
		}
	}

	path, err := writeFile(dir, g.OutputFile(), []byte(b.String()))
	if err != nil {
		return nil, err
	}
	g.opts.logger().Debug("Pydantic models rendered", "classes", len(m.Classes()))
	return []string{path}, nil
}

func pydanticField(name, typ string, p *domain.Property) string {
	switch {
	case p.Multiplicity.IsMany():
		var constraints []string
		if p.Multiplicity.Min > 0 {
			constraints = append(constraints, fmt.Sprintf("min_length=%d", p.Multiplicity.Min))
		}
		if p.Multiplicity.Max != domain.Unbounded {
			constraints = append(constraints, fmt.Sprintf("max_length=%d", p.Multiplicity.Max))
		}
		args := append([]string{"default_factory=list"}, constraints...)
		return fmt.Sprintf("%s: List[%s] = Field(%s)", name, typ, strings.Join(args, ", "))
	case !p.Multiplicity.IsRequired():
		return fmt.Sprintf("%s: Optional[%s] = None", name, typ)
	}
	return fmt.Sprintf("%s: %s", name, typ)
}
