package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/buml/pkg/domain"
)

var pythonTypes = map[string]string{
	domain.StringType:    "str",
	domain.IntegerType:   "int",
	domain.FloatType:     "float",
	domain.BooleanType:   "bool",
	domain.TimeType:      "time",
	domain.DateType:      "date",
	domain.DateTimeType:  "datetime",
	domain.TimeDeltaType: "timedelta",
	domain.AnyType:       "Any",
}

// pythonType maps an attribute or end type to a Python annotation.
func pythonType(t domain.Type) string {
	if t == nil {
		return "None"
	}
	if p, ok := t.(*domain.PrimitiveDataType); ok {
		if py, ok := pythonTypes[p.Name]; ok {
			return py
		}
	}
	return t.TypeName()
}

func pythonAnnotation(p *domain.Property) string {
	typ := pythonType(p.Type)
	if _, ok := p.Type.(*domain.Class); ok {
		typ = `"` + typ + `"`
	}
	switch {
	case p.Multiplicity.IsMany():
		return "set[" + typ + "]"
	case !p.Multiplicity.IsRequired():
		return typ + " | None"
	}
	return typ
}

// PythonGenerator writes plain Python classes with typed properties.
type PythonGenerator struct {
	opts Options
}

// OutputFile implements SingleFile.
func (*PythonGenerator) OutputFile() string { return "classes.py" }

// Generate implements Generator.
func (g *PythonGenerator) Generate(_ context.Context, m *domain.DomainModel, dir string) ([]string, error) {
	if len(m.Classes()) == 0 {
		return nil, nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# Classes for domain model '%s'\n", m.Name)
	b.WriteString("from __future__ import annotations\n\n")
	b.WriteString("from abc import ABC, abstractmethod\n")
	b.WriteString("from datetime import date, datetime, time, timedelta\n")
	b.WriteString("from enum import Enum\n")
	b.WriteString("from typing import Any\n")

	for _, e := range m.Enumerations() {
		fmt.Fprintf(&b, "\n\nclass %s(Enum):\n", e.Name)
		if len(e.Literals) == 0 {
			b.WriteString("    pass\n")
		}
		for _, l := range e.Literals {
			fmt.Fprintf(&b, "    %s = %q\n", l.Name, l.Name)
		}
	}

	for _, c := range orderedClasses(m) {
		g.writeClass(&b, m, c)
	}
	g.opts.logger().Debug("Python classes rendered", "classes", len(m.Classes()))

	path, err := writeFile(dir, g.OutputFile(), []byte(b.String()))
	if err != nil {
		return nil, err
	}
	return []string{path}, nil
}

func (g *PythonGenerator) writeClass(b *strings.Builder, m *domain.DomainModel, c *domain.Class) {
	var bases []string
	for _, p := range m.Parents(c) {
		bases = append(bases, p.Name)
	}
	if c.IsAbstract {
		bases = append(bases, "ABC")
	}
	fmt.Fprintf(b, "\n\nclass %s", c.Name)
	if len(bases) > 0 {
		fmt.Fprintf(b, "(%s)", strings.Join(bases, ", "))
	}
	b.WriteString(":\n")

	var inherited []*domain.Property
	if parents := m.Parents(c); len(parents) > 0 {
		inherited = pythonFields(m, parents[0])
	}
	props := append([]*domain.Property{}, c.Attributes...)
	props = append(props, navigableEnds(m, c)...)

	var params, assigns []string
	for _, p := range append(inherited, props...) {
		params = append(params, pythonParam(p))
	}
	for _, p := range props {
		field := snakeCase(p.Name)
		ann := pythonAnnotation(p)
		if p.Multiplicity.IsMany() {
			assigns = append(assigns, fmt.Sprintf("        self.%s: %s = %s if %s is not None else set()", field, ann, field, field))
			continue
		}
		assigns = append(assigns, fmt.Sprintf("        self.%s: %s = %s", field, ann, field))
	}
	// Required parameters must precede those with defaults.
	params = sortRequiredFirst(params)

	if len(params) == 0 && len(c.Methods) == 0 {
		b.WriteString("    pass\n")
		return
	}
	if len(params) > 0 {
		fmt.Fprintf(b, "    def __init__(self, %s):\n", strings.Join(params, ", "))
		if len(inherited) > 0 {
			var kwargs []string
			for _, p := range inherited {
				kwargs = append(kwargs, snakeCase(p.Name)+"="+snakeCase(p.Name))
			}
			fmt.Fprintf(b, "        super().__init__(%s)\n", strings.Join(kwargs, ", "))
		}
		for _, a := range assigns {
			b.WriteString(a + "\n")
		}
	}
	for _, meth := range c.Methods {
		writePythonMethod(b, meth)
	}
}

// pythonFields returns the constructor fields of c, inherited ones first.
func pythonFields(m *domain.DomainModel, c *domain.Class) []*domain.Property {
	var out []*domain.Property
	if parents := m.Parents(c); len(parents) > 0 {
		out = pythonFields(m, parents[0])
	}
	out = append(out, c.Attributes...)
	return append(out, navigableEnds(m, c)...)
}

func pythonParam(p *domain.Property) string {
	field := snakeCase(p.Name)
	ann := pythonAnnotation(p)
	switch {
	case p.Multiplicity.IsMany():
		return fmt.Sprintf("%s: %s | None = None", field, ann)
	case !p.Multiplicity.IsRequired():
		return fmt.Sprintf("%s: %s = None", field, ann)
	}
	return fmt.Sprintf("%s: %s", field, ann)
}

func sortRequiredFirst(params []string) []string {
	var req, opt []string
	for _, p := range params {
		if strings.Contains(p, " = ") {
			opt = append(opt, p)
			continue
		}
		req = append(req, p)
	}
	return append(req, opt...)
}

func writePythonMethod(b *strings.Builder, meth *domain.Method) {
	args := []string{"self"}
	for _, p := range meth.Parameters {
		args = append(args, fmt.Sprintf("%s: %s", snakeCase(p.Name), pythonType(p.Type)))
	}
	b.WriteString("\n")
	if meth.IsAbstract {
		b.WriteString("    @abstractmethod\n")
	}
	fmt.Fprintf(b, "    def %s(%s) -> %s:\n", snakeCase(meth.Name), strings.Join(args, ", "), pythonType(meth.Type))
	if meth.Code != "" {
		for _, line := range strings.Split(strings.TrimRight(meth.Code, "\n"), "\n") {
			b.WriteString("        " + line + "\n")
		}
		return
	}
	b.WriteString("        raise NotImplementedError\n")
}
