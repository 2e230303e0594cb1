package generator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/buml/pkg/domain"
)

var javaTypes = map[string]string{
	domain.StringType:    "String",
	domain.IntegerType:   "int",
	domain.FloatType:     "float",
	domain.BooleanType:   "boolean",
	domain.TimeType:      "LocalTime",
	domain.DateType:      "LocalDate",
	domain.DateTimeType:  "LocalDateTime",
	domain.TimeDeltaType: "Duration",
	domain.AnyType:       "Object",
}

var javaImports = map[string]string{
	"LocalTime":     "java.time.LocalTime",
	"LocalDate":     "java.time.LocalDate",
	"LocalDateTime": "java.time.LocalDateTime",
	"Duration":      "java.time.Duration",
	"List":          "java.util.List",
	"ArrayList":     "java.util.ArrayList",
}

// JavaGenerator writes one .java file per class and enumeration.
type JavaGenerator struct {
	opts Options
}

// Generate implements Generator.
func (g *JavaGenerator) Generate(_ context.Context, m *domain.DomainModel, dir string) ([]string, error) {
	if len(m.Classes()) == 0 {
		return nil, nil
	}
	var paths []string
	for _, e := range m.Enumerations() {
		var b strings.Builder
		fmt.Fprintf(&b, "public enum %s {\n", e.Name)
		lits := make([]string, len(e.Literals))
		for i, l := range e.Literals {
			lits[i] = "    " + l.Name
		}
		b.WriteString(strings.Join(lits, ",\n"))
		b.WriteString("\n}\n")
		path, err := writeFile(dir, e.Name+".java", []byte(b.String()))
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	for _, c := range orderedClasses(m) {
		path, err := writeFile(dir, c.Name+".java", []byte(g.class(m, c)))
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	g.opts.logger().Debug("Java sources rendered", "files", len(paths))
	return paths, nil
}

type javaField struct {
	name string
	typ  string
	many bool
}

func javaType(t domain.Type, boxed bool) string {
	if p, ok := t.(*domain.PrimitiveDataType); ok {
		typ := javaTypes[p.Name]
		if typ == "" {
			typ = "Object"
		}
		if boxed {
			switch typ {
			case "int":
				return "Integer"
			case "float":
				return "Float"
			case "boolean":
				return "Boolean"
			}
		}
		return typ
	}
	if t == nil {
		return "Object"
	}
	return t.TypeName()
}

func (g *JavaGenerator) class(m *domain.DomainModel, c *domain.Class) string {
	imports := map[string]bool{}
	var fields []javaField
	props := append(append([]*domain.Property{}, c.Attributes...), navigableEnds(m, c)...)
	for _, p := range props {
		f := javaField{name: camelCase(p.Name), many: p.Multiplicity.IsMany()}
		if f.many {
			f.typ = "List<" + javaType(p.Type, true) + ">"
			imports["List"], imports["ArrayList"] = true, true
		} else {
			f.typ = javaType(p.Type, !p.Multiplicity.IsRequired())
		}
		for _, simple := range strings.FieldsFunc(f.typ, func(r rune) bool { return r == '<' || r == '>' }) {
			if _, ok := javaImports[simple]; ok {
				imports[simple] = true
			}
		}
		fields = append(fields, f)
	}

	var b strings.Builder
	if len(imports) > 0 {
		var lines []string
		for simple := range imports {
			lines = append(lines, "import "+javaImports[simple]+";")
		}
		sort.Strings(lines)
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n\n")
	}

	b.WriteString("public ")
	if c.IsAbstract {
		b.WriteString("abstract ")
	}
	fmt.Fprintf(&b, "class %s", c.Name)
	if parents := m.Parents(c); len(parents) > 0 {
		fmt.Fprintf(&b, " extends %s", parents[0].Name)
	}
	b.WriteString(" {\n")

	for _, f := range fields {
		if f.many {
			fmt.Fprintf(&b, "    private %s %s = new ArrayList<>();\n", f.typ, f.name)
			continue
		}
		fmt.Fprintf(&b, "    private %s %s;\n", f.typ, f.name)
	}

	var ctorArgs []string
	for _, f := range fields {
		if !f.many {
			ctorArgs = append(ctorArgs, f.typ+" "+f.name)
		}
	}
	if len(ctorArgs) > 0 {
		fmt.Fprintf(&b, "\n    public %s() {\n    }\n", c.Name)
	}
	fmt.Fprintf(&b, "\n    public %s(%s) {\n", c.Name, strings.Join(ctorArgs, ", "))
	for _, f := range fields {
		if !f.many {
			fmt.Fprintf(&b, "        this.%s = %s;\n", f.name, f.name)
		}
	}
	b.WriteString("    }\n")

	for _, f := range fields {
		fmt.Fprintf(&b, "\n    public %s get%s() {\n        return this.%s;\n    }\n", f.typ, pascalCase(f.name), f.name)
		if !f.many {
			fmt.Fprintf(&b, "\n    public void set%s(%s %s) {\n        this.%s = %s;\n    }\n",
				pascalCase(f.name), f.typ, f.name, f.name, f.name)
		}
	}

	for _, meth := range c.Methods {
		var params []string
		for _, p := range meth.Parameters {
			params = append(params, javaType(p.Type, false)+" "+camelCase(p.Name))
		}
		vis := meth.Visibility
		if vis == domain.VisibilityPackage || vis == "" {
			vis = ""
		} else {
			vis += " "
		}
		ret := "void"
		if meth.Type != nil {
			ret = javaType(meth.Type, false)
		}
		if meth.IsAbstract && c.IsAbstract {
			fmt.Fprintf(&b, "\n    %sabstract %s %s(%s);\n", vis, ret, camelCase(meth.Name), strings.Join(params, ", "))
			continue
		}
		fmt.Fprintf(&b, "\n    %s%s %s(%s) {\n", vis, ret, camelCase(meth.Name), strings.Join(params, ", "))
		b.WriteString("        throw new UnsupportedOperationException(\"Not implemented\");\n    }\n")
	}
	b.WriteString("}\n")
	return b.String()
}
