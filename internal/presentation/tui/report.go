package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/buml/internal/presentation/graph"
	"github.com/aretw0/buml/pkg/domain"
)

// Report renders m as a markdown document with a Mermaid class diagram.
func Report(m *domain.DomainModel) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Domain model: %s\n\n", m.Name)

	classes := m.Classes()
	if len(classes) == 0 {
		sb.WriteString("_The domain model contains no classes._\n")
	} else {
		sb.WriteString("## Classes\n\n| Class | Attributes | Methods | Abstract |\n|---|---|---|---|\n")
		for _, c := range classes {
			attrs := make([]string, 0, len(c.Attributes))
			for _, a := range c.Attributes {
				attrs = append(attrs, fmt.Sprintf("%s: %s", a.Name, typeLabel(a.Type)))
			}
			methods := make([]string, 0, len(c.Methods))
			for _, op := range c.Methods {
				methods = append(methods, op.Name+"()")
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %t |\n", c.Name, cell(attrs), cell(methods), c.IsAbstract)
		}
	}

	if enums := m.Enumerations(); len(enums) > 0 {
		sb.WriteString("\n## Enumerations\n\n")
		for _, e := range enums {
			literals := make([]string, 0, len(e.Literals))
			for _, l := range e.Literals {
				literals = append(literals, l.Name)
			}
			fmt.Fprintf(&sb, "- **%s**: %s\n", e.Name, cell(literals))
		}
	}

	if len(m.Associations) > 0 {
		sb.WriteString("\n## Associations\n\n")
		for _, a := range m.Associations {
			fmt.Fprintf(&sb, "- **%s**: %s [%s] to %s [%s]\n", a.Name,
				a.Source().Name, a.Ends[1].Multiplicity, a.Target().Name, a.Ends[0].Multiplicity)
		}
	}

	if len(m.Generalizations) > 0 {
		sb.WriteString("\n## Generalizations\n\n")
		for _, g := range m.Generalizations {
			fmt.Fprintf(&sb, "- %s <|-- %s\n", g.General.Name, g.Specific.Name)
		}
	}

	if len(m.Constraints) > 0 {
		sb.WriteString("\n## Constraints\n\n")
		for _, c := range m.Constraints {
			fmt.Fprintf(&sb, "- **%s** (%s): `%s`\n", c.Name, c.Context.Name, c.Expression)
		}
	}

	if len(classes) > 0 {
		sb.WriteString("\n## Diagram\n\n```mermaid\n")
		sb.WriteString(graph.GenerateMermaid(m, nil))
		sb.WriteString("```\n")
	}
	return sb.String()
}

func typeLabel(t domain.Type) string {
	if t == nil {
		return "any"
	}
	return t.TypeName()
}

func cell(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
