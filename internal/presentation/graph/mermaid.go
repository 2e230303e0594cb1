package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/buml/pkg/domain"
)

// Overlay marks classes to highlight on the diagram.
type Overlay struct {
	Highlighted []string
}

var visibilitySymbols = map[string]string{
	domain.VisibilityPublic:    "+",
	domain.VisibilityPrivate:   "-",
	domain.VisibilityProtected: "#",
	domain.VisibilityPackage:   "~",
}

// GenerateMermaid produces a Mermaid classDiagram for m.
// It applies UML notation:
// - Abstract classes get the <<abstract>> annotation
// - Enumerations get <<enumeration>> and list their literals
// - Generalizations use <|--, compositions *--, plain associations --
// Association classes are linked to their association with a dotted line.
func GenerateMermaid(m *domain.DomainModel, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("classDiagram\n")

	for _, c := range m.Classes() {
		id := sanitizeMermaidID(c.Name)
		fmt.Fprintf(&sb, "    class %s {\n", id)
		if c.IsAbstract {
			sb.WriteString("        <<abstract>>\n")
		}
		for _, a := range c.Attributes {
			fmt.Fprintf(&sb, "        %s%s %s\n", visibilitySymbols[a.Visibility], typeName(a.Type), a.Name)
		}
		for _, op := range c.Methods {
			params := make([]string, 0, len(op.Parameters))
			for _, p := range op.Parameters {
				params = append(params, typeName(p.Type)+" "+p.Name)
			}
			line := fmt.Sprintf("        %s%s(%s)", visibilitySymbols[op.Visibility], op.Name, strings.Join(params, ", "))
			if op.Type != nil {
				line += " " + op.Type.TypeName()
			}
			if op.IsAbstract {
				line += "*"
			}
			sb.WriteString(line + "\n")
		}
		sb.WriteString("    }\n")
	}

	for _, e := range m.Enumerations() {
		id := sanitizeMermaidID(e.Name)
		fmt.Fprintf(&sb, "    class %s {\n        <<enumeration>>\n", id)
		for _, l := range e.Literals {
			fmt.Fprintf(&sb, "        %s\n", l.Name)
		}
		sb.WriteString("    }\n")
	}

	for _, g := range m.Generalizations {
		fmt.Fprintf(&sb, "    %s <|-- %s\n", sanitizeMermaidID(g.General.Name), sanitizeMermaidID(g.Specific.Name))
	}

	for _, a := range m.Associations {
		src, dst := a.Ends[0], a.Ends[1]
		arrow := "--"
		switch {
		case src.IsComposite:
			arrow = "*--"
		case dst.IsComposite:
			arrow = "--*"
		case !src.IsNavigable || !dst.IsNavigable:
			arrow = "-->"
		}
		// Ends[0] is typed by the target, so its multiplicity sits on the target side.
		fmt.Fprintf(&sb, "    %s \"%s\" %s \"%s\" %s : %s\n",
			sanitizeMermaidID(a.Source().Name), dst.Multiplicity,
			arrow,
			src.Multiplicity, sanitizeMermaidID(a.Target().Name),
			strings.ReplaceAll(a.Name, "\"", "'"))
	}

	for _, ac := range m.AssociationClasses() {
		if ac.Association == nil {
			continue
		}
		fmt.Fprintf(&sb, "    %s .. %s\n", sanitizeMermaidID(ac.Association.Source().Name), sanitizeMermaidID(ac.Name))
	}

	if overlay != nil && len(overlay.Highlighted) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		seen := make(map[string]bool)
		for _, name := range overlay.Highlighted {
			id := sanitizeMermaidID(name)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			fmt.Fprintf(&sb, "    style %s fill:#ffeb3b,stroke:#fbc02d,stroke-width:2px,color:#000\n", id)
		}
	}

	return sb.String()
}

func typeName(t domain.Type) string {
	if t == nil {
		return "any"
	}
	return t.TypeName()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
