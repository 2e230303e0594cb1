package modeling

import (
	"fmt"
	"strings"

	"github.com/aretw0/buml/pkg/domain"
)

// AboutText describes the toolkit.
const AboutText = "BESSER is a Python-based low-modeling low-code platform for smart and AI-enhanced software development. " +
	"It provides modeling capabilities and code generation tools to help developers build software faster.\n\n" +
	"Learn more about BESSER at: https://github.com/BESSER-PEARL/BESSER"

// NoClasses is returned by Classes for a model without classes.
const NoClasses = "The domain model contains no classes."

// Info summarises a model. Total types excludes the seeded primitives.
func Info(m *domain.DomainModel) string {
	classes := m.Classes()
	total := 0
	for _, t := range m.Types {
		if _, ok := t.(*domain.PrimitiveDataType); !ok {
			total++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Domain Model: %s\n", m.Name)
	fmt.Fprintf(&b, "Total types: %d\n", total)
	fmt.Fprintf(&b, "Classes: %d", len(classes))
	if len(classes) > 0 {
		b.WriteString("\nClass details:")
		for _, c := range classes {
			fmt.Fprintf(&b, "\n  - %s (%d attributes)", c.Name, len(c.Attributes))
			for _, a := range c.Attributes {
				typ := "None"
				if a.Type != nil {
					typ = a.Type.TypeName()
				}
				fmt.Fprintf(&b, "\n    * %s: %s", a.Name, typ)
			}
		}
	}
	return b.String()
}

// Classes lists class names, one per line, in insertion order.
func Classes(m *domain.DomainModel) string {
	classes := m.Classes()
	if len(classes) == 0 {
		return NoClasses
	}
	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = c.Name
	}
	return strings.Join(names, "\n")
}
