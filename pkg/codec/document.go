package codec

import (
	"time"

	"github.com/aretw0/buml/pkg/domain"
)

// FormatV1 identifies the current document layout.
const FormatV1 = "buml/v1"

// Type kinds used in typeDoc.Kind.
const (
	kindClass            = "class"
	kindEnumeration      = "enumeration"
	kindAssociationClass = "association_class"
)

// document is the JSON payload wrapped by a token. Types keeps the model's
// insertion order; primitive types are implicit.
type document struct {
	Format          string              `json:"format"`
	Name            string              `json:"name"`
	Types           []typeDoc           `json:"types,omitempty"`
	Associations    []associationDoc    `json:"associations,omitempty"`
	Generalizations []generalizationDoc `json:"generalizations,omitempty"`
	Constraints     []constraintDoc     `json:"constraints,omitempty"`
}

type typeDoc struct {
	Kind        string           `json:"kind"`
	Name        string           `json:"name"`
	Abstract    bool             `json:"abstract,omitempty"`
	ReadOnly    bool             `json:"read_only,omitempty"`
	Derived     bool             `json:"derived,omitempty"`
	Timestamp   *time.Time       `json:"timestamp,omitempty"`
	Metadata    *domain.Metadata `json:"metadata,omitempty"`
	Attributes  []propertyDoc    `json:"attributes,omitempty"`
	Methods     []methodDoc      `json:"methods,omitempty"`
	Literals    []string         `json:"literals,omitempty"`
	Association string           `json:"association,omitempty"`
}

type propertyDoc struct {
	Name         string           `json:"name"`
	Type         string           `json:"type,omitempty"`
	Owner        string           `json:"owner,omitempty"`
	Multiplicity string           `json:"multiplicity"`
	Visibility   string           `json:"visibility,omitempty"`
	Composite    bool             `json:"composite,omitempty"`
	Navigable    bool             `json:"navigable"`
	ID           bool             `json:"id,omitempty"`
	ReadOnly     bool             `json:"read_only,omitempty"`
	Derived      bool             `json:"derived,omitempty"`
	Metadata     *domain.Metadata `json:"metadata,omitempty"`
}

type methodDoc struct {
	Name       string         `json:"name"`
	Visibility string         `json:"visibility,omitempty"`
	Abstract   bool           `json:"abstract,omitempty"`
	Parameters []parameterDoc `json:"parameters,omitempty"`
	Type       string         `json:"type,omitempty"`
	Code       string         `json:"code,omitempty"`
}

type parameterDoc struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

type associationDoc struct {
	Name string         `json:"name"`
	Ends [2]propertyDoc `json:"ends"`
}

type generalizationDoc struct {
	General  string `json:"general"`
	Specific string `json:"specific"`
}

type constraintDoc struct {
	Name       string `json:"name"`
	Context    string `json:"context"`
	Expression string `json:"expression"`
	Language   string `json:"language,omitempty"`
}

func typeNameOf(t domain.Type) string {
	if t == nil {
		return ""
	}
	return t.TypeName()
}

func fromModel(m *domain.DomainModel) document {
	doc := document{Format: FormatV1, Name: m.Name}
	for _, t := range m.Types {
		switch v := t.(type) {
		case *domain.Class:
			doc.Types = append(doc.Types, fromClass(kindClass, v))
		case *domain.AssociationClass:
			td := fromClass(kindAssociationClass, &v.Class)
			td.Association = v.Association.Name
			doc.Types = append(doc.Types, td)
		case *domain.Enumeration:
			td := typeDoc{Kind: kindEnumeration, Name: v.Name, Metadata: v.Metadata}
			for _, l := range v.Literals {
				td.Literals = append(td.Literals, l.Name)
			}
			doc.Types = append(doc.Types, td)
		}
	}
	for _, a := range m.Associations {
		doc.Associations = append(doc.Associations, associationDoc{
			Name: a.Name,
			Ends: [2]propertyDoc{fromProperty(a.Ends[0]), fromProperty(a.Ends[1])},
		})
	}
	for _, g := range m.Generalizations {
		doc.Generalizations = append(doc.Generalizations, generalizationDoc{General: g.General.Name, Specific: g.Specific.Name})
	}
	for _, c := range m.Constraints {
		doc.Constraints = append(doc.Constraints, constraintDoc{
			Name: c.Name, Context: c.Context.Name, Expression: c.Expression, Language: c.Language,
		})
	}
	return doc
}

func fromClass(kind string, c *domain.Class) typeDoc {
	td := typeDoc{
		Kind:     kind,
		Name:     c.Name,
		Abstract: c.IsAbstract,
		ReadOnly: c.IsReadOnly,
		Derived:  c.IsDerived,
		Metadata: c.Metadata,
	}
	if !c.Timestamp.IsZero() {
		ts := c.Timestamp
		td.Timestamp = &ts
	}
	for _, a := range c.Attributes {
		td.Attributes = append(td.Attributes, fromProperty(a))
	}
	for _, meth := range c.Methods {
		md := methodDoc{
			Name:       meth.Name,
			Visibility: meth.Visibility,
			Abstract:   meth.IsAbstract,
			Type:       typeNameOf(meth.Type),
			Code:       meth.Code,
		}
		for _, p := range meth.Parameters {
			md.Parameters = append(md.Parameters, parameterDoc{Name: p.Name, Type: typeNameOf(p.Type)})
		}
		td.Methods = append(td.Methods, md)
	}
	return td
}

func fromProperty(p *domain.Property) propertyDoc {
	pd := propertyDoc{
		Name:         p.Name,
		Type:         typeNameOf(p.Type),
		Multiplicity: p.Multiplicity.String(),
		Visibility:   p.Visibility,
		Composite:    p.IsComposite,
		Navigable:    p.IsNavigable,
		ID:           p.IsID,
		ReadOnly:     p.IsReadOnly,
		Derived:      p.IsDerived,
		Metadata:     p.Metadata,
	}
	if p.Owner != nil {
		pd.Owner = p.Owner.Name
	}
	return pd
}
