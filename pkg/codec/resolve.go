package codec

import (
	"fmt"

	"github.com/aretw0/buml/pkg/domain"
)

// toModel rebuilds a DomainModel from doc. References are resolved by name
// in dependency order: types, then members, then associations and the
// elements that point at them.
func toModel(doc document) (*domain.DomainModel, error) {
	if doc.Format != FormatV1 {
		return nil, fmt.Errorf("unsupported format %q", doc.Format)
	}
	m, err := domain.NewDomainModel(doc.Name)
	if err != nil {
		return nil, err
	}

	classes := make(map[string]*domain.Class, len(doc.Types))
	pending := make(map[*domain.AssociationClass]string)
	for _, td := range doc.Types {
		switch td.Kind {
		case kindClass:
			c, err := domain.NewClass(td.Name)
			if err != nil {
				return nil, err
			}
			applyClass(c, td)
			if err := m.AddType(c); err != nil {
				return nil, err
			}
			classes[td.Name] = c
		case kindAssociationClass:
			if err := domain.ValidateName(td.Name); err != nil {
				return nil, err
			}
			if m.TypeByName(td.Name) != nil {
				return nil, domain.Duplicate("association class", td.Name, domain.ScopeModel)
			}
			ac := &domain.AssociationClass{Class: domain.Class{Name: td.Name}}
			applyClass(&ac.Class, td)
			m.Types = append(m.Types, ac)
			classes[td.Name] = &ac.Class
			pending[ac] = td.Association
		case kindEnumeration:
			e, err := domain.NewEnumeration(td.Name, td.Literals...)
			if err != nil {
				return nil, err
			}
			e.Metadata = td.Metadata
			if err := m.AddType(e); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("type %q has unknown kind %q", td.Name, td.Kind)
		}
	}

	for _, td := range doc.Types {
		c, ok := classes[td.Name]
		if !ok {
			continue
		}
		if err := resolveMembers(m, c, td); err != nil {
			return nil, err
		}
	}

	for _, ad := range doc.Associations {
		a, err := resolveAssociation(m, ad)
		if err != nil {
			return nil, err
		}
		if err := m.AddAssociation(a); err != nil {
			return nil, err
		}
	}

	for ac, name := range pending {
		a := m.AssociationByName(name)
		if a == nil {
			return nil, domain.Missing("association", name, domain.ScopeModel)
		}
		ac.Association = a
	}

	for _, gd := range doc.Generalizations {
		general, specific := m.ClassByName(gd.General), m.ClassByName(gd.Specific)
		if general == nil {
			return nil, domain.Missing("class", gd.General, domain.ScopeModel)
		}
		if specific == nil {
			return nil, domain.Missing("class", gd.Specific, domain.ScopeModel)
		}
		if _, err := m.AddGeneralization(general, specific); err != nil {
			return nil, err
		}
	}

	for _, cd := range doc.Constraints {
		ctx := m.ClassByName(cd.Context)
		if ctx == nil {
			return nil, domain.Missing("class", cd.Context, domain.ScopeModel)
		}
		c, err := domain.NewConstraint(cd.Name, ctx, cd.Expression)
		if err != nil {
			return nil, err
		}
		if cd.Language != "" {
			c.Language = cd.Language
		}
		if err := m.AddConstraint(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func applyClass(c *domain.Class, td typeDoc) {
	c.IsAbstract = td.Abstract
	c.IsReadOnly = td.ReadOnly
	c.IsDerived = td.Derived
	c.Metadata = td.Metadata
	if td.Timestamp != nil {
		c.Timestamp = *td.Timestamp
	}
}

func lookupType(m *domain.DomainModel, name string) (domain.Type, error) {
	if name == "" {
		return nil, nil
	}
	t := m.TypeByName(name)
	if t == nil {
		return nil, domain.Missing("type", name, domain.ScopeModel)
	}
	return t, nil
}

func resolveMembers(m *domain.DomainModel, c *domain.Class, td typeDoc) error {
	for _, pd := range td.Attributes {
		p, err := resolveProperty(m, pd)
		if err != nil {
			return err
		}
		if err := c.AddAttribute(p); err != nil {
			return err
		}
	}
	for _, md := range td.Methods {
		ret, err := lookupType(m, md.Type)
		if err != nil {
			return err
		}
		meth := &domain.Method{
			Name:       md.Name,
			Visibility: md.Visibility,
			IsAbstract: md.Abstract,
			Type:       ret,
			Code:       md.Code,
		}
		for _, pd := range md.Parameters {
			pt, err := lookupType(m, pd.Type)
			if err != nil {
				return err
			}
			meth.Parameters = append(meth.Parameters, domain.Parameter{Name: pd.Name, Type: pt})
		}
		if err := c.AddMethod(meth); err != nil {
			return err
		}
	}
	return nil
}

// resolveProperty builds an attribute or association end; both must be typed.
func resolveProperty(m *domain.DomainModel, pd propertyDoc) (*domain.Property, error) {
	if pd.Type == "" {
		return nil, fmt.Errorf("property '%s' has no type", pd.Name)
	}
	typ, err := lookupType(m, pd.Type)
	if err != nil {
		return nil, err
	}
	p, err := domain.NewProperty(pd.Name, typ)
	if err != nil {
		return nil, err
	}
	if pd.Multiplicity != "" {
		if p.Multiplicity, err = domain.ParseMultiplicity(pd.Multiplicity); err != nil {
			return nil, err
		}
	}
	if pd.Visibility != "" {
		if err := domain.ValidateVisibility(pd.Visibility); err != nil {
			return nil, err
		}
		p.Visibility = pd.Visibility
	}
	p.IsComposite = pd.Composite
	p.IsNavigable = pd.Navigable
	p.IsID = pd.ID
	p.IsReadOnly = pd.ReadOnly
	p.IsDerived = pd.Derived
	p.Metadata = pd.Metadata
	return p, nil
}

func resolveAssociation(m *domain.DomainModel, ad associationDoc) (*domain.BinaryAssociation, error) {
	if err := domain.ValidateName(ad.Name); err != nil {
		return nil, err
	}
	a := &domain.BinaryAssociation{Name: ad.Name}
	for i, ed := range ad.Ends {
		target := m.ClassByName(ed.Type)
		if target == nil {
			return nil, fmt.Errorf("association '%s' end '%s' must be typed by a class", ad.Name, ed.Name)
		}
		owner := m.ClassByName(ed.Owner)
		if owner == nil {
			return nil, domain.Missing("class", ed.Owner, domain.ScopeModel)
		}
		end, err := resolveProperty(m, ed)
		if err != nil {
			return nil, err
		}
		end.Type = target
		end.Owner = owner
		a.Ends[i] = end
	}
	return a, nil
}
