package domain

import "fmt"

// DomainModel is the root container of a B-UML structural model.
// Types preserves insertion order so that listings and generated
// artifacts are deterministic.
type DomainModel struct {
	Name            string
	Types           []Type
	Associations    []*BinaryAssociation
	Generalizations []*Generalization
	Constraints     []*Constraint
}

// NewDomainModel returns a model seeded with the primitive types.
func NewDomainModel(name string) (*DomainModel, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	m := &DomainModel{Name: name}
	for _, p := range PrimitiveTypeNames {
		m.Types = append(m.Types, &PrimitiveDataType{Name: p})
	}
	return m, nil
}

// TypeByName returns the type called name, or nil.
func (m *DomainModel) TypeByName(name string) Type {
	for _, t := range m.Types {
		if t.TypeName() == name {
			return t
		}
	}
	return nil
}

// Classes returns every class in the model, including association classes.
func (m *DomainModel) Classes() []*Class {
	var out []*Class
	for _, t := range m.Types {
		switch c := t.(type) {
		case *Class:
			out = append(out, c)
		case *AssociationClass:
			out = append(out, &c.Class)
		}
	}
	return out
}

// ClassByName returns the class (or association class) called name, or nil.
func (m *DomainModel) ClassByName(name string) *Class {
	for _, c := range m.Classes() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Enumerations returns the enumerations in insertion order.
func (m *DomainModel) Enumerations() []*Enumeration {
	var out []*Enumeration
	for _, t := range m.Types {
		if e, ok := t.(*Enumeration); ok {
			out = append(out, e)
		}
	}
	return out
}

// EnumerationByName returns the enumeration called name, or nil.
func (m *DomainModel) EnumerationByName(name string) *Enumeration {
	for _, e := range m.Enumerations() {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// AssociationClasses returns the association classes in insertion order.
func (m *DomainModel) AssociationClasses() []*AssociationClass {
	var out []*AssociationClass
	for _, t := range m.Types {
		if ac, ok := t.(*AssociationClass); ok {
			out = append(out, ac)
		}
	}
	return out
}

// AssociationClassFor returns the association class bound to a, or nil.
func (m *DomainModel) AssociationClassFor(a *BinaryAssociation) *AssociationClass {
	for _, ac := range m.AssociationClasses() {
		if ac.Association == a {
			return ac
		}
	}
	return nil
}

// AddType registers t. Type names are unique across all kinds; the error
// names the kind being added ("class", "enumeration", ...).
func (m *DomainModel) AddType(t Type) error {
	if existing := m.TypeByName(t.TypeName()); existing != nil {
		return Duplicate(KindOf(t), t.TypeName(), ScopeModel)
	}
	if ac, ok := t.(*AssociationClass); ok {
		if m.AssociationByName(ac.Association.Name) != ac.Association {
			return errorf(ErrNotFound, "Association '%s' does not exists in the model. Create the '%s' association before the association class",
				ac.Association.Name, ac.Association.Name)
		}
		if other := m.AssociationClassFor(ac.Association); other != nil {
			return errorf(ErrAlreadyExists, "Association '%s' already has the association class '%s'", ac.Association.Name, other.Name)
		}
	}
	m.Types = append(m.Types, t)
	return nil
}

// RemoveClass deletes a class and everything that depends on it: its
// associations (with their association classes), generalizations and
// constraints. Method parameter and return types referencing the class are
// cleared.
func (m *DomainModel) RemoveClass(name string) error {
	c := m.plainClass(name)
	if c == nil {
		return Missing("class", name, ScopeModel)
	}
	m.removeType(c)
	m.detachClass(c)
	return nil
}

// RemoveAssociationClass deletes an association class; its association stays.
func (m *DomainModel) RemoveAssociationClass(name string) error {
	for _, ac := range m.AssociationClasses() {
		if ac.Name == name {
			m.removeType(ac)
			m.detachClass(&ac.Class)
			m.clearMethodTypes(ac)
			return nil
		}
	}
	return Missing("association class", name, ScopeModel)
}

// RemoveEnumeration deletes an enumeration unless an attribute still uses it.
func (m *DomainModel) RemoveEnumeration(name string) error {
	e := m.EnumerationByName(name)
	if e == nil {
		return Missing("enumeration", name, ScopeModel)
	}
	for _, c := range m.Classes() {
		for _, a := range c.Attributes {
			if a.Type == Type(e) {
				return errorf(ErrInvalid, "Enumeration '%s' is used by attribute '%s' of class '%s'", name, a.Name, c.Name)
			}
		}
	}
	m.removeType(e)
	m.clearMethodTypes(e)
	return nil
}

// AddAssociation registers a; association names are unique in the model.
func (m *DomainModel) AddAssociation(a *BinaryAssociation) error {
	if m.AssociationByName(a.Name) != nil {
		return Duplicate("association", a.Name, ScopeModel)
	}
	for _, end := range a.Ends {
		if m.ClassByName(end.Owner.Name) != end.Owner {
			return Missing("class", end.Owner.Name, ScopeModel)
		}
	}
	m.Associations = append(m.Associations, a)
	return nil
}

// AssociationByName returns the association called name, or nil.
func (m *DomainModel) AssociationByName(name string) *BinaryAssociation {
	for _, a := range m.Associations {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// AssociationsOf returns the associations in which c participates.
func (m *DomainModel) AssociationsOf(c *Class) []*BinaryAssociation {
	var out []*BinaryAssociation
	for _, a := range m.Associations {
		if a.Involves(c) {
			out = append(out, a)
		}
	}
	return out
}

// RemoveAssociation deletes the association and any association class bound to it.
func (m *DomainModel) RemoveAssociation(name string) error {
	for i, a := range m.Associations {
		if a.Name != name {
			continue
		}
		m.Associations = append(m.Associations[:i], m.Associations[i+1:]...)
		if ac := m.AssociationClassFor(a); ac != nil {
			m.removeType(ac)
			m.detachClass(&ac.Class)
			m.clearMethodTypes(ac)
		}
		return nil
	}
	return Missing("association", name, ScopeModel)
}

// AddGeneralization records that specific inherits from general.
func (m *DomainModel) AddGeneralization(general, specific *Class) (*Generalization, error) {
	if general == specific {
		return nil, errorf(ErrInvalid, "A class cannot be a generalization of itself ('%s')", general.Name)
	}
	if m.Generalization(general.Name, specific.Name) != nil {
		return nil, errorf(ErrAlreadyExists, "A generalization between '%s' and '%s' already exists in the model", general.Name, specific.Name)
	}
	for _, ancestor := range m.Ancestors(general) {
		if ancestor == specific {
			return nil, errorf(ErrInvalid, "Generalization '%s' <|-- '%s' would create a cycle", general.Name, specific.Name)
		}
	}
	g := &Generalization{General: general, Specific: specific}
	m.Generalizations = append(m.Generalizations, g)
	return g, nil
}

// Generalization returns the edge general <|-- specific, or nil.
func (m *DomainModel) Generalization(general, specific string) *Generalization {
	for _, g := range m.Generalizations {
		if g.General.Name == general && g.Specific.Name == specific {
			return g
		}
	}
	return nil
}

// RemoveGeneralization deletes the edge general <|-- specific.
func (m *DomainModel) RemoveGeneralization(general, specific string) error {
	for i, g := range m.Generalizations {
		if g.General.Name == general && g.Specific.Name == specific {
			m.Generalizations = append(m.Generalizations[:i], m.Generalizations[i+1:]...)
			return nil
		}
	}
	return errorf(ErrNotFound, "No generalization between '%s' and '%s' exists in the model", general, specific)
}

// Parents returns the direct superclasses of c.
func (m *DomainModel) Parents(c *Class) []*Class {
	var out []*Class
	for _, g := range m.Generalizations {
		if g.Specific == c {
			out = append(out, g.General)
		}
	}
	return out
}

// Ancestors returns every transitive superclass of c, nearest first.
func (m *DomainModel) Ancestors(c *Class) []*Class {
	var out []*Class
	seen := map[*Class]bool{c: true}
	queue := m.Parents(c)
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
		queue = append(queue, m.Parents(p)...)
	}
	return out
}

// AddConstraint registers c; constraint names are unique in the model.
func (m *DomainModel) AddConstraint(c *Constraint) error {
	if m.ConstraintByName(c.Name) != nil {
		return Duplicate("constraint", c.Name, ScopeModel)
	}
	m.Constraints = append(m.Constraints, c)
	return nil
}

// ConstraintByName returns the constraint called name, or nil.
func (m *DomainModel) ConstraintByName(name string) *Constraint {
	for _, c := range m.Constraints {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// RemoveConstraint deletes the constraint called name.
func (m *DomainModel) RemoveConstraint(name string) error {
	for i, c := range m.Constraints {
		if c.Name == name {
			m.Constraints = append(m.Constraints[:i], m.Constraints[i+1:]...)
			return nil
		}
	}
	return Missing("constraint", name, ScopeModel)
}

// String is a one-line summary used in logs.
func (m *DomainModel) String() string {
	return fmt.Sprintf("DomainModel(%s, %d types, %d associations)", m.Name, len(m.Types), len(m.Associations))
}

func (m *DomainModel) plainClass(name string) *Class {
	for _, t := range m.Types {
		if c, ok := t.(*Class); ok && c.Name == name {
			return c
		}
	}
	return nil
}

func (m *DomainModel) removeType(t Type) {
	for i, existing := range m.Types {
		if existing == t {
			m.Types = append(m.Types[:i], m.Types[i+1:]...)
			return
		}
	}
}

// detachClass removes every element that references c.
func (m *DomainModel) detachClass(c *Class) {
	var assocs []*BinaryAssociation
	var orphans []*AssociationClass
	for _, a := range m.Associations {
		if !a.Involves(c) {
			assocs = append(assocs, a)
			continue
		}
		if ac := m.AssociationClassFor(a); ac != nil {
			orphans = append(orphans, ac)
		}
	}
	m.Associations = assocs
	for _, ac := range orphans {
		m.removeType(ac)
		m.detachClass(&ac.Class)
		m.clearMethodTypes(ac)
	}

	var gens []*Generalization
	for _, g := range m.Generalizations {
		if g.General != c && g.Specific != c {
			gens = append(gens, g)
		}
	}
	m.Generalizations = gens

	var cons []*Constraint
	for _, k := range m.Constraints {
		if k.Context != c {
			cons = append(cons, k)
		}
	}
	m.Constraints = cons

	m.clearMethodTypes(c)
}

func (m *DomainModel) clearMethodTypes(t Type) {
	for _, c := range m.Classes() {
		for _, meth := range c.Methods {
			if meth.Type == t {
				meth.Type = nil
			}
			for i := range meth.Parameters {
				if meth.Parameters[i].Type == t {
					meth.Parameters[i].Type = nil
				}
			}
		}
	}
}
