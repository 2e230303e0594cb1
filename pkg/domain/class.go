package domain

import "time"

// Property is a class attribute or one end of a BinaryAssociation.
type Property struct {
	Name         string
	Type         Type
	Owner        *Class
	Multiplicity Multiplicity
	Visibility   string
	IsComposite  bool
	IsNavigable  bool
	IsID         bool
	IsReadOnly   bool
	IsDerived    bool
	Metadata     *Metadata
}

// NewProperty returns a public, navigable property with multiplicity 1..1.
func NewProperty(name string, typ Type) (*Property, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return &Property{
		Name:         name,
		Type:         typ,
		Multiplicity: One,
		Visibility:   VisibilityPublic,
		IsNavigable:  true,
	}, nil
}

// Parameter is a named, typed method argument.
type Parameter struct {
	Name string
	Type Type
}

// Method is an operation declared on a class. Type is the return type and
// may be nil when the method returns nothing.
type Method struct {
	Name       string
	Visibility string
	IsAbstract bool
	Parameters []Parameter
	Type       Type
	Owner      *Class
	Code       string
}

// Class is a named type with attributes and methods.
type Class struct {
	Name       string
	Attributes []*Property
	Methods    []*Method
	IsAbstract bool
	IsReadOnly bool
	IsDerived  bool
	Timestamp  time.Time
	Metadata   *Metadata
}

// NewClass validates name and returns an empty class.
func NewClass(name string) (*Class, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return &Class{Name: name, Timestamp: now()}, nil
}

func (c *Class) TypeName() string { return c.Name }
func (*Class) isType()            {}

// Attribute returns the attribute called name, or nil.
func (c *Class) Attribute(name string) *Property {
	for _, a := range c.Attributes {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// AddAttribute appends p to the class and sets its owner.
func (c *Class) AddAttribute(p *Property) error {
	if p.Type == nil {
		return errorf(ErrInvalid, "Attribute '%s' requires a type", p.Name)
	}
	if !IsDataType(p.Type) {
		return errorf(ErrInvalid, "Attribute '%s' must be typed by a primitive type or an enumeration, not %s '%s'",
			p.Name, KindOf(p.Type), p.Type.TypeName())
	}
	if c.Attribute(p.Name) != nil {
		return Duplicate("attribute", p.Name, InClass(c.Name))
	}
	p.Owner = c
	c.Attributes = append(c.Attributes, p)
	return nil
}

// RemoveAttribute deletes the attribute called name.
func (c *Class) RemoveAttribute(name string) error {
	for i, a := range c.Attributes {
		if a.Name == name {
			c.Attributes = append(c.Attributes[:i], c.Attributes[i+1:]...)
			return nil
		}
	}
	return Missing("attribute", name, Quoted(c.Name))
}

// Method returns the method called name, or nil.
func (c *Class) Method(name string) *Method {
	for _, m := range c.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// AddMethod appends m to the class and sets its owner.
func (c *Class) AddMethod(m *Method) error {
	if err := ValidateName(m.Name); err != nil {
		return err
	}
	if m.Visibility == "" {
		m.Visibility = VisibilityPublic
	}
	if err := ValidateVisibility(m.Visibility); err != nil {
		return err
	}
	seen := make(map[string]bool, len(m.Parameters))
	for _, p := range m.Parameters {
		if err := ValidateName(p.Name); err != nil {
			return err
		}
		if seen[p.Name] {
			return Duplicate("parameter", p.Name, Quoted(m.Name))
		}
		seen[p.Name] = true
	}
	if c.Method(m.Name) != nil {
		return Duplicate("method", m.Name, InClass(c.Name))
	}
	m.Owner = c
	c.Methods = append(c.Methods, m)
	return nil
}

// RemoveMethod deletes the method called name.
func (c *Class) RemoveMethod(name string) error {
	for i, m := range c.Methods {
		if m.Name == name {
			c.Methods = append(c.Methods[:i], c.Methods[i+1:]...)
			return nil
		}
	}
	return Missing("method", name, Quoted(c.Name))
}

// IDAttributes returns the attributes flagged as identifiers.
func (c *Class) IDAttributes() []*Property {
	var ids []*Property
	for _, a := range c.Attributes {
		if a.IsID {
			ids = append(ids, a)
		}
	}
	return ids
}

// AssociationClass is a class bound to a binary association.
type AssociationClass struct {
	Class
	Association *BinaryAssociation
}

// NewAssociationClass returns an association class for assoc.
func NewAssociationClass(name string, assoc *BinaryAssociation) (*AssociationClass, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if assoc == nil {
		return nil, errorf(ErrInvalid, "Association class '%s' requires an association", name)
	}
	return &AssociationClass{Class: Class{Name: name, Timestamp: now()}, Association: assoc}, nil
}

func (*AssociationClass) isType() {}
