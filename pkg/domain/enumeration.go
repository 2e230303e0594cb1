package domain

// EnumerationLiteral is a single named value of an Enumeration.
type EnumerationLiteral struct {
	Name string
}

// Enumeration is a type whose values are a fixed list of literals.
type Enumeration struct {
	Name     string
	Literals []*EnumerationLiteral
	Metadata *Metadata
}

// NewEnumeration validates the names and returns the enumeration.
func NewEnumeration(name string, literals ...string) (*Enumeration, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	e := &Enumeration{Name: name}
	for _, l := range literals {
		if err := e.AddLiteral(l); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *Enumeration) TypeName() string { return e.Name }
func (*Enumeration) isType()            {}

// Literal returns the literal called name, or nil.
func (e *Enumeration) Literal(name string) *EnumerationLiteral {
	for _, l := range e.Literals {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// AddLiteral appends a literal; literal names are unique per enumeration.
func (e *Enumeration) AddLiteral(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if e.Literal(name) != nil {
		return Duplicate("literal", name, InEnumeration(e.Name))
	}
	e.Literals = append(e.Literals, &EnumerationLiteral{Name: name})
	return nil
}

// RemoveLiteral deletes the literal called name.
func (e *Enumeration) RemoveLiteral(name string) error {
	for i, l := range e.Literals {
		if l.Name == name {
			e.Literals = append(e.Literals[:i], e.Literals[i+1:]...)
			return nil
		}
	}
	return Missing("literal", name, Quoted(e.Name))
}
