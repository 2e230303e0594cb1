package domain

// BinaryAssociation links two classes through two properties.
// Ends[0] is owned by the source class and typed by the target class;
// Ends[1] is its opposite.
type BinaryAssociation struct {
	Name string
	Ends [2]*Property
}

// AssociationSpec describes a binary association between two classes.
type AssociationSpec struct {
	Name             string
	From, To         *Class
	RoleFrom, RoleTo string
	MultiplicityFrom Multiplicity
	MultiplicityTo   Multiplicity
	Bidirectional    bool
	Composition      bool
}

// NewBinaryAssociation builds the two ends described by spec.
func NewBinaryAssociation(spec AssociationSpec) (*BinaryAssociation, error) {
	if err := ValidateName(spec.Name); err != nil {
		return nil, err
	}
	if spec.From == nil || spec.To == nil {
		return nil, errorf(ErrInvalid, "Association '%s' requires two classes", spec.Name)
	}
	toEnd, err := NewProperty(spec.RoleTo, spec.To)
	if err != nil {
		return nil, err
	}
	toEnd.Owner = spec.From
	toEnd.Multiplicity = spec.MultiplicityTo
	toEnd.IsComposite = spec.Composition

	fromEnd, err := NewProperty(spec.RoleFrom, spec.From)
	if err != nil {
		return nil, err
	}
	fromEnd.Owner = spec.To
	fromEnd.Multiplicity = spec.MultiplicityFrom
	fromEnd.IsNavigable = spec.Bidirectional

	if toEnd.Name == fromEnd.Name && spec.From == spec.To {
		return nil, errorf(ErrInvalid, "The ends of association '%s' cannot share the role name '%s'", spec.Name, toEnd.Name)
	}
	return &BinaryAssociation{Name: spec.Name, Ends: [2]*Property{toEnd, fromEnd}}, nil
}

// Source returns the class owning Ends[0].
func (a *BinaryAssociation) Source() *Class { return a.Ends[0].Owner }

// Target returns the class typing Ends[0].
func (a *BinaryAssociation) Target() *Class { return a.Ends[1].Owner }

// Involves reports whether c participates in the association.
func (a *BinaryAssociation) Involves(c *Class) bool {
	return a.Source() == c || a.Target() == c
}

// IsManyToMany reports whether both ends allow more than one value.
func (a *BinaryAssociation) IsManyToMany() bool {
	return a.Ends[0].Multiplicity.IsMany() && a.Ends[1].Multiplicity.IsMany()
}

// Generalization states that Specific inherits from General.
type Generalization struct {
	General  *Class
	Specific *Class
}

// OCL is the only constraint language supported.
const OCL = "OCL"

// Constraint is an OCL expression attached to a context class.
type Constraint struct {
	Name       string
	Context    *Class
	Expression string
	Language   string
}

// NewConstraint validates the name and expression.
func NewConstraint(name string, context *Class, expression string) (*Constraint, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if context == nil {
		return nil, errorf(ErrInvalid, "Constraint '%s' requires a context class", name)
	}
	if expression == "" {
		return nil, errorf(ErrInvalid, "Constraint '%s' has an empty expression", name)
	}
	return &Constraint{Name: name, Context: context, Expression: expression, Language: OCL}, nil
}
