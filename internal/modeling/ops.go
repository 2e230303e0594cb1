package modeling

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/buml/internal/logging"
	"github.com/aretw0/buml/pkg/domain"
	"github.com/aretw0/buml/pkg/generator"
)

// Service applies editing and generation operations to domain models.
type Service struct {
	logger     *slog.Logger
	generators *generator.Registry
	options    generator.Options
	outputDir  string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for operation diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithGenerators replaces the built-in generator registry.
func WithGenerators(r *generator.Registry) Option {
	return func(s *Service) {
		s.generators = r
	}
}

// WithGeneratorOptions sets the defaults passed to every generator.
// Per-call options (such as the SQL dialect) override them.
func WithGeneratorOptions(o generator.Options) Option {
	return func(s *Service) {
		s.options = o
	}
}

// WithOutputDir sets where Generate writes when the call names no directory.
func WithOutputDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.outputDir = dir
		}
	}
}

// NewService creates a Service with the built-in generators.
func NewService(opts ...Option) *Service {
	s := &Service{logger: logging.NewNop(), outputDir: "."}
	for _, opt := range opts {
		opt(s)
	}
	if s.generators == nil {
		s.generators = generator.NewRegistry()
	}
	if s.options.Logger == nil {
		s.options.Logger = s.logger
	}
	return s
}

// precondition is a rule violation detected before the model is touched.
type precondition struct {
	msg string
	err error
}

func (e *precondition) Error() string { return e.msg }
func (e *precondition) Unwrap() error { return e.err }

func violation(sentinel error, format string, args ...any) error {
	return &precondition{msg: fmt.Sprintf(format, args...), err: sentinel}
}

// finish logs the outcome of an operation and wraps a rejection as a Failure.
func (s *Service) finish(op string, err error) error {
	if err != nil {
		s.logger.Warn("operation rejected", "op", op, "err", err)
		var f *Failure
		if errors.As(err, &f) {
			return err
		}
		return &Failure{Op: op, Err: err}
	}
	s.logger.Info("operation applied", "op", op)
	return nil
}

func lookupClass(m *domain.DomainModel, name string) (*domain.Class, error) {
	c := m.ClassByName(name)
	if c == nil {
		return nil, domain.Missing("class", name, domain.ScopeModel)
	}
	return c, nil
}

func lookupType(m *domain.DomainModel, name string) (domain.Type, error) {
	t := m.TypeByName(name)
	if t == nil {
		return nil, domain.Missing("type", name, domain.ScopeModel)
	}
	return t, nil
}

func metadata(description string) *domain.Metadata {
	if description == "" {
		return nil
	}
	return &domain.Metadata{Description: description}
}

// NewModel returns an empty model seeded with the primitive types.
func (s *Service) NewModel(in NewModelInput) (*domain.DomainModel, error) {
	m, err := domain.NewDomainModel(in.Name)
	if err != nil {
		return nil, s.finish(fmt.Sprintf("creating model '%s'", in.Name), err)
	}
	s.logger.Info("model created", "model", in.Name)
	return m, nil
}

// AddClass adds a class; the name must be unused by any type.
func (s *Service) AddClass(m *domain.DomainModel, in ClassInput) error {
	op := fmt.Sprintf("adding class '%s'", in.Name)
	if m.TypeByName(in.Name) != nil {
		return s.finish(op, domain.Duplicate("class", in.Name, domain.ScopeModel))
	}
	c, err := domain.NewClass(in.Name)
	if err != nil {
		return s.finish(op, err)
	}
	c.IsAbstract = in.IsAbstract
	c.IsReadOnly = in.IsReadOnly
	c.IsDerived = in.IsDerived
	c.Metadata = metadata(in.Description)
	return s.finish(op, m.AddType(c))
}

// AddAttribute adds an attribute typed by a primitive type or an enumeration.
func (s *Service) AddAttribute(m *domain.DomainModel, in AttributeInput) error {
	in.defaults()
	op := fmt.Sprintf("adding attribute '%s' to class '%s'", in.Name, in.ClassName)
	c, err := lookupClass(m, in.ClassName)
	if err != nil {
		return s.finish(op, err)
	}
	if c.Attribute(in.Name) != nil {
		return s.finish(fmt.Sprintf("adding attribute '%s'", in.Name),
			domain.Duplicate("attribute", in.Name, domain.InClass(c.Name)))
	}
	typ, err := lookupType(m, in.TypeName)
	if err != nil {
		return s.finish(op, err)
	}
	mult, err := domain.ParseMultiplicity(in.Multiplicity)
	if err != nil {
		return s.finish(op, err)
	}
	if err := domain.ValidateVisibility(in.Visibility); err != nil {
		return s.finish(op, err)
	}
	p, err := domain.NewProperty(in.Name, typ)
	if err != nil {
		return s.finish(op, err)
	}
	p.Multiplicity = mult
	p.Visibility = in.Visibility
	p.IsComposite = in.IsComposite
	p.IsNavigable = *in.IsNavigable
	p.IsID = in.IsID
	p.IsReadOnly = in.IsReadOnly
	p.IsDerived = in.IsDerived
	p.Metadata = metadata(in.Description)
	return s.finish(op, c.AddAttribute(p))
}

// returnType resolves a method return type. "None" and "void" mean the
// method returns nothing.
func returnType(m *domain.DomainModel, name string) (domain.Type, error) {
	switch strings.ToLower(name) {
	case "none", "void":
		return nil, nil
	}
	return lookupType(m, name)
}

// AddMethod adds a method; parameters keep their declared order.
func (s *Service) AddMethod(m *domain.DomainModel, in MethodInput) error {
	in.defaults()
	op := fmt.Sprintf("adding method '%s' to class '%s'", in.Name, in.ClassName)
	c, err := lookupClass(m, in.ClassName)
	if err != nil {
		return s.finish(op, err)
	}
	if c.Method(in.Name) != nil {
		return s.finish(fmt.Sprintf("adding method '%s'", in.Name),
			domain.Duplicate("method", in.Name, domain.InClass(c.Name)))
	}
	ret, err := returnType(m, in.TypeName)
	if err != nil {
		return s.finish(op, err)
	}
	params := make([]domain.Parameter, 0, len(in.Parameters))
	for _, p := range in.Parameters {
		typ, err := lookupType(m, p.Type)
		if err != nil {
			return s.finish(op, err)
		}
		params = append(params, domain.Parameter{Name: p.Name, Type: typ})
	}
	if in.IsAbstract && strings.TrimSpace(in.Code) != "" {
		return s.finish(op, violation(domain.ErrInvalid, "Abstract method '%s' cannot have a body", in.Name))
	}
	return s.finish(op, c.AddMethod(&domain.Method{
		Name:       in.Name,
		Visibility: in.Visibility,
		IsAbstract: in.IsAbstract,
		Parameters: params,
		Type:       ret,
		Code:       in.Code,
	}))
}

// AddAssociation adds a binary association between two existing classes.
func (s *Service) AddAssociation(m *domain.DomainModel, in AssociationInput) error {
	in.defaults()
	op := fmt.Sprintf("adding association '%s' to model", in.Name)
	if m.AssociationByName(in.Name) != nil {
		return s.finish(fmt.Sprintf("adding association '%s'", in.Name),
			domain.Duplicate("association", in.Name, domain.ScopeModel))
	}
	from, err := lookupClass(m, in.FromClass)
	if err != nil {
		return s.finish(op, err)
	}
	to, err := lookupClass(m, in.ToClass)
	if err != nil {
		return s.finish(op, err)
	}
	multFrom, err := domain.ParseMultiplicity(in.MultiplicityFrom)
	if err != nil {
		return s.finish(op, err)
	}
	multTo, err := domain.ParseMultiplicity(in.MultiplicityTo)
	if err != nil {
		return s.finish(op, err)
	}
	a, err := domain.NewBinaryAssociation(domain.AssociationSpec{
		Name:             in.Name,
		From:             from,
		To:               to,
		RoleFrom:         in.RoleFrom,
		RoleTo:           in.RoleTo,
		MultiplicityFrom: multFrom,
		MultiplicityTo:   multTo,
		Bidirectional:    *in.IsBidirectional,
		Composition:      in.IsComposition,
	})
	if err != nil {
		return s.finish(op, err)
	}
	return s.finish(op, m.AddAssociation(a))
}

// AddAssociationClass attaches a new association class to an existing association.
func (s *Service) AddAssociationClass(m *domain.DomainModel, in AssociationClassInput) error {
	op := fmt.Sprintf("adding association class '%s' to model", in.Name)
	a := m.AssociationByName(in.AssociationName)
	if a == nil {
		return s.finish(fmt.Sprintf("adding association class '%s'", in.Name),
			violation(domain.ErrNotFound,
				"Association '%s' does not exists in the model. Create the '%s' association before the association class",
				in.AssociationName, in.AssociationName))
	}
	ac, err := domain.NewAssociationClass(in.Name, a)
	if err != nil {
		return s.finish(op, err)
	}
	return s.finish(op, m.AddType(ac))
}

// AddEnumeration adds an enumeration with its initial literals.
func (s *Service) AddEnumeration(m *domain.DomainModel, in EnumerationInput) error {
	op := fmt.Sprintf("adding enumeration '%s' to model", in.Name)
	if m.TypeByName(in.Name) != nil {
		return s.finish(fmt.Sprintf("adding enumeration '%s'", in.Name),
			domain.Duplicate("type", in.Name, domain.ScopeModel))
	}
	e, err := domain.NewEnumeration(in.Name, in.Literals...)
	if err != nil {
		return s.finish(op, err)
	}
	return s.finish(op, m.AddType(e))
}

// AddLiteral adds a literal to an existing enumeration.
func (s *Service) AddLiteral(m *domain.DomainModel, in LiteralInput) error {
	op := fmt.Sprintf("adding literal '%s' to enumeration '%s'", in.Name, in.EnumerationName)
	e := m.EnumerationByName(in.EnumerationName)
	if e == nil {
		return s.finish(op, domain.Missing("enumeration", in.EnumerationName, domain.ScopeModel))
	}
	return s.finish(op, e.AddLiteral(in.Name))
}

// AddGeneralization makes the specific class inherit from the general one.
func (s *Service) AddGeneralization(m *domain.DomainModel, in GeneralizationInput) error {
	op := fmt.Sprintf("adding generalization '%s' <|-- '%s' to model", in.GeneralClassName, in.SpecificClassName)
	general, err := lookupClass(m, in.GeneralClassName)
	if err != nil {
		return s.finish(op, err)
	}
	specific, err := lookupClass(m, in.SpecificClassName)
	if err != nil {
		return s.finish(op, err)
	}
	_, err = m.AddGeneralization(general, specific)
	return s.finish(op, err)
}

// AddConstraint attaches an OCL constraint to a class.
func (s *Service) AddConstraint(m *domain.DomainModel, in ConstraintInput) error {
	op := fmt.Sprintf("adding constraint '%s' to class '%s'", in.Name, in.ClassName)
	c, err := lookupClass(m, in.ClassName)
	if err != nil {
		return s.finish(op, err)
	}
	con, err := domain.NewConstraint(in.Name, c, in.Expression)
	if err != nil {
		return s.finish(op, err)
	}
	return s.finish(op, m.AddConstraint(con))
}

// DeleteClass removes a class and everything that refers to it.
func (s *Service) DeleteClass(m *domain.DomainModel, in NameInput) error {
	return s.finish(fmt.Sprintf("removing class '%s'", in.Name), m.RemoveClass(in.Name))
}

// DeleteAttribute removes an attribute from a class.
func (s *Service) DeleteAttribute(m *domain.DomainModel, in MemberInput) error {
	c, err := lookupClass(m, in.ClassName)
	if err != nil {
		return s.finish(fmt.Sprintf("removing attribute '%s' from class '%s'", in.Name, in.ClassName), err)
	}
	return s.finish(fmt.Sprintf("removing attribute '%s'", in.Name), c.RemoveAttribute(in.Name))
}

// DeleteMethod removes a method from a class.
func (s *Service) DeleteMethod(m *domain.DomainModel, in MemberInput) error {
	c, err := lookupClass(m, in.ClassName)
	if err != nil {
		return s.finish(fmt.Sprintf("removing method '%s' from class '%s'", in.Name, in.ClassName), err)
	}
	return s.finish(fmt.Sprintf("removing method '%s'", in.Name), c.RemoveMethod(in.Name))
}

// DeleteAssociation removes an association and its association classes.
func (s *Service) DeleteAssociation(m *domain.DomainModel, in NameInput) error {
	return s.finish(fmt.Sprintf("removing association '%s'", in.Name), m.RemoveAssociation(in.Name))
}

// DeleteAssociationClass removes an association class; the association stays.
func (s *Service) DeleteAssociationClass(m *domain.DomainModel, in NameInput) error {
	return s.finish(fmt.Sprintf("removing association class '%s'", in.Name), m.RemoveAssociationClass(in.Name))
}

// DeleteEnumeration removes an enumeration no attribute uses.
func (s *Service) DeleteEnumeration(m *domain.DomainModel, in NameInput) error {
	return s.finish(fmt.Sprintf("removing enumeration '%s'", in.Name), m.RemoveEnumeration(in.Name))
}

// DeleteLiteral removes a literal from an enumeration.
func (s *Service) DeleteLiteral(m *domain.DomainModel, in LiteralInput) error {
	e := m.EnumerationByName(in.EnumerationName)
	if e == nil {
		return s.finish(fmt.Sprintf("removing literal '%s' from enumeration '%s'", in.Name, in.EnumerationName),
			domain.Missing("enumeration", in.EnumerationName, domain.ScopeModel))
	}
	return s.finish(fmt.Sprintf("removing literal '%s'", in.Name), e.RemoveLiteral(in.Name))
}

// DeleteGeneralization removes the generalization between two classes.
func (s *Service) DeleteGeneralization(m *domain.DomainModel, in GeneralizationInput) error {
	op := fmt.Sprintf("removing generalization '%s' <|-- '%s'", in.GeneralClassName, in.SpecificClassName)
	return s.finish(op, m.RemoveGeneralization(in.GeneralClassName, in.SpecificClassName))
}

// DeleteConstraint removes an OCL constraint by name.
func (s *Service) DeleteConstraint(m *domain.DomainModel, in NameInput) error {
	return s.finish(fmt.Sprintf("removing constraint '%s'", in.Name), m.RemoveConstraint(in.Name))
}
