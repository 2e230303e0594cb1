package domain

import (
	"strings"
	"time"
	"unicode"
)

// Primitive type names seeded into every new DomainModel.
const (
	StringType    = "str"
	IntegerType   = "int"
	FloatType     = "float"
	BooleanType   = "bool"
	TimeType      = "time"
	DateType      = "date"
	DateTimeType  = "datetime"
	TimeDeltaType = "timedelta"
	AnyType       = "any"
)

// PrimitiveTypeNames lists the primitive types in declaration order.
var PrimitiveTypeNames = []string{
	StringType, IntegerType, FloatType, BooleanType,
	TimeType, DateType, DateTimeType, TimeDeltaType, AnyType,
}

// Visibility values accepted for properties and methods.
const (
	VisibilityPublic    = "public"
	VisibilityPrivate   = "private"
	VisibilityProtected = "protected"
	VisibilityPackage   = "package"
)

// Metadata carries optional documentation attached to an element.
type Metadata struct {
	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	URI         string `json:"uri,omitempty" yaml:"uri,omitempty" mapstructure:"uri"`
}

// Type is implemented by every element stored in DomainModel.Types.
// The set of implementations is closed: *PrimitiveDataType, *Class,
// *Enumeration and *AssociationClass.
type Type interface {
	TypeName() string
	isType()
}

// PrimitiveDataType is a built-in scalar type such as "int" or "str".
type PrimitiveDataType struct {
	Name string
}

func (p *PrimitiveDataType) TypeName() string { return p.Name }
func (*PrimitiveDataType) isType()            {}

// IsDataType reports whether t can be the type of a class attribute.
func IsDataType(t Type) bool {
	switch t.(type) {
	case *PrimitiveDataType, *Enumeration:
		return true
	}
	return false
}

// KindOf returns the user-facing kind name of a type.
func KindOf(t Type) string {
	switch t.(type) {
	case *PrimitiveDataType:
		return "primitive type"
	case *AssociationClass:
		return "association class"
	case *Class:
		return "class"
	case *Enumeration:
		return "enumeration"
	}
	return "type"
}

// ValidateName enforces the naming rules shared by all named elements.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errorf(ErrInvalid, "Name cannot be empty")
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return errorf(ErrInvalid, "'%s' is invalid. Name cannot contain spaces.", name)
	}
	return nil
}

// ValidateVisibility checks that v is one of the supported visibility values.
func ValidateVisibility(v string) error {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityProtected, VisibilityPackage:
		return nil
	}
	return errorf(ErrInvalid, "Invalid value of visibility '%s'. Valid values are public, private, protected, package", v)
}

func now() time.Time {
	return time.Now().UTC()
}
