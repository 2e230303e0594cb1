package modeling

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/buml/pkg/domain"
)

// Tool argument shapes. Field tags are the wire parameter names.

// NewModelInput holds the arguments of new_model.
type NewModelInput struct {
	Name string `mapstructure:"name"`
}

// ClassInput holds the arguments of add_class.
type ClassInput struct {
	Name        string `mapstructure:"name"`
	IsAbstract  bool   `mapstructure:"is_abstract"`
	IsReadOnly  bool   `mapstructure:"is_read_only"`
	IsDerived   bool   `mapstructure:"is_derived"`
	Description string `mapstructure:"description"`
}

// AttributeInput holds the arguments of add_attribute_to_class. Empty
// fields take the tool defaults: str, 1..1, public and navigable.
type AttributeInput struct {
	Name         string `mapstructure:"name"`
	ClassName    string `mapstructure:"class_name"`
	TypeName     string `mapstructure:"type_name"`
	Multiplicity string `mapstructure:"multiplicity"`
	Visibility   string `mapstructure:"visibility"`
	IsComposite  bool   `mapstructure:"is_composite"`
	IsNavigable  *bool  `mapstructure:"is_navigable"`
	IsID         bool   `mapstructure:"is_id"`
	IsReadOnly   bool   `mapstructure:"is_read_only"`
	IsDerived    bool   `mapstructure:"is_derived"`
	Description  string `mapstructure:"description"`
}

// ParameterInput is one method parameter. Parameters may also be given as
// a {name: type} object or as "name:type" strings.
type ParameterInput struct {
	Name string `mapstructure:"name"`
	Type string `mapstructure:"type"`
}

// MethodInput holds the arguments of add_method_to_class.
type MethodInput struct {
	Name       string           `mapstructure:"name"`
	ClassName  string           `mapstructure:"class_name"`
	Visibility string           `mapstructure:"visibility"`
	IsAbstract bool             `mapstructure:"is_abstract"`
	Parameters []ParameterInput `mapstructure:"parameters"`
	TypeName   string           `mapstructure:"type_name"`
	Code       string           `mapstructure:"code"`
}

// AssociationInput holds the arguments of add_binary_association. Roles
// default to the lower-cased class names.
type AssociationInput struct {
	Name             string `mapstructure:"name"`
	FromClass        string `mapstructure:"from_class"`
	ToClass          string `mapstructure:"to_class"`
	RoleFrom         string `mapstructure:"role_from"`
	RoleTo           string `mapstructure:"role_to"`
	MultiplicityFrom string `mapstructure:"multiplicity_from"`
	MultiplicityTo   string `mapstructure:"multiplicity_to"`
	IsBidirectional  *bool  `mapstructure:"is_bidirectional"`
	IsComposition    bool   `mapstructure:"is_composition"`
}

// AssociationClassInput holds the arguments of add_association_class.
type AssociationClassInput struct {
	Name            string `mapstructure:"name"`
	AssociationName string `mapstructure:"association_name"`
}

// EnumerationInput holds the arguments of add_enumeration.
type EnumerationInput struct {
	Name     string   `mapstructure:"name"`
	Literals []string `mapstructure:"literals"`
}

// LiteralInput addresses an enumeration literal.
type LiteralInput struct {
	Name            string `mapstructure:"name"`
	EnumerationName string `mapstructure:"enumeration_name"`
}

// GeneralizationInput addresses a generalization by its two classes.
type GeneralizationInput struct {
	GeneralClassName  string `mapstructure:"general_class_name"`
	SpecificClassName string `mapstructure:"specific_class_name"`
}

// ConstraintInput holds the arguments of add_ocl_constraint.
type ConstraintInput struct {
	Name       string `mapstructure:"name"`
	ClassName  string `mapstructure:"class_name"`
	Expression string `mapstructure:"expression"`
}

// NameInput addresses a model-level element by name.
type NameInput struct {
	Name string `mapstructure:"name"`
}

// MemberInput addresses an attribute or method of a class.
type MemberInput struct {
	Name      string `mapstructure:"name"`
	ClassName string `mapstructure:"class_name"`
}

// GenerationInput holds the options shared by the generation tools.
type GenerationInput struct {
	OutputDir  string `mapstructure:"output_dir"`
	SQLDialect string `mapstructure:"sql_dialect"`
}

func (in *AttributeInput) defaults() {
	if in.TypeName == "" {
		in.TypeName = domain.StringType
	}
	if in.Multiplicity == "" {
		in.Multiplicity = "1..1"
	}
	if in.Visibility == "" {
		in.Visibility = domain.VisibilityPublic
	}
	if in.IsNavigable == nil {
		t := true
		in.IsNavigable = &t
	}
}

func (in *MethodInput) defaults() {
	if in.Visibility == "" {
		in.Visibility = domain.VisibilityPublic
	}
	if in.TypeName == "" {
		in.TypeName = domain.StringType
	}
}

func (in *AssociationInput) defaults() {
	if in.MultiplicityFrom == "" {
		in.MultiplicityFrom = "1..1"
	}
	if in.MultiplicityTo == "" {
		in.MultiplicityTo = "1..1"
	}
	if in.RoleFrom == "" {
		in.RoleFrom = strings.ToLower(in.FromClass)
	}
	if in.RoleTo == "" {
		in.RoleTo = strings.ToLower(in.ToClass)
	}
	if in.IsBidirectional == nil {
		t := true
		in.IsBidirectional = &t
	}
}

var parameterSliceType = reflect.TypeOf([]ParameterInput{})

// parametersHook normalises the accepted parameter shapes into a list of
// {name, type} objects. Lists keep their order; a {name: type} object has
// none, so its parameters are sorted by name.
func parametersHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != parameterSliceType {
		return data, nil
	}
	switch v := data.(type) {
	case map[string]any:
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		sort.Strings(names)
		out := make([]any, 0, len(v))
		for _, name := range names {
			out = append(out, map[string]any{"name": name, "type": v[name]})
		}
		return out, nil
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				out = append(out, item)
				continue
			}
			name, typ, found := strings.Cut(s, ":")
			if !found {
				return nil, fmt.Errorf("parameter %q: expected name:type", s)
			}
			out = append(out, map[string]any{"name": strings.TrimSpace(name), "type": strings.TrimSpace(typ)})
		}
		return out, nil
	}
	return data, nil
}

// Decode copies tool arguments into out, converting scalar types where the
// caller sent e.g. "true" for a boolean.
func Decode(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       parametersHook,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	return nil
}
