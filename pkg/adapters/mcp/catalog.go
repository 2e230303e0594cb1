package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aretw0/buml/internal/modeling"
	"github.com/aretw0/buml/pkg/domain"
	"github.com/aretw0/buml/pkg/generator"
)

type kind int

const (
	editKind kind = iota
	readKind
	generateKind
)

// operation is one tool before it is expanded into its variants.
type operation struct {
	name   string
	desc   string
	params []mcp.ToolOption
	kind   kind

	edit func(*modeling.Service, *domain.DomainModel, map[string]any) error
	read func(*domain.DomainModel) string

	generator string
	// inProcessOnly generators write several files and have no text form.
	inProcessOnly bool
}

// edit adapts a typed Service method to raw tool arguments.
func edit[T any](apply func(*modeling.Service, *domain.DomainModel, T) error) func(*modeling.Service, *domain.DomainModel, map[string]any) error {
	return func(s *modeling.Service, m *domain.DomainModel, args map[string]any) error {
		var in T
		if err := modeling.Decode(args, &in); err != nil {
			return &modeling.Failure{Op: "reading arguments", Err: err}
		}
		return apply(s, m, in)
	}
}

func nameParam(desc string) mcp.ToolOption {
	return mcp.WithString("name", mcp.Required(), mcp.Description(desc))
}

func classParam(desc string) mcp.ToolOption {
	return mcp.WithString("class_name", mcp.Required(), mcp.Description(desc))
}

func generalizationParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("general_class_name", mcp.Required(), mcp.Description("Name of the superclass")),
		mcp.WithString("specific_class_name", mcp.Required(), mcp.Description("Name of the subclass")),
	}
}

var operations = []operation{
	{
		name: "add_class", kind: editKind,
		desc: "Adds a class to the domain model.",
		params: []mcp.ToolOption{
			nameParam("Name of the class"),
			mcp.WithBoolean("is_abstract", mcp.Description("Whether the class is abstract"), mcp.DefaultBool(false)),
			mcp.WithBoolean("is_read_only", mcp.Description("Whether the class is read-only"), mcp.DefaultBool(false)),
			mcp.WithBoolean("is_derived", mcp.Description("Whether the class is derived"), mcp.DefaultBool(false)),
			mcp.WithString("description", mcp.Description("Optional documentation for the class")),
		},
		edit: edit((*modeling.Service).AddClass),
	},
	{
		name: "add_attribute_to_class", kind: editKind,
		desc: "Adds an attribute typed by a primitive type or an enumeration to a class.",
		params: []mcp.ToolOption{
			nameParam("Name of the attribute"),
			classParam("Class that owns the attribute"),
			mcp.WithString("type_name", mcp.Description("Primitive type or enumeration name"), mcp.DefaultString(domain.StringType)),
			mcp.WithString("multiplicity", mcp.Description("Multiplicity as min..max, max may be *"), mcp.DefaultString("1..1")),
			mcp.WithString("visibility", mcp.Description("public, private, protected or package"), mcp.DefaultString(domain.VisibilityPublic),
				mcp.Enum(domain.VisibilityPublic, domain.VisibilityPrivate, domain.VisibilityProtected, domain.VisibilityPackage)),
			mcp.WithBoolean("is_composite", mcp.DefaultBool(false)),
			mcp.WithBoolean("is_navigable", mcp.DefaultBool(true)),
			mcp.WithBoolean("is_id", mcp.Description("Whether the attribute identifies instances"), mcp.DefaultBool(false)),
			mcp.WithBoolean("is_read_only", mcp.DefaultBool(false)),
			mcp.WithBoolean("is_derived", mcp.DefaultBool(false)),
			mcp.WithString("description", mcp.Description("Optional documentation for the attribute")),
		},
		edit: edit((*modeling.Service).AddAttribute),
	},
	{
		name: "add_method_to_class", kind: editKind,
		desc: "Adds a method to a class.",
		params: []mcp.ToolOption{
			nameParam("Name of the method"),
			classParam("Class that owns the method"),
			mcp.WithString("visibility", mcp.DefaultString(domain.VisibilityPublic),
				mcp.Enum(domain.VisibilityPublic, domain.VisibilityPrivate, domain.VisibilityProtected, domain.VisibilityPackage)),
			mcp.WithBoolean("is_abstract", mcp.DefaultBool(false)),
			mcp.WithArray("parameters", mcp.Description("Parameters in declaration order, each a {name, type} object or a \"name:type\" string")),
			mcp.WithString("type_name", mcp.Description("Return type; None for no result"), mcp.DefaultString(domain.StringType)),
			mcp.WithString("code", mcp.Description("Optional method body")),
		},
		edit: edit((*modeling.Service).AddMethod),
	},
	{
		name: "add_binary_association", kind: editKind,
		desc: "Adds a binary association between two classes.",
		params: []mcp.ToolOption{
			nameParam("Name of the association"),
			mcp.WithString("from_class", mcp.Required(), mcp.Description("Source class")),
			mcp.WithString("to_class", mcp.Required(), mcp.Description("Target class")),
			mcp.WithString("role_from", mcp.Description("Role name of the source end (default: source class in lower case)")),
			mcp.WithString("role_to", mcp.Description("Role name of the target end (default: target class in lower case)")),
			mcp.WithString("multiplicity_from", mcp.DefaultString("1..1")),
			mcp.WithString("multiplicity_to", mcp.DefaultString("1..1")),
			mcp.WithBoolean("is_bidirectional", mcp.DefaultBool(true)),
			mcp.WithBoolean("is_composition", mcp.Description("Whether the source owns the target"), mcp.DefaultBool(false)),
		},
		edit: edit((*modeling.Service).AddAssociation),
	},
	{
		name: "add_association_class", kind: editKind,
		desc: "Turns an existing association into an association class.",
		params: []mcp.ToolOption{
			nameParam("Name of the association class"),
			mcp.WithString("association_name", mcp.Required(), mcp.Description("Existing association to attach to")),
		},
		edit: edit((*modeling.Service).AddAssociationClass),
	},
	{
		name: "add_enumeration", kind: editKind,
		desc: "Adds an enumeration to the domain model.",
		params: []mcp.ToolOption{
			nameParam("Name of the enumeration"),
			mcp.WithArray("literals", mcp.Description("Literal names"), mcp.WithStringItems()),
		},
		edit: edit((*modeling.Service).AddEnumeration),
	},
	{
		name: "add_enumeration_literal", kind: editKind,
		desc: "Adds a literal to an enumeration.",
		params: []mcp.ToolOption{
			nameParam("Name of the literal"),
			mcp.WithString("enumeration_name", mcp.Required()),
		},
		edit: edit((*modeling.Service).AddLiteral),
	},
	{
		name: "add_generalization", kind: editKind,
		desc:   "Declares that the specific class inherits from the general class.",
		params: generalizationParams(),
		edit:   edit((*modeling.Service).AddGeneralization),
	},
	{
		name: "add_ocl_constraint", kind: editKind,
		desc: "Attaches an OCL constraint to a class.",
		params: []mcp.ToolOption{
			nameParam("Name of the constraint"),
			classParam("Context class"),
			mcp.WithString("expression", mcp.Required(), mcp.Description("OCL expression")),
		},
		edit: edit((*modeling.Service).AddConstraint),
	},
	{
		name: "delete_class", kind: editKind,
		desc:   "Deletes a class together with its associations, generalizations and constraints.",
		params: []mcp.ToolOption{nameParam("Name of the class")},
		edit:   edit((*modeling.Service).DeleteClass),
	},
	{
		name: "delete_attribute_from_class", kind: editKind,
		desc:   "Deletes an attribute from a class.",
		params: []mcp.ToolOption{nameParam("Name of the attribute"), classParam("Class that owns the attribute")},
		edit:   edit((*modeling.Service).DeleteAttribute),
	},
	{
		name: "delete_method_from_class", kind: editKind,
		desc:   "Deletes a method from a class.",
		params: []mcp.ToolOption{nameParam("Name of the method"), classParam("Class that owns the method")},
		edit:   edit((*modeling.Service).DeleteMethod),
	},
	{
		name: "delete_binary_association", kind: editKind,
		desc:   "Deletes an association and any association class bound to it.",
		params: []mcp.ToolOption{nameParam("Name of the association")},
		edit:   edit((*modeling.Service).DeleteAssociation),
	},
	{
		name: "delete_association_class", kind: editKind,
		desc:   "Deletes an association class; the association stays.",
		params: []mcp.ToolOption{nameParam("Name of the association class")},
		edit:   edit((*modeling.Service).DeleteAssociationClass),
	},
	{
		name: "delete_enumeration", kind: editKind,
		desc:   "Deletes an enumeration that no attribute uses.",
		params: []mcp.ToolOption{nameParam("Name of the enumeration")},
		edit:   edit((*modeling.Service).DeleteEnumeration),
	},
	{
		name: "delete_enumeration_literal", kind: editKind,
		desc:   "Deletes a literal from an enumeration.",
		params: []mcp.ToolOption{nameParam("Name of the literal"), mcp.WithString("enumeration_name", mcp.Required())},
		edit:   edit((*modeling.Service).DeleteLiteral),
	},
	{
		name: "delete_generalization", kind: editKind,
		desc:   "Deletes a generalization.",
		params: generalizationParams(),
		edit:   edit((*modeling.Service).DeleteGeneralization),
	},
	{
		name: "delete_ocl_constraint", kind: editKind,
		desc:   "Deletes an OCL constraint.",
		params: []mcp.ToolOption{nameParam("Name of the constraint")},
		edit:   edit((*modeling.Service).DeleteConstraint),
	},
	{
		name: "get_model_info", kind: readKind,
		desc: "Returns a summary of the domain model and its classes.",
		read: modeling.Info,
	},
	{
		name: "get_classes", kind: readKind,
		desc: "Lists the class names of the domain model, one per line.",
		read: modeling.Classes,
	},
	generation("sql_generation", generator.SQL, "Generates SQL DDL for the domain model.", false,
		mcp.WithString("sql_dialect", mcp.Description("SQL dialect"), mcp.DefaultString(generator.DialectSQLite),
			mcp.Enum(generator.Dialects...))),
	generation("python_generation", generator.Python, "Generates Python classes for the domain model.", false),
	generation("java_generation", generator.Java, "Generates one Java file per class and enumeration.", true),
	generation("json_schema_generation", generator.JSONSchema, "Generates a JSON Schema (2020-12) for the domain model.", false),
	generation("json_smart_data_generation", generator.SmartData, "Generates a Smart Data Models schema per class.", true),
	generation("rdf_generation", generator.RDF, "Generates an RDF vocabulary (Turtle) for the domain model.", false),
	generation("rest_api_generation", generator.RESTAPI, "Generates an OpenAPI 3 document with CRUD paths per class.", false),
	generation("sql_alchemy_generation", generator.SQLAlchemy, "Generates SQLAlchemy 2.0 models.", false),
	generation("pydantic_classes_generation", generator.Pydantic, "Generates Pydantic models.", false),
	generation("backend_generation", generator.Backend, "Generates SQLAlchemy models, Pydantic models and an OpenAPI document.", true),
}

func generation(tool, gen, desc string, inProcessOnly bool, params ...mcp.ToolOption) operation {
	return operation{
		name: tool, kind: generateKind, desc: desc, params: params,
		generator: gen, inProcessOnly: inProcessOnly,
	}
}
