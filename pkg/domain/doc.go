/*
Package domain contains the B-UML structural metamodel manipulated by buml.

It defines the elements a domain model is built from: primitive data types,
classes, properties, methods, binary associations, association classes,
generalizations, enumerations and OCL constraints. The package is kept free of
I/O and transport concerns; encoding lives in pkg/codec and persistence in the
adapters.

# Key Entities

  - DomainModel: The root container. A new model is seeded with the primitive types.
  - Type: A closed variant implemented by PrimitiveDataType, Class, Enumeration and AssociationClass.
  - Property: A class attribute, or one end of a BinaryAssociation.
  - Generalization: A "General <|-- Specific" inheritance edge between two classes.
  - Constraint: An OCL expression attached to a context class.

Lookup and uniqueness failures are reported as *ElementError values which wrap
ErrNotFound or ErrAlreadyExists, so callers can branch with errors.Is while still
showing the element-specific message to users.
*/
package domain
