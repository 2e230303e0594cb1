package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAlreadyExists is returned when an element name collides with an existing one.
var ErrAlreadyExists = errors.New("already exists")

// ErrNotFound is returned when a referenced element is not present.
var ErrNotFound = errors.New("not found")

// ErrInvalid is returned when an element violates a metamodel rule
// (bad name, bad multiplicity, cyclic generalization, ...).
var ErrInvalid = errors.New("invalid")

// ScopeModel is the scope used for elements owned directly by the model.
const ScopeModel = "the model"

// ElementError describes a uniqueness or lookup failure for a named element.
type ElementError struct {
	Kind  string // "class", "attribute", "literal", ...
	Name  string
	Scope string // e.g. ScopeModel, "the class 'Book'", "'Book'"
	Err   error  // ErrAlreadyExists or ErrNotFound
}

func (e *ElementError) Error() string {
	if errors.Is(e.Err, ErrAlreadyExists) {
		return fmt.Sprintf("%s %s with name '%s' already exists in %s", indefiniteArticle(e.Kind), e.Kind, e.Name, e.Scope)
	}
	return fmt.Sprintf("No %s with name '%s' exists in %s", e.Kind, e.Name, e.Scope)
}

func (e *ElementError) Unwrap() error {
	return e.Err
}

// Duplicate reports that an element named name already exists in scope.
func Duplicate(kind, name, scope string) error {
	return &ElementError{Kind: kind, Name: name, Scope: scope, Err: ErrAlreadyExists}
}

// Missing reports that no element named name exists in scope.
func Missing(kind, name, scope string) error {
	return &ElementError{Kind: kind, Name: name, Scope: scope, Err: ErrNotFound}
}

// InClass returns the scope string for elements owned by a class.
func InClass(name string) string {
	return fmt.Sprintf("the class '%s'", name)
}

// InEnumeration returns the scope string for literals owned by an enumeration.
func InEnumeration(name string) string {
	return fmt.Sprintf("the enumeration '%s'", name)
}

// Quoted returns the short scope form used by removal messages ("'Book'").
func Quoted(name string) string {
	return "'" + name + "'"
}

// ruleError carries a preformatted message while still matching a sentinel.
type ruleError struct {
	msg string
	err error
}

func (e *ruleError) Error() string { return e.msg }
func (e *ruleError) Unwrap() error { return e.err }

func errorf(sentinel error, format string, args ...any) error {
	return &ruleError{msg: fmt.Sprintf(format, args...), err: sentinel}
}

func indefiniteArticle(word string) string {
	if word == "" {
		return "A"
	}
	if strings.ContainsRune("aeiouAEIOU", rune(word[0])) {
		return "An"
	}
	return "A"
}
