package generator

import (
	"testing"

	"github.com/aretw0/buml/pkg/domain"
	"github.com/stretchr/testify/require"
)

func attr(t *testing.T, m *domain.DomainModel, c *domain.Class, name, typ, mult string) *domain.Property {
	t.Helper()
	p, err := domain.NewProperty(name, m.TypeByName(typ))
	require.NoError(t, err)
	p.Multiplicity, err = domain.ParseMultiplicity(mult)
	require.NoError(t, err)
	require.NoError(t, c.AddAttribute(p))
	return p
}

func class(t *testing.T, m *domain.DomainModel, name string) *domain.Class {
	t.Helper()
	c, err := domain.NewClass(name)
	require.NoError(t, err)
	require.NoError(t, m.AddType(c))
	return c
}

func associate(t *testing.T, m *domain.DomainModel, spec domain.AssociationSpec) *domain.BinaryAssociation {
	t.Helper()
	a, err := domain.NewBinaryAssociation(spec)
	require.NoError(t, err)
	require.NoError(t, m.AddAssociation(a))
	return a
}

var (
	one  = domain.Multiplicity{Min: 1, Max: 1}
	many = domain.Multiplicity{Min: 0, Max: domain.Unbounded}
)

// libraryModel covers enumerations, multi-valued attributes, inheritance,
// one-to-many and many-to-many associations and an association class.
func libraryModel(t *testing.T) *domain.DomainModel {
	t.Helper()
	m, err := domain.NewDomainModel("Library")
	require.NoError(t, err)

	genre, err := domain.NewEnumeration("Genre", "FICTION", "SCIENCE")
	require.NoError(t, err)
	require.NoError(t, m.AddType(genre))

	book := class(t, m, "Book")
	attr(t, m, book, "title", domain.StringType, "1..1")
	attr(t, m, book, "pages", domain.IntegerType, "0..1")
	attr(t, m, book, "genre", "Genre", "1..1")
	attr(t, m, book, "tags", domain.StringType, "0..*")

	author := class(t, m, "Author")
	attr(t, m, author, "name", domain.StringType, "1..1")

	publisher := class(t, m, "Publisher")

	ebook := class(t, m, "EBook")
	attr(t, m, ebook, "size", domain.FloatType, "1..1")
	_, err = m.AddGeneralization(book, ebook)
	require.NoError(t, err)

	member := class(t, m, "Member")
	attr(t, m, member, "name", domain.StringType, "1..1")

	associate(t, m, domain.AssociationSpec{
		Name: "writes", From: author, To: book,
		RoleFrom: "authors", RoleTo: "books",
		MultiplicityFrom: domain.Multiplicity{Min: 1, Max: domain.Unbounded}, MultiplicityTo: many,
		Bidirectional: true,
	})
	associate(t, m, domain.AssociationSpec{
		Name: "publishes", From: publisher, To: book,
		RoleFrom: "publisher", RoleTo: "books",
		MultiplicityFrom: one, MultiplicityTo: many,
		Bidirectional: true,
	})
	borrows := associate(t, m, domain.AssociationSpec{
		Name: "borrows", From: member, To: book,
		RoleFrom: "borrowers", RoleTo: "borrowed",
		MultiplicityFrom: many, MultiplicityTo: many,
		Bidirectional: true,
	})
	loan, err := domain.NewAssociationClass("Loan", borrows)
	require.NoError(t, err)
	require.NoError(t, m.AddType(loan))
	attr(t, m, &loan.Class, "due", domain.DateType, "1..1")
	return m
}

func emptyModel(t *testing.T) *domain.DomainModel {
	t.Helper()
	m, err := domain.NewDomainModel("Empty")
	require.NoError(t, err)
	return m
}
