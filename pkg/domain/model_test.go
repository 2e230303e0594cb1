package domain_test

import (
	"errors"
	"testing"

	"github.com/aretw0/buml/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLibrary(t *testing.T) (*domain.DomainModel, *domain.Class, *domain.Class) {
	t.Helper()
	m, err := domain.NewDomainModel("Library")
	require.NoError(t, err)

	book, err := domain.NewClass("Book")
	require.NoError(t, err)
	author, err := domain.NewClass("Author")
	require.NoError(t, err)
	require.NoError(t, m.AddType(book))
	require.NoError(t, m.AddType(author))

	title, err := domain.NewProperty("title", m.TypeByName(domain.StringType))
	require.NoError(t, err)
	require.NoError(t, book.AddAttribute(title))

	assoc, err := domain.NewBinaryAssociation(domain.AssociationSpec{
		Name: "writes", From: author, To: book,
		RoleFrom: "authors", RoleTo: "books",
		MultiplicityFrom: domain.Multiplicity{Min: 1, Max: domain.Unbounded},
		MultiplicityTo:   domain.Multiplicity{Min: 0, Max: domain.Unbounded},
		Bidirectional:    true,
	})
	require.NoError(t, err)
	require.NoError(t, m.AddAssociation(assoc))
	return m, book, author
}

func TestNewDomainModel_SeedsPrimitives(t *testing.T) {
	m, err := domain.NewDomainModel("Empty")
	require.NoError(t, err)

	for _, name := range domain.PrimitiveTypeNames {
		typ := m.TypeByName(name)
		require.NotNil(t, typ, name)
		assert.IsType(t, &domain.PrimitiveDataType{}, typ)
	}
	assert.Empty(t, m.Classes())
}

func TestNewDomainModel_InvalidName(t *testing.T) {
	_, err := domain.NewDomainModel("my model")
	require.ErrorIs(t, err, domain.ErrInvalid)
	assert.Equal(t, "'my model' is invalid. Name cannot contain spaces.", err.Error())
}

func TestAddType_Duplicate(t *testing.T) {
	m, _, _ := newLibrary(t)
	dup, err := domain.NewClass("Book")
	require.NoError(t, err)

	err = m.AddType(dup)
	require.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.Equal(t, "A class with name 'Book' already exists in the model", err.Error())
	assert.Len(t, m.Classes(), 2)

	enum, err := domain.NewEnumeration("Author", "A")
	require.NoError(t, err)
	err = m.AddType(enum)
	assert.Equal(t, "An enumeration with name 'Author' already exists in the model", err.Error())
}

func TestClass_Attributes(t *testing.T) {
	m, book, _ := newLibrary(t)

	dup, err := domain.NewProperty("title", m.TypeByName(domain.StringType))
	require.NoError(t, err)
	err = book.AddAttribute(dup)
	assert.Equal(t, "An attribute with name 'title' already exists in the class 'Book'", err.Error())

	classTyped, err := domain.NewProperty("writer", m.TypeByName("Author"))
	require.NoError(t, err)
	assert.ErrorIs(t, book.AddAttribute(classTyped), domain.ErrInvalid)

	untyped, err := domain.NewProperty("isbn", nil)
	require.NoError(t, err)
	err = book.AddAttribute(untyped)
	assert.ErrorIs(t, err, domain.ErrInvalid)
	assert.Equal(t, "Attribute 'isbn' requires a type", err.Error())
	assert.Nil(t, book.Attribute("isbn"))

	err = book.RemoveAttribute("isbn")
	assert.Equal(t, "No attribute with name 'isbn' exists in 'Book'", err.Error())

	require.NoError(t, book.RemoveAttribute("title"))
	assert.Empty(t, book.Attributes)
}

func TestClass_Methods(t *testing.T) {
	m, book, _ := newLibrary(t)
	meth := &domain.Method{
		Name:       "lend",
		Parameters: []domain.Parameter{{Name: "days", Type: m.TypeByName(domain.IntegerType)}},
		Type:       m.TypeByName(domain.BooleanType),
	}
	require.NoError(t, book.AddMethod(meth))
	assert.Equal(t, domain.VisibilityPublic, meth.Visibility)
	assert.Same(t, book, meth.Owner)

	err := book.AddMethod(&domain.Method{Name: "lend"})
	assert.Equal(t, "A method with name 'lend' already exists in the class 'Book'", err.Error())

	err = book.AddMethod(&domain.Method{Name: "hide", Visibility: "secret"})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	err = book.RemoveMethod("borrow")
	assert.Equal(t, "No method with name 'borrow' exists in 'Book'", err.Error())
	require.NoError(t, book.RemoveMethod("lend"))
}

func TestBinaryAssociation_Ends(t *testing.T) {
	m, book, author := newLibrary(t)
	a := m.AssociationByName("writes")
	require.NotNil(t, a)

	assert.Same(t, author, a.Source())
	assert.Same(t, book, a.Target())
	assert.Equal(t, "books", a.Ends[0].Name)
	assert.Equal(t, domain.Type(book), a.Ends[0].Type)
	assert.True(t, a.IsManyToMany())

	dup, err := domain.NewBinaryAssociation(domain.AssociationSpec{
		Name: "writes", From: book, To: author, RoleFrom: "b", RoleTo: "a",
		MultiplicityFrom: domain.One, MultiplicityTo: domain.One,
	})
	require.NoError(t, err)
	err = m.AddAssociation(dup)
	assert.Equal(t, "An association with name 'writes' already exists in the model", err.Error())
}

func TestAssociationClass(t *testing.T) {
	m, _, _ := newLibrary(t)
	a := m.AssociationByName("writes")

	ac, err := domain.NewAssociationClass("Authorship", a)
	require.NoError(t, err)
	require.NoError(t, m.AddType(ac))
	assert.NotNil(t, m.ClassByName("Authorship"))
	assert.Len(t, m.Classes(), 3)

	orphan, err := domain.NewBinaryAssociation(domain.AssociationSpec{
		Name: "ghost", From: m.ClassByName("Book"), To: m.ClassByName("Book"),
		RoleFrom: "x", RoleTo: "y", MultiplicityFrom: domain.One, MultiplicityTo: domain.One,
	})
	require.NoError(t, err)
	stray, err := domain.NewAssociationClass("Stray", orphan)
	require.NoError(t, err)
	err = m.AddType(stray)
	assert.Equal(t, "Association 'ghost' does not exists in the model. Create the 'ghost' association before the association class", err.Error())

	require.NoError(t, m.RemoveAssociation("writes"))
	assert.Nil(t, m.ClassByName("Authorship"))
	assert.Empty(t, m.Associations)
}

func TestGeneralization_Rules(t *testing.T) {
	m, book, _ := newLibrary(t)
	ebook, err := domain.NewClass("EBook")
	require.NoError(t, err)
	require.NoError(t, m.AddType(ebook))

	_, err = m.AddGeneralization(book, ebook)
	require.NoError(t, err)
	assert.Equal(t, []*domain.Class{book}, m.Ancestors(ebook))

	_, err = m.AddGeneralization(book, book)
	assert.ErrorIs(t, err, domain.ErrInvalid)
	_, err = m.AddGeneralization(book, ebook)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	_, err = m.AddGeneralization(ebook, book)
	assert.ErrorIs(t, err, domain.ErrInvalid, "cycle")

	err = m.RemoveGeneralization("Author", "Book")
	assert.Equal(t, "No generalization between 'Author' and 'Book' exists in the model", err.Error())
	require.NoError(t, m.RemoveGeneralization("Book", "EBook"))
	assert.Empty(t, m.Generalizations)
}

func TestRemoveClass_Cascades(t *testing.T) {
	m, book, author := newLibrary(t)
	ebook, _ := domain.NewClass("EBook")
	require.NoError(t, m.AddType(ebook))
	_, err := m.AddGeneralization(book, ebook)
	require.NoError(t, err)
	c, err := domain.NewConstraint("titled", book, "self.title <> ''")
	require.NoError(t, err)
	require.NoError(t, m.AddConstraint(c))
	require.NoError(t, author.AddMethod(&domain.Method{Name: "latest", Type: book}))

	require.NoError(t, m.RemoveClass("Book"))

	assert.Nil(t, m.ClassByName("Book"))
	assert.Empty(t, m.Associations)
	assert.Empty(t, m.Generalizations)
	assert.Empty(t, m.Constraints)
	assert.Nil(t, author.Method("latest").Type)

	err = m.RemoveClass("Book")
	assert.Equal(t, "No class with name 'Book' exists in the model", err.Error())
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRemoveEnumeration(t *testing.T) {
	m, book, _ := newLibrary(t)
	genre, err := domain.NewEnumeration("Genre", "Fiction", "Poetry")
	require.NoError(t, err)
	require.NoError(t, m.AddType(genre))

	p, err := domain.NewProperty("genre", genre)
	require.NoError(t, err)
	require.NoError(t, book.AddAttribute(p))

	assert.ErrorIs(t, m.RemoveEnumeration("Genre"), domain.ErrInvalid)
	require.NoError(t, book.RemoveAttribute("genre"))
	require.NoError(t, m.RemoveEnumeration("Genre"))
	assert.Nil(t, m.EnumerationByName("Genre"))

	err = m.RemoveEnumeration("Genre")
	assert.Equal(t, "No enumeration with name 'Genre' exists in the model", err.Error())
}

func TestEnumerationLiterals(t *testing.T) {
	e, err := domain.NewEnumeration("Color", "Red")
	require.NoError(t, err)

	err = e.AddLiteral("Red")
	assert.Equal(t, "A literal with name 'Red' already exists in the enumeration 'Color'", err.Error())

	err = e.RemoveLiteral("Blue")
	assert.Equal(t, "No literal with name 'Blue' exists in 'Color'", err.Error())
	require.NoError(t, e.RemoveLiteral("Red"))
	assert.Empty(t, e.Literals)

	_, err = domain.NewEnumeration("Dup", "A", "A")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestConstraints(t *testing.T) {
	m, book, _ := newLibrary(t)

	_, err := domain.NewConstraint("empty", book, "")
	assert.ErrorIs(t, err, domain.ErrInvalid)

	c, err := domain.NewConstraint("titled", book, "self.title <> ''")
	require.NoError(t, err)
	assert.Equal(t, domain.OCL, c.Language)
	require.NoError(t, m.AddConstraint(c))
	assert.ErrorIs(t, m.AddConstraint(c), domain.ErrAlreadyExists)

	err = m.RemoveConstraint("missing")
	assert.Equal(t, "No constraint with name 'missing' exists in the model", err.Error())
	require.NoError(t, m.RemoveConstraint("titled"))
}
