package codec_test

import (
	"bytes"
	"encoding/base64"
	"log/slog"
	"strings"
	"testing"

	"github.com/aretw0/buml/pkg/codec"
	"github.com/aretw0/buml/pkg/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// summary flattens the parts of a model that must survive a round trip.
type summary struct {
	Types           []string
	Attributes      map[string][]string
	Methods         map[string][]string
	Associations    []string
	Generalizations []string
	Constraints     []string
	Literals        map[string][]string
}

func summarize(m *domain.DomainModel) summary {
	s := summary{
		Attributes: map[string][]string{},
		Methods:    map[string][]string{},
		Literals:   map[string][]string{},
	}
	for _, t := range m.Types {
		s.Types = append(s.Types, domain.KindOf(t)+":"+t.TypeName())
	}
	for _, c := range m.Classes() {
		for _, a := range c.Attributes {
			s.Attributes[c.Name] = append(s.Attributes[c.Name], a.Name+":"+a.Type.TypeName()+"["+a.Multiplicity.String()+"]")
		}
		for _, meth := range c.Methods {
			s.Methods[c.Name] = append(s.Methods[c.Name], meth.Name)
		}
	}
	for _, e := range m.Enumerations() {
		for _, l := range e.Literals {
			s.Literals[e.Name] = append(s.Literals[e.Name], l.Name)
		}
	}
	for _, a := range m.Associations {
		s.Associations = append(s.Associations, a.Name+":"+a.Source().Name+"->"+a.Target().Name)
	}
	for _, g := range m.Generalizations {
		s.Generalizations = append(s.Generalizations, g.General.Name+"<|--"+g.Specific.Name)
	}
	for _, c := range m.Constraints {
		s.Constraints = append(s.Constraints, c.Name+"@"+c.Context.Name+":"+c.Expression)
	}
	return s
}

func buildModel(t *testing.T) *domain.DomainModel {
	t.Helper()
	m, err := domain.NewDomainModel("Library")
	require.NoError(t, err)

	genre, err := domain.NewEnumeration("Genre", "Fiction", "Poetry")
	require.NoError(t, err)
	require.NoError(t, m.AddType(genre))

	book, _ := domain.NewClass("Book")
	author, _ := domain.NewClass("Author")
	ebook, _ := domain.NewClass("EBook")
	for _, c := range []*domain.Class{book, author, ebook} {
		require.NoError(t, m.AddType(c))
	}

	title, _ := domain.NewProperty("title", m.TypeByName("str"))
	g, _ := domain.NewProperty("genre", genre)
	g.Multiplicity = domain.Multiplicity{Min: 0, Max: 1}
	require.NoError(t, book.AddAttribute(title))
	require.NoError(t, book.AddAttribute(g))
	require.NoError(t, book.AddMethod(&domain.Method{
		Name:       "lend",
		Parameters: []domain.Parameter{{Name: "days", Type: m.TypeByName("int")}},
		Type:       m.TypeByName("bool"),
	}))

	a, err := domain.NewBinaryAssociation(domain.AssociationSpec{
		Name: "writes", From: author, To: book, RoleFrom: "authors", RoleTo: "books",
		MultiplicityFrom: domain.Multiplicity{Min: 1, Max: domain.Unbounded},
		MultiplicityTo:   domain.Multiplicity{Min: 0, Max: domain.Unbounded},
		Bidirectional:    true,
	})
	require.NoError(t, err)
	require.NoError(t, m.AddAssociation(a))

	ac, err := domain.NewAssociationClass("Authorship", a)
	require.NoError(t, err)
	require.NoError(t, m.AddType(ac))
	since, _ := domain.NewProperty("since", m.TypeByName("date"))
	require.NoError(t, ac.AddAttribute(since))

	_, err = m.AddGeneralization(book, ebook)
	require.NoError(t, err)

	c, err := domain.NewConstraint("titled", book, "self.title <> ''")
	require.NoError(t, err)
	require.NoError(t, m.AddConstraint(c))
	return m
}

func TestRoundTrip(t *testing.T) {
	c := codec.New()
	m := buildModel(t)

	token, err := c.Encode(m)
	require.NoError(t, err)

	decoded, err := c.Decode(token)
	require.NoError(t, err)

	if diff := cmp.Diff(summarize(m), summarize(decoded)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	ac := decoded.AssociationClasses()[0]
	assert.Same(t, decoded.AssociationByName("writes"), ac.Association)
}

func TestDecode_UnpaddedAndWhitespace(t *testing.T) {
	c := codec.New()
	m, err := domain.NewDomainModel("M")
	require.NoError(t, err)
	token, err := c.Encode(m)
	require.NoError(t, err)

	for _, variant := range []string{
		strings.TrimRight(token, "="),
		"  " + token + "\n",
	} {
		decoded, err := c.Decode(variant)
		require.NoError(t, err)
		assert.Equal(t, "M", decoded.Name)
	}
}

func TestDecode_Malformed(t *testing.T) {
	c := codec.New()
	for name, token := range map[string]string{
		"empty":      "",
		"not base64": "%%%not-base64%%%",
		"not json":   base64.StdEncoding.EncodeToString([]byte("hello")),
		"bad format": base64.StdEncoding.EncodeToString([]byte(`{"format":"pickle","name":"M"}`)),
		"dangling":   base64.StdEncoding.EncodeToString([]byte(`{"format":"buml/v1","name":"M","generalizations":[{"general":"A","specific":"B"}]}`)),
		"untyped attribute": base64.StdEncoding.EncodeToString([]byte(
			`{"format":"buml/v1","name":"M","types":[{"kind":"class","name":"Book","attributes":[{"name":"title","multiplicity":"1..1","navigable":true}]}]}`)),
		"untyped end": base64.StdEncoding.EncodeToString([]byte(
			`{"format":"buml/v1","name":"M","types":[{"kind":"class","name":"A"},{"kind":"class","name":"B"}],` +
				`"associations":[{"name":"ab","ends":[{"name":"b","owner":"A","multiplicity":"1..1","navigable":true},` +
				`{"name":"a","type":"A","owner":"B","multiplicity":"1..1","navigable":true}]}]}`)),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := c.Decode(token)
			assert.ErrorIs(t, err, codec.ErrMalformedToken)
		})
	}
}

func TestDecode_LogsForeignTokenAtDebug(t *testing.T) {
	m, _ := domain.NewDomainModel("M")
	other, _ := domain.NewDomainModel("Other")

	var info bytes.Buffer
	c := codec.New(codec.WithLogger(slog.New(slog.NewTextHandler(&info, nil))))
	_, err := c.Encode(m)
	require.NoError(t, err)
	foreign, err := codec.New().Encode(other)
	require.NoError(t, err)
	_, err = c.Decode(foreign)
	require.NoError(t, err)
	assert.Empty(t, info.String(), "shared codecs decode foreign tokens routinely")

	var debug bytes.Buffer
	c = codec.New(codec.WithLogger(slog.New(slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	token, err := c.Encode(m)
	require.NoError(t, err)
	_, err = c.Decode(token)
	require.NoError(t, err)
	assert.Empty(t, debug.String())

	_, _ = c.Decode(token[:len(token)-4])
	assert.Contains(t, debug.String(), "truncated=true")
}
