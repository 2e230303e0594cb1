package generator

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/buml/pkg/domain"
	"github.com/aretw0/buml/pkg/registry"
)

func TestNaming(t *testing.T) {
	tests := []struct {
		in, snake, pascal, camel string
	}{
		{"BookAuthor", "book_author", "BookAuthor", "bookAuthor"},
		{"book_author", "book_author", "BookAuthor", "bookAuthor"},
		{"HTTPServer", "http_server", "HTTPServer", "httpServer"},
		{"EBook", "e_book", "EBook", "eBook"},
		{"isbn10", "isbn10", "Isbn10", "isbn10"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.snake, snakeCase(tt.in))
			assert.Equal(t, tt.pascal, pascalCase(tt.in))
			assert.Equal(t, tt.camel, camelCase(tt.in))
		})
	}
}

func TestOrderedClasses_ParentsFirst(t *testing.T) {
	m := libraryModel(t)
	var names []string
	for _, c := range orderedClasses(m) {
		names = append(names, c.Name)
	}
	assert.Less(t, indexOf(names, "Book"), indexOf(names, "EBook"))
	assert.Contains(t, names, "Loan")
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.ElementsMatch(t, []string{
		SQL, Python, Java, JSONSchema, SmartData, RDF, RESTAPI, SQLAlchemy, Pydantic, Backend,
	}, r.Names())

	_, err := r.Lookup("cobol")
	assert.ErrorIs(t, err, registry.ErrNotRegistered)
}

func TestNewSQL_UnknownDialect(t *testing.T) {
	_, err := NewSQL(Options{Dialect: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported SQL dialect "oracle"`)

	g, err := NewSQL(Options{})
	require.NoError(t, err)
	assert.Equal(t, DialectSQLite, g.Dialect())
	assert.Equal(t, "tables_sqlite.sql", g.OutputFile())
}

func TestGenerators_NoClassesWriteNothing(t *testing.T) {
	r := NewRegistry()
	for _, name := range r.Names() {
		t.Run(name, func(t *testing.T) {
			factory, err := r.Lookup(name)
			require.NoError(t, err)
			g, err := factory(Options{})
			require.NoError(t, err)

			dir := t.TempDir()
			paths, err := g.Generate(context.Background(), emptyModel(t), dir)
			require.NoError(t, err)
			assert.Empty(t, paths)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestGenerators_LibraryModel(t *testing.T) {
	r := NewRegistry()
	for _, name := range r.Names() {
		t.Run(name, func(t *testing.T) {
			factory, err := r.Lookup(name)
			require.NoError(t, err)
			g, err := factory(Options{ValidateSQL: true})
			require.NoError(t, err)

			dir := t.TempDir()
			paths, err := g.Generate(context.Background(), libraryModel(t), dir)
			require.NoError(t, err)
			require.NotEmpty(t, paths)
			for _, p := range paths {
				assert.FileExists(t, p)
			}
			if sf, ok := g.(SingleFile); ok {
				assert.Equal(t, filepath.Join(dir, sf.OutputFile()), paths[0])
			}
		})
	}
}

func generate(t *testing.T, g Generator, file string) string {
	t.Helper()
	return generateModel(t, g, libraryModel(t), file)
}

func generateModel(t *testing.T, g Generator, m *domain.DomainModel, file string) string {
	t.Helper()
	dir := t.TempDir()
	_, err := g.Generate(context.Background(), m, dir)
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, file))
	require.NoError(t, err)
	return string(data)
}

func TestSQL_SQLite(t *testing.T) {
	g, err := NewSQL(Options{Dialect: DialectSQLite, ValidateSQL: true})
	require.NoError(t, err)
	out := generate(t, g, "tables_sqlite.sql")

	assert.Contains(t, out, `CREATE TABLE "book" (`)
	assert.Contains(t, out, `"title" TEXT NOT NULL`)
	assert.Contains(t, out, `"pages" INTEGER,`)
	assert.Contains(t, out, `"genre" TEXT NOT NULL CHECK ("genre" IN ('FICTION', 'SCIENCE'))`)
	assert.Contains(t, out, `CREATE TABLE "book_tags" (`)
	assert.Contains(t, out, `CONSTRAINT "fk_e_book_book" FOREIGN KEY ("id") REFERENCES "book" ("id") ON DELETE CASCADE`)
	assert.Contains(t, out, `CONSTRAINT "fk_book_publisher" FOREIGN KEY ("publisher_id") REFERENCES "publisher" ("id")`)
	assert.Contains(t, out, `CREATE TABLE "writes" (`)
	assert.Contains(t, out, `PRIMARY KEY ("authors_id", "books_id")`)
	assert.Contains(t, out, `CREATE TABLE "loan" (`)
	assert.Contains(t, out, `"due" DATE NOT NULL`)
	assert.NotContains(t, out, "ALTER TABLE")
}

func TestSQL_Dialects(t *testing.T) {
	tests := []struct {
		dialect string
		want    []string
	}{
		{DialectPostgreSQL, []string{
			`"id" INTEGER GENERATED BY DEFAULT AS IDENTITY NOT NULL`,
			`"genre" VARCHAR(7) NOT NULL`,
			`ALTER TABLE "book" ADD CONSTRAINT "fk_book_publisher" FOREIGN KEY ("publisher_id") REFERENCES "publisher" ("id");`,
		}},
		{DialectMySQL, []string{"CREATE TABLE `book` (", "`id` INT AUTO_INCREMENT NOT NULL", "`title` VARCHAR(255) NOT NULL"}},
		{DialectMariaDB, []string{"CREATE TABLE `book` ("}},
		{DialectMSSQL, []string{"CREATE TABLE [book] (", "[id] INT IDENTITY(1,1) NOT NULL", "[title] NVARCHAR(255) NOT NULL"}},
	}
	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			g, err := NewSQL(Options{Dialect: tt.dialect})
			require.NoError(t, err)
			stmts, err := g.Statements(libraryModel(t))
			require.NoError(t, err)
			out := strings.Join(stmts, "\n")
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestSQL_ValidationRejectsBrokenDDL(t *testing.T) {
	err := validateSQLite(context.Background(), []string{`CREATE TABLE "x" ("a" INTEGER NOT NULL,);`})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generated SQL failed validation")
}

func TestSQL_OneToOneIsUnique(t *testing.T) {
	m := emptyModel(t)
	person := class(t, m, "Person")
	passport := class(t, m, "Passport")
	attr(t, m, passport, "number", "str", "1..1")
	associate(t, m, domain.AssociationSpec{
		Name: "holds", From: person, To: passport,
		RoleFrom: "owner", RoleTo: "passport",
		MultiplicityFrom: one, MultiplicityTo: one,
	})

	g, err := NewSQL(Options{ValidateSQL: true})
	require.NoError(t, err)
	out := generateModel(t, g, m, "tables_sqlite.sql")
	assert.Contains(t, out, `UNIQUE ("passport_id")`)
}

func TestSQL_MultiValuedIDIsNotKey(t *testing.T) {
	m := emptyModel(t)
	tag := class(t, m, "Tag")
	attr(t, m, tag, "label", "str", "1..1")
	attr(t, m, tag, "id", "str", "0..*").IsID = true

	g, err := NewSQL(Options{ValidateSQL: true})
	require.NoError(t, err)
	out := generateModel(t, g, m, "tables_sqlite.sql")
	assert.Contains(t, out, `CREATE TABLE "tag_id" (`)
	assert.Contains(t, out, `PRIMARY KEY ("tag_id", "id")`)
}

func TestPython(t *testing.T) {
	out := generate(t, &PythonGenerator{}, "classes.py")
	assert.Contains(t, out, "class Genre(Enum):\n    FICTION = \"FICTION\"")
	assert.Contains(t, out, "class EBook(Book):")
	assert.Contains(t, out, "super().__init__(")
	assert.Contains(t, out, "self.tags: set[str] = tags if tags is not None else set()")
	assert.Less(t, strings.Index(out, "class Book"), strings.Index(out, "class EBook"))
}

func TestJava(t *testing.T) {
	dir := t.TempDir()
	paths, err := (&JavaGenerator{}).Generate(context.Background(), libraryModel(t), dir)
	require.NoError(t, err)
	assert.Len(t, paths, 7) // Genre + six classes

	book, err := os.ReadFile(filepath.Join(dir, "Book.java"))
	require.NoError(t, err)
	assert.Contains(t, string(book), "import java.util.List;")
	assert.Contains(t, string(book), "private List<String> tags = new ArrayList<>();")
	assert.Contains(t, string(book), "private Integer pages;")

	ebook, err := os.ReadFile(filepath.Join(dir, "EBook.java"))
	require.NoError(t, err)
	assert.Contains(t, string(ebook), "public class EBook extends Book {")
}

func TestJava_UntypedParameter(t *testing.T) {
	m := emptyModel(t)
	shelf := class(t, m, "Shelf")
	require.NoError(t, shelf.AddMethod(&domain.Method{
		Name:       "place",
		Parameters: []domain.Parameter{{Name: "item"}},
	}))

	dir := t.TempDir()
	_, err := (&JavaGenerator{}).Generate(context.Background(), m, dir)
	require.NoError(t, err)
	out, err := os.ReadFile(filepath.Join(dir, "Shelf.java"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "public void place(Object item) {")
}

func TestJSONSchema(t *testing.T) {
	out := generate(t, &JSONSchemaGenerator{}, "schema.json")

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, Draft2020, doc["$schema"])

	defs := doc["$defs"].(map[string]any)
	book := defs["Book"].(map[string]any)
	assert.Equal(t, "object", book["type"])
	assert.ElementsMatch(t, []any{"title", "genre", "authors", "publisher"}, book["required"])

	props := book["properties"].(map[string]any)
	assert.Equal(t, map[string]any{"$ref": "#/$defs/Genre"}, props["genre"])
	assert.Equal(t, "array", props["tags"].(map[string]any)["type"])

	ebook := defs["EBook"].(map[string]any)
	assert.Equal(t, []any{map[string]any{"$ref": "#/$defs/Book"}}, ebook["allOf"])
}

func TestSmartData(t *testing.T) {
	dir := t.TempDir()
	paths, err := (&SmartDataGenerator{}).Generate(context.Background(), libraryModel(t), dir)
	require.NoError(t, err)
	assert.Len(t, paths, 6)

	data, err := os.ReadFile(filepath.Join(dir, "EBook", "schema.json"))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, []any{"id", "type"}, doc["required"])

	allOf := doc["allOf"].([]any)
	require.Len(t, allOf, 3)
	props := allOf[2].(map[string]any)["properties"].(map[string]any)
	assert.Contains(t, props, "title", "inherited attributes are flattened")
	assert.Contains(t, props, "size")
	assert.Equal(t, []any{"EBook"}, props["type"].(map[string]any)["enum"])
}

func TestRDF(t *testing.T) {
	out := generate(t, &RDFGenerator{opts: Options{BaseIRI: "http://example.com/lib#"}}, "vocabulary.ttl")
	assert.Contains(t, out, "@prefix : <http://example.com/lib#> .")
	assert.Contains(t, out, ":EBook a rdfs:Class, owl:Class ;")
	assert.Contains(t, out, "rdfs:subClassOf :Book")
	assert.Contains(t, out, ":Book_title a owl:DatatypeProperty ;")
	assert.Contains(t, out, "rdfs:range xsd:string")
	assert.Contains(t, out, "owl:oneOf ( :Genre_FICTION :Genre_SCIENCE )")

	def := generate(t, &RDFGenerator{}, "vocabulary.ttl")
	assert.Contains(t, def, "@prefix : <http://example.org/Library#> .")
}

func TestRESTAPI(t *testing.T) {
	out := generate(t, &RESTAPIGenerator{}, "openapi.yaml")

	var doc struct {
		OpenAPI string                    `yaml:"openapi"`
		Paths   map[string]map[string]any `yaml:"paths"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "3.0.3", doc.OpenAPI)
	require.Contains(t, doc.Paths, "/books")
	require.Contains(t, doc.Paths, "/e_books/{id}")
	assert.Contains(t, doc.Paths["/books"], "post")
	assert.Contains(t, doc.Paths["/e_books/{id}"], "delete")
	assert.Contains(t, out, "operationId: listEBook")
}

func TestSQLAlchemy(t *testing.T) {
	out := generate(t, &SQLAlchemyGenerator{}, "sql_alchemy.py")
	assert.Contains(t, out, "class Base(DeclarativeBase):")
	assert.Contains(t, out, "class EBook(Book):")
	assert.Contains(t, out, `id: Mapped[int] = mapped_column(ForeignKey("book.id"), primary_key=True)`)
	assert.Contains(t, out, `publisher_id: Mapped[int] = mapped_column(ForeignKey("publisher.id"))`)
	assert.Contains(t, out, `writes = Table(`)
	assert.Contains(t, out, `books: Mapped[List["Book"]] = relationship(secondary="writes", back_populates="authors")`)
	assert.Contains(t, out, `genre: Mapped[Genre] = mapped_column(Enum(Genre))`)
	assert.Contains(t, out, `pages: Mapped[Optional[int]] = mapped_column(Integer)`)
	assert.Contains(t, out, `borrowed_id: Mapped[int] = mapped_column(ForeignKey("book.id"))`)
}

func TestPydantic(t *testing.T) {
	out := generate(t, &PydanticGenerator{}, "pydantic_classes.py")
	assert.Contains(t, out, "class Genre(str, Enum):")
	assert.Contains(t, out, "class Book(BaseModel):")
	assert.Contains(t, out, "tags: List[str] = Field(default_factory=list)")
	assert.Contains(t, out, "pages: Optional[int] = None")
	assert.Contains(t, out, "publisher_id: int")
	assert.Contains(t, out, "authors_ids: List[int] = Field(default_factory=list, min_length=1)")
}

func TestBackend(t *testing.T) {
	dir := t.TempDir()
	paths, err := (&BackendGenerator{}).Generate(context.Background(), libraryModel(t), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "sql_alchemy.py"),
		filepath.Join(dir, "pydantic_classes.py"),
		filepath.Join(dir, "openapi.yaml"),
	}, paths)
}
