package mcp_test

import (
	"context"
	"encoding/base64"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/buml/internal/modeling"
	bumlhttp "github.com/aretw0/buml/pkg/adapters/http"
	bumlmcp "github.com/aretw0/buml/pkg/adapters/mcp"
	"github.com/aretw0/buml/pkg/adapters/memory"
	"github.com/aretw0/buml/pkg/adapters/remote"
	"github.com/aretw0/buml/pkg/codec"
	"github.com/aretw0/buml/pkg/session"
)

func newLocal(t *testing.T, opts ...bumlmcp.Option) *bumlmcp.Server {
	t.Helper()
	c := codec.New()
	manager := session.NewManager(memory.NewStore(), c)
	s, err := bumlmcp.NewServer(modeling.NewService(), manager.Active(""), c, opts...)
	require.NoError(t, err)
	return s
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "unexpected content %T", res.Content[0])
	return tc.Text
}

func call(t *testing.T, s *bumlmcp.Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := s.Call(context.Background(), name, args)
	require.NoError(t, err)
	return res
}

func ok(t *testing.T, s *bumlmcp.Server, name string, args map[string]any) string {
	t.Helper()
	res := call(t, s, name, args)
	out := text(t, res)
	require.False(t, res.IsError, "%s failed: %s", name, out)
	return out
}

func TestNewServer_RequiresModelSource(t *testing.T) {
	_, err := bumlmcp.NewServer(modeling.NewService(), nil, codec.New())
	assert.Error(t, err)
	_, err = bumlmcp.NewServer(modeling.NewService(), nil, codec.New(), bumlmcp.WithDist(true))
	assert.Error(t, err)
}

func TestCatalog_Variants(t *testing.T) {
	local := newLocal(t)
	names := local.ToolNames()
	assert.Contains(t, names, "about")
	assert.Contains(t, names, "new_model")
	assert.Contains(t, names, "new_model_base64")
	assert.Contains(t, names, "add_class")
	assert.Contains(t, names, "add_class_base64")
	assert.Contains(t, names, "java_generation")
	assert.NotContains(t, names, "java_generation_base64")
	assert.NotContains(t, names, "add_class_with_url")

	dist, err := bumlmcp.NewServer(modeling.NewService(), nil, codec.New(),
		bumlmcp.WithDist(true), bumlmcp.WithLocator(remote.New()))
	require.NoError(t, err)
	names = dist.ToolNames()
	assert.Contains(t, names, "add_class_with_url")
	assert.Contains(t, names, "new_model_with_url")
	assert.Contains(t, names, "add_class_base64")
	assert.NotContains(t, names, "add_class")
	assert.NotContains(t, names, "java_generation_with_url")

	tool, found := local.Tool("add_class_base64")
	require.True(t, found)
	assert.Contains(t, tool.InputSchema.Required, bumlmcp.TokenArg)
	assert.Contains(t, tool.InputSchema.Required, "name")

	method, found := local.Tool("add_method_to_class")
	require.True(t, found)
	params, isMap := method.InputSchema.Properties["parameters"].(map[string]any)
	require.True(t, isMap)
	assert.Equal(t, "array", params["type"])

	_, err = local.Call(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, bumlmcp.ErrUnknownTool)
}

func TestLocal_EditAndRead(t *testing.T) {
	s := newLocal(t)

	res := call(t, s, "add_class", map[string]any{"name": "Book"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "new_model")

	assert.Equal(t, modeling.Success, ok(t, s, "new_model", map[string]any{"name": "Library"}))
	assert.Equal(t, modeling.Success, ok(t, s, "add_class", map[string]any{"name": "Book"}))
	assert.Equal(t, modeling.Success, ok(t, s, "add_attribute_to_class", map[string]any{
		"name": "title", "class_name": "Book",
	}))
	assert.Equal(t, modeling.Success, ok(t, s, "add_method_to_class", map[string]any{
		"name": "lend", "class_name": "Book", "parameters": map[string]any{"days": "int"},
	}))

	res = call(t, s, "add_class", map[string]any{"name": "Book"})
	assert.True(t, res.IsError)
	assert.Equal(t, "Error adding class 'Book': A class with name 'Book' already exists in the model", text(t, res))

	assert.Equal(t, "Book", ok(t, s, "get_classes", nil))
	assert.Contains(t, ok(t, s, "get_model_info", nil), "  - Book (1 attributes)")

	res = call(t, s, "delete_class", map[string]any{"name": "Ghost"})
	assert.True(t, res.IsError)
	assert.Equal(t, "Error removing class 'Ghost': No class with name 'Ghost' exists in the model", text(t, res))
}

func TestLocal_SQLGenerationPersistsIdentifiers(t *testing.T) {
	s := newLocal(t)
	ok(t, s, "new_model", map[string]any{"name": "Library"})
	ok(t, s, "add_class", map[string]any{"name": "Tag"})

	dir := t.TempDir()
	assert.Equal(t, modeling.Success, ok(t, s, "sql_generation", map[string]any{"output_dir": dir}))
	assert.Contains(t, ok(t, s, "get_model_info", nil), "* id: int")
}

func TestToken_RoundTrip(t *testing.T) {
	s := newLocal(t)
	token := ok(t, s, "new_model_base64", map[string]any{"name": "Library"})

	token = ok(t, s, "add_class_base64", map[string]any{bumlmcp.TokenArg: token, "name": "Book"})
	token = ok(t, s, "add_attribute_to_class_base64", map[string]any{
		bumlmcp.TokenArg: token, "name": "pages", "class_name": "Book", "type_name": "int",
	})
	assert.Equal(t, "Book", ok(t, s, "get_classes_base64", map[string]any{bumlmcp.TokenArg: token}))

	res := call(t, s, "add_class_base64", map[string]any{bumlmcp.TokenArg: token, "name": "Book"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "already exists")

	sql := ok(t, s, "sql_generation_base64", map[string]any{bumlmcp.TokenArg: token})
	assert.Contains(t, sql, `CREATE TABLE "book"`)

	empty := ok(t, s, "new_model_base64", map[string]any{"name": "Empty"})
	assert.Equal(t, "No Python code generated. The domain model contains no classes.",
		ok(t, s, "python_generation_base64", map[string]any{bumlmcp.TokenArg: empty}))
}

func TestToken_MalformedIsFault(t *testing.T) {
	s := newLocal(t)
	_, err := s.Call(context.Background(), "get_classes_base64", map[string]any{bumlmcp.TokenArg: "%%%not-base64"})
	assert.Error(t, err)

	_, err = s.Call(context.Background(), "get_classes_base64", map[string]any{})
	assert.Error(t, err)

	untyped := base64.StdEncoding.EncodeToString([]byte(
		`{"format":"buml/v1","name":"M","types":[{"kind":"class","name":"Book","attributes":[{"name":"title","multiplicity":"1..1","navigable":true}]}]}`))
	for _, tool := range []string{"rdf_generation_base64", "json_schema_generation_base64"} {
		t.Run(tool, func(t *testing.T) {
			_, err := s.Call(context.Background(), tool, map[string]any{bumlmcp.TokenArg: untyped})
			assert.ErrorIs(t, err, codec.ErrMalformedToken)
		})
	}
}

func TestURL_Variants(t *testing.T) {
	c := codec.New()
	host := httptest.NewServer(bumlhttp.NewHandler(memory.NewStore()))
	defer host.Close()

	s, err := bumlmcp.NewServer(modeling.NewService(), nil, c,
		bumlmcp.WithDist(true), bumlmcp.WithLocator(remote.New()))
	require.NoError(t, err)

	url := host.URL + "/models/library"
	args := func(kv ...any) map[string]any {
		m := map[string]any{bumlmcp.URLArg: url}
		for i := 0; i < len(kv); i += 2 {
			m[kv[i].(string)] = kv[i+1]
		}
		return m
	}

	assert.Equal(t, modeling.Success, ok(t, s, "new_model_with_url", args("name", "Library")))
	assert.Equal(t, modeling.Success, ok(t, s, "add_class_with_url", args("name", "Book")))
	assert.Equal(t, modeling.Success, ok(t, s, "add_enumeration_with_url", args("name", "Genre", "literals", []any{"FICTION", "SCIENCE"})))
	assert.Equal(t, "Book", ok(t, s, "get_classes_with_url", args()))

	res := call(t, s, "delete_enumeration_literal_with_url", args("name", "POETRY", "enumeration_name", "Genre"))
	assert.True(t, res.IsError)
	assert.Equal(t, "Error removing literal 'POETRY': No literal with name 'POETRY' exists in 'Genre'", text(t, res))

	_, err = s.Call(context.Background(), "get_classes_with_url", map[string]any{bumlmcp.URLArg: host.URL + "/models/missing"})
	assert.Error(t, err)
}

func TestMiddleware_WrapsCalls(t *testing.T) {
	var seen []string
	mw := func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			seen = append(seen, req.Params.Name)
			return next(ctx, req)
		}
	}
	s := newLocal(t, bumlmcp.WithMiddleware(mw))
	ok(t, s, "about", nil)
	assert.Equal(t, []string{"about"}, seen)
	assert.True(t, strings.HasPrefix(ok(t, s, "about", nil), "BESSER is"))
}
