// Package mcp exposes the modeling operations as MCP tools.
//
// Every operation is registered in up to three variants. The in-process
// variant (add_class) edits the active model held by the server. The token
// variant (add_class_base64) takes and returns an encoded model. The URL
// variant (add_class_with_url) downloads the model from a URL, edits it and
// uploads it back. Expected failures are returned as tool errors (text);
// broken model references are faults.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/buml"
	"github.com/aretw0/buml/internal/logging"
	"github.com/aretw0/buml/internal/modeling"
	"github.com/aretw0/buml/pkg/codec"
	"github.com/aretw0/buml/pkg/domain"
	"github.com/aretw0/buml/pkg/generator"
	"github.com/aretw0/buml/pkg/ports"
	"github.com/aretw0/buml/pkg/session"
)

// Argument names of the model reference in the token and URL variants.
const (
	TokenArg = "domain_model_base64"
	URLArg   = "domain_model_url"
)

// Variant suffixes.
const (
	TokenSuffix = "_base64"
	URLSuffix   = "_with_url"
)

// ModelResourceURI is the resource holding the active model document.
const ModelResourceURI = "buml://model"

// ErrUnknownTool is returned by Call for names that are not registered.
var ErrUnknownTool = errors.New("unknown tool")

// Server wraps an MCPServer with the modeling tool catalog.
type Server struct {
	service *modeling.Service
	active  *session.ActiveModel
	codec   *codec.Codec
	locator ports.ModelLocator
	logger  *slog.Logger
	dist    bool

	middleware []server.ToolHandlerMiddleware
	tools      map[string]server.ServerTool
	mcpServer  *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithDist registers the URL variants instead of the in-process ones.
func WithDist(dist bool) Option {
	return func(s *Server) {
		s.dist = dist
	}
}

// WithLocator sets the locator used by the URL variants.
func WithLocator(l ports.ModelLocator) Option {
	return func(s *Server) {
		s.locator = l
	}
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMiddleware wraps every tool handler. The first middleware is the outermost.
func WithMiddleware(mw ...server.ToolHandlerMiddleware) Option {
	return func(s *Server) {
		s.middleware = append(s.middleware, mw...)
	}
}

// NewServer builds the tool catalog. active may be nil in dist mode; the
// locator is required in dist mode.
func NewServer(service *modeling.Service, active *session.ActiveModel, c *codec.Codec, opts ...Option) (*Server, error) {
	s := &Server{
		service: service,
		active:  active,
		codec:   c,
		logger:  logging.NewNop(),
		tools:   make(map[string]server.ServerTool),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.dist && s.locator == nil {
		return nil, errors.New("dist mode requires a model locator")
	}
	if !s.dist && s.active == nil {
		return nil, errors.New("in-process mode requires an active model")
	}

	s.mcpServer = server.NewMCPServer("buml-mcp", strings.TrimSpace(buml.Version),
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
	)
	s.registerTools()
	if !s.dist {
		s.registerResources()
	}
	return s, nil
}

// MCPServer returns the underlying server for transports.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ToolNames returns the registered tool names in sorted order.
func (s *Server) ToolNames() []string {
	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tool returns the definition of a registered tool.
func (s *Server) Tool(name string) (mcp.Tool, bool) {
	t, ok := s.tools[name]
	return t.Tool, ok
}

// Call invokes a tool directly, through the same middleware as the
// transports.
func (s *Server) Call(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	t, ok := s.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return t.Handler(ctx, req)
}

func (s *Server) add(tool mcp.Tool, h server.ToolHandlerFunc) {
	for i := len(s.middleware) - 1; i >= 0; i-- {
		h = s.middleware[i](h)
	}
	st := server.ServerTool{Tool: tool, Handler: h}
	s.tools[tool.Name] = st
	s.mcpServer.AddTools(st)
}

func (s *Server) registerTools() {
	s.add(mcp.NewTool("about",
		mcp.WithDescription("Get information about BESSER and this MCP server."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(modeling.AboutText), nil
	})

	s.registerNewModel()
	for _, op := range operations {
		if s.dist {
			if !op.inProcessOnly {
				s.add(s.urlTool(op), s.urlHandler(op))
			}
		} else {
			s.add(s.localTool(op), s.localHandler(op))
		}
		if !op.inProcessOnly {
			s.add(s.tokenTool(op), s.tokenHandler(op))
		}
	}
}

func (s *Server) registerNewModel() {
	nameOpt := mcp.WithString("name", mcp.Required(), mcp.Description("Name of the new domain model"))

	s.add(mcp.NewTool("new_model"+TokenSuffix,
		mcp.WithDescription("Creates a new domain model and returns it encoded as base64."),
		nameOpt,
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		m, err := s.newModel(req)
		if err != nil {
			return failure(err)
		}
		token, err := s.codec.Encode(m)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(token), nil
	})

	if s.dist {
		s.add(mcp.NewTool("new_model"+URLSuffix,
			mcp.WithDescription("Creates a new domain model and uploads it to a URL."),
			mcp.WithString(URLArg, mcp.Required(), mcp.Description("Location to store the model")),
			nameOpt,
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			url, err := req.RequireString(URLArg)
			if err != nil {
				return nil, err
			}
			m, err := s.newModel(req)
			if err != nil {
				return failure(err)
			}
			if err := s.upload(ctx, m, url); err != nil {
				return nil, err
			}
			return mcp.NewToolResultText(modeling.Success), nil
		})
		return
	}

	s.add(mcp.NewTool("new_model",
		mcp.WithDescription("Creates a new domain model and makes it the active model."),
		nameOpt,
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		m, err := s.newModel(req)
		if err != nil {
			return failure(err)
		}
		if err := s.active.Set(ctx, m); err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(modeling.Success), nil
	})
}

func (s *Server) newModel(req mcp.CallToolRequest) (*domain.DomainModel, error) {
	var in modeling.NewModelInput
	if err := modeling.Decode(req.GetArguments(), &in); err != nil {
		return nil, &modeling.Failure{Op: "reading arguments", Err: err}
	}
	return s.service.NewModel(in)
}

// failure turns an expected error into a tool error result and passes
// faults through.
func failure(err error) (*mcp.CallToolResult, error) {
	if f, ok := modeling.AsFailure(err); ok {
		return mcp.NewToolResultError(f.Error()), nil
	}
	if errors.Is(err, session.ErrNoModel) {
		return mcp.NewToolResultError("Error: " + err.Error()), nil
	}
	return nil, err
}

func (s *Server) localTool(op operation) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(op.desc + " Works on the active model.")}
	opts = append(opts, op.params...)
	if op.kind == generateKind {
		opts = append(opts, mcp.WithString("output_dir", mcp.Description("Directory to write into"), mcp.DefaultString(".")))
	}
	return mcp.NewTool(op.name, opts...)
}

func (s *Server) tokenTool(op operation) mcp.Tool {
	desc := op.desc + " Takes the model encoded as base64"
	if op.kind == editKind {
		desc += " and returns the updated model the same way."
	} else {
		desc += "."
	}
	opts := []mcp.ToolOption{
		mcp.WithDescription(desc),
		mcp.WithString(TokenArg, mcp.Required(), mcp.Description("The domain model as base64 string")),
	}
	return mcp.NewTool(op.name+TokenSuffix, append(opts, op.params...)...)
}

func (s *Server) urlTool(op operation) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(op.desc + " Reads the model from a URL and, for edits, stores it back."),
		mcp.WithString(URLArg, mcp.Required(), mcp.Description("Location of the model")),
	}
	return mcp.NewTool(op.name+URLSuffix, append(opts, op.params...)...)
}

func generationInput(args map[string]any) (modeling.GenerationInput, error) {
	var in modeling.GenerationInput
	if err := modeling.Decode(args, &in); err != nil {
		return in, &modeling.Failure{Op: "reading arguments", Err: err}
	}
	return in, nil
}

func (s *Server) localHandler(op operation) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		switch op.kind {
		case editKind:
			err := s.active.Update(ctx, func(m *domain.DomainModel) error {
				return op.edit(s.service, m, args)
			})
			if err != nil {
				return failure(err)
			}
			return mcp.NewToolResultText(modeling.Success), nil

		case readKind:
			m, err := s.active.Get(ctx)
			if err != nil {
				return failure(err)
			}
			return mcp.NewToolResultText(op.read(m)), nil
		}

		in, err := generationInput(args)
		if err != nil {
			return failure(err)
		}
		var out string
		run := func(m *domain.DomainModel) error {
			out, err = s.service.Generate(ctx, m, op.generator, in)
			return err
		}
		if op.generator == generator.SQL {
			// the identifier pre-pass is kept in the active model
			err = s.active.Update(ctx, run)
		} else {
			var m *domain.DomainModel
			if m, err = s.active.Get(ctx); err == nil {
				err = run(m)
			}
		}
		if err != nil {
			return failure(err)
		}
		return mcp.NewToolResultText(out), nil
	}
}

func (s *Server) tokenHandler(op operation) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		token, err := req.RequireString(TokenArg)
		if err != nil {
			return nil, err
		}
		m, err := s.codec.Decode(token)
		if err != nil {
			return nil, err
		}
		out, err := s.apply(ctx, op, m, req.GetArguments())
		if err != nil {
			return failure(err)
		}
		if op.kind == editKind {
			if out, err = s.codec.Encode(m); err != nil {
				return nil, err
			}
		}
		return mcp.NewToolResultText(out), nil
	}
}

func (s *Server) urlHandler(op operation) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := req.RequireString(URLArg)
		if err != nil {
			return nil, err
		}
		token, err := s.locator.Download(ctx, url)
		if err != nil {
			return nil, err
		}
		m, err := s.codec.Decode(token)
		if err != nil {
			return nil, err
		}
		out, err := s.apply(ctx, op, m, req.GetArguments())
		if err != nil {
			return failure(err)
		}
		if op.kind == editKind {
			if err := s.upload(ctx, m, url); err != nil {
				return nil, err
			}
		}
		return mcp.NewToolResultText(out), nil
	}
}

// apply runs op on a detached model and returns its text result.
func (s *Server) apply(ctx context.Context, op operation, m *domain.DomainModel, args map[string]any) (string, error) {
	switch op.kind {
	case editKind:
		if err := op.edit(s.service, m, args); err != nil {
			return "", err
		}
		return modeling.Success, nil
	case readKind:
		return op.read(m), nil
	}
	in, err := generationInput(args)
	if err != nil {
		return "", err
	}
	return s.service.GenerateText(ctx, m, op.generator, in)
}

func (s *Server) upload(ctx context.Context, m *domain.DomainModel, url string) error {
	token, err := s.codec.Encode(m)
	if err != nil {
		return err
	}
	return s.locator.Upload(ctx, token, url)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(ModelResourceURI, "Active domain model",
		mcp.WithResourceDescription("The active domain model as a JSON document"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		m, err := s.active.Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("read active model: %w", err)
		}
		doc, err := s.codec.Marshal(m)
		if err != nil {
			return nil, err
		}
		var pretty json.RawMessage = doc
		text, err := json.MarshalIndent(pretty, "", "  ")
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      ModelResourceURI,
				MIMEType: "application/json",
				Text:     string(text),
			},
		}, nil
	})
}
