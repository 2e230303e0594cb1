/*
Package buml exposes B-UML domain modeling as Model Context Protocol tools.

A domain model (classes, attributes, methods, associations, generalizations,
enumerations and OCL constraints) is created and edited through MCP tool calls
and turned into code or schemas by the generator tools.

# Deployment modes

Every tool comes in up to three variants:

  - add_class: works on the single active model held by the server process.
  - add_class_base64: takes the model as a base64 token and returns the updated token.
  - add_class_with_url: downloads the model from a URL, applies the change and uploads it back.

The stateless variants make the server safe to replicate; the URL variants pair
with the model host started by "buml host".

# Usage

	buml serve                      # stdio, in-process + token tools
	buml serve --dist --transport sse --port 8080
	buml host --port 9090           # model host for the *_with_url tools
	buml call add_class --arg name=Book

# Packages

  - pkg/domain: the metamodel.
  - pkg/codec: model <-> token.
  - pkg/session: the active model over a ports.TokenStore.
  - pkg/generator: SQL, Python, Java, JSON Schema, RDF, OpenAPI, SQLAlchemy and Pydantic output.
  - pkg/registry: generator lookup by name.
  - pkg/adapters/mcp: the tool surface and its transports.
  - pkg/adapters/http: the model host.
  - pkg/adapters/{memory,file,redis,remote}: token stores and the URL locator.
  - pkg/persistence/middleware: encryption at rest for any token store.
  - pkg/observability: Prometheus metrics for tool calls.
  - internal/config: YAML file plus BUML_* environment configuration.
  - internal/presentation: Mermaid diagrams and terminal reports for "buml inspect".
*/
package buml
