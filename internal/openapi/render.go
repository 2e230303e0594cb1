// Package openapi renders kin-openapi documents as YAML.
package openapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// Version is the OpenAPI version written into rendered documents.
const Version = "3.0.3"

// Render validates doc and returns it as block-style YAML.
// Key order follows the JSON encoding of openapi3.T.
func Render(ctx context.Context, doc *openapi3.T) ([]byte, error) {
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal OpenAPI document: %w", err)
	}
	return JSONToYAML(raw)
}

// JSONToYAML re-encodes a JSON document as YAML without reordering keys.
func JSONToYAML(raw []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	resetStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// resetStyle drops the flow and quoting styles inherited from JSON.
func resetStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		resetStyle(c)
	}
}
