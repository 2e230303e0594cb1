package http

import (
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/buml"
	"github.com/aretw0/buml/internal/openapi"
	"github.com/getkin/kin-openapi/openapi3"
)

var (
	specOnce  sync.Once
	specBytes []byte
	specErr   error
)

// GetSpec handles GET /openapi.yaml.
func (s *Server) GetSpec(w http.ResponseWriter, r *http.Request) {
	specOnce.Do(func() {
		specBytes, specErr = openapi.Render(r.Context(), hostSpec())
	})
	if specErr != nil {
		s.logger.Error("Failed to build OpenAPI spec", "error", specErr)
		http.Error(w, "Failed to load spec", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/yaml")
	_, _ = w.Write(specBytes)
}

func jsonResponse(description string, schema *openapi3.Schema) *openapi3.ResponseRef {
	resp := openapi3.NewResponse().WithDescription(description)
	if schema != nil {
		resp = resp.WithJSONSchema(schema)
	}
	return &openapi3.ResponseRef{Value: resp}
}

// hostSpec describes the model host API.
func hostSpec() *openapi3.T {
	payload := openapi3.NewObjectSchema().
		WithProperty("data", openapi3.NewStringSchema().WithFormat("byte")).
		WithRequired([]string{"data"})
	problem := openapi3.NewObjectSchema().WithProperty("error", openapi3.NewStringSchema())
	list := openapi3.NewObjectSchema().
		WithProperty("models", openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()))

	idParam := &openapi3.ParameterRef{Value: openapi3.NewPathParameter("id").
		WithDescription("Model key").
		WithSchema(openapi3.NewStringSchema())}

	get := openapi3.NewOperation()
	get.OperationID = "getModel"
	get.Summary = "Download an encoded domain model"
	get.Parameters = openapi3.Parameters{idParam}
	get.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, jsonResponse("Encoded model", payload)),
		openapi3.WithStatus(http.StatusNotFound, jsonResponse("Unknown model", problem)),
	)

	upload := func(operationID string) *openapi3.Operation {
		op := openapi3.NewOperation()
		op.OperationID = operationID
		op.Summary = "Upload an encoded domain model"
		op.Parameters = openapi3.Parameters{idParam}
		op.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(payload)}
		op.Responses = openapi3.NewResponses(
			openapi3.WithStatus(http.StatusNoContent, jsonResponse("Stored", nil)),
			openapi3.WithStatus(http.StatusBadRequest, jsonResponse("Malformed body", problem)),
			openapi3.WithStatus(http.StatusUnprocessableEntity, jsonResponse("Token does not decode", problem)),
		)
		return op
	}

	del := openapi3.NewOperation()
	del.OperationID = "deleteModel"
	del.Summary = "Delete a domain model"
	del.Parameters = openapi3.Parameters{idParam}
	del.Responses = openapi3.NewResponses(openapi3.WithStatus(http.StatusNoContent, jsonResponse("Deleted", nil)))

	index := openapi3.NewOperation()
	index.OperationID = "listModels"
	index.Summary = "List stored model keys"
	index.Responses = openapi3.NewResponses(openapi3.WithStatus(http.StatusOK, jsonResponse("Model keys", list)))

	health := openapi3.NewOperation()
	health.OperationID = "getHealth"
	health.Responses = openapi3.NewResponses(openapi3.WithStatus(http.StatusOK, jsonResponse("Healthy", nil)))

	return &openapi3.T{
		OpenAPI: openapi.Version,
		Info: &openapi3.Info{
			Title:       "buml model host",
			Description: "Stores base64 encoded B-UML domain models for the *_with_url tools.",
			Version:     strings.TrimSpace(buml.Version),
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/models", &openapi3.PathItem{Get: index}),
			openapi3.WithPath("/models/{id}", &openapi3.PathItem{Get: get, Post: upload("postModel"), Put: upload("putModel"), Delete: del}),
			openapi3.WithPath("/healthz", &openapi3.PathItem{Get: health}),
		),
	}
}
