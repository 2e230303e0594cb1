package mcp_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bumlmcp "github.com/aretw0/buml/pkg/adapters/mcp"
)

func TestHandler_StreamableHTTP(t *testing.T) {
	s := newLocal(t)
	h, err := s.Handler(bumlmcp.TransportHTTP, bumlmcp.ServeOptions{
		Routes: map[string]http.Handler{
			"/metrics": http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, "metrics")
			}),
		},
	})
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "metrics", string(body))

	initialize := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/mcp", strings.NewReader(initialize))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "buml-mcp")
}

func TestHandler_CORSPreflight(t *testing.T) {
	h, err := newLocal(t).Handler(bumlmcp.TransportSSE, bumlmcp.ServeOptions{Port: 8080})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodOptions, "/sse", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServe_UnknownTransport(t *testing.T) {
	s := newLocal(t)
	_, err := s.Handler(bumlmcp.TransportStdio, bumlmcp.ServeOptions{})
	assert.Error(t, err)
	assert.Error(t, s.Serve(context.Background(), "grpc", bumlmcp.ServeOptions{}))
}
