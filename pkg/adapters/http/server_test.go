package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/buml/pkg/adapters/memory"
	"github.com/aretw0/buml/pkg/adapters/remote"
	bumlhttp "github.com/aretw0/buml/pkg/adapters/http"
	"github.com/aretw0/buml/pkg/codec"
	"github.com/aretw0/buml/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHost_CRUD(t *testing.T) {
	h := bumlhttp.NewHandler(memory.NewStore(), bumlhttp.WithGatherer(prometheus.NewRegistry()))

	w := do(t, h, http.MethodGet, "/models/library", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)

	w = do(t, h, http.MethodPost, "/models/library", `{"data":"dG9rZW4="}`)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/models/library", "")
	require.Equal(t, http.StatusOK, w.Code)
	var p remote.Payload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "dG9rZW4=", p.Data)

	w = do(t, h, http.MethodGet, "/models", "")
	assert.JSONEq(t, `{"models":["library"]}`, w.Body.String())

	w = do(t, h, http.MethodDelete, "/models/library", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, http.MethodGet, "/models", "")
	assert.JSONEq(t, `{"models":[]}`, w.Body.String())
}

func TestHost_BadBodies(t *testing.T) {
	c := codec.New()
	h := bumlhttp.NewHandler(memory.NewStore(), bumlhttp.WithTokenValidation(c))

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/models/m", "{not json").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/models/m", `{}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(t, h, http.MethodPost, "/models/m", `{"data":"aGVsbG8="}`).Code)

	m, _ := domain.NewDomainModel("M")
	token, err := c.Encode(m)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodPost, "/models/m", `{"data":"`+token+`"}`).Code)
}

func TestHost_WithRemoteLocator(t *testing.T) {
	srv := httptest.NewServer(bumlhttp.NewHandler(memory.NewStore()))
	defer srv.Close()

	l := remote.New()
	ctx := context.Background()
	url := srv.URL + "/models/shared"

	require.NoError(t, l.Upload(ctx, "dG9rZW4=", url))
	token, err := l.Download(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, "dG9rZW4=", token)
}

func TestHost_HealthSpecMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "buml_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()
	h := bumlhttp.NewHandler(memory.NewStore(), bumlhttp.WithGatherer(reg))

	w := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/openapi.yaml", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")
	assert.Contains(t, w.Body.String(), "operationId: getModel")

	w = do(t, h, http.MethodGet, "/metrics", "")
	assert.Contains(t, w.Body.String(), "buml_test_total 1")

	w = do(t, h, http.MethodOptions, "/models/x", "")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHost_Events(t *testing.T) {
	srv := httptest.NewServer(bumlhttp.NewHandler(memory.NewStore()))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/models/watched/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	require.NoError(t, remote.New().Upload(ctx, "dG9rZW4=", srv.URL+"/models/watched"))

	var got []string
	for len(got) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: ") || strings.HasPrefix(line, "data: watched") {
			got = append(got, strings.TrimSpace(line))
		}
	}
	assert.Equal(t, []string{"event: " + bumlhttp.EventUpdated, "data: watched"}, got)
}
