package remote_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/buml/pkg/adapters/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocator_DownloadUpload(t *testing.T) {
	var stored string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(remote.Payload{Data: stored})
		case http.MethodPost:
			var p remote.Payload
			require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			stored = p.Data
			w.WriteHeader(http.StatusCreated)
		}
	}))
	defer srv.Close()

	l := remote.New()
	ctx := context.Background()

	require.NoError(t, l.Upload(ctx, "dG9rZW4=", srv.URL))
	got, err := l.Download(ctx, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "dG9rZW4=", got)
}

func TestLocator_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	l := remote.New()
	_, err := l.Download(context.Background(), srv.URL)
	var se *remote.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Status)
	assert.Equal(t, "nope", se.Body)

	err = l.Upload(context.Background(), "x", srv.URL)
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.MethodPost, se.Method)
}

func TestLocator_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	_, err := remote.New().Download(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestLocator_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := remote.New(remote.WithTimeout(50*time.Millisecond)).Download(context.Background(), srv.URL)
	assert.Error(t, err)
}
