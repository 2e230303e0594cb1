package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/buml/internal/logging"
	"github.com/aretw0/buml/pkg/adapters/remote"
	"github.com/aretw0/buml/pkg/codec"
	"github.com/aretw0/buml/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBody caps the size of an uploaded model.
const maxBody = 32 << 20

// Server hosts encoded models for the *_with_url tools.
type Server struct {
	Store   ports.TokenStore
	Streams *StreamManager

	codec    *codec.Codec
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithTokenValidation rejects uploads that c cannot decode (422).
func WithTokenValidation(c *codec.Codec) Option {
	return func(s *Server) {
		s.codec = c
	}
}

// WithGatherer sets the registry exposed on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewHandler creates the model host handler over store.
func NewHandler(store ports.TokenStore, opts ...Option) http.Handler {
	server := &Server{
		Store:    store,
		Streams:  NewStreamManager(),
		gatherer: prometheus.DefaultGatherer,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}
	server.Streams.logger = server.logger

	r := chi.NewRouter()
	r.Get("/openapi.yaml", server.GetSpec)
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	r.Get("/healthz", server.GetHealth)
	r.Handle("/metrics", promhttp.HandlerFor(server.gatherer, promhttp.HandlerOpts{}))

	r.Route("/models", func(r chi.Router) {
		r.Get("/", server.ListModels)
		r.Get("/{id}", server.GetModel)
		r.Post("/{id}", server.PutModel)
		r.Put("/{id}", server.PutModel)
		r.Delete("/{id}", server.DeleteModel)
		r.Get("/{id}/events", server.SubscribeEvents)
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>buml model host</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

type errorResponse struct {
	Error string `json:"error"`
}

type listResponse struct {
	Models []string `json:"models"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "error", err)
	}
}

// GetModel handles GET /models/{id}.
func (s *Server) GetModel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	token, err := s.Store.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, ports.ErrModelNotFound) {
			s.writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("model %q not found", id)})
			return
		}
		s.logger.Error("GetModel failed", "id", id, "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, remote.Payload{Data: token})
}

// PutModel handles POST and PUT /models/{id}.
func (s *Server) PutModel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body remote.Payload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&body); err != nil {
		s.logger.Warn("PutModel: Invalid request body", "id", id, "error", err)
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if body.Data == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: `missing "data"`})
		return
	}
	if s.codec != nil {
		if _, err := s.codec.Decode(body.Data); err != nil {
			s.logger.Warn("PutModel: Token rejected", "id", id, "error", err)
			s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
			return
		}
	}
	if err := s.Store.Save(r.Context(), id, body.Data); err != nil {
		s.logger.Error("PutModel failed", "id", id, "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	s.logger.Debug("Model stored", "id", id, "bytes", len(body.Data))
	s.Streams.Broadcast(id, EventUpdated)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteModel handles DELETE /models/{id}.
func (s *Server) DeleteModel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Store.Delete(r.Context(), id); err != nil {
		s.logger.Error("DeleteModel failed", "id", id, "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	s.Streams.Broadcast(id, EventDeleted)
	w.WriteHeader(http.StatusNoContent)
}

// ListModels handles GET /models.
func (s *Server) ListModels(w http.ResponseWriter, r *http.Request) {
	keys, err := s.Store.List(r.Context())
	if err != nil {
		s.logger.Error("ListModels failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if keys == nil {
		keys = []string{}
	}
	s.writeJSON(w, http.StatusOK, listResponse{Models: keys})
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
