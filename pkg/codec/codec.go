// Package codec converts domain models to and from the portable base64
// tokens exchanged by the stateless tools and the model host.
package codec

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/aretw0/buml/internal/logging"
	"github.com/aretw0/buml/pkg/domain"
)

// ErrMalformedToken is returned when a token cannot be turned back into a model.
var ErrMalformedToken = errors.New("malformed domain model token")

// Codec encodes models as base64 (standard alphabet, padded) JSON documents.
// Decoding also accepts unpadded input. Safe for concurrent use.
type Codec struct {
	logger *slog.Logger

	mu   sync.Mutex
	last string
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger sets the logger used for token mismatch diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Codec) {
		c.logger = l
	}
}

// New creates a Codec.
func New(opts ...Option) *Codec {
	c := &Codec{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Marshal returns the JSON document for m.
func (c *Codec) Marshal(m *domain.DomainModel) ([]byte, error) {
	data, err := json.Marshal(fromModel(m))
	if err != nil {
		return nil, fmt.Errorf("marshal domain model: %w", err)
	}
	return data, nil
}

// Unmarshal rebuilds a model from a JSON document.
func (c *Codec) Unmarshal(data []byte) (*domain.DomainModel, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	m, err := toModel(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return m, nil
}

// Encode returns the token for m and remembers it as the last issued token.
func (c *Codec) Encode(m *domain.DomainModel) (string, error) {
	data, err := c.Marshal(m)
	if err != nil {
		return "", err
	}
	token := base64.StdEncoding.EncodeToString(data)

	c.mu.Lock()
	c.last = token
	c.mu.Unlock()
	return token, nil
}

// Decode rebuilds a model from token. Surrounding whitespace and missing
// padding are tolerated.
func (c *Codec) Decode(token string) (*domain.DomainModel, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrMalformedToken)
	}
	c.checkLast(token)

	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(token, "="))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return c.Unmarshal(data)
}

func (c *Codec) checkLast(token string) {
	c.mu.Lock()
	last := c.last
	c.mu.Unlock()

	if last == "" || last == token {
		return
	}
	c.logger.Debug("Decoding a token that differs from the last issued one",
		"issued_len", len(last),
		"received_len", len(token),
		"truncated", strings.HasPrefix(last, token))
}
