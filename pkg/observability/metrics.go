package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/buml/internal/logging"
)

// Call outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeFault   = "fault"
)

type callIDKey struct{}

// CallID returns the id assigned to the tool call running in ctx.
func CallID(ctx context.Context) string {
	id, _ := ctx.Value(callIDKey{}).(string)
	return id
}

// Tools holds the tool call collectors.
type Tools struct {
	Calls    *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	logger   *slog.Logger
}

// NewTools creates the collectors and registers them with reg.
func NewTools(reg prometheus.Registerer, logger *slog.Logger) (*Tools, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	t := &Tools{
		Calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buml_tool_calls_total",
				Help: "Total number of MCP tool calls",
			},
			[]string{"tool", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "buml_tool_duration_seconds",
				Help:    "Duration of MCP tool calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		logger: logger,
	}
	for _, c := range []prometheus.Collector{t.Calls, t.Duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Outcome classifies a tool handler result.
func Outcome(res *mcp.CallToolResult, err error) string {
	switch {
	case err != nil:
		return OutcomeFault
	case res != nil && res.IsError:
		return OutcomeError
	}
	return OutcomeSuccess
}

// Middleware records every call and logs it with a fresh call_id.
func (t *Tools) Middleware(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tool := req.Params.Name
		id := uuid.NewString()
		ctx = context.WithValue(ctx, callIDKey{}, id)
		t.logger.Debug("tool_call", "tool", tool, "call_id", id)

		start := time.Now()
		res, err := next(ctx, req)
		elapsed := time.Since(start)

		outcome := Outcome(res, err)
		t.Calls.WithLabelValues(tool, outcome).Inc()
		t.Duration.WithLabelValues(tool).Observe(elapsed.Seconds())

		attrs := []any{"tool", tool, "call_id", id, "outcome", outcome, "duration", elapsed}
		switch outcome {
		case OutcomeFault:
			t.logger.Error("tool_return", append(attrs, "err", err)...)
		case OutcomeError:
			t.logger.Warn("tool_return", attrs...)
		default:
			t.logger.Info("tool_return", attrs...)
		}
		return res, err
	}
}
