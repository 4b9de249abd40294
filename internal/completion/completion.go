// Package completion turns a prompt plus a JSON schema into a JSON value
// using a hosted language model.
package completion

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apperrors"
	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/metrics"
)

// ErrNoProvider is returned by an empty Chain.
var ErrNoProvider = errors.New("no completion provider configured")

type Request struct {
	Prompt string
	// Schema is the JSON Schema the response must satisfy. SchemaName
	// labels it for providers that need a name.
	Schema     json.RawMessage
	SchemaName string
	// Images are sent inline as image parts.
	Images []Image
}

// Image is an inline image attachment, typically a photographed resume.
type Image struct {
	MediaType string
	Data      []byte
}

func (i Image) base64() string { return base64.StdEncoding.EncodeToString(i.Data) }

// DataURL renders the image for endpoints that take image URLs.
func (i Image) DataURL() string { return "data:" + i.MediaType + ";base64," + i.base64() }

// Completer is what callers depend on.
type Completer interface {
	Complete(ctx context.Context, req Request) (json.RawMessage, error)
}

// Provider is one model endpoint.
type Provider interface {
	Completer
	Name() string
}

// Chain tries each provider in order and returns the first success.
type Chain struct {
	providers []Provider
	timeout   time.Duration
	logger    *slog.Logger
}

func NewChain(timeout time.Duration, logger *slog.Logger, providers ...Provider) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{providers: providers, timeout: timeout, logger: logger}
}

// Configured reports whether at least one provider is available.
func (c *Chain) Configured() bool { return len(c.providers) > 0 }

func (c *Chain) Providers() []string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return names
}

func (c *Chain) Complete(ctx context.Context, req Request) (json.RawMessage, error) {
	if len(c.providers) == 0 {
		return nil, apperrors.Transport("completion", ErrNoProvider)
	}

	var errs []error
	for _, p := range c.providers {
		out, err := c.call(ctx, p, req)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return nil, apperrors.Transport("completion", ctx.Err())
		}
		c.logger.Warn("completion provider failed",
			"action", "completion",
			"provider", p.Name(),
			"error", err.Error(),
		)
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}
	return nil, apperrors.Transport("completion", errors.Join(errs...))
}

func (c *Chain) call(ctx context.Context, p Provider, req Request) (json.RawMessage, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := p.Complete(ctx, req)
	metrics.CompletionDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.CompletionRequests.WithLabelValues(p.Name(), result).Inc()
	return out, err
}

// systemPrompt is used by providers that cannot enforce a schema natively.
func systemPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("You are a career guidance assistant. Respond with a single JSON value and nothing else.")
	if len(req.Schema) > 0 {
		b.WriteString(" The JSON must conform to this JSON Schema:\n")
		b.Write(req.Schema)
	}
	return b.String()
}

func schemaName(req Request) string {
	if req.SchemaName != "" {
		return req.SchemaName
	}
	return "response"
}
