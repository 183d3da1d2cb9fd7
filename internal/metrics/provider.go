// internal/metrics/provider.go
package metrics

import (
	"context"
	"time"

	"github.com/mwiater/paper2pod/internal/providers"
)

// Provider is a decorator that wraps a ChatProvider to record metrics.
type Provider struct {
	wrapped    providers.ChatProvider
	aggregator *Aggregator
}

// NewProvider creates a new metrics-enabled provider that wraps an existing ChatProvider.
func NewProvider(wrapped providers.ChatProvider, aggregator *Aggregator) *Provider {
	return &Provider{wrapped: wrapped, aggregator: aggregator}
}

// Chat forwards the request and records latency, token usage and failures.
func (p *Provider) Chat(ctx context.Context, req providers.ChatRequest) (providers.ChatResponse, error) {
	start := time.Now()
	resp, err := p.wrapped.Chat(ctx, req)
	if p.aggregator == nil {
		return resp, err
	}
	model := req.Model
	if resp.Model != "" {
		model = resp.Model
	}
	if err != nil {
		p.aggregator.RecordError(model)
		return resp, err
	}
	p.aggregator.Record(model, resp, time.Since(start))
	return resp, nil
}

// Close passes the call through to the wrapped provider.
func (p *Provider) Close() error {
	return p.wrapped.Close()
}
