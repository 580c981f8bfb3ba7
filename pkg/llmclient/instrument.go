package llmclient

import (
	"context"
	"time"
)

// observedClient decorates a Client with a latency/outcome callback.
type observedClient struct {
	inner   Client
	observe func(d time.Duration, err error)
}

// WithObserver wraps client so every completion reports its duration and
// outcome, feeding the process metrics.
func WithObserver(client Client, observe func(d time.Duration, err error)) Client {
	if observe == nil {
		return client
	}
	return &observedClient{inner: client, observe: observe}
}

func (c *observedClient) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	out, err := c.inner.Complete(ctx, req)
	c.observe(time.Since(start), err)
	return out, err
}
