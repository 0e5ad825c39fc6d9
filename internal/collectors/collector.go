package collectors

import (
	"context"
	"fmt"
	"time"
)

// Source describes one subscription to collect from.
type Source struct {
	Name    string
	URL     string
	Proxy   string // optional socks5:// or http:// URL
	Timeout time.Duration
	Retries int
}

type Collector interface {
	Collect(ctx context.Context, src Source) ([]string, error)
}

type Factory func() Collector

var registry = make(map[string]Factory)

func Register(name string, factory Factory) {
	registry[name] = factory
}

func Get(name string) (Collector, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("collector plugin '%s' not found", name)
	}
	return factory(), nil
}
