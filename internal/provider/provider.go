package provider

import (
	"errors"
	"fmt"
	"slices"

	"subprovider/internal/proxy"
)

var ErrNotFound = errors.New("provider not found")

// Provider renders grouped proxies into one output document.
type Provider interface {
	Render(groups map[string][]proxy.Proxy) ([]byte, error)
	ContentType() string
}

type Factory func() Provider

var registry = make(map[string]Factory)

func Register(name string, factory Factory) {
	registry[name] = factory
}

func Get(name string) (Provider, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrNotFound, name)
	}
	return factory(), nil
}

// Names lists registered providers in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

type clashProvider struct{}

func (clashProvider) Render(groups map[string][]proxy.Proxy) ([]byte, error) {
	return NewClash().WithProxies(groups).Provide()
}

func (clashProvider) ContentType() string { return "text/yaml; charset=utf-8" }

type xrayProvider struct{}

func (xrayProvider) Render(groups map[string][]proxy.Proxy) ([]byte, error) {
	return NewXray().WithProxies(groups).Provide()
}

func (xrayProvider) ContentType() string { return "application/json" }

func init() {
	// clash-meta reads the same document; the route exists for client compatibility
	Register("clash", func() Provider { return clashProvider{} })
	Register("clash-meta", func() Provider { return clashProvider{} })
	Register("xray", func() Provider { return xrayProvider{} })
}
