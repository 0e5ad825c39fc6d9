package provider

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"subprovider/internal/proxy"
)

const groupSelect = "select"

type ProxyGroup struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	Proxies  []string `yaml:"proxies"`
	URL      string   `yaml:"url,omitempty"`
	Interval int      `yaml:"interval,omitempty"`
}

// Clash is a complete Clash configuration document. The listener and
// controller fields are fixed; only proxies and proxy-groups vary.
type Clash struct {
	Port               int           `yaml:"port"`
	SocksPort          int           `yaml:"socks-port"`
	AllowLAN           bool          `yaml:"allow-lan"`
	Mode               string        `yaml:"mode"`
	LogLevel           string        `yaml:"log-level"`
	ExternalController string        `yaml:"external-controller"`
	Secret             string        `yaml:"secret"`
	Proxies            []proxy.Proxy `yaml:"proxies"`
	ProxyGroups        []ProxyGroup  `yaml:"proxy-groups"`
	Rules              []string      `yaml:"rules"`
}

func NewClash() *Clash {
	return &Clash{
		Port:        7890,
		SocksPort:   7891,
		AllowLAN:    false,
		Mode:        "Rule",
		LogLevel:    "info",
		Proxies:     []proxy.Proxy{},
		ProxyGroups: []ProxyGroup{},
		Rules:       []string{},
	}
}

// WithProxies replaces the roster and groups. Groups are emitted in sorted
// name order; members keep the order they were given in. DIRECT and REJECT
// may appear as group members but never in the roster.
func (c *Clash) WithProxies(groups map[string][]proxy.Proxy) *Clash {
	names := lo.Keys(groups)
	slices.Sort(names)

	c.Proxies = []proxy.Proxy{}
	c.ProxyGroups = make([]ProxyGroup, 0, len(names))
	for _, name := range names {
		members := groups[name]
		c.Proxies = append(c.Proxies, lo.Reject(members, func(p proxy.Proxy, _ int) bool {
			return proxy.IsPseudo(p)
		})...)
		c.ProxyGroups = append(c.ProxyGroups, ProxyGroup{
			Name: name,
			Type: groupSelect,
			Proxies: lo.Map(members, func(p proxy.Proxy, _ int) string {
				return p.Name()
			}),
		})
	}
	return c
}

func (c *Clash) Provide() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode clash document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
