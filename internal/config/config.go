package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/samber/lo"

	"subprovider/internal/proxy"
)

const (
	EnvConfigPath = "CONFIG_PATH"
	EnvPort       = "PORT"
	EnvPathPrefix = "PATH_PREFIX"

	DefaultPath = "config.toml"
)

type Config struct {
	Server        ServerConfig             `toml:"server"`
	Database      DatabaseConfig           `toml:"database"`
	GeoIP         GeoIPConfig              `toml:"geoip"`
	Fetch         FetchConfig              `toml:"fetch"`
	Subscriptions []SubscriptionConfig     `toml:"subscriptions"`
	Publishers    []PublisherConfig        `toml:"publishers"`
	Groups        map[string][]ProxyConfig `toml:"groups"`
}

type ServerConfig struct {
	Listen     string `toml:"listen"`
	Port       int    `toml:"port"`
	PathPrefix string `toml:"path_prefix"`
}

// Addr is the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Listen, s.Port)
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type GeoIPConfig struct {
	CountryPath string `toml:"country_path"`
	FlagNames   bool   `toml:"flag_names"`
}

// FetchConfig tunes outbound HTTP used by collectors and publishers.
type FetchConfig struct {
	Timeout int    `toml:"timeout"` // seconds
	Retries int    `toml:"retries"`
	Proxy   string `toml:"proxy"` // socks5:// or http:// URL
}

func (f FetchConfig) TimeoutDuration() time.Duration {
	return time.Duration(f.Timeout) * time.Second
}

// SubscriptionConfig is a remote list of share links collected into Group.
type SubscriptionConfig struct {
	Name  string `toml:"name"`
	Group string `toml:"group"`
	Type  string `toml:"type"`
	URL   string `toml:"url"`
}

type PublisherConfig struct {
	Name     string                 `toml:"name"`
	Type     string                 `toml:"type"`
	Provider string                 `toml:"provider"`
	Groups   []string               `toml:"groups"`
	Params   map[string]interface{} `toml:"params"`
}

// ProxyConfig is one statically configured link. Name overrides the label
// carried in the link when non-empty.
type ProxyConfig struct {
	Name string `toml:"name"`
	URL  string `toml:"url"`
}

// Path resolves the config file location: explicit flag, then CONFIG_PATH,
// then config.toml in the working directory.
func Path(flag string) string {
	if flag != "" {
		return flag
	}
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultPath
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a TOML document, fills defaults and applies PORT and
// PATH_PREFIX from the environment.
func Parse(data []byte) (*Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Listen:     "0.0.0.0",
			Port:       3000,
			PathPrefix: "/",
		},
		Database: DatabaseConfig{Path: "subprovider.db"},
		Fetch:    FetchConfig{Timeout: 30},
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config toml: %w", err)
	}

	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		cfg.Server.Port = int(port)
	}
	if v := os.Getenv(EnvPathPrefix); v != "" {
		cfg.Server.PathPrefix = v
	}
	cfg.Server.PathPrefix = "/" + strings.Trim(cfg.Server.PathPrefix, "/")

	for i := range cfg.Subscriptions {
		if cfg.Subscriptions[i].Type == "" {
			cfg.Subscriptions[i].Type = "http"
		}
		if cfg.Subscriptions[i].Group == "" {
			cfg.Subscriptions[i].Group = cfg.Subscriptions[i].Name
		}
	}

	return &cfg, nil
}

// Links returns the static groups as decoder input.
func (c *Config) Links() map[string][]proxy.Link {
	return lo.MapValues(c.Groups, func(entries []ProxyConfig, _ string) []proxy.Link {
		return lo.Map(entries, func(e ProxyConfig, _ int) proxy.Link {
			return proxy.Link{Name: e.Name, URL: e.URL}
		})
	})
}

func (c *Config) FilterGroups(names []string) {
	if len(names) == 0 {
		return
	}
	c.Groups = lo.PickByKeys(c.Groups, names)
}

func (c *Config) FilterSubscriptions(names []string) {
	if len(names) == 0 {
		return
	}
	c.Subscriptions = lo.Filter(c.Subscriptions, func(s SubscriptionConfig, _ int) bool {
		return lo.Contains(names, s.Name)
	})
}

func (c *Config) FilterPublishers(names []string) {
	if len(names) == 0 {
		return
	}
	c.Publishers = lo.Filter(c.Publishers, func(p PublisherConfig, _ int) bool {
		return lo.Contains(names, p.Name)
	})
}
