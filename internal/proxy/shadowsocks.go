package proxy

import "maps"

// Shadowsocks has no link decoder; entries are built field by field.
type Shadowsocks struct {
	Identity
	Cipher     string
	Password   string
	Plugin     string
	PluginOpts map[string]any
}

func (Shadowsocks) Type() string   { return "ss" }
func (p Shadowsocks) Name() string { return p.Identity.Name }
func (Shadowsocks) isProxy()       {}

func (p Shadowsocks) WithName(name string) Proxy {
	p.Identity.Name = name
	p.PluginOpts = maps.Clone(p.PluginOpts)
	return p
}

func (p Shadowsocks) MarshalYAML() (interface{}, error) {
	return struct {
		Identity   Identity       `yaml:",inline"`
		Type       string         `yaml:"type"`
		Cipher     string         `yaml:"cipher"`
		Password   string         `yaml:"password"`
		Plugin     string         `yaml:"plugin,omitempty"`
		PluginOpts map[string]any `yaml:"plugin-opts,omitempty"`
	}{p.Identity, p.Type(), p.Cipher, p.Password, p.Plugin, p.PluginOpts}, nil
}
