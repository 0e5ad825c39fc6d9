package proxy

import "net/url"

type VLESS struct {
	Identity
	UUID    string
	Flow    string
	TLS     *TLS
	Network Network
}

func (VLESS) Type() string   { return "vless" }
func (p VLESS) Name() string { return p.Identity.Name }
func (VLESS) isProxy()       {}

func (p VLESS) WithName(name string) Proxy {
	p.Identity.Name = name
	p.TLS = p.TLS.clone()
	p.Network = cloneNetwork(p.Network)
	return p
}

func (p VLESS) MarshalYAML() (interface{}, error) {
	return struct {
		Identity Identity      `yaml:",inline"`
		Type     string        `yaml:"type"`
		UUID     string        `yaml:"uuid"`
		Flow     string        `yaml:"flow,omitempty"`
		TLS      tlsFields     `yaml:",inline"`
		Network  NetworkFields `yaml:",inline"`
	}{p.Identity, p.Type(), p.UUID, p.Flow, p.TLS.fields(), EncodeNetwork(p.Network)}, nil
}

func decodeVLESS(u *url.URL) (VLESS, error) {
	id, err := parseIdentity(u)
	if err != nil {
		return VLESS{}, err
	}
	tls, err := ParseTLS(u)
	if err != nil {
		return VLESS{}, err
	}
	return VLESS{
		Identity: id,
		UUID:     u.User.Username(),
		Flow:     newQuery(u).String("flow"),
		TLS:      tls,
		Network:  ParseNetwork(u),
	}, nil
}
