package proxy

import "net/url"

type Trojan struct {
	Identity
	Password string
	TLS      *TLS
	Network  Network
}

func (Trojan) Type() string   { return "trojan" }
func (p Trojan) Name() string { return p.Identity.Name }
func (Trojan) isProxy()       {}

func (p Trojan) WithName(name string) Proxy {
	p.Identity.Name = name
	p.TLS = p.TLS.clone()
	p.Network = cloneNetwork(p.Network)
	return p
}

func (p Trojan) MarshalYAML() (interface{}, error) {
	return struct {
		Identity Identity      `yaml:",inline"`
		Type     string        `yaml:"type"`
		Password string        `yaml:"password"`
		TLS      tlsFields     `yaml:",inline"`
		Network  NetworkFields `yaml:",inline"`
	}{p.Identity, p.Type(), p.Password, p.TLS.fields(), EncodeNetwork(p.Network)}, nil
}

// trojan://<password>@<host>:<port>?security=&sni=&alpn=&type=#<label>
func decodeTrojan(u *url.URL) (Trojan, error) {
	id, err := parseIdentity(u)
	if err != nil {
		return Trojan{}, err
	}
	tls, err := ParseTLS(u)
	if err != nil {
		return Trojan{}, err
	}
	return Trojan{
		Identity: id,
		Password: u.User.Username(),
		TLS:      tls,
		Network:  ParseNetwork(u),
	}, nil
}
