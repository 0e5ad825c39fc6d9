package proxy

import "net/url"

type Hysteria2 struct {
	Identity
	Password     string
	Ports        string
	Obfs         string
	ObfsPassword string
	TLS          *TLS
}

func (Hysteria2) Type() string   { return "hysteria2" }
func (p Hysteria2) Name() string { return p.Identity.Name }
func (Hysteria2) isProxy()       {}

func (p Hysteria2) WithName(name string) Proxy {
	p.Identity.Name = name
	p.TLS = p.TLS.clone()
	return p
}

func (p Hysteria2) MarshalYAML() (interface{}, error) {
	return struct {
		Identity     Identity  `yaml:",inline"`
		Type         string    `yaml:"type"`
		Password     string    `yaml:"password"`
		Ports        string    `yaml:"ports,omitempty"`
		Obfs         string    `yaml:"obfs,omitempty"`
		ObfsPassword string    `yaml:"obfs-password,omitempty"`
		TLS          tlsFields `yaml:",inline"`
	}{p.Identity, p.Type(), p.Password, p.Ports, p.Obfs, p.ObfsPassword, p.TLS.fields()}, nil
}

func decodeHysteria2(u *url.URL) (Hysteria2, error) {
	id, err := parseIdentity(u)
	if err != nil {
		return Hysteria2{}, err
	}
	tls, err := ParseTLS(u)
	if err != nil {
		return Hysteria2{}, err
	}
	q := newQuery(u)
	return Hysteria2{
		Identity:     id,
		Password:     u.User.Username(),
		Ports:        q.String("ports"),
		Obfs:         q.String("obfs"),
		ObfsPassword: q.String("obfs-password"),
		TLS:          tls,
	}, nil
}
