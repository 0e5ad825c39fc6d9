package proxy

// Socks5 has no link decoder; entries are built field by field. TLS settings are
// plain fields here rather than a TLS profile.
type Socks5 struct {
	Identity
	Username       *string
	Password       *string
	TLS            bool
	SNI            *string
	SkipCertVerify bool
}

func (Socks5) Type() string   { return "socks5" }
func (p Socks5) Name() string { return p.Identity.Name }
func (Socks5) isProxy()       {}

func (p Socks5) WithName(name string) Proxy {
	p.Identity.Name = name
	p.Username = cloneString(p.Username)
	p.Password = cloneString(p.Password)
	p.SNI = cloneString(p.SNI)
	return p
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func (p Socks5) MarshalYAML() (interface{}, error) {
	return struct {
		Identity       Identity `yaml:",inline"`
		Type           string   `yaml:"type"`
		Username       *string  `yaml:"username,omitempty"`
		Password       *string  `yaml:"password,omitempty"`
		TLS            bool     `yaml:"tls,omitempty"`
		SNI            *string  `yaml:"sni,omitempty"`
		SkipCertVerify bool     `yaml:"skip-cert-verify,omitempty"`
	}{p.Identity, p.Type(), p.Username, p.Password, p.TLS, p.SNI, p.SkipCertVerify}, nil
}
