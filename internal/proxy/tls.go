package proxy

import (
	"net/url"
	"slices"
)

// TLS is the security profile shared by trojan, vless and hysteria2 entries.
// A nil *TLS means the link declared no recognized security.
type TLS struct {
	Enabled        bool
	ALPN           []string
	ServerName     *string
	SkipCertVerify bool
	Reality        *RealityOpts
}

type RealityOpts struct {
	PublicKey string `yaml:"public-key"`
	ShortID   string `yaml:"short-id"`
}

// ParseTLS reads security, sni, alpn, skip_cert_verify, pbk and sid.
// It returns nil without error when security is absent or neither tls nor reality.
func ParseTLS(u *url.URL) (*TLS, error) {
	q := newQuery(u)

	security, _ := q.Get("security")
	if security != "tls" && security != "reality" {
		return nil, nil
	}

	skip, err := q.Bool("skip_cert_verify")
	if err != nil {
		return nil, err
	}

	t := &TLS{
		Enabled:        true,
		ALPN:           q.List("alpn"),
		ServerName:     q.Optional("sni"),
		SkipCertVerify: skip,
	}
	if security == "reality" {
		t.Reality = &RealityOpts{
			PublicKey: q.String("pbk"),
			ShortID:   q.String("sid"),
		}
	}
	return t, nil
}

func (t *TLS) clone() *TLS {
	if t == nil {
		return nil
	}
	c := *t
	c.ALPN = slices.Clone(t.ALPN)
	c.ServerName = cloneString(t.ServerName)
	if t.Reality != nil {
		r := *t.Reality
		c.Reality = &r
	}
	return &c
}

// tlsFields is the flattened wire form of TLS inside a proxy entry.
type tlsFields struct {
	TLS            bool         `yaml:"tls,omitempty"`
	ALPN           []string     `yaml:"alpn,omitempty"`
	ServerName     *string      `yaml:"servername,omitempty"`
	SkipCertVerify bool         `yaml:"skip-cert-verify,omitempty"`
	RealityOpts    *RealityOpts `yaml:"reality-opts,omitempty"`
}

func (t *TLS) fields() tlsFields {
	if t == nil {
		return tlsFields{}
	}
	return tlsFields{
		TLS:            t.Enabled,
		ALPN:           t.ALPN,
		ServerName:     t.ServerName,
		SkipCertVerify: t.SkipCertVerify,
		RealityOpts:    t.Reality,
	}
}
