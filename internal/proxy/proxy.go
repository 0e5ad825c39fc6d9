package proxy

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	NameDirect = "DIRECT"
	NameReject = "REJECT"
)

// Proxy is one normalized proxy entry. The set of implementations is closed:
// Direct, Reject, Shadowsocks, Socks5, Trojan, VMess, VLESS, Hysteria2 and TUIC.
//
// Values are immutable; WithName returns a copy that shares no slices or maps
// with the receiver.
type Proxy interface {
	Type() string
	Name() string
	WithName(name string) Proxy
	isProxy()
}

// Link is one labelled share link as supplied by a group list.
type Link struct {
	Name string
	URL  string
}

type decoderFunc func(u *url.URL) (Proxy, error)

func adapt[T Proxy](decode func(*url.URL) (T, error)) decoderFunc {
	return func(u *url.URL) (Proxy, error) {
		p, err := decode(u)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// decoders maps a link scheme to its decoder. Shadowsocks and SOCKS5 entries
// are built directly and have no link form here.
var decoders = map[string]decoderFunc{
	"trojan":    adapt(decodeTrojan),
	"vmess":     adapt(decodeVMess),
	"vless":     adapt(decodeVLESS),
	"hysteria2": adapt(decodeHysteria2),
	"tuic":      adapt(decodeTUIC),
}

// Schemes lists the link schemes Decode accepts.
func Schemes() []string {
	schemes := make([]string, 0, len(decoders))
	for s := range decoders {
		schemes = append(schemes, s)
	}
	return schemes
}

// Decode parses link and dispatches on its scheme. A non-empty name replaces
// whatever label the link carried itself.
func Decode(name, link string) (Proxy, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedURI, err)
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("%w: missing scheme", ErrMalformedURI)
	}

	decode, ok := decoders[u.Scheme]
	if !ok {
		return nil, &UnsupportedProtocolError{Scheme: u.Scheme}
	}

	p, err := decode(u)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", u.Scheme, err)
	}
	if name != "" {
		p = p.WithName(name)
	}
	return p, nil
}

// DecodeAll decodes every link independently and drops the ones that fail.
func DecodeAll(links []Link) []Proxy {
	return DecodeAllFunc(links, nil)
}

// DecodeAllFunc is DecodeAll with a hook that sees each dropped link. onError may be nil.
func DecodeAllFunc(links []Link, onError func(Link, error)) []Proxy {
	proxies := make([]Proxy, 0, len(links))
	for _, l := range links {
		p, err := Decode(l.Name, l.URL)
		if err != nil {
			if onError != nil {
				onError(l, err)
			}
			continue
		}
		proxies = append(proxies, p)
	}
	return proxies
}

// Direct routes traffic without a proxy. It is a rule target only.
type Direct struct{}

func (Direct) Type() string            { return "direct" }
func (Direct) Name() string            { return NameDirect }
func (d Direct) WithName(string) Proxy { return d }
func (Direct) isProxy()                {}

// Reject drops traffic. It is a rule target only.
type Reject struct{}

func (Reject) Type() string            { return "reject" }
func (Reject) Name() string            { return NameReject }
func (r Reject) WithName(string) Proxy { return r }
func (Reject) isProxy()                {}

// IsPseudo reports whether p is a rule target rather than a server entry.
func IsPseudo(p Proxy) bool {
	switch p.(type) {
	case Direct, Reject:
		return true
	default:
		return false
	}
}
