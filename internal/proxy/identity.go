package proxy

import (
	"net/url"
	"strconv"
	"strings"
)

const defaultPort = 443

// IPVersion selects the address family a client should prefer. Empty means unset.
type IPVersion string

const (
	IPv4       IPVersion = "ipv4"
	IPv6       IPVersion = "ipv6"
	IPv4Prefer IPVersion = "ipv4-prefer"
	IPv6Prefer IPVersion = "ipv6-prefer"
	Dual       IPVersion = "dual"
)

var ipVersions = []IPVersion{IPv4, IPv6, IPv4Prefer, IPv6Prefer, Dual}

// ParseIPVersion matches s case-insensitively against the known spellings.
func ParseIPVersion(s string) (IPVersion, error) {
	for _, v := range ipVersions {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	return "", &EnumValueError{Field: "ip_version", Value: s}
}

// Identity holds the fields every proxy entry carries regardless of protocol.
type Identity struct {
	Name      string    `yaml:"name"`
	Server    string    `yaml:"server"`
	Port      int       `yaml:"port"`
	IPVersion IPVersion `yaml:"ip-version,omitempty"`
	UDP       bool      `yaml:"udp,omitempty"`
}

// Address returns the server host and port.
func (id Identity) Address() (string, int) {
	return id.Server, id.Port
}

func parseIdentity(u *url.URL) (Identity, error) {
	q := newQuery(u)

	server := u.Hostname()
	if server == "" {
		return Identity{}, &MissingFieldError{Field: "server"}
	}

	port := defaultPort
	if p := u.Port(); p != "" {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return Identity{}, &InvalidFieldError{Field: "port", Value: p, Err: err}
		}
		port = int(n)
	}

	var ipVersion IPVersion
	if v, ok := q.Get("ip_version"); ok {
		parsed, err := ParseIPVersion(v)
		if err != nil {
			return Identity{}, err
		}
		ipVersion = parsed
	}

	udp, err := q.Bool("udp")
	if err != nil {
		return Identity{}, err
	}

	return Identity{
		Name:      u.Fragment,
		Server:    server,
		Port:      port,
		IPVersion: ipVersion,
		UDP:       udp,
	}, nil
}
