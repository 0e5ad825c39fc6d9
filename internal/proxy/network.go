package proxy

import (
	"maps"
	"net/url"
	"slices"
)

// Network is the transport layered under a proxy protocol. A nil Network is plain TCP.
//
// The wire form is not a plain tagged union: an entry carries `network: <tag>` next to a
// `<tag>-opts` object holding only that variant's fields. EncodeNetwork and DecodeNetwork
// are the only places that know this shape.
type Network interface {
	Tag() string
	cloneNetwork() Network
}

type HTTPNetwork struct {
	Method  string
	Path    []string
	Headers map[string][]string
}

type H2Network struct {
	Host []string
	Path string
}

type GRPCNetwork struct {
	ServiceName *string
}

type WSNetwork struct {
	Path         string
	Headers      map[string]string
	MaxEarlyData *int
}

func (HTTPNetwork) Tag() string { return "http" }
func (H2Network) Tag() string   { return "h2" }
func (GRPCNetwork) Tag() string { return "grpc" }
func (WSNetwork) Tag() string   { return "ws" }

func (n HTTPNetwork) cloneNetwork() Network {
	headers := make(map[string][]string, len(n.Headers))
	for k, v := range n.Headers {
		headers[k] = slices.Clone(v)
	}
	if n.Headers == nil {
		headers = nil
	}
	return HTTPNetwork{Method: n.Method, Path: slices.Clone(n.Path), Headers: headers}
}

func (n H2Network) cloneNetwork() Network {
	return H2Network{Host: slices.Clone(n.Host), Path: n.Path}
}

func (n GRPCNetwork) cloneNetwork() Network {
	if n.ServiceName == nil {
		return GRPCNetwork{}
	}
	s := *n.ServiceName
	return GRPCNetwork{ServiceName: &s}
}

func (n WSNetwork) cloneNetwork() Network {
	c := WSNetwork{Path: n.Path, Headers: maps.Clone(n.Headers)}
	if n.MaxEarlyData != nil {
		v := *n.MaxEarlyData
		c.MaxEarlyData = &v
	}
	return c
}

func cloneNetwork(n Network) Network {
	if n == nil {
		return nil
	}
	return n.cloneNetwork()
}

// ParseNetwork derives a transport from the type, serviceName, path and sni query keys.
// Only grpc and ws are reachable from links; anything else yields nil.
func ParseNetwork(u *url.URL) Network {
	q := newQuery(u)

	switch q.String("type") {
	case "grpc":
		return GRPCNetwork{ServiceName: q.Optional("serviceName")}
	case "ws":
		host, ok := q.Get("sni")
		if !ok {
			host = u.Hostname()
		}
		return WSNetwork{
			Path:    q.String("path"),
			Headers: map[string]string{"Host": host},
		}
	default:
		return nil
	}
}

// NetworkFields is the flattened wire form of a Network inside a proxy entry.
type NetworkFields struct {
	Network  string    `yaml:"network,omitempty"`
	HTTPOpts *httpOpts `yaml:"http-opts,omitempty"`
	H2Opts   *h2Opts   `yaml:"h2-opts,omitempty"`
	GRPCOpts *grpcOpts `yaml:"grpc-opts,omitempty"`
	WSOpts   *wsOpts   `yaml:"ws-opts,omitempty"`
}

type httpOpts struct {
	Method  string              `yaml:"method"`
	Path    []string            `yaml:"path"`
	Headers map[string][]string `yaml:"headers"`
}

type h2Opts struct {
	Host []string `yaml:"host"`
	Path string   `yaml:"path"`
}

type grpcOpts struct {
	ServiceName *string `yaml:"grpc-service-name,omitempty"`
}

type wsOpts struct {
	Path         string            `yaml:"path"`
	Headers      map[string]string `yaml:"headers"`
	MaxEarlyData *int              `yaml:"max-early-data,omitempty"`
}

// EncodeNetwork picks the tag and fills only the matching opts object.
func EncodeNetwork(n Network) NetworkFields {
	switch v := n.(type) {
	case HTTPNetwork:
		return NetworkFields{Network: v.Tag(), HTTPOpts: &httpOpts{Method: v.Method, Path: v.Path, Headers: v.Headers}}
	case H2Network:
		return NetworkFields{Network: v.Tag(), H2Opts: &h2Opts{Host: v.Host, Path: v.Path}}
	case GRPCNetwork:
		return NetworkFields{Network: v.Tag(), GRPCOpts: &grpcOpts{ServiceName: v.ServiceName}}
	case WSNetwork:
		return NetworkFields{Network: v.Tag(), WSOpts: &wsOpts{Path: v.Path, Headers: v.Headers, MaxEarlyData: v.MaxEarlyData}}
	default:
		return NetworkFields{}
	}
}

// DecodeNetwork reads the tag and requires the opts object named after it.
// An empty tag decodes to nil.
func DecodeNetwork(f NetworkFields) (Network, error) {
	switch f.Network {
	case "":
		return nil, nil
	case "http":
		if f.HTTPOpts == nil {
			return nil, ErrMissingTransportOptions
		}
		return HTTPNetwork{Method: f.HTTPOpts.Method, Path: f.HTTPOpts.Path, Headers: f.HTTPOpts.Headers}, nil
	case "h2":
		if f.H2Opts == nil {
			return nil, ErrMissingTransportOptions
		}
		return H2Network{Host: f.H2Opts.Host, Path: f.H2Opts.Path}, nil
	case "grpc":
		if f.GRPCOpts == nil {
			return nil, ErrMissingTransportOptions
		}
		return GRPCNetwork{ServiceName: f.GRPCOpts.ServiceName}, nil
	case "ws":
		if f.WSOpts == nil {
			return nil, ErrMissingTransportOptions
		}
		return WSNetwork{Path: f.WSOpts.Path, Headers: f.WSOpts.Headers, MaxEarlyData: f.WSOpts.MaxEarlyData}, nil
	default:
		return nil, ErrUnknownTransportType
	}
}
