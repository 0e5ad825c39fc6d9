package provider

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/xtls/xray-core/infra/conf"

	"subprovider/internal/proxy"
)

var ErrNoOutbound = errors.New("no xray outbound for proxy")

// Xray is an Xray-core config fragment holding one outbound per proxy,
// tagged with the proxy name.
type Xray struct {
	Outbounds []conf.OutboundDetourConfig `json:"outbounds"`

	onSkip func(p proxy.Proxy, err error)
}

func NewXray() *Xray {
	return &Xray{Outbounds: []conf.OutboundDetourConfig{}}
}

// OnSkip sets a hook called for every proxy that cannot become an outbound.
func (x *Xray) OnSkip(fn func(p proxy.Proxy, err error)) *Xray {
	x.onSkip = fn
	return x
}

// WithProxies converts every group member once. Tags must be unique in an
// xray config, so a name seen in an earlier group is not emitted again.
func (x *Xray) WithProxies(groups map[string][]proxy.Proxy) *Xray {
	names := lo.Keys(groups)
	slices.Sort(names)

	seen := make(map[string]bool)
	x.Outbounds = []conf.OutboundDetourConfig{}
	for _, name := range names {
		for _, p := range groups[name] {
			if seen[p.Name()] {
				continue
			}
			out, err := ToOutbound(p)
			if err == nil {
				_, err = out.Build()
			}
			if err != nil {
				if x.onSkip != nil {
					x.onSkip(p, err)
				}
				continue
			}
			seen[p.Name()] = true
			x.Outbounds = append(x.Outbounds, *out)
		}
	}
	return x
}

// Provide encodes the outbounds with unset keys left out. conf types carry
// no omitempty tags, and an absent key decodes to the same zero value.
func (x *Xray) Provide() ([]byte, error) {
	raw, err := json.Marshal(x)
	if err != nil {
		return nil, fmt.Errorf("failed to encode xray document: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to encode xray document: %w", err)
	}

	b, err := json.MarshalIndent(prune(doc), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode xray document: %w", err)
	}
	return b, nil
}

// prune drops nulls, zero scalars and empty containers from a decoded
// JSON tree. The top-level outbounds list is kept even when empty.
func prune(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, child := range t {
			child = prune(child)
			if isZero(child) && k != "outbounds" {
				delete(t, k)
				continue
			}
			t[k] = child
		}
		return t
	case []interface{}:
		out := make([]interface{}, 0, len(t))
		for _, child := range t {
			out = append(out, prune(child))
		}
		return out
	default:
		return v
	}
}

func isZero(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 0
	case map[string]interface{}:
		return len(t) == 0
	case []interface{}:
		return len(t) == 0
	default:
		return false
	}
}

// ToOutbound converts a proxy into an Xray outbound tagged with its name.
// Hysteria2 and TUIC have no conf protocol id and return ErrNoOutbound.
func ToOutbound(p proxy.Proxy) (*conf.OutboundDetourConfig, error) {
	var (
		protocol string
		settings json.RawMessage
		stream   *conf.StreamConfig
		err      error
	)

	switch v := p.(type) {
	case proxy.Trojan:
		protocol = "trojan"
		settings = jsonRaw(map[string]interface{}{
			"servers": []interface{}{
				map[string]interface{}{
					"address":  v.Server,
					"port":     v.Port,
					"password": v.Password,
				},
			},
		})
		stream, err = buildStreamSettings(v.TLS, v.Network)
	case proxy.VLESS:
		protocol = "vless"
		user := map[string]interface{}{
			"id":         v.UUID,
			"encryption": "none",
		}
		if v.Flow != "" {
			user["flow"] = v.Flow
		}
		settings = jsonRaw(map[string]interface{}{
			"vnext": []interface{}{
				map[string]interface{}{
					"address": v.Server,
					"port":    v.Port,
					"users":   []interface{}{user},
				},
			},
		})
		stream, err = buildStreamSettings(v.TLS, v.Network)
	case proxy.VMess:
		protocol = "vmess"
		settings = jsonRaw(map[string]interface{}{
			"vnext": []interface{}{
				map[string]interface{}{
					"address": v.Server,
					"port":    v.Port,
					"users": []interface{}{
						map[string]interface{}{
							"id":       v.UUID,
							"alterId":  v.AlterID,
							"security": v.Cipher,
						},
					},
				},
			},
		})
		stream, err = buildStreamSettings(vmessTLS(v), v.Network)
	case proxy.Shadowsocks:
		protocol = "shadowsocks"
		settings = jsonRaw(map[string]interface{}{
			"servers": []interface{}{
				map[string]interface{}{
					"address":  v.Server,
					"port":     v.Port,
					"method":   v.Cipher,
					"password": v.Password,
				},
			},
		})
	case proxy.Socks5:
		protocol = "socks"
		server := map[string]interface{}{
			"address": v.Server,
			"port":    v.Port,
		}
		if v.Username != nil {
			server["users"] = []interface{}{
				map[string]interface{}{"user": *v.Username, "pass": lo.FromPtr(v.Password)},
			}
		}
		settings = jsonRaw(map[string]interface{}{
			"servers": []interface{}{server},
		})
		if v.TLS {
			stream, err = buildStreamSettings(&proxy.TLS{
				Enabled:        true,
				ServerName:     v.SNI,
				SkipCertVerify: v.SkipCertVerify,
			}, nil)
		}
	case proxy.Direct:
		protocol = "freedom"
	case proxy.Reject:
		protocol = "blackhole"
	default:
		return nil, fmt.Errorf("%w: %s", ErrNoOutbound, p.Type())
	}
	if err != nil {
		return nil, err
	}

	out := &conf.OutboundDetourConfig{
		Tag:           p.Name(),
		Protocol:      protocol,
		StreamSetting: stream,
	}
	if settings != nil {
		out.Settings = &settings
	}
	return out, nil
}

func vmessTLS(v proxy.VMess) *proxy.TLS {
	if !lo.FromPtr(v.TLS) {
		return nil
	}
	return &proxy.TLS{
		Enabled:        true,
		ServerName:     v.ServerName,
		SkipCertVerify: lo.FromPtr(v.SkipCertVerify),
	}
}

func buildStreamSettings(tls *proxy.TLS, network proxy.Network) (*conf.StreamConfig, error) {
	sc := &conf.StreamConfig{}

	switch n := network.(type) {
	case nil:
		sc.Network = transport("tcp")
	case proxy.WSNetwork:
		sc.Network = transport("ws")
		headers := maps.Clone(n.Headers)
		host := headers["Host"]
		delete(headers, "Host")
		path := n.Path
		if n.MaxEarlyData != nil {
			sep := "?"
			if strings.Contains(path, "?") {
				sep = "&"
			}
			path = fmt.Sprintf("%s%sed=%d", path, sep, *n.MaxEarlyData)
		}
		sc.WSSettings = &conf.WebSocketConfig{
			Host:    host,
			Path:    path,
			Headers: headers,
		}
	case proxy.GRPCNetwork:
		sc.Network = transport("grpc")
		sc.GRPCSettings = &conf.GRPCConfig{
			ServiceName: lo.FromPtr(n.ServiceName),
		}
	case proxy.HTTPNetwork:
		sc.Network = transport("tcp")
		request := map[string]interface{}{
			"headers": n.Headers,
			"path":    n.Path,
		}
		if n.Method != "" {
			request["method"] = n.Method
		}
		sc.TCPSettings = &conf.TCPConfig{
			HeaderConfig: jsonRaw(map[string]interface{}{
				"type":    "http",
				"request": request,
			}),
		}
	default:
		return nil, fmt.Errorf("%w: %s transport", ErrNoOutbound, network.Tag())
	}

	if tls == nil || !tls.Enabled {
		return sc, nil
	}

	if tls.Reality != nil {
		sc.Security = "reality"
		sc.REALITYSettings = &conf.REALITYConfig{
			Fingerprint: "chrome",
			ServerName:  lo.FromPtr(tls.ServerName),
			PublicKey:   tls.Reality.PublicKey,
			ShortId:     tls.Reality.ShortID,
		}
		return sc, nil
	}

	sc.Security = "tls"
	sc.TLSSettings = &conf.TLSConfig{
		ServerName: lo.FromPtr(tls.ServerName),
		Insecure:   tls.SkipCertVerify,
	}
	if len(tls.ALPN) > 0 {
		sc.TLSSettings.ALPN = &conf.StringList{}
		*sc.TLSSettings.ALPN = append(*sc.TLSSettings.ALPN, tls.ALPN...)
	}
	return sc, nil
}

func transport(name string) *conf.TransportProtocol {
	p := conf.TransportProtocol(name)
	return &p
}

func jsonRaw(v interface{}) json.RawMessage {
	b, _ := json.Marshal(v)
	return json.RawMessage(b)
}
