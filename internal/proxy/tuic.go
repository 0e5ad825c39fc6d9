package proxy

import (
	"net/url"
	"slices"
	"strings"
)

type RelayMode string

const (
	RelayNative RelayMode = "native"
	RelayQUIC   RelayMode = "quic"
)

type CongestionController string

const (
	CongestionCubic   CongestionController = "cubic"
	CongestionNewReno CongestionController = "new-reno"
	CongestionBBR     CongestionController = "bbr"
)

func matchFold[T ~string](s string, values ...T) (T, bool) {
	for _, v := range values {
		if strings.EqualFold(s, string(v)) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// TUIC is a TUIC v5 entry.
type TUIC struct {
	Identity
	UUID                 string
	Password             string
	IP                   *string
	HeartbeatInterval    *int
	ALPN                 []string
	UDPRelayMode         RelayMode
	CongestionController CongestionController
}

func (TUIC) Type() string   { return "tuic" }
func (p TUIC) Name() string { return p.Identity.Name }
func (TUIC) isProxy()       {}

func (p TUIC) WithName(name string) Proxy {
	p.Identity.Name = name
	p.ALPN = slices.Clone(p.ALPN)
	p.IP = cloneString(p.IP)
	if p.HeartbeatInterval != nil {
		hb := *p.HeartbeatInterval
		p.HeartbeatInterval = &hb
	}
	return p
}

func (p TUIC) MarshalYAML() (interface{}, error) {
	return struct {
		Identity             Identity             `yaml:",inline"`
		Type                 string               `yaml:"type"`
		UUID                 string               `yaml:"uuid"`
		Password             string               `yaml:"password"`
		IP                   *string              `yaml:"ip,omitempty"`
		HeartbeatInterval    *int                 `yaml:"heartbeat-interval,omitempty"`
		ALPN                 []string             `yaml:"alpn,omitempty"`
		UDPRelayMode         RelayMode            `yaml:"udp-relay-mode,omitempty"`
		CongestionController CongestionController `yaml:"congestion-controller,omitempty"`
	}{p.Identity, p.Type(), p.UUID, p.Password, p.IP, p.HeartbeatInterval, p.ALPN, p.UDPRelayMode, p.CongestionController}, nil
}

// tuic://<uuid>:<password>@<host>:<port>?ip=&heartbeat_interval=&alpn=&udp_relay_mode=&congestion_control=#<label>
//
// Unknown relay mode or congestion controller spellings are left unset.
func decodeTUIC(u *url.URL) (TUIC, error) {
	id, err := parseIdentity(u)
	if err != nil {
		return TUIC{}, err
	}
	q := newQuery(u)

	heartbeat, err := q.Int("heartbeat_interval")
	if err != nil {
		return TUIC{}, err
	}

	password, _ := u.User.Password()
	relay, _ := matchFold(q.String("udp_relay_mode"), RelayNative, RelayQUIC)
	congestion, _ := matchFold(q.String("congestion_control"), CongestionCubic, CongestionNewReno, CongestionBBR)

	return TUIC{
		Identity:             id,
		UUID:                 u.User.Username(),
		Password:             password,
		IP:                   q.Optional("ip"),
		HeartbeatInterval:    heartbeat,
		ALPN:                 q.List("alpn"),
		UDPRelayMode:         relay,
		CongestionController: congestion,
	}, nil
}
