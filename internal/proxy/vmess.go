package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

type VMess struct {
	Identity
	UUID           string
	AlterID        int
	Cipher         string
	TLS            *bool
	SkipCertVerify *bool
	ServerName     *string
	Network        Network
}

func (VMess) Type() string   { return "vmess" }
func (p VMess) Name() string { return p.Identity.Name }
func (VMess) isProxy()       {}

func (p VMess) WithName(name string) Proxy {
	p.Identity.Name = name
	p.TLS = cloneBool(p.TLS)
	p.SkipCertVerify = cloneBool(p.SkipCertVerify)
	p.ServerName = cloneString(p.ServerName)
	p.Network = cloneNetwork(p.Network)
	return p
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

func (p VMess) MarshalYAML() (interface{}, error) {
	return struct {
		Identity       Identity      `yaml:",inline"`
		Type           string        `yaml:"type"`
		UUID           string        `yaml:"uuid"`
		AlterID        int           `yaml:"alterId"`
		Cipher         string        `yaml:"cipher,omitempty"`
		TLS            *bool         `yaml:"tls,omitempty"`
		SkipCertVerify *bool         `yaml:"skip-cert-verify,omitempty"`
		ServerName     *string       `yaml:"servername,omitempty"`
		Network        NetworkFields `yaml:",inline"`
	}{p.Identity, p.Type(), p.UUID, p.AlterID, p.Cipher, p.TLS, p.SkipCertVerify, p.ServerName, EncodeNetwork(p.Network)}, nil
}

type vmessPayload map[string]any

func (m vmessPayload) str(key string) (string, bool, error) {
	raw, ok := m[key]
	if !ok {
		return "", false, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", true, &InvalidFieldError{Field: key, Value: fmt.Sprint(raw), Err: errors.New("want string")}
	}
	return s, true, nil
}

func (m vmessPayload) requiredStr(key string) (string, error) {
	s, ok, err := m.str(key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &MissingFieldError{Field: key}
	}
	return s, nil
}

func (m vmessPayload) requiredInt(key string, limit int64) (int, error) {
	raw, ok := m[key]
	if !ok {
		return 0, &MissingFieldError{Field: key}
	}
	num, ok := raw.(json.Number)
	if !ok {
		return 0, &InvalidFieldError{Field: key, Value: fmt.Sprint(raw), Err: errors.New("want number")}
	}
	n, err := num.Int64()
	if err != nil {
		return 0, &InvalidFieldError{Field: key, Value: num.String(), Err: err}
	}
	if n < 0 || n > limit {
		return 0, &InvalidFieldError{Field: key, Value: num.String(), Err: errors.New("out of range")}
	}
	return int(n), nil
}

// vmess://<base64(json)>. The JSON keys used are ps, host, port, id, aid, tls, net and path;
// host, port, id and aid are mandatory.
func decodeVMess(u *url.URL) (VMess, error) {
	encoded := u.Opaque
	if encoded == "" {
		encoded = u.Host + u.Path
	}

	decoded, err := DecodeBase64(encoded)
	if err != nil {
		return VMess{}, fmt.Errorf("%w: %v", ErrVMessPayload, err)
	}

	var m vmessPayload
	dec := json.NewDecoder(strings.NewReader(decoded))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return VMess{}, fmt.Errorf("%w: %v", ErrVMessPayload, err)
	}

	name, _, err := m.str("ps")
	if err != nil {
		return VMess{}, err
	}
	server, err := m.requiredStr("host")
	if err != nil {
		return VMess{}, err
	}
	port, err := m.requiredInt("port", 65535)
	if err != nil {
		return VMess{}, err
	}
	uuid, err := m.requiredStr("id")
	if err != nil {
		return VMess{}, err
	}
	alterID, err := m.requiredInt("aid", 65535)
	if err != nil {
		return VMess{}, err
	}

	p := VMess{
		Identity: Identity{Name: name, Server: server, Port: port},
		UUID:     uuid,
		AlterID:  alterID,
		Cipher:   "auto",
	}

	if security, _, _ := m.str("tls"); security == "tls" {
		enabled := true
		p.TLS = &enabled
	}

	if network, _, _ := m.str("net"); network == "ws" {
		path, _, _ := m.str("path")
		p.Network = WSNetwork{
			Path:    path,
			Headers: map[string]string{"Host": server},
		}
	}

	return p, nil
}
