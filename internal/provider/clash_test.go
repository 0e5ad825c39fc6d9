package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"subprovider/internal/proxy"
)

func mustDecode(t *testing.T, name, link string) proxy.Proxy {
	t.Helper()
	p, err := proxy.Decode(name, link)
	require.NoError(t, err)
	return p
}

func TestClash_Defaults(t *testing.T) {
	t.Parallel()

	out, err := NewClash().Provide()
	require.NoError(t, err)
	require.YAMLEq(t, `
port: 7890
socks-port: 7891
allow-lan: false
mode: Rule
log-level: info
external-controller: ""
secret: ""
proxies: []
proxy-groups: []
rules: []
`, string(out))
}

func TestClash_WithProxies(t *testing.T) {
	t.Parallel()

	p1 := mustDecode(t, "p1", "trojan://pw@a.com:443")
	p2 := mustDecode(t, "p2", "hysteria2://pw@b.com:8443")

	c := NewClash().WithProxies(map[string][]proxy.Proxy{
		"B": {p2},
		"A": {p1},
	})

	require.Len(t, c.Proxies, 2)
	require.Len(t, c.ProxyGroups, 2)
	assert.Equal(t, ProxyGroup{Name: "A", Type: "select", Proxies: []string{"p1"}}, c.ProxyGroups[0])
	assert.Equal(t, ProxyGroup{Name: "B", Type: "select", Proxies: []string{"p2"}}, c.ProxyGroups[1])

	out, err := c.Provide()
	require.NoError(t, err)
	require.YAMLEq(t, `
port: 7890
socks-port: 7891
allow-lan: false
mode: Rule
log-level: info
external-controller: ""
secret: ""
proxies:
  - name: p1
    server: a.com
    port: 443
    type: trojan
    password: pw
  - name: p2
    server: b.com
    port: 8443
    type: hysteria2
    password: pw
proxy-groups:
  - name: A
    type: select
    proxies: [p1]
  - name: B
    type: select
    proxies: [p2]
rules: []
`, string(out))
}

func TestClash_MemberOrderAndPseudo(t *testing.T) {
	t.Parallel()

	a := mustDecode(t, "a", "trojan://pw@a.com")
	b := mustDecode(t, "b", "trojan://pw@b.com")
	c := mustDecode(t, "c", "trojan://pw@c.com")

	doc := NewClash().WithProxies(map[string][]proxy.Proxy{
		"all": {c, a, proxy.Direct{}, b, proxy.Reject{}},
	})

	require.Len(t, doc.Proxies, 3)
	assert.Equal(t, []string{"c", "a", "DIRECT", "b", "REJECT"}, doc.ProxyGroups[0].Proxies)

	out, err := doc.Provide()
	require.NoError(t, err)

	var parsed struct {
		Proxies []map[string]interface{} `yaml:"proxies"`
	}
	require.NoError(t, yaml.Unmarshal(out, &parsed))
	require.Len(t, parsed.Proxies, 3)
	assert.Equal(t, "c", parsed.Proxies[0]["name"])
	assert.Equal(t, "a", parsed.Proxies[1]["name"])
	assert.Equal(t, "b", parsed.Proxies[2]["name"])
}

func TestClash_DeterministicOutput(t *testing.T) {
	t.Parallel()

	groups := map[string][]proxy.Proxy{}
	for _, name := range []string{"z", "m", "a", "q"} {
		groups[name] = []proxy.Proxy{mustDecode(t, name, "trojan://pw@"+name+".com")}
	}

	first, err := NewClash().WithProxies(groups).Provide()
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := NewClash().WithProxies(groups).Provide()
		require.NoError(t, err)
		require.Equal(t, string(first), string(again))
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"clash", "clash-meta", "xray"}, Names())

	p, err := Get("clash-meta")
	require.NoError(t, err)
	assert.Contains(t, p.ContentType(), "yaml")

	out, err := p.Render(map[string][]proxy.Proxy{"g": {mustDecode(t, "x", "trojan://pw@x.com")}})
	require.NoError(t, err)
	assert.Contains(t, string(out), "proxy-groups:")

	_, err = Get("surge")
	require.ErrorIs(t, err, ErrNotFound)
}
