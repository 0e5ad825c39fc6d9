package proxy

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseNetwork(t *testing.T) {
	t.Parallel()

	n := ParseNetwork(mustURL(t, "vless://id@origin.com:443?type=ws&path=/ray&sni=cdn.com"))
	require.Equal(t, WSNetwork{Path: "/ray", Headers: map[string]string{"Host": "cdn.com"}}, n)

	n = ParseNetwork(mustURL(t, "vless://id@origin.com:443?type=ws"))
	require.Equal(t, WSNetwork{Path: "", Headers: map[string]string{"Host": "origin.com"}}, n)

	n = ParseNetwork(mustURL(t, "vless://id@origin.com:443?type=grpc&serviceName=svc"))
	require.Equal(t, "grpc", n.Tag())
	require.Equal(t, "svc", *n.(GRPCNetwork).ServiceName)

	n = ParseNetwork(mustURL(t, "vless://id@origin.com:443?type=grpc"))
	require.Equal(t, GRPCNetwork{}, n)

	require.Nil(t, ParseNetwork(mustURL(t, "vless://id@origin.com:443?type=tcp")))
	require.Nil(t, ParseNetwork(mustURL(t, "vless://id@origin.com:443?type=h2")))
	require.Nil(t, ParseNetwork(mustURL(t, "vless://id@origin.com:443")))
}

func TestNetworkCodec_DocumentRoundTrip(t *testing.T) {
	t.Parallel()

	docs := map[string]string{
		"http": `
network: http
http-opts:
  method: GET
  path: [/a, /b]
  headers:
    Host: [a.com, b.com]
`,
		"h2": `
network: h2
h2-opts:
  host: [a.com]
  path: /h2
`,
		"grpc": `
network: grpc
grpc-opts:
  grpc-service-name: svc
`,
		"grpc without service name": `
network: grpc
grpc-opts: {}
`,
		"ws": `
network: ws
ws-opts:
  path: /ray
  headers:
    Host: a.com
  max-early-data: 2048
`,
		"ws without early data": `
network: ws
ws-opts:
  path: /ray
  headers:
    Host: a.com
`,
		"none": `{}`,
	}

	for name, doc := range docs {
		var f NetworkFields
		require.NoError(t, yaml.Unmarshal([]byte(doc), &f), name)

		n, err := DecodeNetwork(f)
		require.NoError(t, err, name)

		out, err := yaml.Marshal(EncodeNetwork(n))
		require.NoError(t, err, name)
		require.YAMLEq(t, doc, string(out), name)
	}
}

func TestNetworkCodec_ValueRoundTrip(t *testing.T) {
	t.Parallel()

	svc := "svc"
	early := 1024
	values := []Network{
		HTTPNetwork{Method: "GET", Path: []string{"/"}, Headers: map[string][]string{"Host": {"a.com"}}},
		H2Network{Host: []string{"a.com", "b.com"}, Path: "/"},
		GRPCNetwork{ServiceName: &svc},
		GRPCNetwork{},
		WSNetwork{Path: "/ws", Headers: map[string]string{"Host": "a.com"}, MaxEarlyData: &early},
		WSNetwork{Path: "/ws", Headers: map[string]string{"Host": "a.com"}},
		nil,
	}

	for _, n := range values {
		out, err := yaml.Marshal(EncodeNetwork(n))
		require.NoError(t, err)

		var f NetworkFields
		require.NoError(t, yaml.Unmarshal(out, &f))

		decoded, err := DecodeNetwork(f)
		require.NoError(t, err)
		require.Equal(t, n, decoded)
	}
}

func TestNetworkCodec_OmitsEmpty(t *testing.T) {
	t.Parallel()

	out, err := yaml.Marshal(EncodeNetwork(nil))
	require.NoError(t, err)
	require.NotContains(t, string(out), "network")

	out, err = yaml.Marshal(EncodeNetwork(WSNetwork{Path: "/"}))
	require.NoError(t, err)
	require.NotContains(t, string(out), "max-early-data")
	require.NotContains(t, string(out), "grpc-opts")
}

func TestNetworkCodec_DecodeErrors(t *testing.T) {
	t.Parallel()

	for _, doc := range []string{
		"network: ws\n",
		"network: grpc\nws-opts:\n  path: /\n",
		"network: http\n",
		"network: h2\n",
	} {
		var f NetworkFields
		require.NoError(t, yaml.Unmarshal([]byte(doc), &f))
		_, err := DecodeNetwork(f)
		require.ErrorIs(t, err, ErrMissingTransportOptions, doc)
	}

	var f NetworkFields
	require.NoError(t, yaml.Unmarshal([]byte("network: quic\nquic-opts: {}\n"), &f))
	_, err := DecodeNetwork(f)
	require.ErrorIs(t, err, ErrUnknownTransportType)
}
