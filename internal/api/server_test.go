package api

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"subprovider/internal/config"
	"subprovider/internal/metrics"
)

const sample = `
[groups]
hk = [
  { name = "hk-1", url = "trojan://pw@hk.example.com:443?security=tls&sni=hk.example.com" },
  { url = "ss://YWVzOnB3@h:1#bad" },
]
jp = [{ name = "jp-1", url = "tuic://u:p@jp.example.com:443?congestion_control=bbr" }]
`

func staticConfig(t *testing.T, doc string) ConfigLoader {
	t.Helper()
	cfg, err := config.Parse([]byte(doc))
	require.NoError(t, err)
	return func() (*config.Config, error) { return cfg, nil }
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHello(t *testing.T) {
	s := NewServer("/sub", staticConfig(t, sample), nil)

	rec := get(t, s.Handler(), "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Hello, World!")
}

func TestClash(t *testing.T) {
	s := NewServer("/sub/", staticConfig(t, sample), nil)

	for _, path := range []string{"/sub/clash", "/sub/clash-meta"} {
		rec := get(t, s.Handler(), path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Header().Get("Content-Type"), "yaml")

		var doc struct {
			Port        int                      `yaml:"port"`
			Proxies     []map[string]interface{} `yaml:"proxies"`
			ProxyGroups []map[string]interface{} `yaml:"proxy-groups"`
		}
		require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &doc), path)
		assert.Equal(t, 7890, doc.Port)
		assert.Len(t, doc.Proxies, 2)
		require.Len(t, doc.ProxyGroups, 2)
		assert.Equal(t, "hk", doc.ProxyGroups[0]["name"])
	}

	// not mounted outside the prefix
	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/clash").Code)
}

func TestRootPrefix(t *testing.T) {
	s := NewServer("/", staticConfig(t, sample), nil)

	assert.Equal(t, http.StatusOK, get(t, s.Handler(), "/").Code)
	assert.Equal(t, http.StatusOK, get(t, s.Handler(), "/clash").Code)
}

func TestGroupFilter(t *testing.T) {
	s := NewServer("/", staticConfig(t, sample), nil)

	rec := get(t, s.Handler(), "/clash?groups=jp")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		ProxyGroups []map[string]interface{} `yaml:"proxy-groups"`
	}
	require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &doc))
	require.Len(t, doc.ProxyGroups, 1)
	assert.Equal(t, "jp", doc.ProxyGroups[0]["name"])
}

func TestXray(t *testing.T) {
	s := NewServer("/", staticConfig(t, sample), nil)

	rec := get(t, s.Handler(), "/xray")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var doc struct {
		Outbounds []struct {
			Tag string `json:"tag"`
		} `json:"outbounds"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	// tuic has no xray outbound
	require.Len(t, doc.Outbounds, 1)
	assert.Equal(t, "hk-1", doc.Outbounds[0].Tag)
}

func TestHealth(t *testing.T) {
	stats := metrics.NewDecodeStats()
	s := NewServer("/", staticConfig(t, sample), stats)

	require.Equal(t, http.StatusOK, get(t, s.Handler(), "/clash").Code)

	rec := get(t, s.Handler(), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status    string           `json:"status"`
		Providers []string         `json:"providers"`
		Decode    metrics.Snapshot `json:"decode"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, []string{"clash", "clash-meta", "xray"}, body.Providers)
	assert.Equal(t, 2, body.Decode.Decoded)
	assert.Equal(t, 1, body.Decode.Dropped)
}

func TestUnknownProvider(t *testing.T) {
	for _, prefix := range []string{"/", "/sub"} {
		s := NewServer(prefix, staticConfig(t, sample), nil)
		base := strings.TrimSuffix(prefix, "/")

		rec := get(t, s.Handler(), base+"/surge")
		assert.Equal(t, http.StatusNotFound, rec.Code, prefix)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json", prefix)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), prefix)
		assert.Contains(t, body["error"], "surge", prefix)

		// unrouted paths answer in the same shape
		rec = get(t, s.Handler(), base+"/a/b/c")
		assert.Equal(t, http.StatusNotFound, rec.Code, prefix)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), prefix)
		assert.NotEmpty(t, body["error"], prefix)
	}

	// unknown provider stays a 404 when the config cannot load
	s := NewServer("/", func() (*config.Config, error) {
		return nil, errors.New("broken")
	}, nil)
	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/surge").Code)
}

func TestConfigError(t *testing.T) {
	s := NewServer("/", func() (*config.Config, error) {
		return nil, errors.New("config.toml: no such file")
	}, nil)

	rec := get(t, s.Handler(), "/clash")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "no such file")
}

func TestServeAndClose(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := NewServer("/", staticConfig(t, sample), nil)
	done := make(chan error, 1)
	go func() { done <- s.Serve(l) }()

	resp, err := http.Get("http://" + l.Addr().String() + "/clash")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "proxy-groups:")

	require.NoError(t, s.Close())
	require.NoError(t, <-done)
}
