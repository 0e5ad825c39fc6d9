package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subprovider/internal/proxy"
)

const sample = `
[server]
port = 8080
path_prefix = "sub/"

[database]
path = "links.db"

[fetch]
timeout = 10
proxy = "socks5://127.0.0.1:1080"

[[subscriptions]]
name = "free"
url = "https://example.com/sub"

[[subscriptions]]
name = "paid"
group = "premium"
url = "https://example.com/paid"

[[publishers]]
name = "gist"
type = "github"
provider = "clash"
groups = ["premium"]
params = { owner = "me", repo = "subs", path = "clash.yaml" }

[groups]
hk = [
  { name = "hk-1", url = "trojan://pw@hk.example.com:443" },
  { url = "tuic://u:p@hk2.example.com:443#hk-2" },
]
jp = [{ name = "jp-1", url = "hysteria2://pw@jp.example.com" }]
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Listen)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "/sub", cfg.Server.PathPrefix)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, "links.db", cfg.Database.Path)
	assert.Equal(t, 10*time.Second, cfg.Fetch.TimeoutDuration())
	assert.Equal(t, "socks5://127.0.0.1:1080", cfg.Fetch.Proxy)

	require.Len(t, cfg.Subscriptions, 2)
	assert.Equal(t, SubscriptionConfig{Name: "free", Group: "free", Type: "http", URL: "https://example.com/sub"}, cfg.Subscriptions[0])
	assert.Equal(t, "premium", cfg.Subscriptions[1].Group)

	require.Len(t, cfg.Publishers, 1)
	assert.Equal(t, "github", cfg.Publishers[0].Type)
	assert.Equal(t, "me", cfg.Publishers[0].Params["owner"])

	require.Len(t, cfg.Groups, 2)
	assert.Equal(t, []ProxyConfig{
		{Name: "hk-1", URL: "trojan://pw@hk.example.com:443"},
		{URL: "tuic://u:p@hk2.example.com:443#hk-2"},
	}, cfg.Groups["hk"])
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, ServerConfig{Listen: "0.0.0.0", Port: 3000, PathPrefix: "/"}, cfg.Server)
	assert.Equal(t, "subprovider.db", cfg.Database.Path)
	assert.Equal(t, 30*time.Second, cfg.Fetch.TimeoutDuration())
	assert.Empty(t, cfg.Groups)
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv(EnvPort, "9000")
	t.Setenv(EnvPathPrefix, "/secret/")

	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/secret", cfg.Server.PathPrefix)

	t.Setenv(EnvPort, "http")
	_, err = Parse(nil)
	require.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("[server\nport = 1"))
	require.Error(t, err)
}

func TestLoadAndPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(file, []byte(sample), 0o644))

	assert.Equal(t, "flag.toml", Path("flag.toml"))

	t.Setenv(EnvConfigPath, file)
	assert.Equal(t, file, Path(""))

	cfg, err := Load(Path(""))
	require.NoError(t, err)
	assert.Len(t, cfg.Groups, 2)

	t.Setenv(EnvConfigPath, "")
	assert.Equal(t, DefaultPath, Path(""))

	_, err = Load(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
}

func TestLinks(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	links := cfg.Links()
	assert.Equal(t, []proxy.Link{{Name: "jp-1", URL: "hysteria2://pw@jp.example.com"}}, links["jp"])
	assert.Len(t, links["hk"], 2)
}

func TestFilters(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	cfg.FilterGroups(nil)
	assert.Len(t, cfg.Groups, 2)

	cfg.FilterGroups([]string{"jp", "missing"})
	assert.Len(t, cfg.Groups, 1)
	assert.Contains(t, cfg.Groups, "jp")

	cfg.FilterSubscriptions([]string{"paid"})
	require.Len(t, cfg.Subscriptions, 1)
	assert.Equal(t, "paid", cfg.Subscriptions[0].Name)

	cfg.FilterPublishers([]string{"none"})
	assert.Empty(t, cfg.Publishers)
}
