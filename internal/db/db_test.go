package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"subprovider/internal/model"
	"subprovider/internal/proxy"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := Connect(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, Migrate(database))
	t.Cleanup(func() { Close(database) })
	return database
}

func TestSaveLinks_Dedup(t *testing.T) {
	database := openTestDB(t)

	links := []model.Link{
		model.NewLink("hk", "a", "trojan://pw@a.com:443", "free"),
		model.NewLink("hk", "b", "tuic://u:p@b.com:443", "free"),
		model.NewLink("jp", "a", "trojan://pw@a.com:443", "free"),
	}
	n, err := SaveLinks(database, links)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	again := []model.Link{
		model.NewLink("hk", "renamed", " trojan://pw@a.com:443 ", "paid"),
		model.NewLink("hk", "c", "vless://id@c.com:443", "paid"),
	}
	n, err = SaveLinks(database, again)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = SaveLinks(database, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGroupLinks(t *testing.T) {
	database := openTestDB(t)

	_, err := SaveLinks(database, []model.Link{
		model.NewLink("hk", "first", "trojan://pw@a.com:443", "s"),
		model.NewLink("hk", "second", "trojan://pw@b.com:443", "s"),
		model.NewLink("jp", "", "trojan://pw@c.com:443#c", "s"),
	})
	require.NoError(t, err)

	all, err := GroupLinks(database, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, []proxy.Link{
		{Name: "first", URL: "trojan://pw@a.com:443"},
		{Name: "second", URL: "trojan://pw@b.com:443"},
	}, all["hk"])

	only, err := GroupLinks(database, []string{"jp"})
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, []proxy.Link{{URL: "trojan://pw@c.com:443#c"}}, only["jp"])
}

func TestCountsAndDelete(t *testing.T) {
	database := openTestDB(t)

	_, err := SaveLinks(database, []model.Link{
		model.NewLink("hk", "", "trojan://pw@a.com", "s"),
		model.NewLink("hk", "", "tuic://u:p@b.com", "s"),
		model.NewLink("jp", "", "trojan://pw@c.com", "s"),
	})
	require.NoError(t, err)

	groups, err := CountByGroup(database)
	require.NoError(t, err)
	assert.Equal(t, []GroupCount{{Group: "hk", Count: 2}, {Group: "jp", Count: 1}}, groups)

	schemes, err := CountByScheme(database)
	require.NoError(t, err)
	assert.Equal(t, []SchemeCount{{Scheme: "trojan", Count: 2}, {Scheme: "tuic", Count: 1}}, schemes)

	n, err := DeleteGroup(database, "hk")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	groups, err = CountByGroup(database)
	require.NoError(t, err)
	assert.Equal(t, []GroupCount{{Group: "jp", Count: 1}}, groups)
}
