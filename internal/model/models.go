package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Link is a share link gathered by a collector and stored under a group.
type Link struct {
	ID     uint   `gorm:"primaryKey"`
	Hash   string `gorm:"uniqueIndex"`
	Group  string `gorm:"column:group_name;index"`
	Name   string
	URL    string
	Scheme string `gorm:"index"`
	Source string // subscription name

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewLink builds a Link with its scheme and hash filled in.
func NewLink(group, name, url, source string) Link {
	url = strings.TrimSpace(url)
	scheme, _, _ := strings.Cut(url, "://")
	return Link{
		Hash:   HashLink(group, url),
		Group:  group,
		Name:   name,
		URL:    url,
		Scheme: strings.ToLower(scheme),
		Source: source,
	}
}

// HashLink identifies a link within a group. The same link may live in
// several groups.
func HashLink(group, url string) string {
	sum := sha256.Sum256([]byte(group + "|" + strings.TrimSpace(url)))
	return hex.EncodeToString(sum[:])
}
