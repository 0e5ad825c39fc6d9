package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"subprovider/internal/config"
	"subprovider/internal/db"
	"subprovider/internal/geoip"
	"subprovider/internal/logger"
	"subprovider/internal/metrics"
	"subprovider/internal/provider"
	"subprovider/internal/proxy"
)

// CountryLookup maps a server host to an ISO country code.
type CountryLookup interface {
	Country(ctx context.Context, host string) (string, error)
}

// Document is one rendered provider output.
type Document struct {
	Provider    string
	ContentType string
	Body        []byte
}

// Builder turns configured and collected links into provider documents.
// A Builder is cheap; build one per request from the freshly loaded config.
type Builder struct {
	cfg   *config.Config
	db    *gorm.DB
	geo   CountryLookup
	stats *metrics.DecodeStats
}

type Option func(*Builder)

// WithDB adds links stored by the collect command to the configured groups.
func WithDB(database *gorm.DB) Option {
	return func(b *Builder) { b.db = database }
}

// WithCountries enables flag prefixes on names when the config asks for them.
func WithCountries(geo CountryLookup) Option {
	return func(b *Builder) { b.geo = geo }
}

func WithStats(stats *metrics.DecodeStats) Option {
	return func(b *Builder) { b.stats = stats }
}

func NewBuilder(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{cfg: cfg}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Links merges static config groups with stored links. Static entries come
// first within a group. An empty filter selects every group.
func (b *Builder) Links(filter []string) (map[string][]proxy.Link, error) {
	links := b.cfg.Links()
	if len(filter) > 0 {
		links = lo.PickByKeys(links, filter)
	}

	if b.db != nil {
		stored, err := db.GroupLinks(b.db, filter)
		if err != nil {
			return nil, err
		}
		for group, l := range stored {
			links[group] = append(links[group], l...)
		}
	}
	return links, nil
}

// Groups decodes every group. Links that fail to decode are dropped and
// logged; a group whose links all fail is kept empty.
func (b *Builder) Groups(ctx context.Context, filter []string) (map[string][]proxy.Proxy, error) {
	links, err := b.Links(filter)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]proxy.Proxy, len(links))
	for name, list := range links {
		groups[name] = b.decodeGroup(name, list)
	}

	if b.geo != nil && b.cfg.GeoIP.FlagNames {
		b.applyFlags(ctx, groups)
	}
	return groups, nil
}

func (b *Builder) decodeGroup(group string, links []proxy.Link) []proxy.Proxy {
	out := make([]proxy.Proxy, 0, len(links))
	for _, l := range links {
		if p, ok := pseudo(l.URL); ok {
			out = append(out, p)
			continue
		}

		p, err := proxy.Decode(l.Name, l.URL)
		if err != nil {
			logger.Log.Debugf("Dropped link in group %s: %s | Err: %v", group, truncate(l.URL, 40), err)
			if b.stats != nil {
				b.stats.RecordFailure(group, err)
			}
			continue
		}
		if b.stats != nil {
			b.stats.RecordSuccess(group)
		}
		out = append(out, p)
	}
	return out
}

// pseudo recognizes the bare DIRECT and REJECT targets as group entries.
func pseudo(link string) (proxy.Proxy, bool) {
	switch strings.ToUpper(strings.TrimSpace(link)) {
	case proxy.NameDirect:
		return proxy.Direct{}, true
	case proxy.NameReject:
		return proxy.Reject{}, true
	default:
		return nil, false
	}
}

type addressed interface {
	Address() (string, int)
}

// applyFlags prefixes each name with the flag of its server's country.
// Lookups are cached per host; failures leave the name as is.
func (b *Builder) applyFlags(ctx context.Context, groups map[string][]proxy.Proxy) {
	countries := make(map[string]string)
	for _, members := range groups {
		for i, p := range members {
			a, ok := p.(addressed)
			if !ok {
				continue
			}
			host, _ := a.Address()

			cc, seen := countries[host]
			if !seen {
				var err error
				cc, err = b.geo.Country(ctx, host)
				if err != nil {
					logger.Log.Debugf("GeoIP lookup failed for %s: %v", host, err)
				}
				countries[host] = cc
			}
			if cc == "" {
				continue
			}
			members[i] = p.WithName(fmt.Sprintf("%s %s", geoip.Flag(cc), p.Name()))
		}
	}
}

// Build renders the named provider over the selected groups.
func (b *Builder) Build(ctx context.Context, providerName string, filter []string) (*Document, error) {
	prov, err := provider.Get(providerName)
	if err != nil {
		return nil, err
	}

	groups, err := b.Groups(ctx, filter)
	if err != nil {
		return nil, err
	}

	body, err := prov.Render(groups)
	if err != nil {
		return nil, err
	}
	return &Document{Provider: providerName, ContentType: prov.ContentType(), Body: body}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
