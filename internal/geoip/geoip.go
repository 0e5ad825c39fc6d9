package geoip

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

var ErrNoCountry = errors.New("no country for address")

// Reader resolves proxy servers to ISO country codes with a GeoLite2/GeoIP2
// Country database.
type Reader struct {
	db       *geoip2.Reader
	resolver *net.Resolver
}

func Open(path string) (*Reader, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open country DB at %s: %w", path, err)
	}
	return &Reader{db: db, resolver: net.DefaultResolver}, nil
}

func (r *Reader) Close() error {
	return r.db.Close()
}

// Country returns the ISO code for host. Hostnames are resolved first and
// the first address with a known country wins.
func (r *Reader) Country(ctx context.Context, host string) (string, error) {
	ips, err := r.resolve(ctx, host)
	if err != nil {
		return "", err
	}
	for _, ip := range ips {
		rec, err := r.db.Country(ip)
		if err != nil {
			continue
		}
		if rec.Country.IsoCode != "" {
			return rec.Country.IsoCode, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoCountry, host)
}

func (r *Reader) resolve(ctx context.Context, host string) ([]net.IP, error) {
	if ip := net.ParseIP(strings.Trim(host, "[]")); ip != nil {
		return []net.IP{ip}, nil
	}
	addrs, err := r.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", host, err)
	}
	ips := make([]net.IP, 0, len(addrs))
	for _, a := range addrs {
		ips = append(ips, a.IP)
	}
	return ips, nil
}

// Flag renders a two-letter country code as a regional indicator pair.
// Anything else becomes a globe.
func Flag(countryCode string) string {
	if len(countryCode) != 2 {
		return "🌐"
	}
	countryCode = strings.ToUpper(countryCode)
	if countryCode[0] < 'A' || countryCode[0] > 'Z' || countryCode[1] < 'A' || countryCode[1] > 'Z' {
		return "🌐"
	}
	return string(rune(countryCode[0])+127397) + string(rune(countryCode[1])+127397)
}
