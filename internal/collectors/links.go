package collectors

import (
	"bufio"
	"regexp"
	"slices"
	"strings"

	"github.com/samber/lo"

	"subprovider/internal/proxy"
)

// schemeAliases maps short scheme spellings seen in the wild to the scheme
// the decoder registers.
var schemeAliases = map[string]string{
	"hy2": "hysteria2",
}

var regexLink = linkPattern()

// linkPattern matches only links Decode can handle, so undecodable schemes
// never reach the store.
func linkPattern() *regexp.Regexp {
	schemes := append(proxy.Schemes(), lo.Keys(schemeAliases)...)
	// longest first so alternation never stops at a prefix
	slices.SortFunc(schemes, func(a, b string) int { return len(b) - len(a) })
	return regexp.MustCompile(`(` + strings.Join(lo.Map(schemes, func(s string, _ int) string {
		return regexp.QuoteMeta(s)
	}), "|") + `)://[a-zA-Z0-9_\-\.\:@\?=&%#+/~\[\],]+`)
}

func canonicalScheme(link string) string {
	for alias, scheme := range schemeAliases {
		if rest, ok := strings.CutPrefix(link, alias+"://"); ok {
			return scheme + "://" + rest
		}
	}
	return link
}

// ExtractLinks finds share links in free text, one or more per line, and
// drops duplicates keeping first-seen order.
func ExtractLinks(text string) []string {
	var links []string
	text = strings.ReplaceAll(text, "\r\n", "\n")
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		for _, match := range regexLink.FindAllString(line, -1) {
			clean := strings.TrimRight(match, ".,;)\"")
			if clean != "" {
				links = append(links, canonicalScheme(clean))
			}
		}
	}
	return deduplicate(links)
}

// ParseSubscription extracts links from a subscription body. Bodies that
// carry no link in clear text are tried as one base64 blob.
func ParseSubscription(body string) []string {
	if links := ExtractLinks(body); len(links) > 0 {
		return links
	}
	decoded, err := proxy.DecodeBase64(strings.Join(strings.Fields(body), ""))
	if err != nil {
		return nil
	}
	return ExtractLinks(decoded)
}

func deduplicate(input []string) []string {
	seen := make(map[string]bool)
	list := []string{}
	for _, entry := range input {
		if !seen[entry] {
			seen[entry] = true
			list = append(list, entry)
		}
	}
	return list
}
