package proxy

import (
	"net/url"
	"strconv"
	"strings"
)

// query wraps the query string of a share link with typed lookups.
type query struct {
	values url.Values
}

func newQuery(u *url.URL) query {
	return query{values: u.Query()}
}

// Has reports whether key is present, even with an empty value.
func (q query) Has(key string) bool {
	_, ok := q.values[key]
	return ok
}

// Get returns the first value for key and whether it was present.
func (q query) Get(key string) (string, bool) {
	vs, ok := q.values[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// String returns the first value for key or "".
func (q query) String(key string) string {
	v, _ := q.Get(key)
	return v
}

// Optional returns a pointer to the value for key, nil when absent.
func (q query) Optional(key string) *string {
	v, ok := q.Get(key)
	if !ok {
		return nil
	}
	return &v
}

// List splits the value for key on commas, dropping empty items. Absent key
// or no items yields nil.
func (q query) List(key string) []string {
	v, ok := q.Get(key)
	if !ok {
		return nil
	}
	var items []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Bool parses the value for key. Absent key yields false.
func (q query) Bool(key string) (bool, error) {
	v, ok := q.Get(key)
	if !ok {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, &InvalidFieldError{Field: key, Value: v, Err: err}
	}
	return b, nil
}

// Int parses the value for key. Absent key yields nil.
func (q query) Int(key string) (*int, error) {
	v, ok := q.Get(key)
	if !ok {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, &InvalidFieldError{Field: key, Value: v, Err: err}
	}
	return &n, nil
}
