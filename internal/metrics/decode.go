package metrics

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"text/tabwriter"

	"subprovider/internal/proxy"
)

// DecodeStats counts decoded and dropped links per group and classifies the
// drop reasons. It is safe for concurrent use.
type DecodeStats struct {
	mu sync.Mutex

	decoded map[string]int
	dropped map[string]int

	errorCounts  map[string]int
	totalDecoded int
	totalDropped int
}

func NewDecodeStats() *DecodeStats {
	return &DecodeStats{
		decoded:     make(map[string]int),
		dropped:     make(map[string]int),
		errorCounts: make(map[string]int),
	}
}

func (s *DecodeStats) RecordSuccess(group string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.decoded[group]++
	s.totalDecoded++
}

func (s *DecodeStats) RecordFailure(group string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dropped[group]++
	s.totalDropped++
	s.errorCounts[Classify(err)]++
}

// Classify names the kind of a decode error for reporting.
func Classify(err error) string {
	var (
		unsupported *proxy.UnsupportedProtocolError
		missing     *proxy.MissingFieldError
		enum        *proxy.EnumValueError
		invalid     *proxy.InvalidFieldError
	)
	switch {
	case errors.As(err, &unsupported):
		return "Unsupported (" + unsupported.Scheme + ")"
	case errors.As(err, &missing):
		return "Missing " + missing.Field
	case errors.As(err, &enum):
		return "Bad " + enum.Field
	case errors.As(err, &invalid):
		return "Invalid " + invalid.Field
	case errors.Is(err, proxy.ErrMalformedURI):
		return "Malformed URI"
	case errors.Is(err, proxy.ErrVMessPayload):
		return "VMess payload"
	case errors.Is(err, proxy.ErrMissingTransportOptions), errors.Is(err, proxy.ErrUnknownTransportType):
		return "Transport"
	default:
		return "Unknown"
	}
}

type Snapshot struct {
	Decoded int            `json:"decoded"`
	Dropped int            `json:"dropped"`
	Errors  map[string]int `json:"errors,omitempty"`
}

func (s *DecodeStats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	errs := make(map[string]int, len(s.errorCounts))
	for k, v := range s.errorCounts {
		errs[k] = v
	}
	return Snapshot{Decoded: s.totalDecoded, Dropped: s.totalDropped, Errors: errs}
}

func (s *DecodeStats) WriteReport(out io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "\033[1;36m[ DECODE ]\033[0m\t")
	groups := make([]string, 0, len(s.decoded)+len(s.dropped))
	seen := make(map[string]bool)
	for _, m := range []map[string]int{s.decoded, s.dropped} {
		for g := range m {
			if !seen[g] {
				seen[g] = true
				groups = append(groups, g)
			}
		}
	}
	sort.Strings(groups)
	for _, g := range groups {
		fmt.Fprintf(w, "  %s:\t%d ok\t%d dropped\n", g, s.decoded[g], s.dropped[g])
	}
	fmt.Fprintf(w, "  Total:\t%d ok\t%d dropped\n", s.totalDecoded, s.totalDropped)

	if s.totalDropped > 0 {
		fmt.Fprintln(w, "\t")
		fmt.Fprintln(w, "\033[1;36m[ DROP REASONS ]\033[0m\t")
		kinds := make([]string, 0, len(s.errorCounts))
		for k := range s.errorCounts {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			pct := float64(s.errorCounts[k]) / float64(s.totalDropped) * 100
			fmt.Fprintf(w, "  %s:\t%d (%.1f%%)\n", k, s.errorCounts[k], pct)
		}
	}

	w.Flush()
}
