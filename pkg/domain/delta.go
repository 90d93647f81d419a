package domain

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Delta is a single tier of a retention scheme: within Window of now, one
// backup per Resolution-sized bucket is kept.
type Delta struct {
	Window     time.Duration
	Resolution time.Duration
}

var spanUnits = map[byte]time.Duration{
	's': time.Second,
	'h': time.Hour,
	'd': 24 * time.Hour,
}

// parseSpan parses a time span of the form "<integer><unit>" with the units
// s, h and d. Fractions and negative values are rejected.
func parseSpan(text string) (time.Duration, error) {
	if len(text) < 2 {
		return 0, configErrorf("not a valid duration: %q", text)
	}

	unit, ok := spanUnits[text[len(text)-1]]
	if !ok {
		return 0, configErrorf("not a valid duration: %q", text)
	}

	n, err := strconv.Atoi(text[:len(text)-1])
	if err != nil || n < 0 {
		return 0, configErrorf("not a valid duration: %q", text)
	}

	return time.Duration(n) * unit, nil
}

// ParseDelta parses one tier token, either "window" or "window;resolution".
// A bare window doubles as its own resolution.
func ParseDelta(token string) (Delta, error) {
	parts := strings.Split(token, ";")
	if len(parts) > 2 {
		return Delta{}, configErrorf("not a valid delta: %q", token)
	}

	window, err := parseSpan(parts[0])
	if err != nil {
		return Delta{}, err
	}

	resolution := window
	if len(parts) == 2 {
		if resolution, err = parseSpan(parts[1]); err != nil {
			return Delta{}, err
		}
	}

	if resolution <= 0 {
		return Delta{}, configErrorf("not a valid delta: %q: resolution must be positive", token)
	}

	return Delta{Window: window, Resolution: resolution}, nil
}

// ParseDeltas parses a whitespace separated tier list and sorts it by window,
// shortest first. At least two tiers are required: a single tier cannot
// express both recent density and eventual expiry. Jobs that should keep
// every backup carry no tier list at all and never reach this function.
func ParseDeltas(spec string) ([]Delta, error) {
	tokens := strings.Fields(spec)

	deltas := make([]Delta, 0, len(tokens))
	for _, token := range tokens {
		delta, err := ParseDelta(token)
		if err != nil {
			return nil, err
		}
		deltas = append(deltas, delta)
	}

	if len(deltas) < 2 {
		return nil, configErrorf("at least two deltas are required")
	}

	sort.SliceStable(deltas, func(i, j int) bool {
		return deltas[i].Window < deltas[j].Window
	})

	return deltas, nil
}

// ParseNamedDeltas parses the delta-names mapping from scheme name to tier
// list. A name mapped to nothing is rejected right away rather than when a
// job first refers to it.
func ParseNamedDeltas(values map[string]*string) (map[string][]Delta, error) {
	named := make(map[string][]Delta, len(values))

	for name, spec := range values {
		if spec == nil {
			return nil, configErrorf("delta name %q: no deltas given", name)
		}

		deltas, err := ParseDeltas(*spec)
		if err != nil {
			return nil, errors.Wrapf(err, "delta name %q", name)
		}

		named[name] = deltas
	}

	return named, nil
}
