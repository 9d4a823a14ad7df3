package testcase

import (
	"slices"
	"strconv"
	"strings"
)

// DefaultPrefix is the tag prefix that marks a test-case number.
const DefaultPrefix = "tc:"

// Extract returns the number of the first tag of the form
// "<prefix><digits>". Tags with the prefix but no valid number are skipped.
func Extract(tags []string, prefix string) (uint64, bool) {
	for _, tag := range tags {
		rest, ok := strings.CutPrefix(tag, prefix)
		if !ok {
			continue
		}
		n, err := strconv.ParseUint(rest, 10, 64)
		if err != nil {
			continue
		}
		return n, true
	}
	return 0, false
}

// Aggregate returns the distinct ids in ascending order.
func Aggregate(ids []uint64) []uint64 {
	out := slices.Clone(ids)
	if out == nil {
		out = []uint64{}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
