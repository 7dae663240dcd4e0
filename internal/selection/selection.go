// Package selection resolves which numbered candidates the user picked,
// either from an interactive expression like "1,3,5-7" or from view names
// given on the command line.
package selection

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/archimerge/core/internal/models"
)

// Parse resolves a selection expression against max numbered candidates.
// Accepted forms: comma-separated numbers, inclusive ranges like "5-7", and
// the keyword "all". Numbers are 1-based; zero, out-of-range bounds, and
// inverted ranges are rejected. The result is sorted and deduplicated.
func Parse(input string, max int) ([]int, error) {
	if strings.EqualFold(strings.TrimSpace(input), "all") {
		all := make([]int, max)
		for i := range all {
			all[i] = i + 1
		}
		return all, nil
	}

	selected := make(map[int]struct{})
	for part := range strings.SplitSeq(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if before, after, found := strings.Cut(part, "-"); found {
			start, err := parseIndex(before, max)
			if err != nil {
				return nil, err
			}
			end, err := parseIndex(after, max)
			if err != nil {
				return nil, err
			}
			if start > end {
				return nil, fmt.Errorf("invalid range: %d-%d", start, end)
			}
			for i := start; i <= end; i++ {
				selected[i] = struct{}{}
			}
			continue
		}

		num, err := parseIndex(part, max)
		if err != nil {
			return nil, err
		}
		selected[num] = struct{}{}
	}

	result := make([]int, 0, len(selected))
	for num := range selected {
		result = append(result, num)
	}
	sort.Ints(result)
	return result, nil
}

func parseIndex(s string, max int) (int, error) {
	num, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid view number: %q", strings.TrimSpace(s))
	}
	if num < 1 || num > max {
		return 0, fmt.Errorf("invalid view number: %d", num)
	}
	return num, nil
}

// ByNames maps view names to their 1-based positions in the candidate list.
// Names with no matching candidate are logged and skipped; the caller's
// ordering of names is preserved.
func ByNames(names []string, candidates []models.MissingView) []int {
	var indices []int
	for _, name := range names {
		found := false
		for i, candidate := range candidates {
			if candidate.Name == name {
				indices = append(indices, i+1)
				found = true
				break
			}
		}
		if !found {
			slog.Warn("view not found in source or already exists in target", "name", name)
		}
	}
	return indices
}
