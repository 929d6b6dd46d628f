package app

import (
	"fmt"
	"strconv"
	"strings"
)

var cancelWords = map[string]bool{"": true, "q": true, "quit": true, "exit": true, "cancel": true}

// ParseSelection parses a file selection against a list of n items numbered
// from 1. It accepts comma-separated numbers and inclusive ranges ("1,3,5-7")
// or "all". An empty answer or a cancel word ("q", "quit", "exit", "cancel")
// returns cancelled. The result holds zero-based indices in the order given,
// without duplicates.
func ParseSelection(input string, n int) (indices []int, cancelled bool, err error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if cancelWords[input] {
		return nil, true, nil
	}
	if input == "all" {
		indices = make([]int, n)
		for i := range indices {
			indices[i] = i
		}
		return indices, false, nil
	}

	seen := make(map[int]bool)
	add := func(num int) error {
		if num < 1 || num > n {
			return fmt.Errorf("invalid file number: %d", num)
		}
		if !seen[num] {
			seen[num] = true
			indices = append(indices, num-1)
		}
		return nil
	}

	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err1 := strconv.Atoi(strings.TrimSpace(lo))
			end, err2 := strconv.Atoi(strings.TrimSpace(hi))
			if err1 != nil || err2 != nil {
				return nil, false, fmt.Errorf("invalid range %q", part)
			}
			if start > end {
				return nil, false, fmt.Errorf("invalid range %q: start after end", part)
			}
			for num := start; num <= end; num++ {
				if err := add(num); err != nil {
					return nil, false, err
				}
			}
			continue
		}
		num, err := strconv.Atoi(part)
		if err != nil {
			return nil, false, fmt.Errorf("invalid selection %q: use numbers separated by commas, 'all', or 'q' to quit", part)
		}
		if err := add(num); err != nil {
			return nil, false, err
		}
	}
	return indices, false, nil
}
