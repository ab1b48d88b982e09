package domain

import (
	"fmt"
	"strings"
)

// ShelfLabel converts a 1-based shelf number to its bijective base-26 label.
// 1 maps to "A", 26 to "Z", 27 to "AA", 703 to "AAA". Numbers below 1 map
// to "A" to keep legacy rows renderable.
func ShelfLabel(n int) string {
	if n < 1 {
		return "A"
	}

	var label []byte
	for n > 0 {
		mod := (n - 1) % 26
		label = append([]byte{byte('A' + mod)}, label...)
		n = (n - mod) / 26
	}
	return string(label)
}

// ShelfNumber converts a shelf label back to its 1-based shelf number.
// It is the exact inverse of ShelfLabel for all labels of A-Z characters.
func ShelfNumber(label string) (int, error) {
	if label == "" {
		return 0, &InvalidPlacementError{Input: label, Reason: "empty shelf label"}
	}

	n := 0
	for _, r := range label {
		if r < 'A' || r > 'Z' {
			return 0, &InvalidPlacementError{Input: label, Reason: "shelf label must be uppercase letters"}
		}
		n = n*26 + int(r-'A'+1)
	}
	return n, nil
}

// FormatPlacement renders a shelf/section pair as "<label>-<section>", with
// the section zero-padded to two digits: (1, 1) -> "A-01", (27, 12) -> "AA-12".
func FormatPlacement(shelf, section int) string {
	return fmt.Sprintf("%s-%02d", ShelfLabel(shelf), section)
}

// ParsePlacement is the inverse of FormatPlacement.
func ParsePlacement(s string) (shelf, section int, err error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return 0, 0, &InvalidPlacementError{Input: s, Reason: "expected <shelf>-<section>"}
	}

	shelf, err = ShelfNumber(parts[0])
	if err != nil {
		return 0, 0, err
	}

	for _, r := range parts[1] {
		if r < '0' || r > '9' {
			return 0, 0, &InvalidPlacementError{Input: s, Reason: "section must be numeric"}
		}
		section = section*10 + int(r-'0')
	}
	if section < 1 {
		return 0, 0, &InvalidPlacementError{Input: s, Reason: "section must be positive"}
	}

	return shelf, section, nil
}
