// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides shared helpers for the lanerun tool.
package util

import "strconv"

// FormatCount formats an integer with comma separators for display
// (12345 -> "12,345"). Negative values keep their sign.
func FormatCount(n int64) string {
	s := strconv.FormatInt(n, 10)

	sign := ""
	if s[0] == '-' {
		sign = "-"
		s = s[1:]
	}

	if len(s) <= 3 {
		return sign + s
	}

	// Walk from the right, inserting a comma every three digits.
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return sign + string(out)
}

// FloatToStringPrec converts a float64 to string with the given decimal
// precision.
func FloatToStringPrec(f float64, prec int) string {
	return strconv.FormatFloat(f, 'f', prec, 64)
}
