// Package util contains helper functions used around the code.
package util

import "strings"

// SameAddress returns true if a and b are the same hex address, ignoring case and the 0x prefix.
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimPrefix(strings.TrimPrefix(a, "0x"), "0X"),
		strings.TrimPrefix(strings.TrimPrefix(b, "0x"), "0X"))
}

// InAddress returns true if the address a is found in as, ignoring case and the 0x prefix.
func InAddress(as []string, a string) bool {
	for _, v := range as {
		if SameAddress(v, a) {
			return true
		}
	}

	return false
}
