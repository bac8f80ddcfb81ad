package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	PrefixLead   = "L"
	PrefixClient = "C"
	PrefixTask   = "T"
	PrefixUser   = "U"
)

func idWidth(prefix string) int {
	if prefix == PrefixUser {
		return 3
	}
	return 4
}

// FormatID renders a sequence number as L0001, C0001, T0001 or U001.
func FormatID(prefix string, n int64) string {
	return fmt.Sprintf("%s%0*d", prefix, idWidth(prefix), n)
}

// ParseID extracts the sequence number from an id carrying prefix.
func ParseID(prefix, id string) (int64, bool) {
	if !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	n, err := strconv.ParseInt(id[len(prefix):], 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
