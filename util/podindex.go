package util

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
)

var ErrNoOrdinal = errors.New("hostname does not carry an ordinal")

// PodIndex returns the statefulset ordinal of this pod, taken from the first
// capture group of pattern applied to the hostname.
func PodIndex(pattern string) (int64, error) {
	host, err := os.Hostname()
	if err != nil {
		return 0, err
	}
	return HostnameOrdinal(host, pattern)
}

func HostnameOrdinal(host string, pattern string) (int64, error) {
	r, err := regexp.Compile(pattern)
	if err != nil {
		return 0, err
	}
	if r.NumSubexp() < 1 {
		return 0, fmt.Errorf("pattern %q has no capture group: %w", pattern, ErrNoOrdinal)
	}
	matches := r.FindStringSubmatch(host)
	if matches == nil {
		return 0, fmt.Errorf("%q does not match %q: %w", host, pattern, ErrNoOrdinal)
	}
	i, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", matches[1], ErrNoOrdinal)
	}
	return i, nil
}
