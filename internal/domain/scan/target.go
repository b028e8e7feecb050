package scan

import (
	"strings"

	sharedErrors "github.com/khanhnv2901/insec/internal/shared/errors"
)

// Target is the canonical subject of one scan. Host is derived once by the
// normalizer and never changes; probes receive the Target by value.
type Target struct {
	rawInput string
	host     string
}

// NewTarget creates a target from the caller's input and its canonical host.
func NewTarget(rawInput, host string) (Target, error) {
	if host == "" {
		return Target{}, sharedErrors.ErrEmptyTarget
	}
	return Target{rawInput: rawInput, host: host}, nil
}

// RawInput returns the string the caller submitted.
func (t Target) RawInput() string {
	return t.rawInput
}

// Host returns the lower-cased canonical hostname.
func (t Target) Host() string {
	return t.host
}

// URL returns the https origin probed by the fetch-based probes. IPv6
// literals are bracketed.
func (t Target) URL() string {
	if strings.Contains(t.host, ":") {
		return "https://[" + t.host + "]"
	}
	return "https://" + t.host
}
