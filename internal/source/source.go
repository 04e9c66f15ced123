// Package source classifies social post URLs by originating network.
package source

import "strings"

// Kind identifies the network a post URL belongs to.
type Kind string

const (
	LinkedIn Kind = "linkedin"
	X        Kind = "x"
	Unknown  Kind = "unknown"
)

// Detect classifies a post URL by substring match on the lowercased URL.
// It never fails; anything unrecognized is Unknown.
func Detect(url string) Kind {
	u := strings.ToLower(url)
	if strings.Contains(u, "linkedin.com") {
		return LinkedIn
	}
	if strings.Contains(u, "x.com") || strings.Contains(u, "twitter.com") {
		return X
	}
	return Unknown
}
