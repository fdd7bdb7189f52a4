package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const DefaultOrgMarker = "org-"

var ErrNoOrgSegment = errors.New("no organization segment in url")

// OrgSegment rebuilds the URL segment an organization name came from.
func OrgSegment(name, marker string) string {
	if marker == "" {
		marker = DefaultOrgMarker
	}
	return marker + name
}

// OrgName returns the last path segment of rawURL that starts with marker,
// with the marker removed. ".../org-gitesh/all/recognitions.json" yields
// "gitesh".
func OrgName(rawURL, marker string) (string, error) {
	if marker == "" {
		marker = DefaultOrgMarker
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing url %q: %w", rawURL, err)
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := segments[i]
		if strings.HasPrefix(seg, marker) && len(seg) > len(marker) {
			return strings.TrimPrefix(seg, marker), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoOrgSegment, rawURL)
}
