package recognitions

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"time"

	"github.com/tidwall/gjson"
)

const (
	DefaultManifestFilename = "main.manifest.json"
	LastModifiedLayout      = "2006-01-02 15:04:05"
)

var ErrManifestEntryNotFound = errors.New("manifest entry not found")

// ManifestURL replaces the final path segment of dataURL with filename.
func ManifestURL(dataURL, filename string) (string, error) {
	u, err := url.Parse(dataURL)
	if err != nil {
		return "", fmt.Errorf("parsing url %q: %w", dataURL, err)
	}
	u.Path = path.Join(path.Dir(u.Path), filename)
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// SitePath is the path component of rawURL with scheme and host stripped.
func SitePath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing url %q: %w", rawURL, err)
	}
	return u.Path, nil
}

// FetchLastModified resolves the manifest timestamp of dataURL as a UTC
// string. A missing entry is ErrManifestEntryNotFound.
func (f *Fetcher) FetchLastModified(ctx context.Context, dataURL string) (string, error) {
	manifestURL, err := ManifestURL(dataURL, f.manifestFilename)
	if err != nil {
		return "", err
	}
	target, err := SitePath(dataURL)
	if err != nil {
		return "", err
	}
	body, err := f.get(ctx, manifestURL)
	if err != nil {
		return "", fmt.Errorf("manifest: %w", err)
	}
	ms, err := LookupTimestamp(body, target)
	if err != nil {
		return "", err
	}
	return time.UnixMilli(ms).UTC().Format(LastModifiedLayout), nil
}

// LookupTimestamp returns the first non-zero millisecond timestamp of the
// manifest entry whose path equals sitePath.
func LookupTimestamp(manifest []byte, sitePath string) (int64, error) {
	if !gjson.ValidBytes(manifest) {
		return 0, fmt.Errorf("manifest: malformed json")
	}
	var ts int64
	gjson.GetBytes(manifest, "entries").ForEach(func(_, entry gjson.Result) bool {
		if entry.Get("path").String() != sitePath {
			return true
		}
		ts = entry.Get("timestamp").Int()
		return ts == 0
	})
	if ts == 0 {
		return 0, fmt.Errorf("%w: %s", ErrManifestEntryNotFound, sitePath)
	}
	return ts, nil
}
