package artifact

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// NewLoader picks a loader from the location's scheme: http and https
// fetch remotely, file:// and bare paths read from disk.
func NewLoader(location string, opts ...Option) (Loader, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("%w: empty location", ErrUnsupportedScheme)
	}

	// Windows drive letters parse as a scheme.
	if filepath.VolumeName(location) != "" {
		return NewFileLoader(location, opts...), nil
	}

	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("parse artifact location: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return NewFetcher(location, opts...), nil
	case "file":
		path := u.Path
		if u.Host != "" && u.Host != "localhost" {
			path = "//" + u.Host + u.Path
		}
		return NewFileLoader(filepath.FromSlash(path), opts...), nil
	case "":
		return NewFileLoader(location, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}
