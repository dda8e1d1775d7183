package storage

import (
	"net/url"
	"path/filepath"

	"github.com/pkg/errors"
)

type Config struct {
	Scheme string
	Path   string
}

// NewConfigFromString parses a storage uri, either "memory://" or
// "file:///path/to/db".
func NewConfigFromString(s string) (*Config, error) {
	parsed, err := url.Parse(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid storage uri: '%s'", s)
	}

	config := &Config{Scheme: parsed.Scheme}
	switch parsed.Scheme {
	case "memory":
	case "file":
		path := parsed.Path
		if len(parsed.Host) > 0 {
			path = filepath.Join(parsed.Host, parsed.Path)
		}
		if len(path) < 1 {
			return nil, errors.Errorf("storage uri '%s' has no path", s)
		}
		config.Path = path
	default:
		return nil, errors.Errorf("unsupported storage scheme: '%s'", parsed.Scheme)
	}

	return config, nil
}
