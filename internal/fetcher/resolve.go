package fetcher

import (
	"context"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Resolver turns a source location into a readable local file. Locations may
// be plain paths, http(s) URLs, or ftp URLs.
type Resolver struct {
	HTTP Fetcher
	FTP  Fetcher
}

// NewResolver creates a Resolver with the given transport fetchers.
func NewResolver(http, ftp Fetcher) *Resolver {
	return &Resolver{HTTP: http, FTP: ftp}
}

// IsRemote reports whether location names a remote URL rather than a path.
func IsRemote(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "ftp":
		return true
	}
	return false
}

// RemoteName returns the file name component of a remote URL.
func RemoteName(location string) string {
	u, err := url.Parse(location)
	if err != nil {
		return ""
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// Resolve returns a local path for location. Local paths are checked and
// returned unchanged; remote URLs are downloaded to dest.
func (r *Resolver) Resolve(ctx context.Context, location, dest string) (string, error) {
	if !IsRemote(location) {
		if _, err := os.Stat(location); err != nil {
			return "", eris.Wrapf(err, "fetcher: stat %s", location)
		}
		return location, nil
	}

	u, err := url.Parse(location)
	if err != nil {
		return "", eris.Wrap(err, "fetcher: parse location")
	}

	var f Fetcher
	switch strings.ToLower(u.Scheme) {
	case "ftp":
		f = r.FTP
	default:
		f = r.HTTP
	}
	if f == nil {
		return "", eris.Errorf("fetcher: no transport configured for %s", u.Scheme)
	}

	n, err := f.DownloadToFile(ctx, location, dest)
	if err != nil {
		return "", eris.Wrapf(err, "fetcher: download %s", u.Redacted())
	}
	zap.L().Info("fetched remote source",
		zap.String("url", u.Redacted()),
		zap.String("path", dest),
		zap.Int64("bytes", n),
	)
	return dest, nil
}
