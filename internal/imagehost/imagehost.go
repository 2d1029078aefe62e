// Package imagehost stores product and CMS images with an external host
// or on local disk.
package imagehost

import (
	"context"
	"io"
	"path"
	"strings"
)

type Uploaded struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

type Host interface {
	Upload(ctx context.Context, r io.Reader, filename string) (Uploaded, error)
	Delete(ctx context.Context, publicID string) error
	// Owns reports whether url was produced by this host and returns its id.
	Owns(url string) (publicID string, ok bool)
}

func stripExt(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}
