package blob

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalRoute is where the HTTP server exposes a local store's directory.
const LocalRoute = "/blobs"

type localStore struct {
	dir           string
	publicBaseURL string
}

// NewLocalStore writes blobs under dir and hands out URLs below
// publicBaseURL + LocalRoute. Meant for development without blob credentials.
func NewLocalStore(dir, publicBaseURL string) (Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("local blob directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}
	return &localStore{
		dir:           dir,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}, nil
}

func (s *localStore) Put(ctx context.Context, name string, data []byte, opts PutOptions) (*Object, error) {
	if opts.Access != AccessPublic {
		return nil, ErrUnsupportedAccess
	}

	clean := path.Clean("/" + name)[1:]
	if clean == "" || clean == "." {
		return nil, fmt.Errorf("invalid blob name %q", name)
	}

	target := filepath.Join(s.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing blob: %w", err)
	}

	return &Object{
		URL:         s.publicBaseURL + LocalRoute + "/" + clean,
		Pathname:    clean,
		ContentType: opts.ContentType,
	}, nil
}

func (s *localStore) Name() string {
	return "local"
}
