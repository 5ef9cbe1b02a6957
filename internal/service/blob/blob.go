package blob

import (
	"context"
	"errors"
)

type Access string

// AccessPublic is the only access level screenshots are stored with; the URL
// is embedded in a tracker issue and must be readable without credentials.
const AccessPublic Access = "public"

var ErrUnsupportedAccess = errors.New("only public access is supported")

type PutOptions struct {
	Access      Access
	ContentType string
}

// Object is a stored blob.
type Object struct {
	URL         string
	Pathname    string
	ContentType string
}

// Store persists named binary objects and returns where they can be fetched.
type Store interface {
	Put(ctx context.Context, name string, data []byte, opts PutOptions) (*Object, error)
	Name() string
}
