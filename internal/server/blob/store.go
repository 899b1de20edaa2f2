// Package blob abstracts attachment storage for entries. Attachments are
// opaque byte payloads addressed by key; a stored attachment is referenced
// from its entry by the URL returned from URL.
package blob

import "context"

// Store is the attachment storage contract.
//
// Delete accepts either a raw key or a URL previously returned by URL for
// the same store, so callers can delete straight from an entry's stored
// file URL.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	URL(key string) string
	Delete(ctx context.Context, keyOrURL string) error
}
