package protocols

import "context"

// BlobMirror receives a copy of every item write. It is never read back by the API.
type BlobMirror interface {
	PutBlob(ctx context.Context, itemId string, payload []byte) error
	DeleteBlob(ctx context.Context, itemId string) error
}
