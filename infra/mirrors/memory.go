package mirrors

import (
	"context"
	"sync"
)

// BlobMirrorMemory keeps mirrored payloads in process. Used when no bucket is configured and in tests.
type BlobMirrorMemory struct {
	mutex sync.RWMutex
	blobs map[string]string
}

func NewBlobMirrorMemory() *BlobMirrorMemory {
	return &BlobMirrorMemory{blobs: make(map[string]string)}
}

func (m *BlobMirrorMemory) PutBlob(ctx context.Context, itemId string, payload []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.blobs[itemId] = string(payload)
	return nil
}

func (m *BlobMirrorMemory) DeleteBlob(ctx context.Context, itemId string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.blobs, itemId)
	return nil
}

// Blob returns the mirrored text for itemId.
func (m *BlobMirrorMemory) Blob(itemId string) (string, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	blob, ok := m.blobs[itemId]
	return blob, ok
}

func (m *BlobMirrorMemory) Close() error {
	return nil
}

// BlobMirrorNoop discards everything.
type BlobMirrorNoop struct{}

func (BlobMirrorNoop) PutBlob(ctx context.Context, itemId string, payload []byte) error { return nil }
func (BlobMirrorNoop) DeleteBlob(ctx context.Context, itemId string) error            { return nil }
func (BlobMirrorNoop) Close() error                                                   { return nil }
