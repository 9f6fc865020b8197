package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"
)

// MemoryObject is a blob held by MemoryStore.
type MemoryObject struct {
	ContentType string
	Data        []byte
}

// MemoryStore keeps blobs in process. Presigned URLs point at BaseURL and
// carry the expiry as a query parameter; nothing serves them.
type MemoryStore struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string]MemoryObject
}

func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = "http://blobs.local"
	}
	return &MemoryStore{BaseURL: baseURL, objects: make(map[string]MemoryObject)}
}

func (m *MemoryStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return fmt.Errorf("read object: %w", err)
	}
	m.mu.Lock()
	m.objects[key] = MemoryObject{ContentType: contentType, Data: buf.Bytes()}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok, nil
}

// Get returns a stored object.
func (m *MemoryStore) Get(key string) (MemoryObject, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj, ok
}

func (m *MemoryStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if ok, _ := m.Exists(ctx, key); !ok {
		return "", ErrNotFound
	}
	return m.presign(key, "GET", expiry), nil
}

func (m *MemoryStore) PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return m.presign(key, "PUT", expiry), nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) presign(key, method string, expiry time.Duration) string {
	q := url.Values{}
	q.Set("method", method)
	q.Set("expires", fmt.Sprintf("%d", int(expiry.Seconds())))
	return m.BaseURL + "/" + key + "?" + q.Encode()
}
