package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/apperrors"
	"github.com/google/uuid"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// Memory keeps uploads in process. Used in tests and when no object store
// is configured.
type Memory struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

func NewMemory(baseURL string) *Memory {
	return &Memory{BaseURL: baseURL, objects: make(map[string]memoryObject)}
}

func (m *Memory) Upload(ctx context.Context, owner uuid.UUID, name, contentType string, r io.Reader, size int64) (FileRef, error) {
	ct, err := CheckUpload(name, contentType, size)
	if err != nil {
		return FileRef{}, err
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return FileRef{}, apperrors.Transport("upload", err)
	}
	if int64(len(data)) > MaxUploadSize {
		return FileRef{}, apperrors.Validation("file", "exceeds %d MiB", MaxUploadSize>>20)
	}

	key := ObjectKey(owner, ct)
	m.mu.Lock()
	m.objects[key] = memoryObject{data: data, contentType: ct}
	m.mu.Unlock()

	return FileRef{
		Key:         key,
		URL:         fmt.Sprintf("%s/%s", m.BaseURL, key),
		Name:        name,
		ContentType: ct,
		Size:        int64(len(data)),
	}, nil
}

func (m *Memory) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, apperrors.NotFound("file", key)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}
