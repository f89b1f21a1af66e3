// Package assetstest provides an in-memory asset store for tests.
package assetstest

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aarav-aiphi/Backend/pkg/assets"
)

// Memory is a goroutine-safe assets.Store backed by a map.
type Memory struct {
	mu      sync.Mutex
	objects map[string]entry
	Now     func() time.Time

	FailUpload  error
	FailCopy    error
	FailDestroy error
}

type entry struct {
	body        []byte
	contentType string
	modified    time.Time
}

func NewMemory() *Memory {
	return &Memory{objects: map[string]entry{}, Now: time.Now}
}

func (m *Memory) Upload(_ context.Context, key, contentType string, body io.Reader) (assets.Asset, error) {
	if m.FailUpload != nil {
		return assets.Asset{}, m.FailUpload
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return assets.Asset{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = entry{body: data, contentType: contentType, modified: m.Now()}
	return assets.Asset{PublicID: key, URL: URL(key)}, nil
}

func (m *Memory) Copy(_ context.Context, srcKey, dstKey string) (assets.Asset, error) {
	if m.FailCopy != nil {
		return assets.Asset{}, m.FailCopy
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	src, ok := m.objects[srcKey]
	if !ok {
		return assets.Asset{}, errors.New("source object not found: " + srcKey)
	}
	src.modified = m.Now()
	m.objects[dstKey] = src
	return assets.Asset{PublicID: dstKey, URL: URL(dstKey)}, nil
}

func (m *Memory) Destroy(_ context.Context, publicID string) error {
	if m.FailDestroy != nil {
		return m.FailDestroy
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, publicID)
	return nil
}

func (m *Memory) List(_ context.Context, prefix string) ([]assets.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []assets.Object
	for key, e := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, assets.Object{Key: key, Size: int64(len(e.body)), LastModified: e.modified})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Put seeds an object with an explicit modification time.
func (m *Memory) Put(key string, modified time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = entry{body: []byte(key), modified: modified}
}

// Has reports whether key exists.
func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// Keys returns every stored key in order.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// URL is the public URL the memory store reports for key.
func URL(key string) string {
	return "https://assets.test/" + key
}
