package storage

import (
	"bytes"
	"context"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryProvider keeps files in memory. The CLI uses it for dry runs.
type MemoryProvider struct {
	mu    sync.RWMutex
	files map[string]memoryFile
}

type memoryFile struct {
	data      []byte
	updatedAt time.Time
}

// NewMemoryProvider creates an empty in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{files: make(map[string]memoryFile)}
}

func (p *MemoryProvider) Save(ctx context.Context, input SaveInput) (SaveOutput, error) {
	if err := ctx.Err(); err != nil {
		return SaveOutput{}, err
	}
	name, err := cleanName(input.Filename)
	if err != nil {
		return SaveOutput{}, err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, input.File); err != nil {
		return SaveOutput{}, storageError(err, "failed to read file content")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !input.Overwrite {
		name, _ = uniqueName(name, func(candidate string) (bool, error) {
			_, ok := p.files[path.Join(input.Folder, candidate)]
			return ok, nil
		})
	}
	key := path.Join(input.Folder, name)
	p.files[key] = memoryFile{data: buf.Bytes(), updatedAt: time.Now()}

	return SaveOutput{
		Path:     key,
		Filename: name,
		Size:     int64(buf.Len()),
		Metadata: input.Metadata,
	}, nil
}

func (p *MemoryProvider) Exists(ctx context.Context, name string) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.files[path.Clean(name)]
	return ok, nil
}

func (p *MemoryProvider) Delete(ctx context.Context, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.files, path.Clean(name))
	return nil
}

func (p *MemoryProvider) List(ctx context.Context, input ListInput) ([]FileInfo, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	folder := path.Clean(input.Folder)
	var files []FileInfo
	for key, f := range p.files {
		if path.Dir(key) != folder || !strings.HasPrefix(path.Base(key), input.Prefix) {
			continue
		}
		files = append(files, FileInfo{
			Name:      path.Base(key),
			Size:      int64(len(f.data)),
			UpdatedAt: f.updatedAt.Unix(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	if input.Limit > 0 && len(files) > input.Limit {
		files = files[:input.Limit]
	}
	return files, nil
}

// Bytes returns a stored file's content.
func (p *MemoryProvider) Bytes(name string) ([]byte, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	f, ok := p.files[path.Clean(name)]
	return f.data, ok
}

func (p *MemoryProvider) Name() string {
	return "memory"
}

var _ Provider = (*MemoryProvider)(nil)
