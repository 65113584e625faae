package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	apperrors "github.com/leeforge/imagekit/errors"
)

// Provider stores converted images.
type Provider interface {
	Save(ctx context.Context, input SaveInput) (SaveOutput, error)
	Exists(ctx context.Context, name string) (bool, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context, input ListInput) ([]FileInfo, error)
	Name() string
}

// SaveInput describes one file to store.
type SaveInput struct {
	File     io.Reader
	Filename string
	Folder   string
	// Overwrite replaces an existing file instead of picking a free name.
	Overwrite bool
	Metadata  map[string]interface{}
}

// SaveOutput is where a file ended up.
type SaveOutput struct {
	// Path is the location of the file, including the provider's base.
	Path     string
	Filename string
	Size     int64
	Metadata map[string]interface{}
}

// ListInput filters List results.
type ListInput struct {
	Folder string
	Prefix string
	Limit  int
}

// FileInfo describes a stored file.
type FileInfo struct {
	Name      string
	Size      int64
	IsDir     bool
	UpdatedAt int64
}

// ProviderConfig selects and configures a provider.
type ProviderConfig struct {
	Type     string                 `json:"type" yaml:"type" mapstructure:"type" default:"local" validate:"oneof=local memory"`
	BasePath string                 `json:"basePath" yaml:"basePath" mapstructure:"basePath" default:"output"`
	Settings map[string]interface{} `json:"settings" yaml:"settings" mapstructure:"settings"`
}

// ProviderFactory keeps named providers.
type ProviderFactory struct {
	providers map[string]Provider
}

// NewProviderFactory creates an empty factory.
func NewProviderFactory() *ProviderFactory {
	return &ProviderFactory{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider under name.
func (f *ProviderFactory) Register(name string, provider Provider) {
	f.providers[name] = provider
}

// Get returns a registered provider.
func (f *ProviderFactory) Get(name string) (Provider, error) {
	provider, exists := f.providers[name]
	if !exists {
		return nil, apperrors.NewNotFound("storage provider", name)
	}
	return provider, nil
}

// Names lists the registered providers.
func (f *ProviderFactory) Names() []string {
	names := make([]string, 0, len(f.providers))
	for name := range f.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateFromConfig builds a provider from configuration.
func (f *ProviderFactory) CreateFromConfig(config ProviderConfig) (Provider, error) {
	switch strings.ToLower(config.Type) {
	case "", "local":
		basePath := config.BasePath
		if v, ok := config.Settings["base_path"].(string); ok && v != "" {
			basePath = v
		}
		if basePath == "" {
			return nil, apperrors.NewValidation("local provider requires base_path")
		}
		return NewLocalProvider(basePath)

	case "memory":
		return NewMemoryProvider(), nil

	default:
		return nil, apperrors.NewInvalid("storage.type", config.Type, fmt.Sprintf("unsupported provider type: %s", config.Type))
	}
}

// uniqueName returns name, or name with "-1", "-2", ... inserted before the
// extension, whichever taken reports as free first.
func uniqueName(name string, taken func(string) (bool, error)) (string, error) {
	ext := ""
	stem := name
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		stem, ext = name[:i], name[i:]
	}

	candidate := name
	for n := 1; ; n++ {
		exists, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d%s", stem, n, ext)
	}
}
