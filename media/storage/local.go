package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/leeforge/imagekit/errors"
)

// LocalProvider stores files under a base directory.
type LocalProvider struct {
	basePath string
}

// NewLocalProvider creates a provider rooted at basePath, creating it if needed.
func NewLocalProvider(basePath string) (*LocalProvider, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, storageError(err, "failed to create base directory").WithDetail("path", basePath)
	}
	return &LocalProvider{
		basePath: basePath,
	}, nil
}

// BasePath returns the root directory.
func (p *LocalProvider) BasePath() string {
	return p.basePath
}

// Save writes input.File. Without Overwrite an existing file is kept and the
// new one gets the next free "-N" name.
func (p *LocalProvider) Save(ctx context.Context, input SaveInput) (SaveOutput, error) {
	if err := ctx.Err(); err != nil {
		return SaveOutput{}, err
	}
	name, err := cleanName(input.Filename)
	if err != nil {
		return SaveOutput{}, err
	}

	dir := filepath.Join(p.basePath, input.Folder)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return SaveOutput{}, storageError(err, "failed to create directory").WithDetail("path", dir)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !input.Overwrite {
		name, err = uniqueName(name, func(candidate string) (bool, error) {
			return p.Exists(ctx, filepath.Join(input.Folder, candidate))
		})
		if err != nil {
			return SaveOutput{}, err
		}
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}

	fullPath := filepath.Join(dir, name)
	dst, err := os.OpenFile(fullPath, flags, 0644)
	if err != nil {
		return SaveOutput{}, storageError(err, "failed to create file").WithDetail("path", fullPath)
	}

	size, err := io.Copy(dst, input.File)
	if err != nil {
		_ = dst.Close()
		_ = os.Remove(fullPath)
		return SaveOutput{}, storageError(err, "failed to write file content").WithDetail("path", fullPath)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(fullPath)
		return SaveOutput{}, storageError(err, "failed to close file").WithDetail("path", fullPath)
	}

	return SaveOutput{
		Path:     fullPath,
		Filename: name,
		Size:     size,
		Metadata: input.Metadata,
	}, nil
}

// Exists reports whether a file exists at path relative to the base.
func (p *LocalProvider) Exists(ctx context.Context, path string) (bool, error) {
	fullPath := filepath.Join(p.basePath, path)
	_, err := os.Stat(fullPath)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, storageError(err, "failed to stat file").WithDetail("path", fullPath)
}

// Delete removes a file; missing files are not an error.
func (p *LocalProvider) Delete(ctx context.Context, path string) error {
	fullPath := filepath.Join(p.basePath, path)
	err := os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return storageError(err, "failed to delete file").WithDetail("path", fullPath)
	}
	return nil
}

// List returns the entries of a folder, optionally filtered by name prefix.
func (p *LocalProvider) List(ctx context.Context, input ListInput) ([]FileInfo, error) {
	folder := filepath.Join(p.basePath, input.Folder)

	entries, err := os.ReadDir(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFound("folder", input.Folder)
		}
		return nil, storageError(err, "failed to read directory").WithDetail("path", folder)
	}

	var files []FileInfo
	for _, entry := range entries {
		if input.Limit > 0 && len(files) >= input.Limit {
			break
		}
		if !strings.HasPrefix(entry.Name(), input.Prefix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Name:      entry.Name(),
			Size:      info.Size(),
			IsDir:     entry.IsDir(),
			UpdatedAt: info.ModTime().Unix(),
		})
	}

	return files, nil
}

func (p *LocalProvider) Name() string {
	return "local"
}

// cleanName rejects names that would escape the target folder.
func cleanName(name string) (string, error) {
	base := filepath.Base(filepath.Clean(name))
	if name == "" || base == "." || base == ".." || base == string(filepath.Separator) || base != name {
		return "", apperrors.NewInvalid("filename", name, "must be a plain file name")
	}
	return base, nil
}

func storageError(err error, message string) *apperrors.AppError {
	return apperrors.WrapWithType(err, apperrors.ErrorTypeStorage, message)
}

var _ Provider = (*LocalProvider)(nil)
