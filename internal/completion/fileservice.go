package completion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.lsp.dev/uri"
)

// FileStat describes a filesystem entry.
type FileStat struct {
	Resource       uri.URI
	Name           string
	IsFile         bool
	IsDirectory    bool
	IsSymbolicLink bool
	// SymlinkTarget is the link target of a symbolic link, when known.
	SymlinkTarget string
	// Children is set for directories that were resolved.
	Children []FileStat
}

// ResolveOptions tune FileService.Resolve.
type ResolveOptions struct {
	// ResolveSingleChildDescendants also resolves child directories that
	// contain exactly one entry, one level deep.
	ResolveSingleChildDescendants bool
}

// FileService reads directory listings. Resolve fails when the resource does
// not exist.
type FileService interface {
	Resolve(ctx context.Context, resource uri.URI, opts ResolveOptions) (*FileStat, error)
}

// DiskFileService is a FileService over the local filesystem.
type DiskFileService struct{}

// osReadDir is a variable that can be overridden for testing.
var osReadDir = os.ReadDir

func (DiskFileService) Resolve(ctx context.Context, resource uri.URI, opts ResolveOptions) (*FileStat, error) {
	path := resource.Filename()
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	stat := &FileStat{
		Resource:    resource,
		Name:        filepath.Base(path),
		IsFile:      info.Mode().IsRegular(),
		IsDirectory: info.IsDir(),
	}
	if !stat.IsDirectory {
		return stat, nil
	}

	children, err := readChildren(ctx, path)
	if err != nil {
		return nil, err
	}
	if opts.ResolveSingleChildDescendants {
		for i := range children {
			if !children[i].IsDirectory {
				continue
			}
			grandchildren, err := readChildren(ctx, children[i].Resource.Filename())
			if err == nil && len(grandchildren) == 1 {
				children[i].Children = grandchildren
			}
		}
	}
	stat.Children = children
	return stat, nil
}

func readChildren(ctx context.Context, dir string) ([]FileStat, error) {
	entries, err := osReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	children := make([]FileStat, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		childPath := filepath.Join(dir, entry.Name())
		child := FileStat{
			Resource: uri.File(childPath),
			Name:     entry.Name(),
		}
		if entry.Type()&os.ModeSymlink != 0 {
			child.IsSymbolicLink = true
			child.SymlinkTarget, _ = os.Readlink(childPath)
			// Classify the link by what it points at.
			if info, err := os.Stat(childPath); err == nil {
				child.IsDirectory = info.IsDir()
				child.IsFile = info.Mode().IsRegular()
			}
		} else {
			child.IsDirectory = entry.IsDir()
			child.IsFile = entry.Type().IsRegular()
		}
		children = append(children, child)
	}
	return children, nil
}
