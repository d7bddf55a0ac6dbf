// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package buildtree populates the generated build directory: it copies the
// auxiliary sources a design asks for and writes generated files.
//
// Generated files and copies are written through renameio: readers see
// either the previous file or the complete new one.
package buildtree

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/specialistvlad/socgen/internal/ctxlog"
	"github.com/specialistvlad/socgen/internal/fsutil"
)

// Tree is a build directory rooted at Root.
type Tree struct {
	Root string
}

// New returns a Tree for root.
func New(root string) *Tree {
	return &Tree{Root: root}
}

// Path joins a slash separated build-dir relative path onto the root.
func (t *Tree) Path(rel string) string {
	return filepath.Join(t.Root, filepath.FromSlash(rel))
}

// CopyInto copies src into the build-dir relative directory destRel. A file
// is copied as is; for a directory, every regular file directly inside it is
// copied. The destination directory is created if needed. File modes and
// modification times are preserved.
func (t *Tree) CopyInto(ctx context.Context, src, destRel string) ([]string, error) {
	logger := ctxlog.FromContext(ctx)

	info, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("copy %s: %w", src, err)
	}

	sources := []string{src}
	if info.IsDir() {
		sources, err = fsutil.ListFiles(src)
		if err != nil {
			return nil, fmt.Errorf("copy %s: %w", src, err)
		}
	}

	dest := t.Path(destRel)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dest, err)
	}

	copied := make([]string, 0, len(sources))
	for _, s := range sources {
		target := filepath.Join(dest, filepath.Base(s))
		if err := copyFile(s, target); err != nil {
			return copied, err
		}
		copied = append(copied, target)
	}
	logger.Debug("Copied into build tree.", "src", src, "dest", dest, "files", len(copied))
	return copied, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}

	pending, err := renameio.NewPendingFile(dst, renameio.WithPermissions(info.Mode().Perm()))
	if err != nil {
		return fmt.Errorf("copy %s: create %s: %w", src, dst, err)
	}
	defer pending.Cleanup()

	if _, err := io.Copy(pending, in); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("copy %s: replace %s: %w", src, dst, err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return nil
}

// WriteFile atomically writes the build-dir relative file rel with the
// content produced by write. Parent directories are created as needed.
func (t *Tree) WriteFile(ctx context.Context, rel string, write func(io.Writer) error) (string, error) {
	logger := ctxlog.FromContext(ctx)
	path := t.Path(rel)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return "", fmt.Errorf("create pending %s: %w", path, err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			logger.Debug("Cleanup of pending file failed.", "path", path, "error", err)
		}
	}()

	if err := write(pending); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return "", fmt.Errorf("replace %s: %w", path, err)
	}

	logger.Debug("Generated file written.", "path", path)
	return path, nil
}
