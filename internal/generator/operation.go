// Package generator stages file outputs as operations that are validated
// before anything touches disk. A batch either passes validation as a
// whole or writes nothing, which keeps multi-file conversions from leaving
// half the outputs behind.
package generator

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dreness/klproj/internal/document"
	"github.com/dreness/klproj/internal/project"
)

// Operation is a deferred file-system effect.
//
// Validate checks that Execute would succeed; it may create parent
// directories (idempotent) but never the target itself. force skips the
// existing-file conflict check. Execute performs the write and must only
// run after Validate passed. Description is a one-line summary for the
// terminal.
type Operation interface {
	Validate(ctx context.Context, force bool) error
	Execute(ctx context.Context) error
	Description() string
}

// WriteProjectOp serializes a project model and writes the compressed
// container to Path.
type WriteProjectOp struct {
	Path    string
	Project *project.Project

	// data caches the marshaled container between Validate and Execute so
	// serialization errors surface during validation, before any file in
	// the batch is written.
	data []byte
}

func (op *WriteProjectOp) Validate(ctx context.Context, force bool) error {
	if op.Project == nil {
		return fmt.Errorf("no project to write to %s", op.Path)
	}

	data, err := document.Marshal(op.Project)
	if err != nil {
		return err
	}
	op.data = data

	dir := filepath.Dir(op.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}
	if !force {
		if _, err := os.Stat(op.Path); err == nil {
			return fmt.Errorf("file already exists: %s (use --force to overwrite)", op.Path)
		}
	}
	return nil
}

func (op *WriteProjectOp) Execute(ctx context.Context) error {
	if op.data == nil {
		return fmt.Errorf("operation for %s was not validated", op.Path)
	}
	return writeAtomic(op.Path, op.data, 0644)
}

func (op *WriteProjectOp) Description() string {
	return fmt.Sprintf("Write %s (%d bytes compressed)", op.Path, len(op.data))
}

// WriteFileOp writes plain content to Path. Used for sidecar outputs like
// extracted shader sources.
type WriteFileOp struct {
	Path    string
	Content []byte
	Mode    fs.FileMode
}

func (op *WriteFileOp) Validate(ctx context.Context, force bool) error {
	dir := filepath.Dir(op.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}
	if !force {
		if _, err := os.Stat(op.Path); err == nil {
			return fmt.Errorf("file already exists: %s (use --force to overwrite)", op.Path)
		}
	}
	if op.Content == nil {
		return fmt.Errorf("content is nil for file: %s", op.Path)
	}
	return nil
}

func (op *WriteFileOp) Execute(ctx context.Context) error {
	return writeAtomic(op.Path, op.Content, op.Mode)
}

func (op *WriteFileOp) Description() string {
	return fmt.Sprintf("Write %s (%d bytes)", op.Path, len(op.Content))
}

// writeAtomic stages content in a temp file in the destination directory
// and renames it into place. A failed write leaves no partial file.
func writeAtomic(path string, content []byte, mode fs.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
