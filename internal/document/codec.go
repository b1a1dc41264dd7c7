package document

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dreness/klproj/internal/project"
)

// Marshal encodes and zlib-compresses a project into the on-disk container
// format.
func Marshal(p *project.Project) ([]byte, error) {
	xmlData, err := Encode(p)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(xmlData); err != nil {
		return nil, &SerializeError{Err: fmt.Errorf("compress: %w", err)}
	}
	if err := zw.Close(); err != nil {
		return nil, &SerializeError{Err: fmt.Errorf("compress: %w", err)}
	}
	return buf.Bytes(), nil
}

// Unmarshal decompresses and parses a container back into a project.
func Unmarshal(data []byte) (*project.Project, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Message: "not a zlib stream", Err: err}
	}
	defer zr.Close()

	xmlData, err := io.ReadAll(zr)
	if err != nil {
		return nil, &DecodeError{Message: "truncated zlib stream", Err: err}
	}
	return Decode(xmlData)
}

// Save marshals the project and writes it to path atomically: the
// container is staged in a temp file in the destination directory and
// renamed into place, so a failed save never leaves a partial file behind.
func Save(p *project.Project, path string) error {
	data, err := Marshal(p)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Load reads a container file and parses it back into a project.
func Load(path string) (*project.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	p, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return p, nil
}
