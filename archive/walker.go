// Package archive walks markup documents stored in zip archives.
package archive

import (
	"fmt"
	"io"
	"path"
	"strings"

	fixzip "github.com/hidez8891/zip"
)

// WalkFunc is called for every regular entry of the archive selected by Walk.
// The archive argument is the path passed to Walk. Returning an error stops
// the walk and the error is returned by Walk.
type WalkFunc func(archive string, file *fixzip.File) error

// Walk visits regular entries of archive whose names start with prefix in
// directory order. An entry with absolute path or ".." component aborts
// the walk before anything is read from it.
func Walk(archive, prefix string, walkFn WalkFunc) error {
	r, err := fixzip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("unable to open archive %q: %w", archive, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if !isSafePath(f.Name) {
			return fmt.Errorf("archive entry %q: unsafe path", f.Name)
		}
		if f.FileInfo().IsDir() || !strings.HasPrefix(f.Name, prefix) {
			continue
		}
		if err := walkFn(archive, f); err != nil {
			return err
		}
	}
	return nil
}

// ReadEntry returns uncompressed content of archive entry. Entries larger
// than limit bytes are rejected, limit <= 0 means no limit.
func ReadEntry(f *fixzip.File, limit int64) ([]byte, error) {
	if limit > 0 && f.UncompressedSize64 > uint64(limit) {
		return nil, fmt.Errorf("archive entry %q is too large: %d bytes", f.Name, f.UncompressedSize64)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("unable to open archive entry %q: %w", f.Name, err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if limit > 0 {
		// header sizes could lie
		r = io.LimitReader(rc, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read archive entry %q: %w", f.Name, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("archive entry %q is too large", f.Name)
	}
	return data, nil
}

func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	for part := range strings.SplitSeq(strings.ReplaceAll(name, `\`, "/"), "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
