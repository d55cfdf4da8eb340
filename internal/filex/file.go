// Package filex holds local file helpers for the client.
package filex

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// MaxImageSize bounds files accepted for upload.
const MaxImageSize = 20 << 20

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}

// Image is a local file opened for upload.
type Image struct {
	File        *os.File
	Size        int64
	ContentType string
}

// OpenImage opens path, checks it against MaxImageSize and sniffs its
// content type. Only image/* types are accepted. The caller closes File.
func OpenImage(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if fi.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if fi.Size() > MaxImageSize {
		_ = f.Close()
		return nil, fmt.Errorf("%s is %d bytes, limit is %d", path, fi.Size(), MaxImageSize)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		_ = f.Close()
		return nil, err
	}
	ct := http.DetectContentType(head[:n])
	if len(ct) < 6 || ct[:6] != "image/" {
		_ = f.Close()
		return nil, fmt.Errorf("%s is not an image (%s)", path, ct)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, err
	}

	return &Image{File: f, Size: fi.Size(), ContentType: ct}, nil
}
