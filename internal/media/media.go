// Package media stores uploaded artwork images and hands back the public
// URL an artwork's image field should point at.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var ErrUnsupportedType = errors.New("unsupported image type")

// SniffLen is how many leading bytes DetectImage needs.
const SniffLen = 512

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type Host interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
}

// DetectImage sniffs the content type from the first bytes of a file and
// returns the extension it should be stored under.
func DetectImage(head []byte) (string, error) {
	contentType := http.DetectContentType(head)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	return ext, nil
}

// LocalHost writes uploads into a directory that the server exposes under
// /uploads/.
type LocalHost struct {
	dir     string
	baseURL string
}

func NewLocalHost(dir, publicBaseURL string) (*LocalHost, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalHost{dir: dir, baseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

func (h *LocalHost) Dir() string {
	return h.dir
}

func (h *LocalHost) Upload(ctx context.Context, name string, r io.Reader) (url string, err error) {
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid upload name %q", name)
	}
	path := filepath.Join(h.dir, name)

	tmp, err := os.CreateTemp(h.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create upload: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, &ctxReader{ctx: ctx, r: r}); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err = tmp.Close(); err != nil {
		return "", err
	}
	if _, statErr := os.Stat(path); statErr == nil {
		err = fmt.Errorf("upload %q already exists", name)
		return "", err
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}

	return h.baseURL + "/uploads/" + name, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
