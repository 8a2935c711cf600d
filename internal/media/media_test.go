package media

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")
	gifHeader  = []byte("GIF89a\x01\x00\x01\x00")
	webpHeader = []byte("RIFF\x24\x00\x00\x00WEBPVP8 ")
)

func TestDetectImage(t *testing.T) {
	tests := []struct {
		name    string
		head    []byte
		want    string
		wantErr bool
	}{
		{"png", pngHeader, ".png", false},
		{"jpeg", jpegHeader, ".jpg", false},
		{"gif", gifHeader, ".gif", false},
		{"webp", webpHeader, ".webp", false},
		{"html", []byte("<html><body>hi</body></html>"), "", true},
		{"text", []byte("just some text"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, err := DetectImage(tt.head)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ext)
		})
	}
}

func TestLocalHost_Upload(t *testing.T) {
	dir := t.TempDir()
	host, err := NewLocalHost(dir, "https://folio.example.com/")
	require.NoError(t, err)

	url, err := host.Upload(context.Background(), "abc.png", bytes.NewReader(pngHeader))

	require.NoError(t, err)
	assert.Equal(t, "https://folio.example.com/uploads/abc.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}

func TestLocalHost_UploadStripsDirectories(t *testing.T) {
	dir := t.TempDir()
	host, err := NewLocalHost(dir, "http://localhost:8080")
	require.NoError(t, err)

	url, err := host.Upload(context.Background(), "../../etc/evil.png", bytes.NewReader(pngHeader))

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/evil.png", url)
	assert.FileExists(t, filepath.Join(dir, "evil.png"))
}

func TestLocalHost_UploadRejectsExistingAndHiddenNames(t *testing.T) {
	dir := t.TempDir()
	host, err := NewLocalHost(dir, "http://localhost:8080")
	require.NoError(t, err)

	_, err = host.Upload(context.Background(), "a.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)

	_, err = host.Upload(context.Background(), "a.png", bytes.NewReader(gifHeader))
	assert.Error(t, err)

	_, err = host.Upload(context.Background(), ".hidden", bytes.NewReader(pngHeader))
	assert.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "failed uploads leave no temp files behind")
}

func TestLocalHost_UploadCanceled(t *testing.T) {
	dir := t.TempDir()
	host, err := NewLocalHost(dir, "http://localhost:8080")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = host.Upload(ctx, "a.png", bytes.NewReader(pngHeader))

	assert.ErrorIs(t, err, context.Canceled)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
