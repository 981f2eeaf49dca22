package objectstore

import (
	"bytes"
	stderrors "errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, stderrors.New("disk on fire")
}

// TestDetectContentType tests content type detection.
func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		body     io.Reader
		wantType string
		wantBody string
		wantErr  bool
	}{
		{
			name:     "extension wins over content",
			key:      "photos/cat.JPG",
			body:     strings.NewReader("%PDF-1.4"),
			wantType: "image/jpeg",
			wantBody: "%PDF-1.4",
		},
		{
			name:     "json by extension",
			key:      "data.json",
			body:     strings.NewReader("[]"),
			wantType: "application/json",
			wantBody: "[]",
		},
		{
			name:     "png sniffed",
			key:      "noext",
			body:     bytes.NewReader([]byte("\x89PNG\r\n\x1a\nrest")),
			wantType: "image/png",
			wantBody: "\x89PNG\r\n\x1a\nrest",
		},
		{
			name:     "unknown binary",
			key:      "blob",
			body:     io.MultiReader(bytes.NewReader([]byte{0x00, 0x01, 0x02, 0x03})),
			wantType: DefaultContentType,
			wantBody: "\x00\x01\x02\x03",
		},
		{
			name:    "read failure",
			key:     "broken",
			body:    failingReader{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contentType, body, err := detectContentType(tt.key, tt.body)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(contentType, tt.wantType), "got %q", contentType)

			data, err := io.ReadAll(body)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBody, string(data))
		})
	}
}

// TestDetectContentType_SeekableOffset tests that a partially read seeker is restored.
func TestDetectContentType_SeekableOffset(t *testing.T) {
	r := strings.NewReader("skip-%PDF-1.7 rest")
	_, err := r.Seek(5, io.SeekStart)
	require.NoError(t, err)

	contentType, body, err := detectContentType("doc", r)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 rest", string(data))
}
