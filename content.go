package objectstore

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultContentType is used when neither the key nor the content identify a type.
const DefaultContentType = "application/octet-stream"

// sniffLen is the number of leading bytes inspected for content detection.
const sniffLen = 512

// detectContentType picks a content type for an upload from the key's
// extension, falling back to sniffing the first bytes of body. The returned
// reader yields the full body, including any bytes consumed while sniffing.
func detectContentType(key string, body io.Reader) (string, io.Reader, error) {
	if ext := strings.ToLower(path.Ext(key)); ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt, body, nil
		}
	}

	// Pipes and FIFOs implement io.Seeker but fail to seek; they are read
	// like any other stream.
	if rs, ok := body.(io.ReadSeeker); ok {
		if pos, err := rs.Seek(0, io.SeekCurrent); err == nil {
			mt, err := mimetype.DetectReader(io.LimitReader(rs, sniffLen))
			if err != nil {
				return "", nil, err
			}
			if _, err := rs.Seek(pos, io.SeekStart); err != nil {
				return "", nil, err
			}
			return contentTypeOf(mt), rs, nil
		}
	}

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(body, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", nil, err
	}
	buf = buf[:n]
	return contentTypeOf(mimetype.Detect(buf)), io.MultiReader(bytes.NewReader(buf), body), nil
}

func contentTypeOf(mt *mimetype.MIME) string {
	if mt == nil || mt.String() == "" {
		return DefaultContentType
	}
	return mt.String()
}
