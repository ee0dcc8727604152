// Package media recognizes the image formats accepted for recipe photos.
package media

import (
	"bytes"
	"errors"
	"io"
)

type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatGIF  Format = "gif"
	FormatWEBP Format = "webp"
)

// ErrUnsupported is returned for anything that is not a raster photo format.
// SVG is not accepted.
var ErrUnsupported = errors.New("unsupported photo format")

type Photo struct {
	Format      Format
	ContentType string
	Ext         string
}

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Sniff reads the first bytes of r and returns the detected format together
// with a reader that replays them, so callers can stream the full body on.
func Sniff(r io.Reader) (Photo, io.Reader, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Photo{}, nil, err
	}
	head = head[:n]

	photo, err := Identify(head)
	if err != nil {
		return Photo{}, nil, err
	}
	return photo, io.MultiReader(bytes.NewReader(head), r), nil
}

func Identify(head []byte) (Photo, error) {
	switch {
	case len(head) > 3 && head[0] == 0xff && head[1] == 0xd8 && head[2] == 0xff:
		return Photo{Format: FormatJPEG, ContentType: "image/jpeg", Ext: ".jpg"}, nil
	case bytes.HasPrefix(head, pngMagic):
		return Photo{Format: FormatPNG, ContentType: "image/png", Ext: ".png"}, nil
	case bytes.HasPrefix(head, []byte("GIF87a")), bytes.HasPrefix(head, []byte("GIF89a")):
		return Photo{Format: FormatGIF, ContentType: "image/gif", Ext: ".gif"}, nil
	case len(head) >= 12 && bytes.Equal(head[:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WEBP")):
		return Photo{Format: FormatWEBP, ContentType: "image/webp", Ext: ".webp"}, nil
	}
	return Photo{}, ErrUnsupported
}
