package plantuml

import (
	"bytes"
	"image"

	// Decoders consulted by Format.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// IsImage checks the magic bytes of data for the formats a PlantUML server
// can return: PNG, JPEG, GIF, WebP, BMP and SVG.
func IsImage(data []byte) bool {
	switch {
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return true
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return true
	case len(data) >= 6 && (bytes.HasPrefix(data, []byte("GIF87a")) || bytes.HasPrefix(data, []byte("GIF89a"))):
		return true
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return true
	case len(data) >= 14 && data[0] == 'B' && data[1] == 'M' && bytes.Equal(data[6:10], []byte{0, 0, 0, 0}):
		// BITMAPFILEHEADER: "BM", file size, two reserved zero words.
		return true
	}
	return isSVG(data)
}

// Format names the encoding of data ("png", "jpeg", "svg", ...), or returns
// "" when it is not recognized.
func Format(data []byte) string {
	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		return format
	}
	if isSVG(data) {
		return "svg"
	}
	return ""
}

func isSVG(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	head = bytes.TrimSpace(head)
	return bytes.HasPrefix(head, []byte("<svg")) ||
		(bytes.HasPrefix(head, []byte("<?xml")) && bytes.Contains(head, []byte("<svg")))
}
