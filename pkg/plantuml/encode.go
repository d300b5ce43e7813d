package plantuml

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zlib"

	"github.com/matzehuels/mdtouml/pkg/errors"
)

// Encode compresses text and returns the base64 token the server expects
// after the "~1" marker. The same input always yields the same token.
func Encode(text string) string {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	// Writes to a bytes.Buffer cannot fail.
	if _, err := io.WriteString(zw, text); err != nil {
		panic(fmt.Sprintf("plantuml: compress: %v", err))
	}
	if err := zw.Close(); err != nil {
		panic(fmt.Sprintf("plantuml: compress: %v", err))
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// Decode reverses [Encode]. A leading "~1" marker is accepted and ignored.
func Decode(token string) (string, error) {
	token = strings.TrimPrefix(strings.TrimSpace(token), deflateMarker)

	compressed, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "token is not valid base64")
	}

	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "token is not a zlib stream")
	}
	defer zr.Close()

	text, err := io.ReadAll(zr)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "decompress token")
	}
	return string(text), nil
}
