package core

// encoding.go detects the text encoding of delimited input and returns a
// UTF-8 reader over it.
//
// Complot exports come from Windows tools and arrive in one of:
//
//   - UTF-8 with BOM (Excel "CSV UTF-8")
//   - UTF-16 LE/BE with BOM ("Unicode Text")
//   - plain UTF-8
//   - a legacy code page, windows-1255 for Hebrew installs
//
// Detection order is BOM first, then UTF-8 validity, then the configured
// fallback. The fallback name is resolved with the WHATWG encoding index so
// labels such as "windows-1255", "cp1255" and "iso-8859-8" all work.

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding names reported by DecodeText.
const (
	EncodingUTF8    = "utf-8"
	EncodingUTF8BOM = "utf-8-bom"
	EncodingUTF16LE = "utf-16le"
	EncodingUTF16BE = "utf-16be"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DecodeText returns a UTF-8 reader over data and the name of the encoding
// it detected. fallback names the legacy encoding used when data is neither
// BOM-marked nor valid UTF-8.
func DecodeText(data []byte, fallback string) (io.Reader, string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return bytes.NewReader(data[len(bomUTF8):]), EncodingUTF8BOM, nil

	case bytes.HasPrefix(data, bomUTF16LE):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		return transform.NewReader(bytes.NewReader(data), dec), EncodingUTF16LE, nil

	case bytes.HasPrefix(data, bomUTF16BE):
		dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		return transform.NewReader(bytes.NewReader(data), dec), EncodingUTF16BE, nil

	case utf8.Valid(data):
		return bytes.NewReader(data), EncodingUTF8, nil
	}

	enc, err := htmlindex.Get(fallback)
	if err != nil {
		return nil, "", fmt.Errorf("unknown fallback encoding %q: %w", fallback, err)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		name = fallback
	}
	return transform.NewReader(bytes.NewReader(data), enc.NewDecoder()), name, nil
}
