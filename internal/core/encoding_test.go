package core

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const hebrewHeader = "קישור לקובץ,גוש,חלקה"

func TestDecodeText(t *testing.T) {
	cp1255, err := charmap.Windows1255.NewEncoder().String(hebrewHeader)
	require.NoError(t, err)

	utf16le, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(hebrewHeader)
	require.NoError(t, err)

	utf16be, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder().String(hebrewHeader)
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    []byte
		wantEnc  string
		wantText string
	}{
		{
			name:     "utf-8 with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, hebrewHeader...),
			wantEnc:  EncodingUTF8BOM,
			wantText: hebrewHeader,
		},
		{
			name:     "plain utf-8",
			input:    []byte(hebrewHeader),
			wantEnc:  EncodingUTF8,
			wantText: hebrewHeader,
		},
		{
			name:     "windows-1255",
			input:    []byte(cp1255),
			wantEnc:  "windows-1255",
			wantText: hebrewHeader,
		},
		{
			name:     "utf-16le with BOM",
			input:    []byte(utf16le),
			wantEnc:  EncodingUTF16LE,
			wantText: hebrewHeader,
		},
		{
			name:     "utf-16be with BOM",
			input:    []byte(utf16be),
			wantEnc:  EncodingUTF16BE,
			wantText: hebrewHeader,
		},
		{
			name:     "empty input",
			input:    []byte{},
			wantEnc:  EncodingUTF8,
			wantText: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, enc, err := DecodeText(tt.input, "windows-1255")
			require.NoError(t, err)
			assert.Equal(t, tt.wantEnc, enc)

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, string(got))
		})
	}
}

func TestDecodeText_UnknownFallback(t *testing.T) {
	_, _, err := DecodeText([]byte{0xE0, 0xE1, 0xFA}, "klingon-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "klingon-1")
}
