// Package extractor turns raw uploaded bytes into plain text.
package extractor

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"code.sajari.com/docconv"

	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/core"
)

var _ core.Extractor = (*DocconvExtractor)(nil)

// Magic prefixes checked before handing bytes to a parser. A mismatch is
// corrupt input, not a parse attempt.
var (
	pdfMagic = []byte("%PDF")
	zipMagic = []byte("PK\x03\x04") // docx/odt are zip containers
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0} // legacy .doc
)

// DocconvExtractor implements core.Extractor using sajari/docconv for the
// binary formats and a UTF-8 decode for plain text. It is stateless.
type DocconvExtractor struct{}

func New() *DocconvExtractor {
	return &DocconvExtractor{}
}

// Extract converts data of the given MIME type into plain text.
// It fails with core.ErrEmptyInput on a zero-length buffer,
// core.ErrUnsupportedFormat on a MIME type it does not handle, and
// core.ErrCorruptInput when the bytes do not match the declared format or
// the parser rejects them.
func (e *DocconvExtractor) Extract(data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", core.ErrEmptyInput
	}

	mime := normalizeMIME(contentType)
	switch mime {
	case "text/plain", "text/markdown", "text/csv":
		return extractPlainText(data)
	case "application/pdf":
		if !bytes.HasPrefix(data, pdfMagic) {
			return "", fmt.Errorf("%w: missing PDF signature", core.ErrCorruptInput)
		}
		return convert(data, mime)
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.oasis.opendocument.text":
		if !bytes.HasPrefix(data, zipMagic) {
			return "", fmt.Errorf("%w: missing zip container signature", core.ErrCorruptInput)
		}
		return convert(data, mime)
	case "application/msword":
		if !bytes.HasPrefix(data, oleMagic) {
			return "", fmt.Errorf("%w: missing OLE signature", core.ErrCorruptInput)
		}
		return convert(data, mime)
	case "application/rtf", "text/rtf":
		return convert(data, "application/rtf")
	default:
		return "", fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, contentType)
	}
}

func extractPlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: invalid UTF-8", core.ErrCorruptInput)
	}
	return string(data), nil
}

// convert delegates to docconv, wrapping any parser failure as corrupt input
// with the original message preserved for diagnostics.
func convert(data []byte, mime string) (string, error) {
	res, err := docconv.Convert(bytes.NewReader(data), mime, false)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrCorruptInput, err)
	}
	if res == nil || strings.TrimSpace(res.Body) == "" {
		return "", fmt.Errorf("%w: parser produced no text", core.ErrCorruptInput)
	}
	return res.Body, nil
}

// normalizeMIME strips parameters such as "; charset=utf-8".
func normalizeMIME(contentType string) string {
	mime := contentType
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return strings.ToLower(strings.TrimSpace(mime))
}
