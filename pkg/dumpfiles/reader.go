package dumpfiles

import (
	"bufio"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// newTextReader decodes the stream as UTF-8. Invalid byte sequences become U+FFFD.
func newTextReader(stream io.ReadCloser) *TextReader {
	decoded := transform.NewReader(stream, unicode.UTF8.NewDecoder())

	return &TextReader{
		Reader: bufio.NewReaderSize(decoded, 64*1024),
		closer: stream,
	}
}
