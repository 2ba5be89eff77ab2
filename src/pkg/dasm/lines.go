package dasm

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

const defaultReadBufferSize = 64 * 1024

// LineReader yields complete lines from a byte stream.
// Lines may span any number of underlying reads. Lines longer than maxLen are
// clipped to maxLen bytes and reported as clipped; the rest of the line is consumed.
type LineReader struct {
	r      *bufio.Reader
	maxLen int
	line   []byte
}

// NewLineReader creates a LineReader over r
func NewLineReader(r io.Reader, maxLen int) *LineReader {
	return NewLineReaderSize(r, maxLen, defaultReadBufferSize)
}

// NewLineReaderSize creates a LineReader with an explicit read buffer size
func NewLineReaderSize(r io.Reader, maxLen, bufSize int) *LineReader {
	return &LineReader{
		r:      bufio.NewReaderSize(r, bufSize),
		maxLen: maxLen,
	}
}

// Next returns the next line without its line terminator.
// The returned slice is only valid until the next call.
// It returns io.EOF once the stream is exhausted; a final line without a
// trailing line feed is still returned.
func (lr *LineReader) Next() (line []byte, clipped bool, err error) {
	lr.line = lr.line[:0]
	read := false

	for {
		chunk, err := lr.r.ReadSlice('\n')
		if len(chunk) > 0 {
			read = true
			room := lr.maxLen - len(lr.line)
			if room < len(chunk) {
				clipped = true
				if room > 0 {
					lr.line = append(lr.line, chunk[:room]...)
				}
			} else {
				lr.line = append(lr.line, chunk...)
			}
		}

		switch {
		case err == nil:
			return trimEOL(lr.line), clipped, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if read {
				return trimEOL(lr.line), clipped, nil
			}
			return nil, false, io.EOF
		default:
			return nil, false, err
		}
	}
}

func trimEOL(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r"))
}
