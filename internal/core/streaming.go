package core

// streaming.go provides the readers an extract body passes through before
// CSV parsing:
//
//   - SkipBOM: drops a leading UTF-8 BOM (0xEF 0xBB 0xBF) from Excel exports
//   - StrictUTF8Reader: fails on the first invalid UTF-8 sequence
//
// Use WrapForParsing to apply both in the correct order.

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// EncodingError reports the byte offset of the first invalid UTF-8 sequence.
type EncodingError struct {
	Offset int64
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("invalid UTF-8 at byte offset %d", e.Offset)
}

// SkipBOM returns a reader that omits a leading UTF-8 byte order mark.
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// StrictUTF8Reader passes bytes through unchanged but returns an
// *EncodingError as soon as it sees an invalid sequence. A multi-byte rune
// split across two underlying reads is held back until it is complete.
type StrictUTF8Reader struct {
	reader  io.Reader
	scratch []byte
	ready   []byte // validated bytes not yet returned
	pending []byte // incomplete trailing rune from the previous fill
	offset  int64  // bytes validated so far
	err     error  // sticky, surfaced once ready is drained
}

// NewStrictUTF8Reader creates a validating reader.
func NewStrictUTF8Reader(r io.Reader) *StrictUTF8Reader {
	return &StrictUTF8Reader{
		reader:  r,
		scratch: make([]byte, 32*1024),
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

// Read implements io.Reader.
func (s *StrictUTF8Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for len(s.ready) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		s.fill()
	}
	n := copy(p, s.ready)
	s.ready = s.ready[n:]
	return n, nil
}

// fill reads one chunk from the underlying reader and validates it.
func (s *StrictUTF8Reader) fill() {
	n := copy(s.scratch, s.pending)
	s.pending = s.pending[:0]

	m, readErr := s.reader.Read(s.scratch[n:])
	n += m

	valid := n
	if readErr == nil {
		valid -= incompleteSuffix(s.scratch[:n])
	}

	if bad := invalidIndex(s.scratch[:valid]); bad >= 0 {
		s.ready = s.scratch[:bad]
		s.offset += int64(bad)
		s.err = &EncodingError{Offset: s.offset}
		return
	}

	s.ready = s.scratch[:valid]
	s.pending = append(s.pending, s.scratch[valid:n]...)
	s.offset += int64(valid)

	if readErr != nil {
		s.err = readErr
	}
}

// incompleteSuffix returns how many trailing bytes form the start of a rune
// that is not yet complete.
func incompleteSuffix(b []byte) int {
	for i := 1; i <= utf8.UTFMax-1 && i <= len(b); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			if utf8.FullRune(b[len(b)-i:]) {
				return 0
			}
			return i
		}
	}
	return 0
}

// invalidIndex returns the offset of the first invalid sequence, or -1.
func invalidIndex(b []byte) int {
	if utf8.Valid(b) {
		return -1
	}
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}

// WrapForParsing strips a BOM and then enforces UTF-8.
func WrapForParsing(r io.Reader) io.Reader {
	return NewStrictUTF8Reader(SkipBOM(r))
}
