package ingest

// encoding.go provides the decoder ladder the format sniffer walks when
// probing a raw vendor export, plus streaming readers that keep the clean
// pipeline on valid UTF-8 without loading whole files into memory.

import (
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding identifies one decoder in the sniffer's priority ladder.
type Encoding string

const (
	// EncodingUTF16 decodes 16-bit wide exports. Windows vendor tools write
	// these with a byte-order mark; little endian is assumed when absent.
	EncodingUTF16 Encoding = "utf-16"

	// EncodingUTF8 passes bytes through after stripping a UTF-8 BOM.
	EncodingUTF8 Encoding = "utf-8"

	// EncodingLatin1 maps every byte to a code point and therefore never
	// fails. It is the terminal fallback of the ladder.
	EncodingLatin1 Encoding = "latin-1"
)

// EncodingPriority is the order the sniffer tries decoders in: 16-bit wide
// first, then 8-bit universal, then the byte-preserving fallback.
var EncodingPriority = []Encoding{EncodingUTF16, EncodingUTF8, EncodingLatin1}

// DecodeReader wraps r so it yields UTF-8 text decoded from enc.
func DecodeReader(r io.Reader, enc Encoding) io.Reader {
	switch enc {
	case EncodingUTF16:
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		return transform.NewReader(r, dec)
	case EncodingLatin1:
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	default:
		return NewBOMSkippingReader(r)
	}
}

// BOMSkippingReader wraps an io.Reader and skips a leading UTF-8 BOM
// (0xEF 0xBB 0xBF), which Windows tools commonly prepend.
type BOMSkippingReader struct {
	reader  io.Reader
	checked bool
	buf     [3]byte
	pending []byte
}

// NewBOMSkippingReader creates a BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{reader: r}
}

// Read implements io.Reader. The first call probes for a BOM; bytes that
// turn out not to be one are served before the underlying stream resumes.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		n, err := io.ReadFull(r.reader, r.buf[:])
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if n > 0 {
			if n == 3 && r.buf[0] == 0xEF && r.buf[1] == 0xBB && r.buf[2] == 0xBF {
				r.pending = nil
			} else {
				r.pending = r.buf[:n]
			}
		}
		if err != nil && err != io.EOF {
			return 0, err
		}
	}

	if len(r.pending) > 0 {
		copied := copy(p, r.pending)
		r.pending = r.pending[copied:]
		return copied, nil
	}

	return r.reader.Read(p)
}

// UTF8SanitizingReader wraps an io.Reader and replaces bytes that do not
// form valid UTF-8 with '?' on the fly, in constant memory. The clean
// pipeline runs every rewrite through this so archived files are always
// valid UTF-8 regardless of what the decoder ladder let through.
type UTF8SanitizingReader struct {
	reader  io.Reader
	pending []byte
}

// NewUTF8SanitizingReader creates a streaming UTF-8 sanitizer.
func NewUTF8SanitizingReader(r io.Reader) *UTF8SanitizingReader {
	return &UTF8SanitizingReader{
		reader:  r,
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

// Read implements io.Reader.
func (s *UTF8SanitizingReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	offset := copy(p, s.pending)
	s.pending = s.pending[:0]

	n, err := s.reader.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}

	if allASCII(p[:n]) {
		return n, err
	}
	return s.sanitize(p[:n], err == io.EOF), err
}

// sanitize rewrites data in place, replacing invalid sequences with '?'.
// A multi-byte sequence cut off at the buffer edge is held back in pending
// unless the stream is at EOF.
func (s *UTF8SanitizingReader) sanitize(data []byte, atEOF bool) int {
	if utf8.Valid(data) {
		if !atEOF {
			if tail := incompleteTail(data); tail > 0 {
				s.pending = append(s.pending, data[len(data)-tail:]...)
				return len(data) - tail
			}
		}
		return len(data)
	}

	write := 0
	for read := 0; read < len(data); {
		r, size := utf8.DecodeRune(data[read:])
		if !atEOF && read+size >= len(data) && seqLen(data[read]) > len(data)-read {
			s.pending = append(s.pending, data[read:]...)
			return write
		}
		if r == utf8.RuneError && size == 1 {
			data[write] = '?'
			write++
			read++
			continue
		}
		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}
	return write
}

func allASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// incompleteTail returns how many trailing bytes could be the start of a
// multi-byte sequence whose remainder has not been read yet.
func incompleteTail(data []byte) int {
	for i := 1; i <= utf8.UTFMax-1 && i <= len(data); i++ {
		b := data[len(data)-i]
		if b >= 0xC0 {
			if i < seqLen(b) {
				return i
			}
			return 0
		}
		if b&0xC0 != 0x80 {
			return 0
		}
	}
	return 0
}

// seqLen returns the expected byte length of a UTF-8 sequence starting
// with b, or 0 for a continuation byte.
func seqLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xC0:
		return 0
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	default:
		return 4
	}
}
