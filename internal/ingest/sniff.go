package ingest

// sniff.go determines the physical layout of a raw vendor export: which
// encoding decodes it, which row holds the header, and what delimiter
// separates fields. Vendors disagree on all three, so nothing is assumed.

import (
	"bufio"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// MaxHeaderSearchRows is how many rows to scan for the header line before
// giving up on an encoding.
var MaxHeaderSearchRows = 20

// maxLineBytes caps a single scanned line. Binary content misread under the
// wrong encoding can otherwise look like one enormous line.
const maxLineBytes = 1 << 20

// Layout describes the detected physical shape of a raw export.
type Layout struct {
	HeaderRow int      `json:"header_row"`
	Delimiter rune     `json:"-"`
	Encoding  Encoding `json:"encoding"`

	// Degraded is set when no encoding produced a header line containing an
	// anchor keyword and the conservative default was substituted.
	Degraded bool `json:"degraded,omitempty"`
}

// DelimiterName returns a printable name for the delimiter, for logs and
// preview responses.
func (l Layout) DelimiterName() string {
	switch l.Delimiter {
	case '\t':
		return "tab"
	case ';':
		return "semicolon"
	case ',':
		return "comma"
	case '|':
		return "pipe"
	default:
		return string(l.Delimiter)
	}
}

// DefaultLayout is the conservative fallback when no encoding yields a
// recognizable header: first row, semicolon-delimited, byte-preserving
// encoding. Downstream column mapping fails loudly if the structure is
// actually different.
func DefaultLayout() Layout {
	return Layout{HeaderRow: 0, Delimiter: ';', Encoding: EncodingLatin1, Degraded: true}
}

// DetectLayout sniffs the file at path for the header row, delimiter, and
// encoding. anchors are keywords expected somewhere in the true header
// line, matched case-insensitively as substrings.
//
// Encodings are tried in EncodingPriority order and each attempt is fully
// isolated: a decode failure advances the ladder, it never aborts the scan.
// When every encoding fails, DefaultLayout is returned with no error.
func DetectLayout(path string, anchors []string) (Layout, error) {
	lowered := make([]string, 0, len(anchors))
	for _, a := range anchors {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" {
			lowered = append(lowered, a)
		}
	}

	for _, enc := range EncodingPriority {
		f, err := os.Open(path)
		if err != nil {
			return DefaultLayout(), err
		}
		layout, ok := scanForHeader(f, enc, lowered)
		f.Close()
		if ok {
			return layout, nil
		}
	}

	return DefaultLayout(), nil
}

// scanForHeader hunts through decoded lines for one containing any anchor.
// It reports false when the decode produced unreadable text or no line
// matched within MaxHeaderSearchRows.
func scanForHeader(r io.Reader, enc Encoding, anchors []string) (Layout, bool) {
	scanner := bufio.NewScanner(DecodeReader(r, enc))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for row := 0; row < MaxHeaderSearchRows && scanner.Scan(); row++ {
		line := scanner.Text()

		// NUL bytes or invalid sequences mean this decoder does not fit
		// the file. Latin-1 never trips this: every byte maps to a rune.
		if strings.ContainsRune(line, '\x00') || !utf8.ValidString(line) {
			return Layout{}, false
		}

		if containsAnyFold(line, anchors) {
			return Layout{
				HeaderRow: row,
				Delimiter: sniffDelimiter(line),
				Encoding:  enc,
			}, true
		}
	}

	return Layout{}, false
}

// sniffDelimiter picks the field separator for a header line. Tab wins
// outright because vendor configuration exports are tab-delimited; after
// that a generic count-based sniff must produce a clear winner, and failing
// that, semicolon beats comma when present.
func sniffDelimiter(line string) rune {
	if strings.ContainsRune(line, '\t') {
		return '\t'
	}
	if d, ok := sniffSeparator(line); ok {
		return d
	}
	if strings.ContainsRune(line, ';') {
		return ';'
	}
	return ','
}

// separatorCandidates are scored by sniffSeparator, in tie-break order.
var separatorCandidates = []rune{',', ';', '|', ':'}

// sniffSeparator counts candidate separators in the line and returns the
// one with the strictly highest count. Ties and empty counts report false
// so the caller can apply its own fallback.
func sniffSeparator(line string) (rune, bool) {
	best := rune(0)
	bestCount := 0
	ambiguous := false

	for _, cand := range separatorCandidates {
		count := strings.Count(line, string(cand))
		switch {
		case count > bestCount:
			best, bestCount, ambiguous = cand, count, false
		case count == bestCount && count > 0:
			ambiguous = true
		}
	}

	if bestCount == 0 || ambiguous {
		return 0, false
	}
	return best, true
}

// containsAnyFold reports whether the lower-cased line contains any of the
// already lower-cased needles.
func containsAnyFold(line string, needles []string) bool {
	lowered := strings.ToLower(line)
	for _, n := range needles {
		if strings.Contains(lowered, n) {
			return true
		}
	}
	return false
}
