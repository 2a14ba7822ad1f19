package ingest

import (
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/korean"
)

// Document is an immutable sequence of text lines from one uploaded export.
// Line text is kept verbatim so that reduced documents can reassemble the
// original rows byte-for-byte.
type Document struct {
	lines []string
}

// NewDocument decodes a raw export payload into a Document. The payload is
// expected to be UTF-8 with an optional leading byte-order mark; Naver also
// ships CP949/EUC-KR exports, which are transcoded when the bytes are not
// valid UTF-8.
func NewDocument(raw []byte) (*Document, error) {
	if !utf8.Valid(raw) {
		decoded, err := korean.EUCKR.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, eris.Wrap(err, "ingest: decode euc-kr payload")
		}
		raw = decoded
	}

	text := strings.TrimPrefix(string(raw), "\ufeff")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return &Document{lines: lines}, nil
}

// Len returns the number of lines in the document.
func (d *Document) Len() int { return len(d.lines) }

// Line returns the verbatim text of line i.
func (d *Document) Line(i int) string { return d.lines[i] }

// Lines returns all lines. Callers must not mutate the returned slice.
func (d *Document) Lines() []string { return d.lines }
