package spreadsheet

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// Stream framing: cells are separated by the unit separator, fields
// inside a cell by the record separator, and the whole stream is wrapped
// in braces.
const (
	unitSep   = 0x1F
	recordSep = 0x1E
)

// ErrBadStream reports a persistence stream that violates the framing
// grammar. A failed Load leaves the sheet partially populated; callers
// should discard it.
var ErrBadStream = errors.New("malformed sheet stream")

// Save writes every non-empty cell as ADDRESS <RS> ':' <RS> CONTENTS
// records, in address order. Placeholder cells are skipped: references
// recreate them on demand when the stream is loaded.
func (s *Sheet) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	bw.WriteByte('{')
	bw.WriteByte(unitSep)
	for _, addr := range s.table.Addresses() {
		text, ok := s.CellText(addr)
		if !ok {
			continue
		}
		bw.WriteString(addr.String())
		bw.WriteByte(recordSep)
		bw.WriteByte(':')
		bw.WriteByte(recordSep)
		bw.WriteString(text)
		bw.WriteByte(unitSep)
	}
	bw.WriteByte('}')
	return bw.Flush()
}

// Load reads a stream produced by Save into the sheet, entry by entry,
// until the closing brace. Any framing violation, bad address, or
// unparseable cell aborts the load.
func (s *Sheet) Load(r io.Reader) error {
	br := bufio.NewReader(r)
	if err := expectByte(br, '{'); err != nil {
		return err
	}
	if err := expectByte(br, unitSep); err != nil {
		return err
	}
	for {
		next, err := br.Peek(1)
		if err != nil {
			return badStream("unterminated stream")
		}
		if next[0] == '}' {
			return nil
		}

		addrText, err := readField(br, recordSep)
		if err != nil {
			return err
		}
		if err := expectByte(br, ':'); err != nil {
			return err
		}
		if err := expectByte(br, recordSep); err != nil {
			return err
		}
		contents, err := readField(br, unitSep)
		if err != nil {
			return err
		}

		addr, err := ParseAddress(addrText)
		if err != nil {
			return err
		}
		if err := s.SetCell(addr, contents); err != nil {
			return err
		}
	}
}

func expectByte(br *bufio.Reader, want byte) error {
	got, err := br.ReadByte()
	if err != nil {
		return badStream("unexpected end of stream")
	}
	if got != want {
		return badStream(fmt.Sprintf("expected byte %#x, got %#x", want, got))
	}
	return nil
}

func readField(br *bufio.Reader, delim byte) (string, error) {
	field, err := br.ReadString(delim)
	if err != nil {
		return "", badStream("unexpected end of stream")
	}
	return field[:len(field)-1], nil
}

func badStream(msg string) error {
	return fmt.Errorf("%w: %s", ErrBadStream, msg)
}
