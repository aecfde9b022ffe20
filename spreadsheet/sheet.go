package spreadsheet

import (
	"fmt"
	"io"
	"strings"
)

// Capability bits advertised by Capabilities.
const (
	// CapCyclicDeps indicates that cyclic references are detected and
	// reported as undefined instead of looping.
	CapCyclicDeps uint = 1 << 0
)

// Capabilities reports the engine's optional feature bits.
func Capabilities() uint {
	return CapCyclicDeps
}

// Sheet owns a cell table and exposes the user-level operations: set,
// evaluate, rectangle copy, clone, and persistence.
type Sheet struct {
	table *CellTable
	parse ParseFunc
}

// NewSheet creates an empty sheet wired to the default expression parser.
func NewSheet() *Sheet {
	return NewSheetWithParser(ParseExpression)
}

// NewSheetWithParser creates an empty sheet that parses cell contents
// with parse.
func NewSheetWithParser(parse ParseFunc) *Sheet {
	return &Sheet{
		table: NewCellTable(),
		parse: parse,
	}
}

// SetCell parses contents and installs the resulting expression tree as
// the cell's root. Contents beginning with '=' are formulas; anything
// else is a literal. On a parse error the table is left unchanged.
func (s *Sheet) SetCell(addr Address, contents string) error {
	formula := strings.HasPrefix(contents, "=")
	builder := NewTreeBuilder(s.table, formula)
	if err := s.parse(contents, builder); err != nil {
		builder.Rollback()
		return err
	}
	existing, _ := s.table.Get(addr)
	root, err := builder.GetRoot(existing, formula)
	if err != nil {
		builder.Rollback()
		return err
	}
	s.table.Set(addr, root)
	return nil
}

// GetValue evaluates the cell at addr. Missing cells, cells on a
// reference cycle, and all evaluation failures yield Undefined; the
// cycle check runs before evaluation so cyclic graphs terminate.
func (s *Sheet) GetValue(addr Address) Value {
	root, ok := s.table.Get(addr)
	if !ok {
		return Undefined
	}
	visited := map[Address]bool{addr: true}
	if root.hasCycle(visited) {
		return Undefined
	}
	return root.Eval()
}

// CellText returns the serialized source of the cell at addr. The second
// result is false for absent cells and contentless placeholders.
func (s *Sheet) CellText(addr Address) (string, bool) {
	root, ok := s.table.Get(addr)
	if !ok || root.child == nil {
		return "", false
	}
	return root.Serialize(), true
}

// Addresses returns every occupied address in column-major order,
// placeholder cells included.
func (s *Sheet) Addresses() []Address {
	return s.table.Addresses()
}

// CopyRect copies the w×h rectangle anchored at src to the one anchored
// at dst. Relative reference axes in copied formulas are translated by
// the cell's displacement; destination cells whose source is absent are
// erased.
//
// The copy is two-phase. Sources are snapshotted before the first
// destination write, so the rectangles may overlap.
func (s *Sheet) CopyRect(dst, src Address, w, h int) {
	type snapshot struct {
		child   Node
		formula bool
	}
	saved := make(map[Address]snapshot)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			from := src.Shift(Offset{Cols: x, Rows: y})
			if root, ok := s.table.Get(from); ok {
				saved[from] = snapshot{child: root.child, formula: root.formula}
			}
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := Offset{Cols: x, Rows: y}
			from := src.Shift(off)
			to := dst.Shift(off)

			snap, ok := saved[from]
			if !ok {
				s.table.Delete(to)
				continue
			}
			root := s.table.Ensure(to)
			root.formula = snap.formula
			if snap.child != nil {
				// clone before shifting: the snapshot must stay intact for
				// later iterations over an overlapping rectangle
				root.child = snap.child.Clone(s.table)
			} else {
				root.child = nil
			}
			root.ShiftRefs(Offset{
				Cols: to.Col - from.Col,
				Rows: to.Row - from.Row,
			})
		}
	}
}

// Clone deep-copies the sheet. Every root is cloned into a fresh table
// and all references are rebound to it, so the copies evolve
// independently.
func (s *Sheet) Clone() *Sheet {
	dst := NewSheetWithParser(s.parse)
	for _, addr := range s.table.Addresses() {
		src, _ := s.table.Get(addr)
		root := dst.table.Ensure(addr)
		root.formula = src.formula
		if src.child != nil {
			root.child = src.child.Clone(dst.table)
		}
	}
	return dst
}

// Dump writes a human-readable ADDR:contents listing of every non-empty
// cell in address order.
func (s *Sheet) Dump(w io.Writer) error {
	for _, addr := range s.table.Addresses() {
		text, ok := s.CellText(addr)
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s:%s\n", addr, text); err != nil {
			return err
		}
	}
	return nil
}
